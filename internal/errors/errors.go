// Package errors provides centralized error definitions and error
// categorization for the specsmith pipeline. It defines sentinel errors for
// orchestrator misuse, a fixed taxonomy of stage-failure categories, and
// Categorize, which maps any error from a remote stage call onto that
// taxonomy together with a user-presentable title and message.
//
// # Categories
//
// Every stage failure falls into exactly one of six categories:
//
//   - CategoryValidation: the stage returned a malformed or unexpected shape
//   - CategoryRateLimit: the provider rejected the call due to rate limiting
//   - CategoryTimeout: the call exceeded its deadline
//   - CategoryNetwork: transport-level connectivity failure
//   - CategoryProviderFailure: the LLM provider reported an internal error
//   - CategoryUnknown: anything else
//
// Classification is purely textual pattern matching over the error message,
// evaluated in priority order (first match wins). Callers are responsible
// for displaying or logging the result; Categorize itself has no side
// effects.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Orchestrator sentinel errors
var (
	// ErrGenerationInFlight indicates a generation run is already active.
	ErrGenerationInFlight = New("generation already in flight")
	// ErrNoPendingResume indicates Resume was called with no queued round.
	ErrNoPendingResume = New("no pending resume token")
	// ErrNoRefinement indicates ProceedToGeneration was called before StartRefinement.
	ErrNoRefinement = New("no refinement in progress")
	// ErrEmptyInput indicates the caller supplied an empty idea text.
	ErrEmptyInput = New("input must not be empty")
)

// Category identifies one class of stage failure.
type Category string

const (
	// CategoryValidation indicates the stage output failed shape validation.
	CategoryValidation Category = "validation"
	// CategoryRateLimit indicates the provider rate-limited the call.
	CategoryRateLimit Category = "rate_limit"
	// CategoryTimeout indicates the stage call exceeded its deadline.
	CategoryTimeout Category = "timeout"
	// CategoryNetwork indicates a transport-level connectivity failure.
	CategoryNetwork Category = "network"
	// CategoryProviderFailure indicates the LLM provider reported an error.
	CategoryProviderFailure Category = "provider_failure"
	// CategoryUnknown is the fallback for unclassifiable errors.
	CategoryUnknown Category = "unknown"
)

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// CategorizedError is the result of classifying a stage failure. It wraps
// the original error and carries the user-presentable title and message for
// its category.
type CategorizedError struct {
	Category  Category
	Title     string
	Message   string
	Retryable bool
	cause     error
}

// Error returns the underlying error message prefixed with the category.
func (e *CategorizedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Category, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Unwrap returns the original error.
func (e *CategorizedError) Unwrap() error {
	return e.cause
}

// categoryInfo holds the fixed user-facing copy for one category.
type categoryInfo struct {
	title     string
	message   string
	retryable bool
}

var categoryTable = map[Category]categoryInfo{
	CategoryValidation: {
		title:     "❌ Invalid Stage Response",
		message:   "A pipeline stage returned output in an unexpected shape. This is usually transient provider misbehavior — please try again, and report it if it persists.",
		retryable: false,
	},
	CategoryRateLimit: {
		title:     "⚠️ Rate Limit Exceeded",
		message:   "The AI provider is rate limiting requests. Wait a minute or two, then retry your generation.",
		retryable: true,
	},
	CategoryTimeout: {
		title:     "⏱️ Stage Timed Out",
		message:   "A pipeline stage took too long to respond. The provider may be under heavy load — retrying usually succeeds.",
		retryable: true,
	},
	CategoryNetwork: {
		title:     "🌐 Network Error",
		message:   "Could not reach the stage endpoint. Check your connection and retry.",
		retryable: true,
	},
	CategoryProviderFailure: {
		title:     "🤖 Provider Error",
		message:   "The AI provider reported an internal error. This is on their side — retrying after a short wait usually succeeds.",
		retryable: true,
	},
	CategoryUnknown: {
		title:     "❗ Unexpected Error",
		message:   "Something went wrong that we couldn't classify. Check the logs for details.",
		retryable: false,
	},
}

// providerMarkers are substrings that identify an LLM-provider failure.
var providerMarkers = []string{
	"anthropic",
	"openai",
	"claude",
	"gpt",
	"gemini",
	"api error",
}

// Categorize classifies err into one of the fixed failure categories.
// Matching is case-insensitive and evaluated in priority order: validation,
// rate limit, timeout, network, provider failure, unknown. The returned
// error wraps err, so errors.Is/As still see the original.
func Categorize(err error) *CategorizedError {
	category := classify(err)
	info := categoryTable[category]
	return &CategorizedError{
		Category:  category,
		Title:     info.title,
		Message:   info.message,
		Retryable: info.retryable,
		cause:     err,
	}
}

// classify returns the category for an error message. Priority order is
// significant: a message containing both "429" and "api error" is a rate
// limit, not a provider failure.
func classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "validation"):
		return CategoryValidation
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "rate_limit") || strings.Contains(msg, "429"):
		return CategoryRateLimit
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		return CategoryTimeout
	case strings.Contains(msg, "network") || strings.Contains(msg, "fetch") || strings.Contains(msg, "connection"):
		return CategoryNetwork
	case containsAny(msg, providerMarkers):
		return CategoryProviderFailure
	default:
		return CategoryUnknown
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// IsRetryable reports whether err represents a transient condition that may
// succeed on retry. Already-categorized errors answer from their category;
// anything else is classified first.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var cerr *CategorizedError
	if As(err, &cerr) {
		return cerr.Retryable
	}
	return categoryTable[classify(err)].retryable
}

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
