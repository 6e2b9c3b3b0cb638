package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "endpoint.timeout_seconds")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidThemes returns the list of valid TUI themes
func ValidThemes() []string {
	return []string{"default", "monokai", "dracula", "nord"}
}

// Validate checks the Config for invalid values and returns all validation
// errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError
	errors = append(errors, c.validateEndpoint()...)
	errors = append(errors, c.validatePersonas()...)
	errors = append(errors, c.validateSession()...)
	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateTUI()...)
	return errors
}

func (c *Config) validateEndpoint() []ValidationError {
	var errors []ValidationError

	if c.Endpoint.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "endpoint.base_url",
			Value:   c.Endpoint.BaseURL,
			Message: "cannot be empty",
		})
	} else if u, err := url.Parse(c.Endpoint.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "endpoint.base_url",
			Value:   c.Endpoint.BaseURL,
			Message: "must be an absolute URL (e.g. https://stages.example.com)",
		})
	}

	const maxTimeoutSeconds = 600
	if c.Endpoint.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "endpoint.timeout_seconds",
			Value:   c.Endpoint.TimeoutSeconds,
			Message: "must be positive",
		})
	}
	if c.Endpoint.TimeoutSeconds > maxTimeoutSeconds {
		errors = append(errors, ValidationError{
			Field:   "endpoint.timeout_seconds",
			Value:   c.Endpoint.TimeoutSeconds,
			Message: fmt.Sprintf("exceeds maximum of %d seconds", maxTimeoutSeconds),
		})
	}

	const maxRetries = 10
	if c.Endpoint.MaxRetries < 0 {
		errors = append(errors, ValidationError{
			Field:   "endpoint.max_retries",
			Value:   c.Endpoint.MaxRetries,
			Message: "must be non-negative (0 disables retries)",
		})
	}
	if c.Endpoint.MaxRetries > maxRetries {
		errors = append(errors, ValidationError{
			Field:   "endpoint.max_retries",
			Value:   c.Endpoint.MaxRetries,
			Message: fmt.Sprintf("exceeds maximum of %d", maxRetries),
		})
	}

	if c.Endpoint.RetryBaseDelayMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "endpoint.retry_base_delay_ms",
			Value:   c.Endpoint.RetryBaseDelayMs,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validatePersonas() []ValidationError {
	var errors []ValidationError

	if c.Personas.Filter != "" {
		if _, err := glob.Compile(c.Personas.Filter); err != nil {
			errors = append(errors, ValidationError{
				Field:   "personas.filter",
				Value:   c.Personas.Filter,
				Message: "must be a valid glob pattern",
			})
		}
	}

	if c.Personas.Watch && c.Personas.File == "" {
		errors = append(errors, ValidationError{
			Field:   "personas.watch",
			Value:   c.Personas.Watch,
			Message: "requires personas.file to be set",
		})
	}

	return errors
}

func (c *Config) validateSession() []ValidationError {
	var errors []ValidationError

	if c.Session.MaxAgeHours < 0 {
		errors = append(errors, ValidationError{
			Field:   "session.max_age_hours",
			Value:   c.Session.MaxAgeHours,
			Message: "must be non-negative (0 disables the staleness check)",
		})
	}

	return errors
}

func (c *Config) validateOutput() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Output.SpecFile) == "" {
		errors = append(errors, ValidationError{
			Field:   "output.spec_file",
			Value:   c.Output.SpecFile,
			Message: "cannot be empty",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	if c.TUI.Theme != "" && !slices.Contains(ValidThemes(), c.TUI.Theme) {
		errors = append(errors, ValidationError{
			Field:   "tui.theme",
			Value:   c.TUI.Theme,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidThemes(), ", ")),
		})
	}

	return errors
}
