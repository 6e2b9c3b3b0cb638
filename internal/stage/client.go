package stage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/specsmith/specsmith/internal/persona"
)

// DefaultTimeout bounds a single stage call.
const DefaultTimeout = 45 * time.Second

// maxErrorBody caps how much of an error response body is echoed into the
// error message.
const maxErrorBody = 512

// Request carries everything a stage invocation might need. The client owns
// payload shaping: it decides which of these fields actually go on the wire
// for a given stage.
type Request struct {
	// UserInput is the raw idea text.
	UserInput string
	// Context is the accumulated round data from earlier stages.
	Context *Context
	// Agents is the enabled persona panel for fan-out stages.
	Agents []persona.Agent
}

// Client invokes a named remote stage and returns its decoded output.
// Implementations must surface failures as errors whose messages classify
// correctly under errors.Categorize.
type Client interface {
	Invoke(ctx context.Context, name Name, req Request) (*Output, error)
}

// HTTPClient calls stage endpoints at {BaseURL}/{stage} with a JSON payload.
type HTTPClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	httpc   *http.Client
}

// HTTPOption customizes an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithAPIKey sets the bearer token sent with every call.
func WithAPIKey(key string) HTTPOption {
	return func(c *HTTPClient) {
		c.apiKey = key
	}
}

// WithHTTPClient swaps the underlying http.Client (tests).
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		c.httpc = hc
	}
}

// NewHTTPClient creates a stage client rooted at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		timeout: DefaultTimeout,
		httpc:   &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wirePayload is the JSON body sent to a stage endpoint. Optional fields are
// omitted entirely for stages that do not need them.
type wirePayload struct {
	Stage        string          `json:"stage"`
	UserInput    string          `json:"userInput,omitempty"`
	RoundData    *Context        `json:"roundData,omitempty"`
	AgentConfigs []persona.Agent `json:"agentConfigs,omitempty"`
}

// Invoke posts the shaped payload to the stage endpoint and decodes the
// response. The call is bounded by the configured timeout; expiry surfaces
// as a TIMEOUT-prefixed error so it categorizes distinctly from other
// transport failures.
func (c *HTTPClient) Invoke(ctx context.Context, name Name, req Request) (*Output, error) {
	payload := wirePayload{Stage: name.String()}
	if needsUserInput(name) {
		payload.UserInput = req.UserInput
	}
	if name != StageQuestions {
		payload.RoundData = req.Context
	}
	if fansOut(name) {
		payload.AgentConfigs = req.Agents
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("stage %s: encoding payload: %w", name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+name.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("stage %s: building request: %w", name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("TIMEOUT: stage %s timed out after %s", name, c.timeout)
		}
		return nil, fmt.Errorf("stage %s: %w", name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		// The deadline can also expire mid-body, after Do returned headers.
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("TIMEOUT: stage %s timed out after %s", name, c.timeout)
		}
		return nil, fmt.Errorf("stage %s: reading response: %w", name, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("stage %s: rate limit exceeded: 429: %s", name, snippet(data))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("stage %s: api error (status %d): %s", name, resp.StatusCode, snippet(data))
	}

	out, err := decodeOutput(name, data)
	if err != nil {
		return nil, fmt.Errorf("VALIDATION: stage %s returned malformed output: %v", name, err)
	}
	if err := validateOutput(name, out); err != nil {
		return nil, err
	}
	return out, nil
}

// validateOutput rejects responses missing the one field their stage cannot
// work without. Collection fields may legitimately be empty (an empty votes
// array is a valid voting result), so only scalar payloads are checked.
func validateOutput(name Name, out *Output) error {
	switch name {
	case StageSpec:
		if out.Spec == "" {
			return fmt.Errorf("VALIDATION: stage spec returned no specification text")
		}
	case StageChat:
		if out.Reply == "" {
			return fmt.Errorf("VALIDATION: stage chat returned no reply")
		}
	}
	return nil
}

// snippet truncates an error response body for inclusion in error messages.
func snippet(data []byte) string {
	s := string(bytes.TrimSpace(data))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
