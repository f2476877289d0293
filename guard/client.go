// Package guard consumes a hosted content-safety evaluator and composes its
// verdicts around agent runs.
//
// The evaluator is an opaque remote capability: this package never scores
// content itself, it sends input/output text plus a set of requested checks
// over HTTP and acts on the returned verdict.
package guard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Check names an evaluation the remote service can run.
type Check string

const (
	CheckToxicity        Check = "toxicity"
	CheckPromptInjection Check = "prompt_injection"
	CheckHallucination   Check = "hallucination"
	CheckPII             Check = "pii"
	CheckPolicyAdherence Check = "policy_adherence"
)

// Status is the evaluator's aggregate pass/fail verdict.
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// Request asks the evaluator to run a set of checks over input and/or
// output text.
type Request struct {
	// Input is the user-side text to evaluate. Optional.
	Input string `json:"input,omitempty"`

	// Output is the model-side text to evaluate. Optional.
	Output string `json:"output,omitempty"`

	// Checks names the evaluations to run.
	Checks []Check `json:"checks"`

	// Assertions are free-form policy statements the output must satisfy,
	// evaluated under CheckPolicyAdherence.
	Assertions []string `json:"assertions,omitempty"`
}

// CheckResult is the evaluator's finding for a single check.
type CheckResult struct {
	Check Check `json:"check_name"`

	// Score is 0-100; higher means the check's condition is more present.
	Score int `json:"score"`

	// Label is the evaluator's categorical finding, e.g. "safe", "flagged".
	Label string `json:"label"`

	// Confidence is 0-100.
	Confidence int `json:"confidence_score"`

	// Reason is the evaluator's explanation, when provided.
	Reason string `json:"reason,omitempty"`

	// Quote is the offending excerpt, when provided.
	Quote string `json:"quote,omitempty"`
}

// Verdict is the evaluator's response for one Request.
type Verdict struct {
	Results []CheckResult `json:"results"`
	Score   int           `json:"score"`
	Status  Status        `json:"status"`
}

// Passed reports whether the aggregate verdict passed.
func (v *Verdict) Passed() bool {
	return v != nil && v.Status == StatusPassed
}

// APIError is a non-2xx response from the evaluator service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("evaluator returned %d: %s", e.StatusCode, e.Message)
}

// IsRateLimited reports whether the service rejected the call due to rate
// limiting.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Client talks to the hosted evaluator over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client, e.g. to set timeouts or
// inject a test transport.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Client for the evaluator at baseURL, authenticating
// with the given API key.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Evaluate runs the requested checks and returns the verdict. Transport and
// decoding failures are wrapped; non-2xx responses surface as *APIError.
func (c *Client) Evaluate(ctx context.Context, req *Request) (*Verdict, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode evaluation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/evaluations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build evaluation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call evaluator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(msg)}
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("decode evaluation response: %w", err)
	}
	return &verdict, nil
}
