package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultCallTimeout is the default per-call deadline when the caller does
// not supply one.
const DefaultCallTimeout = 30 * time.Second

// Caller invokes one named capability on a worker and returns its result.
// Implementations must honor the context deadline and classify failures into
// the typed errors of this package.
type Caller interface {
	Call(ctx context.Context, action string, params map[string]any) (map[string]any, error)
}

// CallerFunc adapts a function to the Caller interface.
type CallerFunc func(ctx context.Context, action string, params map[string]any) (map[string]any, error)

// Call invokes the wrapped function.
func (f CallerFunc) Call(ctx context.Context, action string, params map[string]any) (map[string]any, error) {
	return f(ctx, action, params)
}

// HTTPCaller posts internal-shape requests ({action, params}) to a co-located
// worker endpoint. It performs no retries; retry policy is layered on by
// Retryer for workers that need it.
type HTTPCaller struct {
	worker  string
	baseURL string
	client  *http.Client
}

// NewHTTPCaller creates a caller for a worker reachable at baseURL.
func NewHTTPCaller(worker, baseURL string) *HTTPCaller {
	return &HTTPCaller{
		worker:  worker,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// internalRequest is the internal call shape shared by co-located workers.
type internalRequest struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params,omitempty"`
}

// Call posts the action to the worker and decodes the JSON result.
func (c *HTTPCaller) Call(ctx context.Context, action string, params map[string]any) (map[string]any, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCallTimeout)
		defer cancel()
	}

	body, err := json.Marshal(internalRequest{Action: action, Params: params})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request for %s.%s: %w", c.worker, action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s.%s: %w", c.worker, action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &TimeoutError{Worker: c.worker, Action: action, Cause: err}
		}
		return nil, &UnavailableError{Worker: c.worker, Action: action, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnavailableError{Worker: c.worker, Action: action, Cause: err}
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, &ServerError{Worker: c.worker, Action: action, Code: resp.StatusCode, Message: truncate(string(respBody), 200)}
	case resp.StatusCode >= 400:
		return nil, &RejectedError{Worker: c.worker, Action: action, Code: resp.StatusCode, Message: truncate(string(respBody), 200)}
	}

	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &MalformedMessageError{Message: fmt.Sprintf("invalid JSON from %s.%s", c.worker, action), Cause: err}
	}
	return result, nil
}

// truncate limits error payload text to keep messages readable.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
