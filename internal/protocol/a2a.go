package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/newsroom-agent/internal/capability"
)

// A2ACaller reaches an external agent over the JSONRPC wire protocol. It
// implements capability.Caller so the retrying client can be layered on top
// without knowing about the bridge.
type A2ACaller struct {
	agent   string
	baseURL string
	client  *http.Client
}

// NewA2ACaller creates a caller for an external agent reachable at baseURL.
func NewA2ACaller(agent, baseURL string) *A2ACaller {
	return &A2ACaller{
		agent:   agent,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// Call wraps the internal call shape in an A2A request envelope, posts it,
// and unwraps the JSONRPC response.
func (c *A2ACaller) Call(ctx context.Context, action string, params map[string]any) (map[string]any, error) {
	input := make(map[string]any, len(params)+1)
	for k, v := range params {
		input[k] = v
	}
	input["action"] = action

	body, err := json.Marshal(map[string]any{
		"id":    uuid.NewString(),
		"input": input,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode A2A request for %s.%s: %w", c.agent, action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create A2A request for %s.%s: %w", c.agent, action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &capability.TimeoutError{Worker: c.agent, Action: action, Cause: err}
		}
		return nil, &capability.UnavailableError{Worker: c.agent, Action: action, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &capability.UnavailableError{Worker: c.agent, Action: action, Cause: err}
	}

	if resp.StatusCode >= 500 {
		return nil, &capability.ServerError{Worker: c.agent, Action: action, Code: resp.StatusCode, Message: "agent returned HTTP " + resp.Status}
	}

	env, err := ParseResponse(respBody)
	if err != nil {
		return nil, err
	}
	if env.Error != nil {
		return nil, rpcErrorToCapability(c.agent, action, env.Error)
	}
	return env.Result, nil
}

// rpcErrorToCapability maps JSONRPC error codes back onto the internal
// taxonomy: the worker-error range is transient, everything else is a
// permanent rejection.
func rpcErrorToCapability(agent, action string, rpcErr *RPCError) error {
	switch rpcErr.Code {
	case CodeWorkerError:
		return &capability.ServerError{Worker: agent, Action: action, Code: rpcErr.Code, Message: rpcErr.Message}
	case CodeParseError, CodeInvalidRequest:
		return &capability.MalformedMessageError{Message: rpcErr.Message}
	default:
		return &capability.RejectedError{Worker: agent, Action: action, Code: rpcErr.Code, Message: rpcErr.Message}
	}
}
