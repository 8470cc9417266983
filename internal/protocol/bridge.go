// Package protocol provides the stateless translation between the internal
// worker call shape ({action, params}) and the external JSONRPC-based
// agent-to-agent (A2A) envelope.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonathan/newsroom-agent/internal/capability"
)

// JSONRPCVersion is stamped on every outbound envelope.
const JSONRPCVersion = "2.0"

// JSONRPC error codes. The -32xxx range follows the JSONRPC 2.0 spec;
// -32000 is the implementation-defined worker error.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeUnknownAction  = -32601
	CodeInvalidParams  = -32602
	CodeWorkerError    = -32000
)

// AgentCall is the internal call shape extracted from an A2A request.
type AgentCall struct {
	ID     any
	Action string
	Params map[string]any
}

// Envelope is a JSONRPC 2.0 response envelope.
type Envelope struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      any            `json:"id"`
	Result  map[string]any `json:"result,omitempty"`
	Error   *RPCError      `json:"error,omitempty"`
}

// RPCError is the error member of a JSONRPC response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// request mirrors the inbound A2A request shape. Two equivalent layouts are
// accepted: {input: {action, ...params}, id} and {action, params, id}.
type request struct {
	ID     any            `json:"id"`
	Input  map[string]any `json:"input,omitempty"`
	Action string         `json:"action,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}

// ParseRequest converts a raw A2A request into the internal call shape.
// Structural violations (bad JSON, missing id, missing action) fail with
// MalformedMessageError; business-level action semantics are not interpreted
// here.
func ParseRequest(raw []byte) (*AgentCall, error) {
	if err := validateRequestShape(raw); err != nil {
		return nil, err
	}

	var req request
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, &capability.MalformedMessageError{Message: "invalid JSON envelope", Cause: err}
	}

	call := &AgentCall{ID: req.ID}

	switch {
	case req.Input != nil:
		action, ok := req.Input["action"].(string)
		if !ok || action == "" {
			return nil, &capability.MalformedMessageError{Message: "input object lacks an action field"}
		}
		call.Action = action
		call.Params = make(map[string]any, len(req.Input))
		for k, v := range req.Input {
			if k != "action" {
				call.Params[k] = v
			}
		}
	case req.Action != "":
		call.Action = req.Action
		call.Params = req.Params
	default:
		return nil, &capability.MalformedMessageError{Message: "envelope lacks an action or input field"}
	}

	if call.Params == nil {
		call.Params = map[string]any{}
	}
	return call, nil
}

// FormatResponse wraps an internal result in a JSONRPC success envelope.
func FormatResponse(id any, result map[string]any) Envelope {
	return Envelope{JSONRPC: JSONRPCVersion, ID: id, Result: result}
}

// FormatError wraps an internal error in a JSONRPC error envelope with a
// stable code and message; internal exception text is not leaked.
func FormatError(id any, err error) Envelope {
	return Envelope{JSONRPC: JSONRPCVersion, ID: id, Error: toRPCError(err)}
}

// toRPCError maps the internal error taxonomy onto stable JSONRPC codes.
func toRPCError(err error) *RPCError {
	var malformed *capability.MalformedMessageError
	if errors.As(err, &malformed) {
		return &RPCError{Code: CodeInvalidRequest, Message: malformed.Message}
	}
	var rejected *capability.RejectedError
	if errors.As(err, &rejected) {
		return &RPCError{Code: CodeInvalidParams, Message: rejected.Message}
	}
	var unknown *UnknownActionError
	if errors.As(err, &unknown) {
		return &RPCError{Code: CodeUnknownAction, Message: fmt.Sprintf("unknown action: %s", unknown.Action)}
	}
	return &RPCError{Code: CodeWorkerError, Message: "internal worker error"}
}

// UnknownActionError indicates the request named an action the worker does
// not expose. Per the dispatch design this is a protocol-level failure, not
// a generic lookup miss.
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action: %s", e.Action)
}

// ParseResponse decodes a JSONRPC response envelope received from an
// external agent.
func ParseResponse(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &capability.MalformedMessageError{Message: "invalid JSONRPC response", Cause: err}
	}
	if env.JSONRPC != JSONRPCVersion {
		return nil, &capability.MalformedMessageError{Message: fmt.Sprintf("unexpected jsonrpc version %q", env.JSONRPC)}
	}
	if env.Error == nil && env.Result == nil {
		return nil, &capability.MalformedMessageError{Message: "response carries neither result nor error"}
	}
	return &env, nil
}
