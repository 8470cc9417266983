// Package capability provides the typed, retrying transport used to call
// worker capabilities over the wire.
package capability

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TimeoutError indicates a call exceeded its caller-supplied deadline.
type TimeoutError struct {
	Worker string
	Action string
	Cause  error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout calling %s.%s: %v", e.Worker, e.Action, e.Cause)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// UnavailableError indicates a connection-level failure reaching a worker.
type UnavailableError struct {
	Worker string
	Action string
	Cause  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("worker %s unavailable for %s: %v", e.Worker, e.Action, e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// RejectedError indicates the worker rejected the call as invalid
// (4xx-equivalent). Rejections are permanent and never retried.
type RejectedError struct {
	Worker  string
	Action  string
	Code    int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("worker %s rejected %s (code %d): %s", e.Worker, e.Action, e.Code, e.Message)
}

// MalformedMessageError indicates a structurally invalid protocol envelope.
// It is surfaced to the caller immediately and never retried.
type MalformedMessageError struct {
	Message string
	Cause   error
}

func (e *MalformedMessageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed protocol message: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed protocol message: %s", e.Message)
}

func (e *MalformedMessageError) Unwrap() error {
	return e.Cause
}

// ServerError indicates a 5xx-equivalent failure inside a worker. These are
// transient from the caller's perspective.
type ServerError struct {
	Worker  string
	Action  string
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("worker %s failed %s (code %d): %s", e.Worker, e.Action, e.Code, e.Message)
}

// Transient reports whether err belongs to a failure class worth retrying:
// timeouts, connection-level failures, and worker-side 5xx errors.
// Rejections and malformed messages are permanent.
func Transient(err error) bool {
	var timeout *TimeoutError
	if errors.As(err, &timeout) {
		return true
	}
	var unavailable *UnavailableError
	if errors.As(err, &unavailable) {
		return true
	}
	var server *ServerError
	if errors.As(err, &server) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
