package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/newsroom-agent/internal/capability"
	"github.com/jonathan/newsroom-agent/internal/protocol"
	"github.com/jonathan/newsroom-agent/internal/registry"
)

// HTTPStatus returns the appropriate HTTP status code for a dispatch error.
func HTTPStatus(err error) int {
	var malformed *capability.MalformedMessageError
	if errors.As(err, &malformed) {
		return http.StatusBadRequest
	}
	var rejected *capability.RejectedError
	if errors.As(err, &rejected) {
		return http.StatusBadRequest
	}
	var unknown *protocol.UnknownActionError
	if errors.As(err, &unknown) {
		return http.StatusNotFound
	}
	var notFound *registry.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
