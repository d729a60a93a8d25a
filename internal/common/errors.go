// Package common defines shared constants and sentinel errors used across
// the client layers of staffdesk. Callers should use errors.Is to match the
// sentinel values and errors.As to extract *APIError.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized means the session is missing, expired or was rejected
	// by the API (HTTP 401). It forces a logout.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the caller's role does not allow the action, either
	// locally (authorization gate) or remotely (HTTP 403).
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable means the request could not complete at the transport level.
	ErrUnavailable = errors.New("server unavailable")

	// ErrAborted means the request was cancelled by its owner. It is not
	// reported to the user.
	ErrAborted = errors.New("request aborted")

	// ErrNotFound is returned for HTTP 404 without a message body.
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx response from the API. Message is shown to the user
// verbatim.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return e.Message
}

// IsSilent reports whether err should not be surfaced to the user.
func IsSilent(err error) bool {
	return errors.Is(err, ErrAborted)
}
