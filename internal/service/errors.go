package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means an id did not resolve in the current data set
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput means a request parameter was out of range or malformed
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamUnavailable means a provider call failed or returned unusable data
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// RequestError is a client-facing failure. Its message is safe to return as the
// response detail; errors.Is matches its kind.
type RequestError struct {
	kind error
	msg  string
}

func (e *RequestError) Error() string { return e.msg }

func (e *RequestError) Unwrap() error { return e.kind }

func notFoundf(format string, args ...any) error {
	return &RequestError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func invalidf(format string, args ...any) error {
	return &RequestError{kind: ErrInvalidInput, msg: fmt.Sprintf(format, args...)}
}

// UpstreamPolicy decides what provider-backed services do when a provider fails
type UpstreamPolicy struct {
	// Strict surfaces ErrUpstreamUnavailable instead of degrading to synthetic data
	Strict bool
}
