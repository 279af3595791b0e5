package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a delete/lookup target that does not exist (404).
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated marks a missing, malformed, tampered or expired
	// credential (401). It carries no detail about which check failed.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// BadRequestError marks a request body that failed boundary validation (400).
type BadRequestError struct {
	Msg string
}

func (e *BadRequestError) Error() string { return e.Msg }

// BadRequest builds a BadRequestError with a formatted message.
func BadRequest(format string, args ...any) error {
	return &BadRequestError{Msg: fmt.Sprintf(format, args...)}
}

// UpstreamError marks a failure of the external rate provider (500 on the
// synchronous path, logged and swallowed on the scheduled path).
type UpstreamError struct {
	Msg string
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream builds an UpstreamError wrapping err.
func Upstream(err error, format string, args ...any) error {
	return &UpstreamError{Msg: fmt.Sprintf(format, args...), Err: err}
}
