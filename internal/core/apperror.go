package core

import (
	"errors"
	"net/http"
)

// ErrMalformedOutput marks model responses that could not be parsed into the
// review schema. The review service may retry once before surfacing it.
var ErrMalformedOutput = errors.New("model returned malformed review output")

// AppError carries an HTTP status and a user-safe message alongside the
// underlying cause. Handlers map every failure through this type so all
// endpoints produce the same error envelope.
type AppError struct {
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewError creates an AppError with no underlying cause.
func NewError(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

// WrapError attaches a status and user-safe message to an underlying error.
func WrapError(err error, status int, message string) *AppError {
	return &AppError{Status: status, Message: message, Err: err}
}

// StatusOf extracts the HTTP status from err, defaulting to 500 for
// unexpected errors.
func StatusOf(err error) int {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// MessageOf extracts the user-safe message from err. Unexpected errors get a
// generic message so internals never leak to the client.
func MessageOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Something went wrong"
}
