// Package apperr defines the error taxonomy shared by every operation
// boundary: validation and lookup failures map to 4xx responses, anything
// unexpected is wrapped as Internal and surfaced generically.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidInput Code = "invalid_input"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal"
)

// Error carries a taxonomy code, a user-facing message, and optionally the
// list of offending field names for invalid-input failures.
type Error struct {
	Code    Code
	Message string
	Missing []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Invalid reports missing or malformed input. The field names are included
// in the response body so clients can highlight them.
func Invalid(message string, missing ...string) *Error {
	return &Error{Code: CodeInvalidInput, Message: message, Missing: missing}
}

func NotFound(message string) *Error  { return New(CodeNotFound, message) }
func Forbidden(message string) *Error { return New(CodeForbidden, message) }
func Conflict(message string) *Error  { return New(CodeConflict, message) }

// Internal wraps an unexpected failure. The wrapped cause is kept for
// logging; the message shown to clients stays generic.
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "Internal Server Error", Err: err}
}

// AsError unwraps err into a taxonomy *Error if it is one.
func AsError(err error) (*Error, bool) {
	var ae *Error
	ok := errors.As(err, &ae)
	return ae, ok
}

// CodeOf extracts the taxonomy code from err, defaulting to CodeInternal for
// errors raised outside the taxonomy.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

// HTTPStatus maps an error to its response status.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
