package domainerrors

import "errors"

// Code represents a client-side error category independent of the HTTP layer.
// These codes describe what went wrong in session and contact terms so callers
// can pick a user-visible message without inspecting status codes.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeBadRequest   Code = "bad_request"
	CodeValidation   Code = "validation_failed"
	CodeInternal     Code = "internal_error"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"

	// CodeTransport means no response was received (connection refused, timeout,
	// open circuit). It is distinct from CodeUnauthorized so the session layer can
	// decide how to treat it.
	CodeTransport Code = "transport"

	// Account and session codes
	CodeInvalidCredentials   Code = "invalid_credentials"    // login rejected (401)
	CodeInactiveUser         Code = "inactive_user"          // login on a deactivated account (403)
	CodeIncorrectPassword    Code = "incorrect_password"     // password re-verification failed
	CodeInvalidToken         Code = "invalid_token"          // access token rejected during a sensitive flow
	CodeMissingSecurityToken Code = "missing_security_token" // sensitive mutation without prior verification
	CodeNotAuthenticated     Code = "not_authenticated"      // no usable tokens
)

// Error wraps client or infrastructure failures with a stable code.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
// Only the outermost domain error in the chain is consulted.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost domain error, or CodeInternal when
// err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
