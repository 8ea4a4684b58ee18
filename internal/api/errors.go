package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	dErrors "addressbook/pkg/domain-errors"
)

// Error is a non-2xx response from the backend.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%d %s", e.Status, e.Detail)
}

// StatusOf returns the HTTP status carried by err, or 0 if err did not come
// from a backend response.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// DetailOf returns the server's detail message carried by err, if any.
func DetailOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// ErrorBody is the backend's error payload. Detail is usually a string but
// request validation failures carry a structured list.
type ErrorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func parseDetail(body []byte) string {
	var eb ErrorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, eb.Detail); err != nil {
		return string(eb.Detail)
	}
	return compact.String()
}

func classify(status int, body []byte, overrides map[int]dErrors.Code) error {
	apiErr := &Error{Status: status, Detail: parseDetail(body)}
	code, ok := overrides[status]
	if !ok {
		code = codeForStatus(status)
	}
	msg := apiErr.Detail
	if msg == "" {
		msg = http.StatusText(status)
	}
	return dErrors.Wrap(apiErr, code, msg)
}

func codeForStatus(status int) dErrors.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return dErrors.CodeValidation
	case http.StatusUnauthorized:
		return dErrors.CodeUnauthorized
	case http.StatusForbidden:
		return dErrors.CodeForbidden
	case http.StatusNotFound:
		return dErrors.CodeNotFound
	case http.StatusConflict:
		return dErrors.CodeConflict
	default:
		return dErrors.CodeInternal
	}
}
