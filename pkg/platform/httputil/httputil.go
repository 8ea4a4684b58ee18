package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "addressbook/pkg/domain-errors"
)

// ErrorResponse is the error body of every backend endpoint.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError translates a domain error into its HTTP status and a
// {"detail": "..."} body.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		detail := domainErr.Message
		if detail == "" {
			detail = string(domainErr.Code)
		}
		WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), ErrorResponse{Detail: detail})
		return
	}
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: "Internal server error"})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeIncorrectPassword:
		return http.StatusBadRequest
	case dErrors.CodeValidation:
		return http.StatusUnprocessableEntity
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnauthorized, dErrors.CodeInvalidCredentials, dErrors.CodeNotAuthenticated:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden, dErrors.CodeInactiveUser, dErrors.CodeInvalidToken:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
