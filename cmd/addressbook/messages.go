package main

import (
	"errors"

	"addressbook/internal/api"
	dErrors "addressbook/pkg/domain-errors"
)

// hints are shown to the user instead of raw error codes.
var hints = map[dErrors.Code]string{
	dErrors.CodeInvalidCredentials:   "wrong email or password",
	dErrors.CodeInactiveUser:         "this account is deactivated; run `addressbook activate` first",
	dErrors.CodeIncorrectPassword:    "incorrect password",
	dErrors.CodeInvalidToken:         "your session was rejected; verify your password again",
	dErrors.CodeMissingSecurityToken: "confirm your password first with `addressbook verify-password`",
	dErrors.CodeNotAuthenticated:     "you are not logged in; run `addressbook login`",
	dErrors.CodeTransport:            "cannot reach the server",
	dErrors.CodeForbidden:            "not allowed",
	dErrors.CodeUnauthorized:         "the server rejected your credentials",
}

// describe renders err for the terminal. Validation, conflict and not-found
// errors carry their own detail; the others get a fixed hint.
func describe(err error) string {
	if err == nil {
		return ""
	}
	var de *dErrors.Error
	if !errors.As(err, &de) {
		return err.Error()
	}
	switch de.Code {
	case dErrors.CodeValidation, dErrors.CodeBadRequest, dErrors.CodeConflict, dErrors.CodeNotFound:
		return de.Error()
	case dErrors.CodeInternal:
		if detail := api.DetailOf(err); detail != "" {
			return "server error: " + detail
		}
		return "unexpected error: " + de.Error()
	}
	if hint, ok := hints[de.Code]; ok {
		return hint
	}
	return de.Error()
}
