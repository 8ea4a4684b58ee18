package models

import (
	"strings"

	dErrors "addressbook/pkg/domain-errors"
	"addressbook/pkg/validation"
)

// LoginRequest carries credentials for /auth/login and /auth/activate. It is
// sent form-encoded with the email as "username".
type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,notblank"`
}

func (r *LoginRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// RegisterRequest is the body of /auth/register.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=6,max=16"`
	DisplayName string `json:"display_name" validate:"required,display_name"`
}

func (r *RegisterRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.DisplayName = strings.TrimSpace(r.DisplayName)
}

func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// DisplayNameRequest is the body of /auth/display-name.
type DisplayNameRequest struct {
	DisplayName string `json:"display_name" validate:"required,display_name"`
}

func (r *DisplayNameRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	return validation.Validate(r)
}

// PasswordRequest is the body of /auth/security-token and /auth/change-password.
type PasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=16"`
}

func (r *PasswordRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}
