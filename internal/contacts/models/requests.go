package models

import (
	"strings"

	dErrors "addressbook/pkg/domain-errors"
	"addressbook/pkg/validation"
)

// ContactRequest is the body of create and edit calls.
type ContactRequest struct {
	FirstName string `json:"first_name" validate:"required,contact_name"`
	LastName  string `json:"last_name" validate:"required,contact_name"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Phone     string `json:"phone" validate:"required,contact_phone"`
}

// NewContactRequest builds a request body from an in-memory contact.
func NewContactRequest(c Contact) *ContactRequest {
	return &ContactRequest{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
	}
}

func (r *ContactRequest) Normalize() {
	if r == nil {
		return
	}
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
}

// Validate checks the contact fields before anything is sent to the server.
func (r *ContactRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}
