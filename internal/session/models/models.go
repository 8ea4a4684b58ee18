package models

import "github.com/google/uuid"

// User is the identity returned by the "who am I" call. It is held in memory
// for the lifetime of a session and never persisted.
type User struct {
	UUID        uuid.UUID
	Email       string
	DisplayName string
	Disabled    bool
}

// TokenPair is what login and refresh hand back.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
