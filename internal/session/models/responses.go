package models

import "github.com/google/uuid"

// TokenResponse is returned by /auth/login and /auth/refresh-token.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
}

func (r TokenResponse) ToModel() TokenPair {
	return TokenPair{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
}

// UserResponse is returned by /auth/me, /auth/register and /auth/display-name.
type UserResponse struct {
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	UUID        uuid.UUID `json:"uuid"`
	Disabled    bool      `json:"disabled"`
}

func (r UserResponse) ToModel() *User {
	return &User{
		UUID:        r.UUID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		Disabled:    r.Disabled,
	}
}

// SecurityTokenResponse is returned by /auth/security-token.
type SecurityTokenResponse struct {
	SecurityToken string `json:"security_token"`
}
