package api

import (
	"context"
	"net/http"
	"net/url"

	"addressbook/internal/session/models"
	dErrors "addressbook/pkg/domain-errors"
)

var (
	loginOverrides = map[int]dErrors.Code{
		http.StatusUnauthorized: dErrors.CodeInvalidCredentials,
		http.StatusForbidden:    dErrors.CodeInactiveUser,
		http.StatusNotFound:     dErrors.CodeInvalidCredentials,
	}
	activateOverrides = map[int]dErrors.Code{
		http.StatusUnauthorized: dErrors.CodeInvalidCredentials,
		http.StatusNotFound:     dErrors.CodeInvalidCredentials,
	}
	securityTokenOverrides = map[int]dErrors.Code{
		http.StatusBadRequest:          dErrors.CodeIncorrectPassword,
		http.StatusUnprocessableEntity: dErrors.CodeIncorrectPassword,
	}
)

func credentialsForm(email, password string) url.Values {
	return url.Values{"username": {email}, "password": {password}}
}

// Login exchanges credentials for an access/refresh token pair.
func (c *Client) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	var resp models.TokenResponse
	err := c.do(ctx, call{
		endpoint:  "auth.login",
		method:    http.MethodPost,
		path:      "/auth/login",
		form:      credentialsForm(email, password),
		out:       &resp,
		overrides: loginOverrides,
	})
	if err != nil {
		return models.TokenPair{}, err
	}
	return resp.ToModel(), nil
}

// Activate re-enables a deactivated account.
func (c *Client) Activate(ctx context.Context, email, password string) error {
	return c.do(ctx, call{
		endpoint:  "auth.activate",
		method:    http.MethodPost,
		path:      "/auth/activate",
		form:      credentialsForm(email, password),
		overrides: activateOverrides,
	})
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	var resp models.UserResponse
	err := c.do(ctx, call{
		endpoint: "auth.register",
		method:   http.MethodPost,
		path:     "/auth/register",
		body:     req,
		out:      &resp,
	})
	if err != nil {
		return nil, err
	}
	return resp.ToModel(), nil
}

// RefreshToken mints a new token pair from a refresh token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	var resp models.TokenResponse
	err := c.do(ctx, call{
		endpoint: "auth.refresh",
		method:   http.MethodGet,
		path:     "/auth/refresh-token",
		bearer:   refreshToken,
		out:      &resp,
	})
	if err != nil {
		return models.TokenPair{}, err
	}
	return resp.ToModel(), nil
}

// Me returns the identity behind accessToken.
func (c *Client) Me(ctx context.Context, accessToken string) (*models.User, error) {
	var resp models.UserResponse
	err := c.do(ctx, call{
		endpoint: "auth.me",
		method:   http.MethodGet,
		path:     "/auth/me",
		bearer:   accessToken,
		out:      &resp,
	})
	if err != nil {
		return nil, err
	}
	return resp.ToModel(), nil
}

// ChangeDisplayName updates the current user's display name.
func (c *Client) ChangeDisplayName(ctx context.Context, accessToken string, req *models.DisplayNameRequest) (*models.User, error) {
	var resp models.UserResponse
	err := c.do(ctx, call{
		endpoint: "auth.display_name",
		method:   http.MethodPatch,
		path:     "/auth/display-name",
		bearer:   accessToken,
		body:     req,
		out:      &resp,
	})
	if err != nil {
		return nil, err
	}
	return resp.ToModel(), nil
}

// SecurityToken re-verifies the current password and returns a short-lived
// token authorizing one sensitive call.
func (c *Client) SecurityToken(ctx context.Context, accessToken, password string) (string, error) {
	var resp models.SecurityTokenResponse
	err := c.do(ctx, call{
		endpoint:  "auth.security_token",
		method:    http.MethodPost,
		path:      "/auth/security-token",
		bearer:    accessToken,
		body:      &models.PasswordRequest{Password: password},
		out:       &resp,
		overrides: securityTokenOverrides,
	})
	if err != nil {
		return "", err
	}
	if resp.SecurityToken == "" {
		return "", dErrors.New(dErrors.CodeInternal, "server returned an empty security token")
	}
	return resp.SecurityToken, nil
}

// ChangePassword sets a new password, authorized by a security token.
func (c *Client) ChangePassword(ctx context.Context, securityToken, newPassword string) error {
	return c.do(ctx, call{
		endpoint: "auth.change_password",
		method:   http.MethodPatch,
		path:     "/auth/change-password",
		bearer:   securityToken,
		body:     &models.PasswordRequest{Password: newPassword},
	})
}

// Deactivate disables the account, authorized by a security token.
func (c *Client) Deactivate(ctx context.Context, securityToken string) error {
	return c.do(ctx, call{
		endpoint: "auth.deactivate",
		method:   http.MethodPost,
		path:     "/auth/deactivate",
		bearer:   securityToken,
	})
}

// Logout ends the server-side session for accessToken.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.do(ctx, call{
		endpoint: "auth.logout",
		method:   http.MethodPost,
		path:     "/auth/logout",
		bearer:   accessToken,
	})
}
