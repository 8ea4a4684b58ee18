package session

import (
	"context"

	"addressbook/internal/cache"
	"addressbook/internal/platform/tracer"
	"addressbook/internal/session/models"
	"addressbook/internal/session/tokenstore"
	dErrors "addressbook/pkg/domain-errors"
)

// invalidateAll marks every dependent read stale after a mutation.
func (c *Controller) invalidateAll() {
	c.cache.Invalidate(cache.ResourceUser)
	c.cache.Invalidate(cache.ResourceContacts)
}

// Login exchanges credentials for tokens, stores them and confirms the
// identity with the new access token.
func (c *Controller) Login(ctx context.Context, email, password string) (*models.User, error) {
	req := &models.LoginRequest{Email: email, Password: password}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	pair, err := c.api.Login(ctx, req.Email, req.Password)
	if err != nil {
		c.logger.InfoContext(ctx, "login failed",
			"identity_hash", tracer.HashIdentifier(req.Email),
			"error", err,
		)
		return nil, err
	}

	// A new login starts a new identity: drop whatever the previous one cached.
	c.setUser(nil)
	c.cache.Purge()
	if err := c.tokens.Replace(ctx, tokenstore.Tokens{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store tokens")
	}
	c.invalidateAll()
	return c.bootstrapLocked(ctx)
}

// Register creates an account. It does not log in.
func (c *Controller) Register(ctx context.Context, email, password, displayName string) (*models.User, error) {
	req := &models.RegisterRequest{Email: email, Password: password, DisplayName: displayName}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	user, err := c.api.Register(ctx, req)
	c.invalidateAll()
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Activate re-enables a deactivated account. The caller logs in afterwards.
func (c *Controller) Activate(ctx context.Context, email, password string) error {
	req := &models.LoginRequest{Email: email, Password: password}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}
	err := c.api.Activate(ctx, req.Email, req.Password)
	c.invalidateAll()
	return err
}

// Logout ends the session. The server call is best-effort: tokens are
// cleared and logout is notified whatever it returns.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tokens, err := c.tokens.Load(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to load tokens for logout", "error", err)
	}
	if tokens.AccessToken != "" {
		if err := c.api.Logout(ctx, tokens.AccessToken); err != nil {
			c.logger.WarnContext(ctx, "server logout failed; clearing local session anyway", "error", err)
		}
	}
	c.deauthenticate(ctx)
	return nil
}

// ChangeDisplayName updates the display name. The cached identity is
// invalidated whether or not the call succeeds. A rejected access token
// re-bootstraps the session and is reported as CodeInvalidToken.
func (c *Controller) ChangeDisplayName(ctx context.Context, displayName string) (*models.User, error) {
	req := &models.DisplayNameRequest{DisplayName: displayName}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	token, err := c.accessTokenLocked(ctx)
	if err != nil {
		return nil, err
	}
	user, err := c.api.ChangeDisplayName(ctx, token, req)
	c.cache.Invalidate(cache.ResourceUser)
	if err != nil {
		if isTokenRejection(err) {
			return nil, c.recoverFromRejection(ctx, err)
		}
		return nil, err
	}
	c.setUser(user)
	return user, nil
}
