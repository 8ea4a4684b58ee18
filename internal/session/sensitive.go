package session

import (
	"context"

	"addressbook/internal/cache"
	"addressbook/internal/session/models"
	"addressbook/internal/session/tokenstore"
	dErrors "addressbook/pkg/domain-errors"
)

// Sensitive mutations (password change, deactivation) need a security token
// minted by VerifyPassword. The token is held in the token store as the one
// pending sensitive action and is consumed by the next sensitive call.

// VerifyPassword re-confirms the current password and stores the resulting
// security token. A wrong password is reported as CodeIncorrectPassword and
// leaves the session as it was. If the backend rejects the access token
// itself, the identity is invalidated, the session re-bootstrapped, and
// CodeInvalidToken returned.
func (c *Controller) VerifyPassword(ctx context.Context, password string) error {
	req := &models.PasswordRequest{Password: password}
	if err := req.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	token, err := c.accessTokenLocked(ctx)
	if err != nil {
		return err
	}
	securityToken, err := c.api.SecurityToken(ctx, token, req.Password)
	if err != nil {
		if isTokenRejection(err) {
			return c.recoverFromRejection(ctx, err)
		}
		return err
	}
	if err := c.tokens.Save(ctx, tokenstore.Tokens{SecurityToken: securityToken}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store security token")
	}
	return nil
}

// HasPendingSecurityToken reports whether a verified sensitive action is
// waiting to be used.
func (c *Controller) HasPendingSecurityToken(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tokens, err := c.tokens.Load(ctx)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tokens")
	}
	return tokens.SecurityToken != "", nil
}

// ChangePassword sets a new password using the pending security token.
func (c *Controller) ChangePassword(ctx context.Context, newPassword string) error {
	req := &models.PasswordRequest{Password: newPassword}
	if err := req.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	securityToken, err := c.consumeSecurityToken(ctx)
	if err != nil {
		return err
	}
	err = c.api.ChangePassword(ctx, securityToken, req.Password)
	c.invalidateAll()
	if err != nil {
		return sensitiveCallError(err)
	}
	return nil
}

// Deactivate disables the account using the pending security token and
// de-authenticates the session on success.
func (c *Controller) Deactivate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	securityToken, err := c.consumeSecurityToken(ctx)
	if err != nil {
		return err
	}
	if err := c.api.Deactivate(ctx, securityToken); err != nil {
		c.invalidateAll()
		return sensitiveCallError(err)
	}
	c.deauthenticate(ctx)
	return nil
}

// consumeSecurityToken takes the pending security token out of the store so
// it can authorize exactly one call. No network call is made when none is
// pending.
func (c *Controller) consumeSecurityToken(ctx context.Context) (string, error) {
	tokens, err := c.tokens.Load(ctx)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tokens")
	}
	if tokens.SecurityToken == "" {
		return "", dErrors.New(dErrors.CodeMissingSecurityToken, "verify your password first")
	}
	securityToken := tokens.SecurityToken
	tokens.SecurityToken = ""
	if err := c.tokens.Replace(ctx, tokens); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume security token")
	}
	return securityToken, nil
}

func (c *Controller) recoverFromRejection(ctx context.Context, cause error) error {
	c.cache.Invalidate(cache.ResourceUser)
	if _, err := c.bootstrapLocked(ctx); err != nil {
		c.logger.InfoContext(ctx, "re-bootstrap after token rejection failed", "error", err)
	}
	return &dErrors.Error{Code: dErrors.CodeInvalidToken, Message: "session token was rejected", Err: cause}
}

func isTokenRejection(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeUnauthorized) || dErrors.HasCode(err, dErrors.CodeForbidden)
}

// sensitiveCallError reports an expired or rejected security token as
// CodeInvalidToken so callers know to verify the password again.
func sensitiveCallError(err error) error {
	if isTokenRejection(err) {
		return &dErrors.Error{Code: dErrors.CodeInvalidToken, Message: "verification expired, verify your password again", Err: err}
	}
	return err
}
