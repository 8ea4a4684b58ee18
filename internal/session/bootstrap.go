package session

import (
	"context"

	"addressbook/internal/cache"
	"addressbook/internal/platform/config"
	"addressbook/internal/platform/tracer"
	"addressbook/internal/session/models"
	"addressbook/internal/session/tokenstore"
	dErrors "addressbook/pkg/domain-errors"
)

// Bootstrap confirms the identity behind the stored tokens.
//
//   - no tokens: the session is unauthenticated; no request is made
//   - refresh token only: one refresh, then one identity fetch
//   - access token: identity fetch; if rejected, one refresh and one retry
//
// Any unrecoverable failure clears the tokens and notifies logout. When ctx
// ends mid-flow the tokens and state are left as they were and ctx's error is
// returned.
func (c *Controller) Bootstrap(ctx context.Context) (*models.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bootstrapLocked(ctx)
}

func (c *Controller) bootstrapLocked(ctx context.Context) (user *models.User, err error) {
	prev := c.State()
	ctx, span := c.tracer.Start(ctx, tracer.SpanBootstrap)
	defer func() {
		span.SetAttributes(tracer.String(tracer.AttrState, string(c.State())))
		span.End(err)
	}()

	tokens, err := c.tokens.Load(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tokens")
	}
	if tokens.AccessToken == "" && tokens.RefreshToken == "" {
		c.deauthenticate(ctx)
		return nil, dErrors.New(dErrors.CodeNotAuthenticated, "not logged in")
	}

	refreshed := false
	if tokens.AccessToken == "" {
		if tokens, err = c.refreshLocked(ctx, tokens.RefreshToken); err != nil {
			return nil, c.abandoned(ctx, prev, err)
		}
		refreshed = true
	}

	c.setState(ctx, StateBootstrapping)
	user, err = c.api.Me(ctx, tokens.AccessToken)
	if err == nil {
		return c.authenticated(ctx, user), nil
	}
	if ctx.Err() != nil {
		return nil, c.abandoned(ctx, prev, err)
	}
	if c.keepOnTransportFailure(err) {
		return nil, c.unreachable(ctx, err)
	}
	c.logger.InfoContext(ctx, "identity check rejected", "error", err)

	if refreshed || tokens.RefreshToken == "" {
		c.deauthenticate(ctx)
		return nil, notAuthenticated(err)
	}
	if tokens, err = c.refreshLocked(ctx, tokens.RefreshToken); err != nil {
		return nil, c.abandoned(ctx, prev, err)
	}

	c.setState(ctx, StateBootstrapping)
	user, err = c.api.Me(ctx, tokens.AccessToken)
	if err != nil {
		if ctx.Err() != nil {
			return nil, c.abandoned(ctx, prev, err)
		}
		if c.keepOnTransportFailure(err) {
			return nil, c.unreachable(ctx, err)
		}
		c.deauthenticate(ctx)
		return nil, notAuthenticated(err)
	}
	return c.authenticated(ctx, user), nil
}

// refreshLocked exchanges refreshToken for a new pair and stores it. On
// failure the session is de-authenticated, unless the backend was unreachable
// and the policy says to keep the tokens, or ctx ended first.
func (c *Controller) refreshLocked(ctx context.Context, refreshToken string) (_ tokenstore.Tokens, err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanTokenRefresh)
	defer func() { span.End(err) }()

	c.setState(ctx, StateRefreshing)
	pair, err := c.api.RefreshToken(ctx, refreshToken)
	if err != nil && ctx.Err() != nil {
		return tokenstore.Tokens{}, ctx.Err()
	}
	c.recordRefresh(err)
	if err != nil {
		if c.keepOnTransportFailure(err) {
			return tokenstore.Tokens{}, c.unreachable(ctx, err)
		}
		c.logger.InfoContext(ctx, "token refresh failed", "error", err)
		c.deauthenticate(ctx)
		return tokenstore.Tokens{}, notAuthenticated(err)
	}

	if err := c.tokens.Save(ctx, tokenstore.Tokens{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}); err != nil {
		return tokenstore.Tokens{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store refreshed tokens")
	}
	return c.tokens.Load(ctx)
}

func (c *Controller) authenticated(ctx context.Context, user *models.User) *models.User {
	hadUser := c.setUser(user)
	c.cache.Set(userKey, user)
	c.setState(ctx, StateAuthenticated)
	if !hadUser && c.onLogin != nil {
		c.onLogin(user)
	}
	return user
}

// deauthenticate clears every token and cached read. Logout is notified only
// when a session ends: the state was not already unauthenticated or there
// were tokens to clear.
func (c *Controller) deauthenticate(ctx context.Context) {
	ended := c.State() != StateUnauthenticated
	if stored, err := c.tokens.Load(ctx); err == nil && !stored.IsZero() {
		ended = true
	}
	if err := c.tokens.Clear(ctx); err != nil {
		c.logger.ErrorContext(ctx, "failed to clear tokens", "error", err)
	}
	c.setUser(nil)
	c.cache.Purge()
	c.setState(ctx, StateUnauthenticated)
	if ended && c.onLogout != nil {
		c.onLogout()
	}
}

// abandoned returns err unchanged unless ctx has ended, in which case the
// state goes back to prev and ctx's error is returned. Tokens are not touched.
func (c *Controller) abandoned(ctx context.Context, prev State, err error) error {
	ctxErr := ctx.Err()
	if ctxErr == nil {
		return err
	}
	c.setState(ctx, prev)
	c.logger.InfoContext(ctx, "session flow interrupted by caller", "error", ctxErr)
	return ctxErr
}

func (c *Controller) keepOnTransportFailure(err error) bool {
	return c.transportPolicy == config.PolicyRetryLater && dErrors.HasCode(err, dErrors.CodeTransport)
}

func (c *Controller) unreachable(ctx context.Context, err error) error {
	c.logger.WarnContext(ctx, "backend unreachable; keeping tokens", "error", err)
	c.setState(ctx, StateUnreachable)
	return err
}

// AccessToken returns a usable access token, bootstrapping first when the
// session is not authenticated.
func (c *Controller) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessTokenLocked(ctx)
}

func (c *Controller) accessTokenLocked(ctx context.Context) (string, error) {
	if c.State() != StateAuthenticated {
		if _, err := c.bootstrapLocked(ctx); err != nil {
			return "", err
		}
	}
	tokens, err := c.tokens.Load(ctx)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tokens")
	}
	if tokens.AccessToken == "" {
		return "", dErrors.New(dErrors.CodeNotAuthenticated, "not logged in")
	}
	return tokens.AccessToken, nil
}

// HandleRejectedToken is called by dependents when the backend answered 401
// for rejected. It invalidates the identity and re-runs the bootstrap, which
// refreshes the access token if possible. When another caller has already
// replaced rejected, nothing is done.
func (c *Controller) HandleRejectedToken(ctx context.Context, rejected string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tokens, err := c.tokens.Load(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tokens")
	}
	if tokens.AccessToken != "" && tokens.AccessToken != rejected {
		return nil
	}
	c.cache.Invalidate(cache.ResourceUser)
	_, err = c.bootstrapLocked(ctx)
	return err
}

func notAuthenticated(cause error) error {
	return &dErrors.Error{Code: dErrors.CodeNotAuthenticated, Message: "session expired, please log in again", Err: cause}
}
