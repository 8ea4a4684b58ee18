// Package session owns the client's authentication state.
//
// The Controller is the only writer of the token store. It bootstraps the
// current identity from stored tokens, refreshes the access token when it is
// missing or rejected, and runs every account mutation with its cache side
// effects. Dependents obtain credentials through AccessToken and report a
// rejected token through HandleRejectedToken.
package session

import (
	"context"
	"log/slog"
	"sync"

	"addressbook/internal/cache"
	"addressbook/internal/platform/config"
	"addressbook/internal/platform/metrics"
	"addressbook/internal/platform/tracer"
	"addressbook/internal/session/models"
	"addressbook/internal/session/tokenstore"
)

// AuthAPI is the subset of the backend client used by the controller.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (models.TokenPair, error)
	Activate(ctx context.Context, email, password string) error
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (models.TokenPair, error)
	Me(ctx context.Context, accessToken string) (*models.User, error)
	ChangeDisplayName(ctx context.Context, accessToken string, req *models.DisplayNameRequest) (*models.User, error)
	SecurityToken(ctx context.Context, accessToken, password string) (string, error)
	ChangePassword(ctx context.Context, securityToken, newPassword string) error
	Deactivate(ctx context.Context, securityToken string) error
	Logout(ctx context.Context, accessToken string) error
}

// State is the controller's position in the session lifecycle.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateBootstrapping   State = "bootstrapping"
	StateRefreshing      State = "refreshing"
	StateAuthenticated   State = "authenticated"
	// StateUnreachable means tokens are kept but the backend could not be
	// reached; only entered under the retry_later transport policy.
	StateUnreachable State = "unreachable"
)

var userKey = cache.Key{Resource: cache.ResourceUser}

// Controller manages tokens and identity for one backend.
type Controller struct {
	api    AuthAPI
	tokens tokenstore.Store
	cache  *cache.Cache

	logger          *slog.Logger
	metrics         *metrics.Metrics
	tracer          tracer.Tracer
	onLogin         func(*models.User)
	onLogout        func()
	transportPolicy string

	// mu serializes operations that read or write the token store.
	mu sync.Mutex

	stateMu sync.RWMutex
	state   State
	user    *models.User

	subMu       sync.Mutex
	lastAccess  string
	unsubscribe func()
}

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Controller) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithOnLogin registers fn to run when a session becomes authenticated
// without a previously known user.
func WithOnLogin(fn func(*models.User)) Option {
	return func(c *Controller) {
		c.onLogin = fn
	}
}

// WithOnLogout registers fn to run every time the session becomes
// unauthenticated.
func WithOnLogout(fn func()) Option {
	return func(c *Controller) {
		c.onLogout = fn
	}
}

// WithTransportPolicy selects how an unreachable backend is treated during
// identity checks: config.PolicyDeauthenticate (default) handles it like a
// rejected token; config.PolicyRetryLater keeps the tokens and reports
// StateUnreachable.
func WithTransportPolicy(policy string) Option {
	return func(c *Controller) {
		if policy == config.PolicyRetryLater || policy == config.PolicyDeauthenticate {
			c.transportPolicy = policy
		}
	}
}

// New creates a Controller and subscribes it to token changes. A nil cache
// gets a private one.
func New(api AuthAPI, tokens tokenstore.Store, c *cache.Cache, opts ...Option) *Controller {
	if c == nil {
		c = cache.New()
	}
	ctrl := &Controller{
		api:             api,
		tokens:          tokens,
		cache:           c,
		logger:          slog.Default(),
		tracer:          tracer.NewNoop(),
		transportPolicy: config.PolicyDeauthenticate,
		state:           StateUnauthenticated,
	}
	for _, opt := range opts {
		opt(ctrl)
	}
	if current, err := tokens.Load(context.Background()); err == nil {
		ctrl.lastAccess = current.AccessToken
	}
	ctrl.unsubscribe = tokens.Subscribe(ctrl.onTokensChanged)
	return ctrl
}

// Close stops observing the token store.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

// onTokensChanged invalidates the cached identity whenever the access token
// changes, so the next CurrentUser call bootstraps against the new token.
func (c *Controller) onTokensChanged(t tokenstore.Tokens) {
	c.subMu.Lock()
	changed := t.AccessToken != c.lastAccess
	c.lastAccess = t.AccessToken
	c.subMu.Unlock()
	if changed {
		c.cache.Invalidate(cache.ResourceUser)
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// User returns the confirmed identity, or nil when not authenticated.
func (c *Controller) User() *models.User {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.user
}

// Cache returns the cache shared with dependents.
func (c *Controller) Cache() *cache.Cache {
	return c.cache
}

// CurrentUser returns the cached identity, bootstrapping on a miss.
func (c *Controller) CurrentUser(ctx context.Context) (*models.User, error) {
	return cache.Fetch(ctx, c.cache, userKey, c.Bootstrap)
}
