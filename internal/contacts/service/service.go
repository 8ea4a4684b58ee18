// Package service provides the contacts operations a front end drives: cached
// listing and mutations that mark cached pages stale.
package service

import (
	"context"
	"log/slog"
	"strconv"

	"addressbook/internal/cache"
	"addressbook/internal/contacts/models"
	"addressbook/internal/contacts/query"
	dErrors "addressbook/pkg/domain-errors"
)

// ContactsAPI is the subset of the backend client used by the service.
type ContactsAPI interface {
	ListContacts(ctx context.Context, accessToken string, opts models.QueryOptions) (models.ContactsPage, error)
	GetContact(ctx context.Context, accessToken string, id int64) (models.Contact, error)
	CreateContact(ctx context.Context, accessToken string, req *models.ContactRequest) (models.Contact, error)
	UpdateContact(ctx context.Context, accessToken string, id int64, req *models.ContactRequest) (models.Contact, error)
	DeleteContact(ctx context.Context, accessToken string, id int64) ([]models.Contact, error)
	DeleteContacts(ctx context.Context, accessToken string, ids []int64) ([]models.Contact, error)
}

// Session supplies access tokens and recovers from a rejected one.
type Session interface {
	AccessToken(ctx context.Context) (string, error)
	HandleRejectedToken(ctx context.Context, rejected string) error
}

type Option func(*Service)

// Service reads and mutates contacts on behalf of the current session.
type Service struct {
	api     ContactsAPI
	session Session
	cache   *cache.Cache
	logger  *slog.Logger
}

// New creates a Service. c should be the cache shared with the session
// controller so a logout purges cached pages too.
func New(api ContactsAPI, session Session, c *cache.Cache, opts ...Option) *Service {
	if c == nil {
		c = cache.New()
	}
	svc := &Service{
		api:     api,
		session: session,
		cache:   c,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithLogger sets the logger instance for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// ListKey is the cache key for the page described by opts.
func ListKey(opts models.QueryOptions) cache.Key {
	return cache.Key{Resource: cache.ResourceContacts, Params: query.Encode(opts).Encode()}
}

func contactKey(id int64) cache.Key {
	return cache.Key{Resource: cache.ResourceContacts, Params: "id=" + strconv.FormatInt(id, 10)}
}

// List returns the page described by opts, from the cache when the same
// options were read since the last mutation.
func (s *Service) List(ctx context.Context, opts models.QueryOptions) (models.ContactsPage, error) {
	return cache.Fetch(ctx, s.cache, ListKey(opts), func(ctx context.Context) (models.ContactsPage, error) {
		return withToken(ctx, s, func(token string) (models.ContactsPage, error) {
			return s.api.ListContacts(ctx, token, opts)
		})
	})
}

// Get returns a single contact.
func (s *Service) Get(ctx context.Context, id int64) (models.Contact, error) {
	if err := validateID(id); err != nil {
		return models.Contact{}, err
	}
	return cache.Fetch(ctx, s.cache, contactKey(id), func(ctx context.Context) (models.Contact, error) {
		return withToken(ctx, s, func(token string) (models.Contact, error) {
			return s.api.GetContact(ctx, token, id)
		})
	})
}

// Create validates contact and creates it. The returned contact carries the
// server-assigned id.
func (s *Service) Create(ctx context.Context, contact models.Contact) (models.Contact, error) {
	req := models.NewContactRequest(contact)
	req.Normalize()
	if err := req.Validate(); err != nil {
		return models.Contact{}, err
	}
	created, err := withToken(ctx, s, func(token string) (models.Contact, error) {
		return s.api.CreateContact(ctx, token, req)
	})
	s.invalidate(ctx, "create", err)
	if err != nil {
		return models.Contact{}, err
	}
	return created, nil
}

// Edit validates contact and saves it over the stored contact with the same id.
func (s *Service) Edit(ctx context.Context, contact models.Contact) (models.Contact, error) {
	if contact.IsNew() {
		return models.Contact{}, dErrors.New(dErrors.CodeValidation, "id is required")
	}
	if err := validateID(contact.ID); err != nil {
		return models.Contact{}, err
	}
	req := models.NewContactRequest(contact)
	req.Normalize()
	if err := req.Validate(); err != nil {
		return models.Contact{}, err
	}
	updated, err := withToken(ctx, s, func(token string) (models.Contact, error) {
		return s.api.UpdateContact(ctx, token, contact.ID, req)
	})
	s.invalidate(ctx, "edit", err)
	if err != nil {
		return models.Contact{}, err
	}
	return updated, nil
}

// Delete removes one contact and returns what the backend removed.
func (s *Service) Delete(ctx context.Context, id int64) ([]models.Contact, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	deleted, err := withToken(ctx, s, func(token string) ([]models.Contact, error) {
		return s.api.DeleteContact(ctx, token, id)
	})
	s.invalidate(ctx, "delete", err)
	return deleted, err
}

// DeleteMany removes every contact in ids with a single request.
func (s *Service) DeleteMany(ctx context.Context, ids []int64) ([]models.Contact, error) {
	if len(ids) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "ids is required")
	}
	for _, id := range ids {
		if err := validateID(id); err != nil {
			return nil, err
		}
	}
	deleted, err := withToken(ctx, s, func(token string) ([]models.Contact, error) {
		return s.api.DeleteContacts(ctx, token, ids)
	})
	s.invalidate(ctx, "delete_many", err)
	return deleted, err
}

// invalidate marks every cached contacts read stale. It runs after failed
// mutations as well, since the backend may have applied part of the change.
func (s *Service) invalidate(ctx context.Context, op string, err error) {
	s.cache.Invalidate(cache.ResourceContacts)
	if err != nil {
		s.logger.InfoContext(ctx, "contacts mutation failed", "op", op, "error", err)
	}
}

// withToken runs fn with the current access token. When the backend rejects
// the token, the session recovers once and fn is retried with the new token.
func withToken[T any](ctx context.Context, s *Service, fn func(token string) (T, error)) (T, error) {
	var zero T
	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return zero, err
	}
	v, err := fn(token)
	if err == nil || !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		return v, err
	}

	s.logger.DebugContext(ctx, "access token rejected; recovering session")
	if err := s.session.HandleRejectedToken(ctx, token); err != nil {
		return zero, err
	}
	token, err = s.session.AccessToken(ctx)
	if err != nil {
		return zero, err
	}
	return fn(token)
}

func validateID(id int64) error {
	if id <= 0 {
		return dErrors.New(dErrors.CodeValidation, "id must be greater than 0")
	}
	return nil
}
