package mockapi

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"addressbook/internal/platform/middleware"
	dErrors "addressbook/pkg/domain-errors"
)

// sessionTable tracks the one live token pair per account. Logging in again
// replaces it; logging out removes it.
type sessionTable struct {
	mu   sync.Mutex
	live map[uuid.UUID]session
}

type session struct {
	accessJTI  string
	refreshJTI string
}

func newSessionTable() *sessionTable {
	return &sessionTable{live: make(map[uuid.UUID]session)}
}

func (t *sessionTable) set(userID uuid.UUID, accessJTI, refreshJTI string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live[userID] = session{accessJTI: accessJTI, refreshJTI: refreshJTI}
}

func (t *sessionTable) end(userID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.live, userID)
}

func (t *sessionTable) isLive(userID uuid.UUID, kind, jti string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.live[userID]
	if !ok {
		return false
	}
	switch kind {
	case KindAccess:
		return s.accessJTI == jti
	case KindRefresh:
		return s.refreshJTI == jti
	}
	return true
}

// sessionValidator checks signature and expiry with the issuer, then that an
// access or refresh token belongs to the account's live session.
type sessionValidator struct {
	issuer   *TokenIssuer
	sessions *sessionTable
}

func (v sessionValidator) ValidateToken(_ context.Context, token, kind string) (*middleware.Claims, error) {
	claims, err := v.issuer.Parse(token, kind)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, rejected(kind, err)
	}
	if !v.sessions.isLive(userID, kind, claims.ID) {
		return nil, rejected(kind, dErrors.New(dErrors.CodeUnauthorized, "session ended"))
	}
	return &middleware.Claims{UserID: claims.Subject, JTI: claims.ID}, nil
}
