// Package tokenstore holds the session's access, refresh and security tokens.
//
// A Store is the single owner of token state. Dependents read through Load and
// observe changes through Subscribe instead of holding their own copies.
package tokenstore

import (
	"context"
	"sync"
)

// Tokens is the persisted credential set. Empty fields mean "not held".
type Tokens struct {
	AccessToken   string `json:"access_token,omitempty"`
	RefreshToken  string `json:"refresh_token,omitempty"`
	SecurityToken string `json:"security_token,omitempty"`
}

// IsZero reports whether no token is held.
func (t Tokens) IsZero() bool {
	return t == Tokens{}
}

// Merge returns t with every non-empty field of update applied.
func (t Tokens) Merge(update Tokens) Tokens {
	if update.AccessToken != "" {
		t.AccessToken = update.AccessToken
	}
	if update.RefreshToken != "" {
		t.RefreshToken = update.RefreshToken
	}
	if update.SecurityToken != "" {
		t.SecurityToken = update.SecurityToken
	}
	return t
}

// Store persists tokens and notifies subscribers after every successful write.
type Store interface {
	Load(ctx context.Context) (Tokens, error)
	// Save merges the non-empty fields of update into the stored tokens.
	Save(ctx context.Context, update Tokens) error
	// Replace overwrites the stored tokens, including clearing fields.
	Replace(ctx context.Context, tokens Tokens) error
	Clear(ctx context.Context) error
	// Subscribe registers fn to receive the stored tokens after each write.
	// The returned func removes the subscription.
	Subscribe(fn func(Tokens)) (cancel func())
}

// subscribers is the notification fan-out shared by the Store implementations.
// Callbacks run synchronously on the writer's goroutine, after the write lock
// has been released.
type subscribers struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(Tokens)
}

func (s *subscribers) add(fn func(Tokens)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func(Tokens))
	}
	id := s.nextID
	s.nextID++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.fns, id)
	}
}

func (s *subscribers) notify(t Tokens) {
	s.mu.Lock()
	fns := make([]func(Tokens), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(t)
	}
}
