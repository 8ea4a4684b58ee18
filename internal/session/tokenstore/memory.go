package tokenstore

import (
	"context"
	"sync"
)

// MemoryStore keeps tokens for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens Tokens
	subs   subscribers
}

// NewMemoryStore creates a store seeded with initial.
func NewMemoryStore(initial Tokens) *MemoryStore {
	return &MemoryStore{tokens: initial}
}

func (s *MemoryStore) Load(_ context.Context) (Tokens, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens, nil
}

func (s *MemoryStore) Save(_ context.Context, update Tokens) error {
	s.mu.Lock()
	s.tokens = s.tokens.Merge(update)
	current := s.tokens
	s.mu.Unlock()
	s.subs.notify(current)
	return nil
}

func (s *MemoryStore) Replace(_ context.Context, tokens Tokens) error {
	s.mu.Lock()
	s.tokens = tokens
	s.mu.Unlock()
	s.subs.notify(tokens)
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	return s.Replace(ctx, Tokens{})
}

func (s *MemoryStore) Subscribe(fn func(Tokens)) func() {
	return s.subs.add(fn)
}

var _ Store = (*MemoryStore)(nil)
