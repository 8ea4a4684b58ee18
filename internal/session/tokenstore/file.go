package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	dErrors "addressbook/pkg/domain-errors"
)

const tokenFileName = "tokens.json"

// FileStore persists tokens as JSON under a directory scoped to one backend
// host, so sessions against different servers never share credentials.
type FileStore struct {
	mu   sync.Mutex
	path string
	subs subscribers
}

// NewFileStore returns a store writing to <dir>/<host>/tokens.json, where host
// is taken from baseURL.
func NewFileStore(dir, baseURL string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "token directory is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "api url must include a host")
	}
	return &FileStore{path: filepath.Join(dir, scopeDir(u.Host), tokenFileName)}, nil
}

// scopeDir turns host[:port] into a single safe path element.
func scopeDir(host string) string {
	return strings.NewReplacer(":", "_", "/", "_", "\\", "_").Replace(strings.ToLower(host))
}

// Path returns the token file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(_ context.Context) (Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

func (s *FileStore) readLocked() (Tokens, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Tokens{}, nil
	}
	if err != nil {
		return Tokens{}, dErrors.Wrap(err, dErrors.CodeInternal, "read token file")
	}
	var t Tokens
	if err := json.Unmarshal(b, &t); err != nil {
		return Tokens{}, dErrors.Wrap(err, dErrors.CodeInternal, "decode token file")
	}
	return t, nil
}

// writeLocked replaces the file atomically with mode 0600.
func (s *FileStore) writeLocked(t Tokens) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "create token directory")
	}
	if t.IsZero() {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "remove token file")
		}
		return nil
	}
	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode token file")
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), tokenFileName+".*")
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "create token file")
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return dErrors.Wrap(err, dErrors.CodeInternal, "chmod token file")
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return dErrors.Wrap(err, dErrors.CodeInternal, "write token file")
	}
	if err := tmp.Close(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "close token file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "replace token file")
	}
	return nil
}

func (s *FileStore) Save(_ context.Context, update Tokens) error {
	s.mu.Lock()
	current, err := s.readLocked()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	current = current.Merge(update)
	if err := s.writeLocked(current); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	s.subs.notify(current)
	return nil
}

func (s *FileStore) Replace(_ context.Context, tokens Tokens) error {
	s.mu.Lock()
	if err := s.writeLocked(tokens); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	s.subs.notify(tokens)
	return nil
}

func (s *FileStore) Clear(ctx context.Context) error {
	return s.Replace(ctx, Tokens{})
}

func (s *FileStore) Subscribe(fn func(Tokens)) func() {
	return s.subs.add(fn)
}

var _ Store = (*FileStore)(nil)
