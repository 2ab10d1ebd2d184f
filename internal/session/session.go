// Package session holds the signed-in user for the terminal client.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/nutriscan/nutriscan-go/internal/localstore"
	"github.com/nutriscan/nutriscan-go/internal/model"
)

// Persisted keys.
const (
	UserKey  = "nutriscan_user"
	TokenKey = "nutriscan_token"
)

var ErrNoProvider = errors.New("session: no store in context")

// Store is the single source of truth for who is signed in. Storage
// failures are logged and never returned.
type Store struct {
	mu      sync.RWMutex
	kv      localstore.Store
	logger  *slog.Logger
	user    *model.UserResponse
	token   string
	loading bool
}

// New hydrates a Store from kv. An unreadable or malformed record is
// logged and treated as signed out.
func New(kv localstore.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{kv: kv, logger: logger, loading: true}
	s.hydrate()
	return s
}

func (s *Store) hydrate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.loading = false }()

	var user model.UserResponse
	ok, err := localstore.GetJSON(s.kv, UserKey, &user)
	if err != nil {
		s.logger.Warn("failed to load user from storage", "error", err)
		return
	}
	if !ok {
		return
	}
	if user.ID <= 0 {
		s.logger.Warn("ignoring stored user without an id")
		return
	}
	s.user = &user

	token, _, err := s.kv.Get(TokenKey)
	if err != nil {
		s.logger.Warn("failed to load token from storage", "error", err)
		return
	}
	s.token = token
}

// User returns the signed-in user.
func (s *Store) User() (model.UserResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.UserResponse{}, false
	}
	return *s.user, true
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// IsLoading is true only while New is hydrating.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Token returns the bearer token, or "" when there is none.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Login replaces the current user and persists it.
func (s *Store) Login(user model.UserResponse) {
	s.setUser(user, "failed to save user to storage")
}

// UpdateUser replaces the current user after a profile edit.
func (s *Store) UpdateUser(user model.UserResponse) {
	s.setUser(user, "failed to update user in storage")
}

func (s *Store) setUser(user model.UserResponse, failMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	if err := localstore.SetJSON(s.kv, UserKey, user); err != nil {
		s.logger.Warn(failMsg, "user_id", user.ID, "error", err)
	}
}

// SetToken stores the bearer token issued at login. An empty token clears it.
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token

	var err error
	if token == "" {
		err = s.kv.Remove(TokenKey)
	} else {
		err = s.kv.Set(TokenKey, token)
	}
	if err != nil {
		s.logger.Warn("failed to save token to storage", "error", err)
	}
}

// Logout clears the user and token from memory and storage.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""

	if err := s.kv.Remove(UserKey); err != nil {
		s.logger.Warn("failed to remove user from storage", "error", err)
	}
	if err := s.kv.Remove(TokenKey); err != nil {
		s.logger.Warn("failed to remove token from storage", "error", err)
	}
}

type contextKey struct{}

// WithStore returns a context carrying s.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the Store installed by WithStore.
func FromContext(ctx context.Context) (*Store, error) {
	s, ok := ctx.Value(contextKey{}).(*Store)
	if !ok || s == nil {
		return nil, ErrNoProvider
	}
	return s, nil
}

// MustFromContext is FromContext for callers that run inside a scope by
// construction. It panics outside one.
func MustFromContext(ctx context.Context) *Store {
	s, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return s
}
