package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/NordCoder/goodcookie/internal/domain/auth"
)

var ErrDuplicateToken = errors.New("token already stored")

var (
	_ auth.RefreshTokenRepo = (*RefreshTokenRepo)(nil)
	_ auth.ResetTokenRepo   = (*ResetTokenRepo)(nil)
)

type RefreshTokenRepo struct {
	store[auth.RefreshToken]
}

func NewRefreshTokenRepo() *RefreshTokenRepo {
	return &RefreshTokenRepo{store: newStore(func(t *auth.RefreshToken) string { return t.TokenHash })}
}

func (r *RefreshTokenRepo) Create(_ context.Context, t *auth.RefreshToken) error {
	return r.create(t, func(id int64) { t.ID = id })
}

func (r *RefreshTokenRepo) FindByToken(_ context.Context, tokenHash string) (*auth.RefreshToken, error) {
	return r.find(tokenHash)
}

func (r *RefreshTokenRepo) DeleteByToken(_ context.Context, tokenHash string) error {
	r.delete(tokenHash)
	return nil
}

type ResetTokenRepo struct {
	store[auth.ResetToken]
}

func NewResetTokenRepo() *ResetTokenRepo {
	return &ResetTokenRepo{store: newStore(func(t *auth.ResetToken) string { return t.TokenHash })}
}

func (r *ResetTokenRepo) Create(_ context.Context, t *auth.ResetToken) error {
	return r.create(t, func(id int64) { t.ID = id })
}

func (r *ResetTokenRepo) FindByToken(_ context.Context, tokenHash string) (*auth.ResetToken, error) {
	return r.find(tokenHash)
}

func (r *ResetTokenRepo) TakeByToken(_ context.Context, tokenHash string) (*auth.ResetToken, error) {
	return r.take(tokenHash)
}

func (r *ResetTokenRepo) DeleteByToken(_ context.Context, tokenHash string) error {
	r.delete(tokenHash)
	return nil
}

// Len is used by tests to assert that records were removed.
func (r *ResetTokenRepo) Len() int { return r.size() }

func (r *RefreshTokenRepo) Len() int { return r.size() }

type store[T any] struct {
	mu     sync.RWMutex
	nextID int64
	items  map[string]T
	key    func(*T) string
}

func newStore[T any](key func(*T) string) store[T] {
	return store[T]{items: make(map[string]T), key: key}
}

func (s *store[T]) create(t *T, setID func(int64)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.key(t)
	if _, ok := s.items[k]; ok {
		return ErrDuplicateToken
	}
	s.nextID++
	setID(s.nextID)
	s.items[k] = *t
	return nil
}

func (s *store[T]) find(k string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.items[k]
	if !ok {
		return nil, auth.ErrTokenNotFound
	}
	return &t, nil
}

// take removes and returns k under one lock.
func (s *store[T]) take(k string) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.items[k]
	if !ok {
		return nil, auth.ErrTokenNotFound
	}
	delete(s.items, k)
	return &t, nil
}

func (s *store[T]) delete(k string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, k)
}

func (s *store[T]) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
