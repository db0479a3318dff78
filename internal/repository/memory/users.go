package memory

import (
	"context"
	"sync"
	"time"

	"github.com/NordCoder/goodcookie/internal/domain/user"
)

var _ user.Repo = (*UserRepo)(nil)

// UserRepo keeps identities in maps guarded by a single RWMutex. Username and
// email uniqueness is enforced inside the write lock.
type UserRepo struct {
	mu         sync.RWMutex
	nextID     int64
	byID       map[int64]user.User
	byUsername map[string]int64
	byEmail    map[string]int64
	now        func() time.Time
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:       make(map[int64]user.User),
		byUsername: make(map[string]int64),
		byEmail:    make(map[string]int64),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *UserRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[u.Username]; ok {
		return &user.ConflictError{Field: user.FieldUsername}
	}
	if _, ok := r.byEmail[u.Email]; ok {
		return &user.ConflictError{Field: user.FieldEmail}
	}
	r.nextID++
	u.ID = r.nextID
	now := r.now()
	u.CreatedAt, u.UpdatedAt = now, now

	r.byID[u.ID] = *u
	r.byUsername[u.Username] = u.ID
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *UserRepo) FindByID(_ context.Context, id int64) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(id)
}

func (r *UserRepo) FindByUsername(_ context.Context, username string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[username]
	if !ok {
		return nil, user.ErrNotFound
	}
	return r.get(id)
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return r.get(id)
}

func (r *UserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byUsername[username]
	return ok, nil
}

func (r *UserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *UserRepo) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[u.ID]
	if !ok {
		return user.ErrNotFound
	}
	if u.Email != cur.Email {
		if _, taken := r.byEmail[u.Email]; taken {
			return &user.ConflictError{Field: user.FieldEmail}
		}
		delete(r.byEmail, cur.Email)
		r.byEmail[u.Email] = u.ID
	}
	cur.Email = u.Email
	cur.PasswordHash = u.PasswordHash
	cur.UpdatedAt = r.now()
	r.byID[u.ID] = cur
	*u = cur
	return nil
}

func (r *UserRepo) get(id int64) (*user.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}
