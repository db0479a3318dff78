package auth

import (
	"errors"
	"slices"
	"time"
)

var ErrTokenNotFound = errors.New("token not found")

// RefreshToken is a stored renewal credential. Only the hash of the raw
// token is kept. A zero ExpiresAt means the credential never expires.
type RefreshToken struct {
	ID        int64
	UserID    int64
	Username  string
	TokenHash string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

type ResetToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Valid reports whether now is at or before the expiry instant.
func (t *ResetToken) Valid(now time.Time) bool {
	return !now.After(t.ExpiresAt)
}

type Authority string

const AuthorityUser Authority = "USER"

// Principal is the authenticated identity attached to a request.
type Principal struct {
	Subject     string      `json:"username"`
	Authorities []Authority `json:"authorities"`
}

func NewPrincipal(subject string) Principal {
	return Principal{Subject: subject, Authorities: []Authority{AuthorityUser}}
}

func (p Principal) HasAuthority(a Authority) bool {
	return slices.Contains(p.Authorities, a)
}
