package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	tokens "github.com/NordCoder/goodcookie/internal/auth"
	domainauth "github.com/NordCoder/goodcookie/internal/domain/auth"
	"github.com/NordCoder/goodcookie/internal/domain/user"
)

const DefaultResetTTL = 30 * time.Minute

// ResetCoordinator manages single-use password reset credentials.
type ResetCoordinator struct {
	users  user.Repo
	tokens domainauth.ResetTokenRepo
	ttl    time.Duration
	now    func() time.Time
}

func NewResetCoordinator(users user.Repo, repo domainauth.ResetTokenRepo, ttl time.Duration, now func() time.Time) *ResetCoordinator {
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ResetCoordinator{users: users, tokens: repo, ttl: ttl, now: now}
}

// Issue stores a new credential for u and returns its raw form.
func (c *ResetCoordinator) Issue(ctx context.Context, u *user.User) (string, *domainauth.ResetToken, error) {
	raw, err := tokens.GenerateRawToken(tokens.DefaultTokenBytes)
	if err != nil {
		return "", nil, fmt.Errorf("gen reset token: %w", err)
	}
	now := c.now()
	t := &domainauth.ResetToken{
		UserID:    u.ID,
		TokenHash: tokens.HashToken(raw),
		ExpiresAt: now.Add(c.ttl),
		CreatedAt: now,
	}
	if err := c.tokens.Create(ctx, t); err != nil {
		return "", nil, fmt.Errorf("save reset token: %w", err)
	}
	resetIssued.Inc()
	return raw, t, nil
}

func (c *ResetCoordinator) Validate(ctx context.Context, raw string) (bool, error) {
	t, err := c.find(ctx, raw)
	if err != nil {
		return false, err
	}
	return t.Valid(c.now()), nil
}

func (c *ResetCoordinator) Consume(ctx context.Context, raw string) error {
	return c.tokens.DeleteByToken(ctx, tokens.HashToken(raw))
}

// Claim consumes raw and returns the record it named. Only one caller can
// claim a given credential; the rest get ErrResetTokenNotFound.
func (c *ResetCoordinator) Claim(ctx context.Context, raw string) (*domainauth.ResetToken, error) {
	if raw == "" {
		return nil, ErrResetTokenNotFound
	}
	t, err := c.tokens.TakeByToken(ctx, tokens.HashToken(raw))
	if err != nil {
		if errors.Is(err, domainauth.ErrTokenNotFound) {
			return nil, ErrResetTokenNotFound
		}
		return nil, err
	}
	return t, nil
}

func (c *ResetCoordinator) ResolveIdentity(ctx context.Context, raw string) (*user.User, error) {
	t, err := c.find(ctx, raw)
	if err != nil {
		return nil, err
	}
	return c.users.FindByID(ctx, t.UserID)
}

func (c *ResetCoordinator) find(ctx context.Context, raw string) (*domainauth.ResetToken, error) {
	if raw == "" {
		return nil, ErrResetTokenNotFound
	}
	t, err := c.tokens.FindByToken(ctx, tokens.HashToken(raw))
	if err != nil {
		if errors.Is(err, domainauth.ErrTokenNotFound) {
			return nil, ErrResetTokenNotFound
		}
		return nil, err
	}
	return t, nil
}
