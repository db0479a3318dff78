package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/NordCoder/goodcookie/internal/domain/auth"
)

var _ auth.RefreshTokenRepo = (*RefreshTokenRepo)(nil)

type RefreshTokenRepo struct{ db *DB }

func NewRefreshTokenRepo(db *DB) *RefreshTokenRepo { return &RefreshTokenRepo{db: db} }

const (
	qRTCreate = `
INSERT INTO refresh_tokens (user_id, token_hash, issued_at, expires_at)
VALUES ($1, $2, $3, $4)
RETURNING id;`

	qRTFind = `
SELECT rt.id, rt.user_id, u.username, rt.token_hash, rt.issued_at, rt.expires_at
FROM refresh_tokens rt
JOIN users u ON u.id = rt.user_id
WHERE rt.token_hash = $1;`

	qRTDelete = `DELETE FROM refresh_tokens WHERE token_hash = $1;`
)

func (r *RefreshTokenRepo) Create(ctx context.Context, t *auth.RefreshToken) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	err := r.db.conn(ctx).
		QueryRow(ctx, qRTCreate, t.UserID, t.TokenHash, t.IssuedAt, nullTime(t.ExpiresAt)).
		Scan(&t.ID)
	if err != nil {
		if _, dup := uniqueViolation(err); dup {
			return fmt.Errorf("create refresh token: %w", ErrConflict)
		}
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepo) FindByToken(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var (
		t   auth.RefreshToken
		exp *time.Time
	)
	err := r.db.conn(ctx).QueryRow(ctx, qRTFind, tokenHash).
		Scan(&t.ID, &t.UserID, &t.Username, &t.TokenHash, &t.IssuedAt, &exp)
	if err != nil {
		return nil, noRows(err, auth.ErrTokenNotFound)
	}
	if exp != nil {
		t.ExpiresAt = *exp
	}
	return &t, nil
}

func (r *RefreshTokenRepo) DeleteByToken(ctx context.Context, tokenHash string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.conn(ctx).Exec(ctx, qRTDelete, tokenHash); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
