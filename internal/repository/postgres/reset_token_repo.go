package postgres

import (
	"context"
	"fmt"

	"github.com/NordCoder/goodcookie/internal/domain/auth"
)

var _ auth.ResetTokenRepo = (*ResetTokenRepo)(nil)

type ResetTokenRepo struct{ db *DB }

func NewResetTokenRepo(db *DB) *ResetTokenRepo { return &ResetTokenRepo{db: db} }

const (
	qResetCreate = `
INSERT INTO password_reset_tokens (user_id, token_hash, expires_at, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id;`

	qResetFind = `
SELECT id, user_id, token_hash, expires_at, created_at
FROM password_reset_tokens
WHERE token_hash = $1;`

	qResetDelete = `DELETE FROM password_reset_tokens WHERE token_hash = $1;`

	// the row lock makes a concurrent take wait and then see no row
	qResetTake = `
DELETE FROM password_reset_tokens
WHERE token_hash = $1
RETURNING id, user_id, token_hash, expires_at, created_at;`
)

func (r *ResetTokenRepo) Create(ctx context.Context, t *auth.ResetToken) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	err := r.db.conn(ctx).
		QueryRow(ctx, qResetCreate, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt).
		Scan(&t.ID)
	if err != nil {
		if _, dup := uniqueViolation(err); dup {
			return fmt.Errorf("create reset token: %w", ErrConflict)
		}
		return fmt.Errorf("create reset token: %w", err)
	}
	return nil
}

func (r *ResetTokenRepo) FindByToken(ctx context.Context, tokenHash string) (*auth.ResetToken, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var t auth.ResetToken
	err := r.db.conn(ctx).QueryRow(ctx, qResetFind, tokenHash).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return nil, noRows(err, auth.ErrTokenNotFound)
	}
	return &t, nil
}

func (r *ResetTokenRepo) TakeByToken(ctx context.Context, tokenHash string) (*auth.ResetToken, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var t auth.ResetToken
	err := r.db.conn(ctx).QueryRow(ctx, qResetTake, tokenHash).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return nil, noRows(err, auth.ErrTokenNotFound)
	}
	return &t, nil
}

func (r *ResetTokenRepo) DeleteByToken(ctx context.Context, tokenHash string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.conn(ctx).Exec(ctx, qResetDelete, tokenHash); err != nil {
		return fmt.Errorf("delete reset token: %w", err)
	}
	return nil
}
