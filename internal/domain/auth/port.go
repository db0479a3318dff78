package auth

import "context"

// RefreshTokenRepo stores renewal credentials keyed by token hash.
// DeleteByToken of an absent token is not an error.
type RefreshTokenRepo interface {
	Create(ctx context.Context, t *RefreshToken) error
	FindByToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	DeleteByToken(ctx context.Context, tokenHash string) error
}

// ResetTokenRepo stores reset credentials keyed by token hash. TakeByToken
// deletes and returns the record in one step; of two concurrent callers only
// one receives it, the other gets ErrTokenNotFound.
type ResetTokenRepo interface {
	Create(ctx context.Context, t *ResetToken) error
	FindByToken(ctx context.Context, tokenHash string) (*ResetToken, error)
	TakeByToken(ctx context.Context, tokenHash string) (*ResetToken, error)
	DeleteByToken(ctx context.Context, tokenHash string) error
}
