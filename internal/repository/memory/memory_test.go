package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NordCoder/goodcookie/internal/domain/auth"
	"github.com/NordCoder/goodcookie/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepo_CreateFindUpdate(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo()

	u := &user.User{Username: "alice", Email: "a@x.io", PasswordHash: "h1"}
	require.NoError(t, r.Create(ctx, u))
	require.NotZero(t, u.ID)

	got, err := r.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", got.Email)

	got.PasswordHash = "h2"
	require.NoError(t, r.Update(ctx, got))

	again, err := r.FindByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, "h2", again.PasswordHash)

	_, err = r.FindByUsername(ctx, "bob")
	require.ErrorIs(t, err, user.ErrNotFound)

	ok, err := r.ExistsByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserRepo_Conflicts(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo()
	require.NoError(t, r.Create(ctx, &user.User{Username: "alice", Email: "a@x.io"}))

	err := r.Create(ctx, &user.User{Username: "alice", Email: "b@x.io"})
	var ce *user.ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, user.FieldUsername, ce.Field)
	assert.ErrorIs(t, err, user.ErrConflict)

	err = r.Create(ctx, &user.User{Username: "bob", Email: "a@x.io"})
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, user.FieldEmail, ce.Field)
}

func TestUserRepo_ConcurrentCreateSameUsername(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo()

	var ok atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := r.Create(ctx, &user.User{Username: "same", Email: fmt.Sprintf("u%d@x.io", i)})
			if err == nil {
				ok.Add(1)
			}
		}(i)
	}
	wg.Wait()
	assert.EqualValues(t, 1, ok.Load())
}

func TestRefreshTokenRepo_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := NewRefreshTokenRepo()

	rt := &auth.RefreshToken{UserID: 1, Username: "alice", TokenHash: "h", IssuedAt: time.Now()}
	require.NoError(t, r.Create(ctx, rt))
	require.ErrorIs(t, r.Create(ctx, &auth.RefreshToken{TokenHash: "h"}), ErrDuplicateToken)

	got, err := r.FindByToken(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	require.NoError(t, r.DeleteByToken(ctx, "h"))
	require.NoError(t, r.DeleteByToken(ctx, "h"))
	_, err = r.FindByToken(ctx, "h")
	require.ErrorIs(t, err, auth.ErrTokenNotFound)
	assert.Zero(t, r.Len())
}

func TestResetTokenRepo_FindReturnsCopy(t *testing.T) {
	ctx := context.Background()
	r := NewResetTokenRepo()
	exp := time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC)
	require.NoError(t, r.Create(ctx, &auth.ResetToken{UserID: 7, TokenHash: "t", ExpiresAt: exp}))

	got, err := r.FindByToken(ctx, "t")
	require.NoError(t, err)
	got.ExpiresAt = exp.Add(time.Hour)

	again, err := r.FindByToken(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, exp, again.ExpiresAt)
}

func TestResetTokenRepo_TakeHandsOutOnce(t *testing.T) {
	r := NewResetTokenRepo()
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, &auth.ResetToken{UserID: 7, TokenHash: "h", ExpiresAt: time.Now().Add(time.Minute)}))

	const n = 16
	var won atomic.Int32
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := r.TakeByToken(ctx, "h")
			if err == nil {
				assert.Equal(t, int64(7), got.UserID)
				won.Add(1)
				return
			}
			assert.ErrorIs(t, err, auth.ErrTokenNotFound)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), won.Load())
	assert.Zero(t, r.Len())
}
