package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_StopsOnSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 2 {
			return errors.New("flaky")
		}
		return nil
	}, Policy{Name: "test", Attempts: 5, Backoff: ExpoJitter{Base: time.Millisecond}})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_NonRetryable(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	exhausted := false
	err := Do(context.Background(), func() error {
		calls++
		return permanent
	}, Policy{
		Attempts:  5,
		Retryable: func(err error) bool { return !errors.Is(err, permanent) },
		OnExhaust: func(error) { exhausted = true },
	})

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
	assert.True(t, exhausted)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, func() error { return errors.New("down") },
		Policy{Attempts: 3, Backoff: ExpoJitter{Base: time.Second}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestExpoJitter_Caps(t *testing.T) {
	b := ExpoJitter{Base: 100 * time.Millisecond, Max: time.Second}
	assert.Equal(t, 100*time.Millisecond, b.Next(0))
	assert.Equal(t, 400*time.Millisecond, b.Next(2))
	assert.Equal(t, time.Second, b.Next(10))
}

type tempErr bool

func (e tempErr) Error() string   { return "broker" }
func (e tempErr) Temporary() bool { return bool(e) }

func TestBrokerRetryable(t *testing.T) {
	assert.False(t, BrokerRetryable(nil))
	assert.False(t, BrokerRetryable(context.Canceled))
	assert.False(t, BrokerRetryable(context.DeadlineExceeded))
	assert.False(t, BrokerRetryable(tempErr(false)))
	assert.True(t, BrokerRetryable(tempErr(true)))
	assert.True(t, BrokerRetryable(errors.New("dial tcp: connection refused")))
}
