package memory

import "context"

// Transactor runs fn directly. Each in-memory store operation is already atomic.
type Transactor struct{}

func (Transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
