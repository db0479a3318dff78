package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NordCoder/goodcookie/internal/domain/outbox"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

var _ outbox.Repository = (*OutboxRepo)(nil)

// OutboxRepo is the transactional outbox table. Enqueue joins the caller's
// transaction; PickBatch and MarkSuccess always run on the pool.
type OutboxRepo struct{ db *DB }

func NewOutboxRepo(db *DB) *OutboxRepo { return &OutboxRepo{db: db} }

const (
	qOutboxInsert = `
INSERT INTO outbox (idempotency_key, kind, data, traceparent, tracestate, baggage)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (idempotency_key) DO NOTHING`

	// Claims CREATED rows and IN_PROGRESS rows whose claim is older than $2
	// seconds, oldest first. SKIP LOCKED lets several runners share the table.
	qOutboxClaim = `
UPDATE outbox o
SET status = 'IN_PROGRESS', updated_at = now()
WHERE o.idempotency_key IN (
    SELECT idempotency_key FROM outbox
    WHERE status = 'CREATED'
       OR (status = 'IN_PROGRESS' AND updated_at < now() - make_interval(secs => $2))
    ORDER BY created_at
    LIMIT $1
    FOR UPDATE SKIP LOCKED
)
RETURNING o.idempotency_key, o.kind, o.data, o.status, o.created_at, o.updated_at,
          o.traceparent, o.tracestate, o.baggage`

	// delivered payloads carry raw reset tokens; only the envelope is kept
	qOutboxDone = `
UPDATE outbox SET status = 'SUCCESS', data = '{}'::jsonb, updated_at = now()
WHERE idempotency_key = ANY($1)`
)

type outboxRow struct {
	IdempotencyKey string    `db:"idempotency_key"`
	Kind           int32     `db:"kind"`
	Data           []byte    `db:"data"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	Traceparent    string    `db:"traceparent"`
	Tracestate     string    `db:"tracestate"`
	Baggage        string    `db:"baggage"`
}

func (r outboxRow) message() outbox.Message {
	return outbox.Message{
		IdempotencyKey: r.IdempotencyKey,
		Kind:           outbox.Kind(r.Kind),
		Data:           r.Data,
		Status:         outbox.Status(r.Status),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		Traceparent:    r.Traceparent,
		Tracestate:     r.Tracestate,
		Baggage:        r.Baggage,
	}
}

// Enqueue stores the message with the caller's trace context so the runner can
// continue the trace when it publishes.
func (r *OutboxRepo) Enqueue(ctx context.Context, key string, kind outbox.Kind, data []byte) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tc := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, tc)

	if _, err := r.db.conn(ctx).Exec(ctx, qOutboxInsert, key, int32(kind), data,
		tc.Get("traceparent"), tc.Get("tracestate"), tc.Get("baggage")); err != nil {
		return fmt.Errorf("outbox enqueue %s: %w", kind, err)
	}
	return nil
}

func (r *OutboxRepo) PickBatch(ctx context.Context, batch int, inProgressTTL time.Duration) ([]outbox.Message, error) {
	if batch <= 0 {
		return nil, errors.New("outbox pick: batch must be positive")
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qOutboxClaim, batch, inProgressTTL.Seconds())
	if err != nil {
		return nil, fmt.Errorf("outbox pick: %w", err)
	}
	claimed, err := pgx.CollectRows(rows, pgx.RowToStructByName[outboxRow])
	if err != nil {
		return nil, fmt.Errorf("outbox pick: %w", err)
	}

	out := make([]outbox.Message, len(claimed))
	for i, row := range claimed {
		out[i] = row.message()
	}
	return out, nil
}

func (r *OutboxRepo) MarkSuccess(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()
	if _, err := r.db.Pool.Exec(ctx, qOutboxDone, keys); err != nil {
		return fmt.Errorf("outbox mark success: %w", err)
	}
	return nil
}
