package postgres

import (
	"context"
	"fmt"

	"github.com/NordCoder/goodcookie/internal/domain/notification"
)

var _ notification.Repo = (*NotificationRepoImpl)(nil)

type NotificationRepoImpl struct{ db *DB }

func NewNotificationRepo(db *DB) *NotificationRepoImpl { return &NotificationRepoImpl{db: db} }

const qNotifInsert = `
INSERT INTO notifications (recipient, kind, subject, sent_at)
VALUES ($1, $2, $3, COALESCE($4, now()))
RETURNING id, sent_at;`

func (r *NotificationRepoImpl) Create(ctx context.Context, n *notification.Notification) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.conn(ctx).QueryRow(ctx, qNotifInsert,
		n.Recipient,
		n.Kind,
		n.Subject,
		nullTime(n.SentAt),
	).Scan(&n.ID, &n.SentAt); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
