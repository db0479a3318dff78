package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NordCoder/goodcookie/internal/domain/notification"
	"github.com/NordCoder/goodcookie/internal/domain/outbox"
	"github.com/google/uuid"
)

var _ notification.ResetNotifier = (*Notifier)(nil)

// Notifier enqueues reset requests into the outbox. Called inside the
// transaction that stores the reset token, the two commit together.
type Notifier struct {
	repo   outbox.Repository
	newKey func() string
}

func NewNotifier(repo outbox.Repository) *Notifier {
	return &Notifier{repo: repo, newKey: uuid.NewString}
}

func (n *Notifier) NotifyPasswordReset(ctx context.Context, req notification.PasswordReset) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal password-reset payload: %w", err)
	}
	if err := n.repo.Enqueue(ctx, n.newKey(), outbox.KindPasswordReset, data); err != nil {
		return fmt.Errorf("enqueue password-reset: %w", err)
	}
	return nil
}
