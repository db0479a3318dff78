package memory

import (
	"context"
	"sync"

	"github.com/NordCoder/goodcookie/internal/domain/notification"
)

var _ notification.ResetNotifier = (*ResetNotifier)(nil)

// ResetNotifier records reset requests instead of delivering them.
type ResetNotifier struct {
	mu   sync.Mutex
	sent []notification.PasswordReset
	Err  error
}

func (n *ResetNotifier) NotifyPasswordReset(_ context.Context, req notification.PasswordReset) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.sent = append(n.sent, req)
	return nil
}

func (n *ResetNotifier) Sent() []notification.PasswordReset {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification.PasswordReset, len(n.sent))
	copy(out, n.sent)
	return out
}
