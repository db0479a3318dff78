package notification

import (
	"context"
	"time"
)

// PasswordReset is what the mailer needs to deliver a reset link.
type PasswordReset struct {
	RecipientEmail  string    `json:"recipient_email"`
	Username        string    `json:"username"`
	ResetToken      string    `json:"reset_token"`
	CallbackURLBase string    `json:"callback_url_base"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// Notification is a delivered message kept for audit.
type Notification struct {
	ID        int64     `json:"id"`
	Recipient string    `json:"recipient"`
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject"`
	SentAt    time.Time `json:"sent_at"`
}

// ResetNotifier hands a reset request to the delivery pipeline.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, req PasswordReset) error
}

type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Clock interface {
	Now() time.Time
}
