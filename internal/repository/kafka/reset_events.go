package kafka

import (
	"context"

	"github.com/NordCoder/goodcookie/internal/domain/notification"
)

const DefaultResetTopic = "goodcookie.password-reset"

// ResetEventsKafka publishes password reset requests keyed by username, so
// requests for one account stay ordered on a partition.
type ResetEventsKafka struct {
	p *Producer
}

func NewResetEventsKafka(p *Producer) *ResetEventsKafka { return &ResetEventsKafka{p: p} }

func (e *ResetEventsKafka) PublishPasswordReset(ctx context.Context, ev notification.PasswordReset) error {
	return e.p.PublishJSON(ctx, []byte(ev.Username), ev)
}
