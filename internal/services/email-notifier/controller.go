package notifier

import (
	"context"

	"github.com/NordCoder/goodcookie/internal/domain/notification"
	kafkax "github.com/NordCoder/goodcookie/internal/repository/kafka"
	"go.uber.org/zap"
)

type Controller struct {
	Log *zap.Logger
	Sub *kafkax.Consumer
	UC  *Handler
}

func (c *Controller) Run(ctx context.Context) error {
	handler := kafkax.JSONHandler(func(ctx context.Context, key []byte, ev *notification.PasswordReset) error {
		c.Log.Debug("password-reset event", zap.ByteString("key", key))
		return c.UC.HandlePasswordReset(ctx, *ev)
	})
	return c.Sub.Consume(ctx, handler)
}
