package notifier

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"text/template"

	"github.com/NordCoder/goodcookie/internal/domain/notification"
	"github.com/NordCoder/goodcookie/internal/obs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	ResetSubject = "Password Reset"
	KindReset    = "password_reset"
)

var resetBody = template.Must(template.New("reset").Parse(`Hi {{.Username}},

We received a request to reset the password of your account.
Follow the link below to choose a new one:

{{.Link}}

The link stays valid until {{.ExpiresAt}}. If you did not ask for a reset, ignore this email.
`))

var (
	mConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "email_notifier_messages_consumed_total",
		Help: "Password reset events consumed",
	})
	mSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "email_notifier_emails_sent_total",
		Help: "Emails sent",
	})
	mErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "email_notifier_errors_total",
		Help: "Errors",
	})
)

type Handler struct {
	Store notification.Repo
	Out   notification.EmailSender
	Clock notification.Clock
	Log   *zap.Logger
}

// HandlePasswordReset mails the reset link and records the delivery.
// Events without a recipient or token are dropped.
func (h *Handler) HandlePasswordReset(ctx context.Context, ev notification.PasswordReset) error {
	mConsumed.Inc()
	log := obs.WithTrace(ctx, h.logger())

	if ev.RecipientEmail == "" || ev.ResetToken == "" {
		log.Warn("password-reset: incomplete event", zap.String("username", ev.Username))
		return nil
	}

	body, err := RenderReset(ev)
	if err != nil {
		mErrors.Inc()
		return err
	}
	if err := h.Out.Send(ctx, ev.RecipientEmail, ResetSubject, body); err != nil {
		mErrors.Inc()
		return fmt.Errorf("send email: %w", err)
	}
	mSent.Inc()

	if err := h.Store.Create(ctx, &notification.Notification{
		Recipient: ev.RecipientEmail,
		Kind:      KindReset,
		Subject:   ResetSubject,
		SentAt:    h.Clock.Now().UTC(),
	}); err != nil {
		// the mail is already out; redelivery would send it twice
		log.Warn("record notification", zap.Error(err))
	}
	return nil
}

func (h *Handler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}

// ResetLink appends the token as a query parameter to the callback base.
func ResetLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse callback url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func RenderReset(ev notification.PasswordReset) (string, error) {
	link, err := ResetLink(ev.CallbackURLBase, ev.ResetToken)
	if err != nil {
		return "", err
	}
	expires := "it is used"
	if !ev.ExpiresAt.IsZero() {
		expires = ev.ExpiresAt.UTC().Format("2006-01-02 15:04 MST")
	}

	var buf bytes.Buffer
	err = resetBody.Execute(&buf, struct {
		Username  string
		Link      string
		ExpiresAt string
	}{ev.Username, link, expires})
	if err != nil {
		return "", fmt.Errorf("render reset mail: %w", err)
	}
	return buf.String(), nil
}
