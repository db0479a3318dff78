package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/NordCoder/goodcookie/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct{ to, subject, body string }

type fakeSender struct {
	sent []sentMail
	err  error
}

func (s *fakeSender) Send(_ context.Context, to, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMail{to, subject, body})
	return nil
}

type fakeStore struct {
	created []notification.Notification
	err     error
}

func (s *fakeStore) Create(_ context.Context, n *notification.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, *n)
	return nil
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

var at = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func resetEvent() notification.PasswordReset {
	return notification.PasswordReset{
		RecipientEmail:  "a@x.io",
		Username:        "alice",
		ResetToken:      "tok-123",
		CallbackURLBase: "https://app.example/resetPassword",
		ExpiresAt:       at.Add(30 * time.Minute),
	}
}

func TestHandlePasswordReset_SendsAndRecords(t *testing.T) {
	out, store := &fakeSender{}, &fakeStore{}
	h := &Handler{Store: store, Out: out, Clock: fixedClock(at)}

	require.NoError(t, h.HandlePasswordReset(context.Background(), resetEvent()))

	require.Len(t, out.sent, 1)
	assert.Equal(t, "a@x.io", out.sent[0].to)
	assert.Equal(t, ResetSubject, out.sent[0].subject)
	assert.Contains(t, out.sent[0].body, "Hi alice,")
	assert.Contains(t, out.sent[0].body, "https://app.example/resetPassword?token=tok-123")
	assert.Contains(t, out.sent[0].body, "2024-03-01 12:30 UTC")

	require.Len(t, store.created, 1)
	assert.Equal(t, KindReset, store.created[0].Kind)
	assert.Equal(t, at, store.created[0].SentAt)
}

func TestHandlePasswordReset_SendFailureIsReturned(t *testing.T) {
	h := &Handler{Store: &fakeStore{}, Out: &fakeSender{err: errors.New("smtp down")}, Clock: fixedClock(at)}
	require.Error(t, h.HandlePasswordReset(context.Background(), resetEvent()))
}

func TestHandlePasswordReset_StoreFailureIsNotRetried(t *testing.T) {
	out := &fakeSender{}
	h := &Handler{Store: &fakeStore{err: errors.New("db down")}, Out: out, Clock: fixedClock(at)}
	require.NoError(t, h.HandlePasswordReset(context.Background(), resetEvent()))
	assert.Len(t, out.sent, 1)
}

func TestHandlePasswordReset_DropsIncompleteEvent(t *testing.T) {
	out := &fakeSender{}
	h := &Handler{Store: &fakeStore{}, Out: out, Clock: fixedClock(at)}

	ev := resetEvent()
	ev.ResetToken = ""
	require.NoError(t, h.HandlePasswordReset(context.Background(), ev))
	assert.Empty(t, out.sent)
}

func TestResetLink(t *testing.T) {
	link, err := ResetLink("https://app.example/reset?lang=en", "a+b")
	require.NoError(t, err)
	assert.Equal(t, "https://app.example/reset?lang=en&token=a%2Bb", link)

	_, err = ResetLink("://bad", "t")
	require.Error(t, err)
}

func TestCompose(t *testing.T) {
	msg := string(compose("noreply@x.io", "a@x.io", "[GC] Password Reset", "line1\nline2", at))

	head, body, ok := strings.Cut(msg, "\r\n\r\n")
	require.True(t, ok)
	assert.Contains(t, head, "From: noreply@x.io")
	assert.Contains(t, head, "To: a@x.io")
	assert.Contains(t, head, "Subject: [GC] Password Reset")
	assert.Contains(t, head, "Content-Type: text/plain; charset=utf-8")
	assert.Equal(t, "line1\r\nline2\r\n", body)
}

func TestHost(t *testing.T) {
	assert.Equal(t, "mailhog", host("mailhog:1025"))
	assert.Equal(t, "mailhog", host("mailhog"))
}
