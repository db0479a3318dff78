package email_notifier_config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "goodcookie.password-reset", cfg.In.Topic)
	assert.Equal(t, "email-notifier", cfg.In.GroupID)
	assert.Equal(t, 5*time.Second, cfg.SMTP.Timeout)

	cc := cfg.In.AsConsumerConfig()
	assert.Equal(t, cfg.In.Brokers, cc.Brokers)
	assert.Equal(t, cfg.In.Topic, cc.Topic)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "email-notifier.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
smtp:
  addr: mailhog:1025
  from: reset@example.org
kafka_in:
  brokers: ["k1:9092", "k2:9092"]
`), 0o600))
	t.Setenv("SMTP_FROM", "env@example.org")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mailhog:1025", cfg.SMTP.Addr)
	assert.Equal(t, "env@example.org", cfg.SMTP.From)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.In.Brokers)
}
