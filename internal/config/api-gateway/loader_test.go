package api_gateway_config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresSecret(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "from-env")
	t.Setenv("AUTH_ACCESS_TTL", "5m")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 30*time.Minute, cfg.Auth.ResetTTL)
	assert.Zero(t, cfg.Auth.RefreshTTL)
	assert.Equal(t, "Authorization", cfg.Auth.HeaderName)
	assert.Equal(t, "Bearer", cfg.Auth.TokenPrefix)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api-gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
auth:
  jwt_secret: from-file
  header_name: X-Auth
  token_prefix: Token
kafka:
  brokers: ["b1:9092", "b2:9092"]
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, "X-Auth", cfg.Auth.HeaderName)
	assert.Equal(t, "Token", cfg.Auth.TokenPrefix)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
}

func TestLoad_CORSDefaultsToCallbackOrigin(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s")
	cfg, err := Load("")
	require.NoError(t, err)

	cc := cfg.CORSConfig()
	assert.Equal(t, []string{"http://localhost:3000"}, cc.AllowedOrigins)
	assert.Equal(t, time.Hour, cc.MaxAge)
}

func TestLoad_CORSExplicitOrigins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api-gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
auth:
  jwt_secret: s
cors:
  allowed_origins: ["https://app.example", "https://admin.example"]
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example", "https://admin.example"}, cfg.CORSConfig().AllowedOrigins)
}
