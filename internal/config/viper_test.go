package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_MergeOverridesAndCopies(t *testing.T) {
	base := Defaults{"a": 1, "b": 2}
	got := base.Merge(Defaults{"b": 3}, Defaults{"c": 4})

	assert.Equal(t, Defaults{"a": 1, "b": 3, "c": 4}, got)
	assert.Equal(t, 2, base["b"])
}

func TestRead_MissingFileUsesDefaults(t *testing.T) {
	v, err := Read(filepath.Join(t.TempDir(), "absent.yaml"), Observability("svc"))
	require.NoError(t, err)
	assert.Equal(t, "svc", v.GetString("otel.service_name"))
	assert.Equal(t, "info", v.GetString("log.level"))
}

func TestRead_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\ndb:\n  max_conns: 7\n"), 0o600))
	t.Setenv("LOG_LEVEL", "warn")

	v, err := Read(path, Postgres(20, 5).Merge(Observability("svc")))
	require.NoError(t, err)
	assert.Equal(t, "warn", v.GetString("log.level"))
	assert.Equal(t, 7, v.GetInt("db.max_conns"))
	assert.Equal(t, 5, v.GetInt("db.min_conns"))
}

func TestRead_BrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: [unterminated"), 0o600))

	_, err := Read(path, nil)
	require.Error(t, err)
}
