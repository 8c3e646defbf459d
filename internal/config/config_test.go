package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tasknest", cfg.AppName)
	assert.Equal(t, "0.0.0.0:8000", cfg.Address())
	assert.Equal(t, 24*time.Hour, cfg.JWT.SessionTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Journal.Retention)
	assert.NotEmpty(t, cfg.Database.URL, "a postgres URL is always derivable")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9001")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/app?sslmode=require")
	t.Setenv("JOURNAL_RETENTION", "48h")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9001", cfg.Address())
	assert.Equal(t, "postgres://u:p@db:5432/app?sslmode=require", cfg.Database.URL)
	assert.Equal(t, 48*time.Hour, cfg.Journal.Retention)
	assert.Equal(t, 3*time.Second, cfg.Context.RequestTimeout)
}
