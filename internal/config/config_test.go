package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, AuthSession, cfg.Auth.Type)
	assert.Equal(t, "_my_session_id", cfg.Auth.SessionName)
	assert.Zero(t, cfg.SessionDuration())
	assert.Contains(t, cfg.Auth.ExcludedPaths, "/api/v1/status/")
	assert.Equal(t, "0.0.0.0:5000", cfg.Address())
	assert.Equal(t, "postgres://sessionauth:@localhost:5432/sessionauth?sslmode=disable", cfg.Database.URL)
	assert.True(t, cfg.UsesSessions())
	assert.True(t, cfg.NeedsPostgres())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTH_TYPE", AuthSessionStorage)
	t.Setenv("SESSION_NAME", "sid")
	t.Setenv("SESSION_DURATION", "60")
	t.Setenv("SESSION_BACKEND", BackendBolt)
	t.Setenv("USER_BACKEND", BackendMemory)
	t.Setenv("AUTH_EXCLUDED_PATHS", " /a/ , ,/b* ")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "7")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sid", cfg.Auth.SessionName)
	assert.Equal(t, time.Minute, cfg.SessionDuration())
	assert.Equal(t, []string{"/a/", "/b*"}, cfg.Auth.ExcludedPaths)
	assert.Equal(t, 7*time.Second, cfg.Context.RequestTimeout)
	assert.Equal(t, 2*time.Second, cfg.Context.ShutdownTimeout)
	assert.False(t, cfg.NeedsPostgres())
}

func TestSessionDurationFallsBackToZero(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("SESSION_DURATION", "soon")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.SessionDuration())

	t.Setenv("SESSION_DURATION", "-30")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.SessionDuration())
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("AUTH_TYPE", "oauth")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("AUTH_TYPE", AuthBasic)
	t.Setenv("SESSION_BACKEND", "mongo")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("SESSION_BACKEND", BackendRedis)
	t.Setenv("USER_BACKEND", "ldap")
	_, err = Load()
	assert.Error(t, err)
}
