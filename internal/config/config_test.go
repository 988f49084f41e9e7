package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		KeyHTTPAddr, KeyShutdownTimeout, KeyLogLevel, KeySeedCatalog,
		KeyRateLimitEnabled, KeyRateLimitMax, KeyRateLimitWindow,
		KeyRateLimitBackend, KeyRedisAddr,
	} {
		t.Setenv(k, "")
	}
}

func load(t *testing.T) Config {
	t.Helper()
	c, err := FromViper(New())
	require.NoError(t, err)
	return c
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	c := load(t)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 15*time.Second, c.ShutdownTimeout)
	assert.Equal(t, "info", c.LogLevel)
	assert.True(t, c.SeedCatalog)
	assert.False(t, c.RateLimitEnabled)
	assert.Equal(t, 100, c.RateLimitMax)
	assert.Equal(t, time.Second, c.RateLimitWindow)
	assert.Equal(t, BackendMemory, c.RateLimitBackend)
	assert.Equal(t, "localhost:6379", c.RedisAddr)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(KeyHTTPAddr, ":9090")
	t.Setenv(KeyShutdownTimeout, "2")
	t.Setenv(KeyLogLevel, "debug")
	t.Setenv(KeySeedCatalog, "false")
	t.Setenv(KeyRateLimitEnabled, "true")
	t.Setenv(KeyRateLimitMax, "7")
	t.Setenv(KeyRateLimitWindow, "250ms")
	t.Setenv(KeyRateLimitBackend, "redis")
	t.Setenv(KeyRedisAddr, "redis:6380")
	c := load(t)
	assert.Equal(t, ":9090", c.HTTPAddr)
	assert.Equal(t, 2*time.Second, c.ShutdownTimeout)
	assert.Equal(t, "debug", c.LogLevel)
	assert.False(t, c.SeedCatalog)
	assert.True(t, c.RateLimitEnabled)
	assert.Equal(t, 7, c.RateLimitMax)
	assert.Equal(t, 250*time.Millisecond, c.RateLimitWindow)
	assert.Equal(t, BackendRedis, c.RateLimitBackend)
	assert.Equal(t, "redis:6380", c.RedisAddr)
}

func TestFromViperRejectsUnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv(KeyRateLimitBackend, "etcd")
	_, err := FromViper(New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "service.env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_ADDR=:7070\nRATE_LIMIT_MAX_REQUESTS=3\n"), 0o600))
	t.Setenv(KeyRateLimitMax, "9")

	v := New()
	require.NoError(t, LoadFile(v, path))
	c, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, ":7070", c.HTTPAddr)
	assert.Equal(t, 9, c.RateLimitMax)
}

func TestLoadFileMissing(t *testing.T) {
	v := New()
	assert.NoError(t, LoadFile(v, ""))
	assert.Error(t, LoadFile(v, filepath.Join(t.TempDir(), "nope.env")))
}
