// Package config provides runtime configuration values for the service.
package config

import (
	"time"

	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config holds configuration knobs for the HTTP server, logging and the
// rate limiter.
type Config struct {
	HTTPAddr         string
	ShutdownTimeout  time.Duration
	LogLevel         string
	SeedCatalog      bool
	RateLimitEnabled bool
	RateLimitMax     int
	RateLimitWindow  time.Duration
	RateLimitBackend string
	RedisAddr        string
}

// Keys understood by FromViper. Each is read from the environment variable of the
// same name.
const (
	KeyHTTPAddr         = "HTTP_ADDR"
	KeyShutdownTimeout  = "SHUTDOWN_TIMEOUT"
	KeyLogLevel         = "LOG_LEVEL"
	KeySeedCatalog      = "SEED_CATALOG"
	KeyRateLimitEnabled = "RATE_LIMIT_ENABLED"
	KeyRateLimitMax     = "RATE_LIMIT_MAX_REQUESTS"
	KeyRateLimitWindow  = "RATE_LIMIT_WINDOW"
	KeyRateLimitBackend = "RATE_LIMIT_BACKEND"
	KeyRedisAddr        = "REDIS_ADDR"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyHTTPAddr, ":8080")
	v.SetDefault(KeyShutdownTimeout, 15)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeySeedCatalog, true)
	v.SetDefault(KeyRateLimitEnabled, false)
	v.SetDefault(KeyRateLimitMax, 100)
	v.SetDefault(KeyRateLimitWindow, "1s")
	v.SetDefault(KeyRateLimitBackend, BackendMemory)
	v.SetDefault(KeyRedisAddr, "localhost:6379")
}

// New returns a viper instance with defaults set and environment lookup on.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return v
}

// LoadFile reads the config file at path (any viper-supported format, .env
// included) on top of defaults. Environment variables still win.
func LoadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Annotatef(err, "reading config file %q", path)
	}
	return nil
}

// FromViper builds a Config from v.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		HTTPAddr:         v.GetString(KeyHTTPAddr),
		ShutdownTimeout:  time.Duration(v.GetInt(KeyShutdownTimeout)) * time.Second,
		LogLevel:         v.GetString(KeyLogLevel),
		SeedCatalog:      v.GetBool(KeySeedCatalog),
		RateLimitEnabled: v.GetBool(KeyRateLimitEnabled),
		RateLimitMax:     v.GetInt(KeyRateLimitMax),
		RateLimitWindow:  v.GetDuration(KeyRateLimitWindow),
		RateLimitBackend: v.GetString(KeyRateLimitBackend),
		RedisAddr:        v.GetString(KeyRedisAddr),
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 15 * time.Second
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Second
	}
	switch cfg.RateLimitBackend {
	case BackendMemory, BackendRedis:
	default:
		return cfg, errors.NotValidf("rate limit backend %q", cfg.RateLimitBackend)
	}
	return cfg, nil
}
