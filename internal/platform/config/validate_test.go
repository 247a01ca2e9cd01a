package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/user-lookup-service/internal/platform/config"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{
			name:    "port zero",
			mutate:  func(c *config.Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "port too high",
			mutate:  func(c *config.Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "no write timeout",
			mutate:  func(c *config.Config) { c.Server.WriteTimeout = 0 },
			wantErr: "server.write_timeout",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *config.Config) { c.Log.Level = "verbose" },
			wantErr: "log.level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *config.Config) { c.Log.Format = "xml" },
			wantErr: "log.format",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *config.Config) { c.Storage.Driver = "mysql" },
			wantErr: "storage.driver",
		},
		{
			name:    "empty dsn",
			mutate:  func(c *config.Config) { c.Storage.DSN = "" },
			wantErr: "storage.dsn",
		},
		{
			name:    "breaker without failures",
			mutate:  func(c *config.Config) { c.Storage.CircuitBreaker.MaxFailures = 0 },
			wantErr: "storage.circuit_breaker.max_failures",
		},
		{
			name: "rate limit without burst",
			mutate: func(c *config.Config) {
				c.Storage.RateLimit = config.RateLimitConfig{RequestsPerSecond: 10}
			},
			wantErr: "storage.rate_limit.burst_size",
		},
		{
			name:    "negative rate",
			mutate:  func(c *config.Config) { c.Storage.RateLimit.RequestsPerSecond = -1 },
			wantErr: "storage.rate_limit.requests_per_second",
		},
		{
			name: "otlp without endpoint",
			mutate: func(c *config.Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Exporter = "otlp"
			},
			wantErr: "telemetry.endpoint",
		},
		{
			name: "disabled telemetry is not checked",
			mutate: func(c *config.Config) {
				c.Telemetry.Exporter = "zipkin"
				c.Telemetry.ServiceName = ""
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidate_JoinsEveryProblem(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Log.Level = "loud"
	cfg.Storage.DSN = ""

	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{"server.port", "log.level", "storage.dsn"} {
		assert.Contains(t, err.Error(), field)
	}
}

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  time.Second,
			WriteTimeout: 2 * time.Second,
			IdleTimeout:  time.Minute,
		},
		Log: config.LogConfig{Level: "warn", Format: "text"},
		Storage: config.StorageConfig{
			Driver: config.DriverSQLite,
			DSN:    "file::memory:",
			CircuitBreaker: config.CircuitBreakerConfig{
				MaxFailures:   3,
				Timeout:       10 * time.Second,
				HalfOpenLimit: 1,
			},
		},
		Telemetry: config.TelemetryConfig{Exporter: "stdout", ServiceName: "user-lookup-service"},
	}
}
