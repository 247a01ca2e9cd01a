package config

import (
	"errors"
	"fmt"
)

// Validate checks all configuration values and returns aggregated errors.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.validate(),
		c.Log.validate(),
		c.Storage.validate(),
		c.Telemetry.validate(),
	)
}

func (s *ServerConfig) validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Port))
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}

	return errors.Join(errs...)
}

func (l *LogConfig) validate() error {
	var errs []error

	switch l.Level {
	case "debug", "info", "warn", "error":
		// Valid levels.
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", l.Level))
	}

	switch l.Format {
	case "json", "text":
		// Valid formats.
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text; got %q", l.Format))
	}

	return errors.Join(errs...)
}

func (st *StorageConfig) validate() error {
	var errs []error

	switch st.Driver {
	case DriverPostgres, DriverSQLite:
		// Valid drivers.
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be one of: %s, %s; got %q",
			DriverPostgres, DriverSQLite, st.Driver))
	}
	if st.DSN == "" {
		errs = append(errs, errors.New("storage.dsn must not be empty"))
	}
	if st.CircuitBreaker.MaxFailures < 1 {
		errs = append(errs, fmt.Errorf("storage.circuit_breaker.max_failures must be >= 1, got %d",
			st.CircuitBreaker.MaxFailures))
	}
	if st.CircuitBreaker.Timeout <= 0 {
		errs = append(errs, errors.New("storage.circuit_breaker.timeout must be positive"))
	}
	if st.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("storage.rate_limit.requests_per_second must not be negative, got %f",
			st.RateLimit.RequestsPerSecond))
	}
	if st.RateLimit.RequestsPerSecond > 0 && st.RateLimit.BurstSize < 1 {
		errs = append(errs, fmt.Errorf("storage.rate_limit.burst_size must be >= 1 when limiting, got %d",
			st.RateLimit.BurstSize))
	}

	return errors.Join(errs...)
}

func (t *TelemetryConfig) validate() error {
	if !t.Enabled {
		return nil
	}

	var errs []error

	switch t.Exporter {
	case "stdout", "otlp":
		// Valid exporters.
	default:
		errs = append(errs, fmt.Errorf("telemetry.exporter must be one of: stdout, otlp; got %q", t.Exporter))
	}

	if t.Exporter == "otlp" && t.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.endpoint must not be empty when exporter is otlp"))
	}
	if t.ServiceName == "" {
		errs = append(errs, errors.New("telemetry.service_name must not be empty when telemetry is enabled"))
	}

	return errors.Join(errs...)
}
