package config

const (
	defaultServerPort = 8080

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"server.host":          "0.0.0.0",
		"server.port":          defaultServerPort,
		"server.read_timeout":  "5s",
		"server.write_timeout": "10s",
		"server.idle_timeout":  "120s",

		"log.level":  "info",
		"log.format": "json",

		"storage.driver":                          DriverPostgres,
		"storage.dsn":                             "",
		"storage.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"storage.circuit_breaker.timeout":         "30s",
		"storage.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,
		"storage.rate_limit.requests_per_second":  0,
		"storage.rate_limit.burst_size":           0,

		"telemetry.enabled":      false,
		"telemetry.exporter":     "stdout",
		"telemetry.endpoint":     "",
		"telemetry.service_name": "user-lookup-service",
	}
}
