package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvKeyMapper(t *testing.T) {
	t.Parallel()

	m := newEnvKeyMapper([]string{
		"server.port",
		"server.read_timeout",
		"storage.rate_limit.burst_size",
	})

	tests := []struct {
		env  string
		want string
	}{
		{"APP_SERVER_PORT", "server.port"},
		{"APP_SERVER_READ_TIMEOUT", "server.read_timeout"},
		{"APP_STORAGE_RATE_LIMIT_BURST_SIZE", "storage.rate_limit.burst_size"},
		{"APP_FEATURE_FLAG_X", "feature.flag.x"},
	}

	for _, tc := range tests {
		key, value := m.transform(tc.env, "v")
		assert.Equal(t, tc.want, key, tc.env)
		assert.Equal(t, "v", value)
	}
}
