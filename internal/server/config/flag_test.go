package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-g", ":6000", "-l", "debug", "-storage", "mongo",
				"-d", "db", "-m", "mongodb://m:27017", "-s", "secret", "-strict-secret",
				"-t", "24", "-currency", "eur", "-k", "cg-key", "-r", "redis:6379", "-b", "k1:9092, k2:9092",
			},
			expected: &Config{
				HTTPAddr:              "127.0.0.1:9090",
				GRPCAddr:              ":6000",
				LogLevel:              "debug",
				Storage:               "mongo",
				DatabaseDSN:           "db",
				MongoURI:              "mongodb://m:27017",
				SecretKey:             "secret",
				StrictSecret:          true,
				TokenValidityDuration: 24 * time.Hour,
				ReferenceCurrency:     "eur",
				PriceAPIKey:           "cg-key",
				RedisAddr:             "redis:6379",
				KafkaBrokers:          []string{"k1:9092", "k2:9092"},
			},
		},
		{
			name: "absent flags keep previous values",
			args: []string{"cmd", "-x", "ignored"},
			expected: &Config{
				TokenValidityDuration: 90 * time.Minute,
			},
		},
		{
			name:        "malformed int panics",
			args:        []string{"cmd", "-t", "week"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{TokenValidityDuration: 90 * time.Minute}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
