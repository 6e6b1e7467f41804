// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BASE_URL", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("CLAIM_RESERVATION_TTL", "")
	t.Setenv("RECONCILE_INTERVAL", "")

	cfg, err := ParseFlags([]string{})
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, DefaultSQLitePath, cfg.DatabaseURL)
	assert.Equal(t, DefaultSessionTTL, cfg.SessionTTL)
	assert.Equal(t, DefaultClaimReservationTTL, cfg.ClaimReservationTTL)
	assert.Zero(t, cfg.ReconcileInterval)
}

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("BASE_URL", "https://scanforaprize.com/")
	t.Setenv("RECONCILE_INTERVAL", "15m")

	cfg, err := ParseFlags([]string{})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "postgres://test", cfg.DatabaseURL)
	assert.Equal(t, "https://scanforaprize.com", cfg.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 15*time.Minute, cfg.ReconcileInterval)
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_SECRET", "from-env")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "--session-secret", "from-flag"})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "file:test.db", cfg.DatabaseURL)
	assert.Equal(t, "from-flag", cfg.SessionSecret)
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"bad port", map[string]string{"PORT": "abc"}, nil},
		{"postgres without url", map[string]string{"DATABASE_TYPE": "postgres", "DATABASE_URL": ""}, nil},
		{"unknown database", nil, []string{"-t", "oracle"}},
		{"bad duration", map[string]string{"SESSION_TTL": "forever"}, nil},
		{"unknown flag", nil, []string{"--nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", "")
			t.Setenv("DATABASE_TYPE", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := ParseFlags(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestValidateServe(t *testing.T) {
	assert.Error(t, Config{}.ValidateServe())
	assert.Error(t, Config{SessionSecret: "short"}.ValidateServe())
	assert.NoError(t, Config{SessionSecret: "0123456789abcdef"}.ValidateServe())
}
