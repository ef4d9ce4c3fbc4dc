package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_EXPIRY", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, "8050", cfg.ServerPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 6*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("JWT_EXPIRY", "90m")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("RESET_DB", "true")

	cfg := Load()

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 90*time.Minute, cfg.JWTExpiry)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.ResetDB)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("JWT_EXPIRY", "-5m")

	cfg := Load()

	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 6*time.Hour, cfg.JWTExpiry)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		secret  string
		wantErr bool
	}{
		{"development keeps the placeholder", EnvDevelopment, DefaultJWTSecret, false},
		{"production with placeholder", "production", DefaultJWTSecret, true},
		{"staging with empty secret", "staging", "", true},
		{"production with real secret", "production", "s3cr3t-value", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{AppEnv: tt.env, JWTSecret: tt.secret}
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorContains(t, err, "JWT_SECRET")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_ProductionDefaultsFailValidation(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := Load()

	assert.Error(t, cfg.Validate())
	assert.False(t, cfg.MetricsEnabled)
}
