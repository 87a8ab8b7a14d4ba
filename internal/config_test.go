package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://fleet@localhost/fleet")

	cfg, err := NewConfig()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, 5, cfg.DBMaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.DBConnMaxLifetime)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 120, cfg.RateLimitWrites)
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://fleet@localhost/fleet")
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_MAX_OPEN_CONNS", "10")
	t.Setenv("DB_MAX_IDLE_CONNS", "2")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("METRICS_USERNAME", "prom")
	t.Setenv("RATE_LIMIT_WRITES", "0")

	cfg, err := NewConfig()

	require.NoError(t, err)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 10, cfg.DBMaxOpenConns)
	assert.Equal(t, 2, cfg.DBMaxIdleConns)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, "prom", cfg.MetricsUsername)
	assert.Zero(t, cfg.RateLimitWrites)
}

func TestNewConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing database url", map[string]string{"DATABASE_URL": ""}, "DATABASE_URL is required"},
		{"port out of range", map[string]string{"PORT": "70000"}, "PORT must be between"},
		{"idle exceeds open", map[string]string{"DB_MAX_OPEN_CONNS": "2", "DB_MAX_IDLE_CONNS": "4"}, "DB_MAX_IDLE_CONNS"},
		{"zero timeout", map[string]string{"REQUEST_TIMEOUT": "0s"}, "REQUEST_TIMEOUT must be positive"},
		{"negative rate limit", map[string]string{"RATE_LIMIT_WRITES": "-1"}, "RATE_LIMIT_WRITES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://fleet@localhost/fleet")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := NewConfig()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("FLEET_TEST_INT", "not-a-number")
	t.Setenv("FLEET_TEST_BOOL", "maybe")
	t.Setenv("FLEET_TEST_DURATION", "soon")

	assert.Equal(t, 7, getEnvInt("FLEET_TEST_INT", 7))
	assert.True(t, getEnvBool("FLEET_TEST_BOOL", true))
	assert.Equal(t, time.Second, getEnvDuration("FLEET_TEST_DURATION", time.Second))
	assert.Equal(t, "fallback", getEnv("FLEET_TEST_UNSET", "fallback"))
}
