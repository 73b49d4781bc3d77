package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/lunchvote")
	for _, key := range []string{"PORT", "ALLOWED_ORIGINS", "LOG_LEVEL", "ENVIRONMENT", "DATABASE_DRIVER",
		"SQLITE_PATH", "AUTO_MIGRATE", "DATABASE_SIMPLE_PROTOCOL", "REDIS_URL", "ADMIN_JWT_SECRET", "STORE_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.False(t, cfg.AutoMigrate)
	assert.False(t, cfg.SimpleProtocol)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", ":memory:")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("STORE_TIMEOUT", "750ms")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DATABASE_SIMPLE_PROTOCOL", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, ":memory:", cfg.SQLitePath)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 750*time.Millisecond, cfg.StoreTimeout)
	assert.True(t, cfg.SimpleProtocol)
	assert.True(t, cfg.IsDevelopment())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Port: "8080", DatabaseDriver: DriverPostgres, DatabaseURL: "postgres://x", StoreTimeout: time.Second}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid postgres", func(c *Config) {}, ""},
		{"valid sqlite", func(c *Config) { c.DatabaseDriver = DriverSQLite; c.SQLitePath = "x.db"; c.DatabaseURL = "" }, ""},
		{"postgres without url", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"sqlite without path", func(c *Config) { c.DatabaseDriver = DriverSQLite; c.SQLitePath = " " }, "SQLITE_PATH"},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "unsupported"},
		{"zero timeout", func(c *Config) { c.StoreTimeout = 0 }, "STORE_TIMEOUT"},
		{"bad port", func(c *Config) { c.Port = "http" }, "PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDurationEnv(t *testing.T) {
	t.Setenv("X_TIMEOUT", "3")
	assert.Equal(t, 3*time.Second, getDurationEnv("X_TIMEOUT", time.Second))

	t.Setenv("X_TIMEOUT", "garbage")
	assert.Equal(t, time.Second, getDurationEnv("X_TIMEOUT", time.Second))
}
