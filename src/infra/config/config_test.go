package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 5133, cfg.Server.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "events", cfg.Database.Name)
		assert.True(t, cfg.Database.AutoMigrate)
		assert.Equal(t, "", cfg.Cache.RedisURL)
		assert.Equal(t, 5*time.Minute, cfg.Cache.ListTTL)
		assert.Equal(t, "http://localhost:5133", cfg.Web.BackendURL)
	})

	t.Run("overrides_from_env", func(t *testing.T) {
		t.Setenv("APP_PORT", "9000")
		t.Setenv("APP_STORE", "memory")
		t.Setenv("APP_REDIS_URL", "redis://localhost:6379/1")
		t.Setenv("APP_WEB_BACKEND_TIMEOUT", "250ms")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "memory", cfg.Database.Driver)
		assert.Equal(t, "redis://localhost:6379/1", cfg.Cache.RedisURL)
		assert.Equal(t, 250*time.Millisecond, cfg.Web.BackendTimeout)
	})

	t.Run("unknown_store_is_rejected", func(t *testing.T) {
		t.Setenv("APP_STORE", "sqlite")

		cfg, err := Load()
		assert.Nil(t, cfg)
		assert.EqualError(t, err, `unsupported store "sqlite"`)
	})

	t.Run("malformed_duration", func(t *testing.T) {
		t.Setenv("APP_READ_TIMEOUT", "soon")

		_, err := Load()
		assert.ErrorContains(t, err, "failed to load server config")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5432, Name: "events", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/events?sslmode=disable", c.DSN())
}
