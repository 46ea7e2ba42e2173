package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "-", cfg.CommandPrefix)
	assert.Equal(t, "friendgraph", cfg.MongoDatabase)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 15*time.Second, cfg.PublishTimeout)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("ENV", "production")
	t.Setenv("COMMAND_PREFIX", "!")
	t.Setenv("STORE_TIMEOUT_MS", "2500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	assert.Equal(t, "!", cfg.CommandPrefix)
	assert.Equal(t, 2500*time.Millisecond, cfg.StoreTimeout)
	assert.True(t, cfg.IsProduction())
}

func TestValidateRejectsBadTimeouts(t *testing.T) {
	cfg := &Config{
		MongoURI:      "mongodb://localhost",
		MongoDatabase: "friendgraph",
		CommandPrefix: "-",
		StoreTimeout:  0,
	}
	assert.Error(t, cfg.Validate())
}
