package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, "llm_exchanges.log", cfg.LogPath)
	assert.Empty(t, cfg.BypassPassword)
}

func TestLoadReadsEnvironmentOverrides(t *testing.T) {
	t.Setenv("ARENA_PORT", "9090")
	t.Setenv("ARENA_MAX_RETRIES", "5")
	t.Setenv("ARENA_BYPASS_PASSWORD", "letmein")
	t.Setenv("ARENA_DEFAULT_WHITE_MODEL", "gpt-4o")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, "letmein", cfg.BypassPassword)
	assert.Equal(t, "gpt-4o", cfg.DefaultWhiteModel)
}
