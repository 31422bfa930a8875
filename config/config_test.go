package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.GetInt("depth"))
	assert.Equal(t, 6, cfg.GetInt("max-depth"))
	assert.InDelta(t, 0.97, cfg.GetFloat64("move-overhead"), 1e-9)
	assert.False(t, cfg.GetBool("debug"))
}

func TestLoadFlags(t *testing.T) {
	cfg := Config{}
	err := cfg.Load([]string{"--depth", "5", "--debug", "--db", "/tmp/games.db"})
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.GetInt("depth"))
	assert.True(t, cfg.GetBool("debug"))
	assert.Equal(t, "/tmp/games.db", cfg.GetString("db"))
	// untouched flags fall back to defaults
	assert.Equal(t, 80, cfg.GetInt("plies"))
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("ALEXCHESS_MAX_DEPTH", "4")
	cfg := Config{}
	require.NoError(t, cfg.Load(nil))
	assert.Equal(t, 4, cfg.GetInt("max-depth"))
}

func TestLoadBadFlag(t *testing.T) {
	cfg := Config{}
	assert.Error(t, cfg.Load([]string{"--no-such-flag"}))
}
