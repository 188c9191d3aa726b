package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/rpsduel/internal/config"
	"github.com/lox/rpsduel/internal/move"
)

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rpsduel.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
game {
  decision_delay_ms = 800
  locale = "zh-TW"
}

log {
  level = "warn"
}
`), 0o644))

	t.Setenv("RPSDUEL_API_KEY", "test-key")
	t.Setenv("RPSDUEL_LOCALE", "")

	seed := int64(7)
	cfg, err := loadConfig(&Globals{
		Config:   path,
		EnvFile:  filepath.Join(dir, "missing.env"),
		LogLevel: "debug",
		Locale:   "en-GB",
		Seed:     &seed,
	})
	require.NoError(t, err)

	assert.Equal(t, 800*time.Millisecond, cfg.DecisionDelay())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, move.English, cfg.Locale())
	require.NotNil(t, cfg.Game.Seed)
	assert.Equal(t, int64(7), *cfg.Game.Seed)
	assert.Equal(t, "test-key", cfg.APIKey)
}

func TestLoadConfigRejectsBadLogLevel(t *testing.T) {
	_, err := loadConfig(&Globals{
		Config:   filepath.Join(t.TempDir(), "missing.hcl"),
		EnvFile:  filepath.Join(t.TempDir(), "missing.env"),
		LogLevel: "loud",
	})
	assert.Error(t, err)
}

func TestNewProviderRequiresAPIKey(t *testing.T) {
	cfg := config.DefaultConfig()

	_, err := newProvider(cfg, nil)
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestSeedSourceIsReproducible(t *testing.T) {
	seed := int64(42)
	a, usedA := newSeedSource(&seed)
	b, usedB := newSeedSource(&seed)
	assert.Equal(t, usedA, usedB)

	for range 5 {
		assert.Equal(t, a.next().IntN(3), b.next().IntN(3))
	}
}
