package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, uint64(10000), cfg.Execution.InstructionBudget)
	assert.Equal(t, uint(4096), cfg.Execution.StackDepth)
	assert.True(t, cfg.Physics.StrictBuildTag)
	assert.Equal(t, "trace.log", cfg.Trace.OutputFile)
	assert.Equal(t, "localhost:8787", cfg.TraceServer.ListenAddr)
	assert.Equal(t, "json", cfg.Statistics.Format)
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	assert.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Execution.InstructionBudget = 500
	cfg.Physics.BuildTag = "testphysics"

	assert.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFrom(path)
	assert.NoError(t, err)
	assert.Equal(t, uint64(500), loaded.Execution.InstructionBudget)
	assert.Equal(t, "testphysics", loaded.Physics.BuildTag)
}
