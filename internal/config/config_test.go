package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesYamlOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "object_store:\n  bucket: aedocs-archives\nquery:\n  analog_tolerance: 0.25\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "aedocs-archives", cfg.ObjectStore.Bucket)
	assert.Equal(t, 0.25, cfg.Query.AnalogTolerance)
	// Defaults not present in the YAML survive.
	assert.Equal(t, 4, cfg.Orchestrator.Workers)
	assert.Equal(t, 0.3, cfg.Query.WeightBM25)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Orchestrator, cfg.Orchestrator)
}

func TestEnvOverridesWinOverYaml(t *testing.T) {
	t.Setenv("AEDOCS_OBJECT_STORE_BUCKET", "from-env")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("object_store:\n  bucket: from-yaml\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.ObjectStore.Bucket)
}
