package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and defaulting for release settings.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Defaults fill everything except targets.
	cfg := new(Config)

	err := Validate(cfg)
	require.ErrorIs(t, err, errNoTargets)

	// Bad version.
	cfg = &Config{
		Version: "0.6",
		Targets: []Target{{Path: "setup.py", Declaration: "version"}},
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Incomplete target.
	cfg = &Config{
		Targets: []Target{{Path: "setup.py"}},
	}

	err = Validate(cfg)
	require.ErrorIs(t, err, errTargetIncomplete)

	// Okay with defaults applied.
	cfg = &Config{
		Targets: []Target{{Path: "setup.py", Declaration: "version"}},
	}

	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultProjectName, cfg.ProjectName)
	require.Equal(t, DefaultVersion, cfg.Version)
	require.Equal(t, DefaultOutputDir, cfg.OutputDir)
	require.Equal(t, DefaultProbeTimeout, cfg.ProbeTimeout)
	require.NotEmpty(t, cfg.InterpreterCandidates)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		ProjectName: "hydroopt",
		Version:     "0.6.1",
		Targets: []Target{
			{Path: "setup.py", Declaration: "version"},
			{Path: "pyproject.toml", Declaration: "version"},
		},
		OutputDir: "dist",
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ProjectName, loaded.ProjectName)
	require.Equal(t, cfg.Version, loaded.Version)
	require.Equal(t, cfg.Targets, loaded.Targets)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoadOrDefault falls back to defaults when no settings file exists.
func TestLoadOrDefault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := LoadOrDefault(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	// An existing but broken file is still an error.
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: [oops"), 0o600))

	_, err = LoadOrDefault(path)
	require.Error(t, err)
}
