package integration

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gladistony/hydroopt-release/internal/config"
	"github.com/gladistony/hydroopt-release/internal/service/release"
)

// projectFiles are the hydroopt sources carrying version declarations.
var projectFiles = map[string]string{
	"setup.py":             "from setuptools import setup\n\nsetup(\n    name=\"hydroopt\",\n    version=\"0.0.1\",\n)\n",
	"pyproject.toml":       "[project]\nname = \"hydroopt\"\nversion = \"0.5.9\"\n",
	"HydroOpt/__init__.py": "__version__ = \"0.5.9\"\n",
}

// setupProject lays out a minimal hydroopt tree in a temp working directory.
func setupProject(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("stub interpreter is a POSIX shell script")
	}

	t.Chdir(t.TempDir())

	for name, content := range projectFiles {
		require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
		require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
	}
}

// installStubInterpreter writes a venv interpreter stub. The stub logs
// every invocation, answers the frontend probe with probeExit, and
// creates the provided artifacts when the build command runs.
func installStubInterpreter(t *testing.T, probeExit int, artifacts ...string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join("venv", "bin"), 0o755))

	var script strings.Builder

	script.WriteString("#!/bin/sh\n")
	script.WriteString("echo \"$@\" >> invocations.log\n")
	script.WriteString("case \"$*\" in\n")
	script.WriteString("\"-m build --version\") exit " + strconv.Itoa(probeExit) + " ;;\n")
	script.WriteString("\"-m build --outdir dist\" | \"setup.py sdist --dist-dir dist bdist_wheel --dist-dir dist\")\n")
	script.WriteString("mkdir -p dist\n")

	for _, name := range artifacts {
		script.WriteString("echo artifact > dist/" + name + "\n")
	}

	script.WriteString("exit 0 ;;\n")
	script.WriteString("esac\nexit 0\n")

	require.NoError(t, os.WriteFile(
		filepath.Join("venv", "bin", "python"), []byte(script.String()), 0o755))
}

// invocationLines returns the stub interpreter's logged argument lines.
func invocationLines(t *testing.T) []string {
	t.Helper()

	contents, err := os.ReadFile("invocations.log")
	require.NoError(t, err)

	return strings.Split(strings.TrimSpace(string(contents)), "\n")
}

// countWithPrefix counts logged invocations starting with the prefix.
func countWithPrefix(lines []string, prefix string) int {
	count := 0

	for _, line := range lines {
		if strings.HasPrefix(line, prefix) {
			count++
		}
	}

	return count
}

// requireFileContains asserts the file holds the expected substring.
func requireFileContains(t *testing.T, path, expected string) {
	t.Helper()

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), expected)
}

// TestRelease_FrontendPipeline walks the whole pipeline with the modern frontend.
func TestRelease_FrontendPipeline(t *testing.T) {
	setupProject(t)
	installStubInterpreter(t, 0,
		"hydroopt-0.6.1.tar.gz", "hydroopt-0.6.1-py3-none-any.whl")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := release.Run(ctx, &release.Options{
		ConfigPath: config.DefaultConfigFilename,
		Version:    "0.6.1",
	})
	require.NoError(t, err)

	// Every target file carries the new version.
	requireFileContains(t, "setup.py", "version=\"0.6.1\"")
	requireFileContains(t, "pyproject.toml", "version = \"0.6.1\"")
	requireFileContains(t, filepath.Join("HydroOpt", "__init__.py"), "__version__ = \"0.6.1\"")

	// Settings were persisted for the next run.
	_, err = os.Stat(config.DefaultConfigFilename)
	require.NoError(t, err)

	// The manifest records the frontend strategy and both artifacts.
	manifest, err := release.LoadManifest(filepath.Join("dist", release.ManifestFilename))
	require.NoError(t, err)
	require.Equal(t, "0.6.1", manifest.VersionNumber)
	require.Equal(t, "frontend", manifest.Strategy)
	require.Len(t, manifest.Artifacts, 2)

	// The run marker is gone.
	_, err = os.Stat(release.MarkerFilename)
	require.ErrorIs(t, err, os.ErrNotExist)

	lines := invocationLines(t)
	require.Equal(t, 1, countWithPrefix(lines, "-m build --outdir"))
	require.Zero(t, countWithPrefix(lines, "setup.py"))
}

// TestRelease_LegacyFallback invokes setup.py exactly once when the probe fails.
func TestRelease_LegacyFallback(t *testing.T) {
	setupProject(t)
	installStubInterpreter(t, 1, "hydroopt-0.6.1.tar.gz")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := release.Run(ctx, &release.Options{
		ConfigPath: config.DefaultConfigFilename,
		Version:    "0.6.1",
	})
	require.NoError(t, err)

	manifest, err := release.LoadManifest(filepath.Join("dist", release.ManifestFilename))
	require.NoError(t, err)
	require.Equal(t, "legacy", manifest.Strategy)

	lines := invocationLines(t)
	require.Equal(t, 1, countWithPrefix(lines, "setup.py sdist"))
	require.Zero(t, countWithPrefix(lines, "-m build --outdir"))
}

// TestRelease_NoArtifactsIsNotAnError succeeds even when the build
// produced nothing to report.
func TestRelease_NoArtifactsIsNotAnError(t *testing.T) {
	setupProject(t)
	installStubInterpreter(t, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := release.Run(ctx, &release.Options{
		ConfigPath: config.DefaultConfigFilename,
		Version:    "0.6.1",
	})
	require.NoError(t, err)

	manifest, err := release.LoadManifest(filepath.Join("dist", release.ManifestFilename))
	require.NoError(t, err)
	require.Empty(t, manifest.Artifacts)
}

// TestRelease_RefusesConcurrentRun aborts while a fresh marker exists.
func TestRelease_RefusesConcurrentRun(t *testing.T) {
	setupProject(t)
	installStubInterpreter(t, 0)

	require.NoError(t, os.WriteFile(release.MarkerFilename, nil, 0o644))

	err := release.Run(context.Background(), &release.Options{
		ConfigPath: config.DefaultConfigFilename,
		Version:    "0.6.1",
	})
	require.ErrorContains(t, err, "release build is running")

	// The foreign marker is left in place for its owner.
	_, err = os.Stat(release.MarkerFilename)
	require.NoError(t, err)
}

// TestRelease_RefusesDowngrade rejects a version lower than the last manifest.
func TestRelease_RefusesDowngrade(t *testing.T) {
	setupProject(t)
	installStubInterpreter(t, 0)

	require.NoError(t, os.MkdirAll("dist", 0o755))

	previous := release.NewManifest("9.9.9")
	require.NoError(t, previous.Save(filepath.Join("dist", release.ManifestFilename)))

	err := release.Run(context.Background(), &release.Options{
		ConfigPath: config.DefaultConfigFilename,
		Version:    "0.6.1",
	})
	require.ErrorContains(t, err, "lower than the last released version")
}
