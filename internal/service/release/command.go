package release

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gladistony/hydroopt-release/internal/config"
	"github.com/gladistony/hydroopt-release/internal/logger"
	"github.com/gladistony/hydroopt-release/internal/service/builder"
	"github.com/gladistony/hydroopt-release/internal/service/reporter"
	syncsvc "github.com/gladistony/hydroopt-release/internal/service/sync"
	"github.com/gladistony/hydroopt-release/internal/service/toolchain"
)

// Options contains inputs for the release entry point.
type Options struct {
	// ConfigPath is an optional path to the release settings
	// (defaults to hydroopt-release-settings.yaml).
	ConfigPath string
	// Version optionally overrides the configured release version.
	Version string
}

// releaser walks the build pipeline for a single release.
// It is unexported—callers should use Run, which encapsulates setup and validation.
type releaser struct {
	// cfg holds the release configuration.
	cfg *config.Config
	// cfgFilename is the path where configuration is saved.
	cfgFilename string
	// manifest collects the outcome written next to the artifacts.
	manifest *Manifest
}

var (
	// errReleaseRunning indicates another release build holds the marker.
	errReleaseRunning = errors.New("a release build is running now")
	// errDowngrade indicates the requested version is lower than the last released one.
	errDowngrade = errors.New("requested version is lower than the last released version")
)

// Run executes the release workflow: synchronize the version across the
// project files, resolve a toolchain, build the packages, report the
// artifacts and record the manifest.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "hydroopt-release")

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return err
	}

	if opts.Version != "" {
		cfg.Version = opts.Version
	}

	if err = config.Validate(cfg); err != nil {
		return err
	}

	rel, err := newReleaser(ctx, opts.ConfigPath, cfg)
	if err != nil {
		return fmt.Errorf("initialize release: %w", err)
	}

	defer rel.cleanup(ctx)

	if err = rel.Run(ctx); err != nil {
		return fmt.Errorf("release failed: %w", err)
	}

	logger.Info(ctx, "Release completed successfully")

	return nil
}

// newReleaser validates the requested version against the last manifest,
// persists settings and claims the run marker.
func newReleaser(ctx context.Context, configFilename string, cfg *config.Config) (*releaser, error) {
	if IsReleaseRunningNow(ctx) {
		return nil, errReleaseRunning
	}

	manifestPath := filepath.Join(cfg.OutputDir, ManifestFilename)
	if previous, err := LoadManifest(manifestPath); err == nil {
		if !cfg.AllowDowngrade && previous.IsDowngradeFrom(cfg.Version) {
			return nil, fmt.Errorf("%s -> %s: %w",
				previous.VersionNumber, cfg.Version, errDowngrade)
		}
	}

	if err := config.Save(configFilename, cfg); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	marker, err := os.Create(MarkerFilename)
	if err != nil {
		return nil, fmt.Errorf("create release marker: %w", err)
	}

	if err = marker.Close(); err != nil {
		return nil, fmt.Errorf("close release marker: %w", err)
	}

	return &releaser{
		cfg:         cfg,
		cfgFilename: configFilename,
		manifest:    NewManifest(cfg.Version),
	}, nil
}

// Run walks the pipeline: VersionSync -> ResolveToolchain -> Build ->
// Report. Only a Build failure aborts; synchronization and reporting
// issues are logged and carried on.
func (r *releaser) Run(ctx context.Context) error {
	logger.InfoKV(ctx, "Synchronizing version across project files",
		"version", r.cfg.Version)

	// Per-file outcomes are already logged by the synchronizer; the
	// results are intentionally discarded so a partial sync never
	// changes the exit status.
	_ = syncsvc.Run(ctx, &syncsvc.Options{
		Version: r.cfg.Version,
		Targets: r.cfg.Targets,
	})

	logger.Info(ctx, "Resolving Python toolchain")

	tc := toolchain.Resolve(ctx, &toolchain.Options{
		VenvInterpreter: r.cfg.VenvInterpreter,
		Candidates:      r.cfg.InterpreterCandidates,
	})
	r.manifest.Interpreter = tc.Interpreter

	result, err := builder.Run(ctx, &builder.Options{
		Interpreter:  tc.Interpreter,
		OutputDir:    r.cfg.OutputDir,
		ProbeTimeout: r.cfg.ProbeTimeout,
	})
	if err != nil {
		return err
	}

	r.manifest.Strategy = string(result.Strategy)

	artifacts := reporter.Report(ctx, &reporter.Options{
		OutputDir:   r.cfg.OutputDir,
		ProjectName: r.cfg.ProjectName,
		Version:     r.cfg.Version,
	})

	// Recording the manifest is informational; its failure must not
	// flip the exit status after a successful build.
	if err = r.saveManifest(ctx, artifacts); err != nil {
		logger.WarnKV(ctx, "Unable to write release manifest", "error", err)
	}

	return nil
}

// saveManifest records artifact checksums and writes the manifest into
// the output directory.
func (r *releaser) saveManifest(ctx context.Context, artifacts []string) error {
	for _, name := range artifacts {
		checksum, err := GetFileChecksum(filepath.Join(r.cfg.OutputDir, name))
		if err != nil {
			return err
		}

		r.manifest.Artifacts[name] = base64.StdEncoding.EncodeToString(checksum)
	}

	path := filepath.Join(r.cfg.OutputDir, ManifestFilename)

	logger.InfoKV(ctx, "Saving release manifest", "path", path)

	return r.manifest.Save(path)
}

// cleanup removes the run marker.
func (r *releaser) cleanup(ctx context.Context) {
	if _, err := os.Stat(MarkerFilename); err == nil {
		_ = os.Remove(MarkerFilename)
	}

	logger.Info(ctx, "The release build has been stopped")
}
