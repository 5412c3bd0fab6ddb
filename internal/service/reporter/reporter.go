package reporter

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/gladistony/hydroopt-release/internal/logger"
)

// Options contains inputs for the artifact reporter.
type Options struct {
	// OutputDir is where the build step deposited artifacts.
	OutputDir string
	// ProjectName is the distribution name prefixing artifact files.
	ProjectName string
	// Version is the release version embedded in artifact names.
	Version string
}

// Report lists the artifacts produced for the release. It is purely
// informational: problems reading the output directory and an empty
// result are both logged, and the caller's exit status is never
// affected.
func Report(ctx context.Context, opts *Options) []string {
	prefix := opts.ProjectName + "-" + opts.Version

	entries, err := os.ReadDir(opts.OutputDir)
	if err != nil {
		logger.WarnKV(ctx, "Unable to read output directory",
			"dir", opts.OutputDir, "error", err)

		return nil
	}

	artifacts := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if strings.HasPrefix(entry.Name(), prefix) {
			artifacts = append(artifacts, entry.Name())
		}
	}

	if len(artifacts) == 0 {
		logger.InfoKV(ctx, "No artifact found",
			"dir", opts.OutputDir, "prefix", prefix)

		return nil
	}

	sort.Strings(artifacts)

	for _, name := range artifacts {
		logger.InfoKV(ctx, "Built artifact", "dir", opts.OutputDir, "name", name)
	}

	return artifacts
}
