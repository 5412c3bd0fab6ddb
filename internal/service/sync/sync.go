package sync

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gladistony/hydroopt-release/internal/config"
	"github.com/gladistony/hydroopt-release/internal/logger"
)

// versionLiteral matches any dotted numeric triple regardless of digit
// count, so a bump across minor or patch series still matches the old
// value.
const versionLiteral = `[0-9]+\.[0-9]+\.[0-9]+`

// Options contains inputs for the version synchronizer.
type Options struct {
	// Version is the release version to stamp into every target.
	Version string
	// Targets are the files whose version declarations are rewritten.
	Targets []config.Target
}

// Result reports the outcome of synchronizing a single target file.
type Result struct {
	// Path is the target file location.
	Path string
	// Replacements is the number of declarations rewritten (0 or 1).
	Replacements int
	// Err is set when the file could not be read or written. Earlier
	// targets stay updated; there is no rollback across the set.
	Err error
}

// Run rewrites the version declaration in every target file and reports
// per-file outcomes. It never aborts early and never fails the run:
// a missing file or an unmatched pattern is logged and carried in the
// result, leaving the remaining targets to proceed.
func Run(ctx context.Context, opts *Options) []Result {
	results := make([]Result, 0, len(opts.Targets))

	for _, target := range opts.Targets {
		replacements, err := replaceInFile(target.Path, target.Declaration, opts.Version)
		results = append(results, Result{
			Path:         target.Path,
			Replacements: replacements,
			Err:          err,
		})

		switch {
		case err != nil:
			logger.WarnKV(ctx, "Unable to synchronize version",
				"path", target.Path, "error", err)
		case replacements == 0:
			logger.WarnKV(ctx, "No version declaration found",
				"path", target.Path, "declaration", target.Declaration)
		default:
			logger.InfoKV(ctx, "Version synchronized",
				"path", target.Path, "version", opts.Version)
		}
	}

	return results
}

// declarationPattern builds the pattern recognizing a quoted version
// literal assigned to the given declaration key.
func declarationPattern(declaration string) *regexp.Regexp {
	return regexp.MustCompile(
		`(` + regexp.QuoteMeta(declaration) + `\s*=\s*")` + versionLiteral + `(")`,
	)
}

// replaceInFile rewrites the first version declaration in the file,
// leaving every other byte unchanged. It returns the number of
// replacements performed: zero means the pattern did not match.
func replaceInFile(path, declaration, newVersion string) (int, error) {
	cleanPath := filepath.Clean(path)

	contents, err := os.ReadFile(cleanPath)
	if err != nil {
		return 0, fmt.Errorf("read target: %w", err)
	}

	idx := declarationPattern(declaration).FindSubmatchIndex(contents)
	if idx == nil {
		return 0, nil
	}

	var updated bytes.Buffer

	updated.Grow(len(contents) + len(newVersion))
	updated.Write(contents[:idx[3]])
	updated.WriteString(newVersion)
	updated.Write(contents[idx[4]:])

	if bytes.Equal(contents, updated.Bytes()) {
		// Already at the requested version, keep the file untouched.
		return 1, nil
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return 0, fmt.Errorf("stat target: %w", err)
	}

	if err := os.WriteFile(cleanPath, updated.Bytes(), info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("write target: %w", err)
	}

	return 1, nil
}
