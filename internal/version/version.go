package version

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

var (
	// Version is the semantic version of the build. It can be overridden via ldflags.
	Version = "1.0.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// errNotReleaseVersion is returned when a string is not a plain MAJOR.MINOR.PATCH triple.
var errNotReleaseVersion = errors.New("not a MAJOR.MINOR.PATCH release version")

// releasePattern matches a dotted triple of non-negative integers.
var releasePattern = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+$`)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit and build time.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}

// ParseRelease parses a package release version. Unlike general semver,
// release versions are restricted to plain MAJOR.MINOR.PATCH triples:
// no prerelease suffix, no build metadata, no "v" prefix.
func ParseRelease(s string) (*goversion.Version, error) {
	s = strings.TrimSpace(s)
	if !releasePattern.MatchString(s) {
		return nil, fmt.Errorf("%q: %w", s, errNotReleaseVersion)
	}

	parsed, err := goversion.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("parse version %q: %w", s, err)
	}

	return parsed, nil
}
