// Package version exposes build metadata injected via ldflags and
// helpers for package release versions. Release versions are stricter
// than semver: only plain MAJOR.MINOR.PATCH triples are accepted,
// because that is the only shape the version synchronizer can stamp
// into the project files.
package version
