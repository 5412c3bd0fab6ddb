// Package sync rewrites the version literal across the project's
// declared files before a build.
//
// Each target file carries exactly one recognizable declaration
// (version = "..." or __version__ = "..."); only the numeric literal
// inside it is replaced, all other content stays byte-identical.
// Failures are per-file and never abort the set.
package sync
