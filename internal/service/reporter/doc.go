// Package reporter lists the distribution files produced by a build.
//
// Reporting is a read-only, non-fatal step: an empty or unreadable
// output directory yields a human-readable message, never an error.
package reporter
