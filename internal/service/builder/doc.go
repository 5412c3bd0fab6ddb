// Package builder drives the Python packaging backend.
//
// It upgrades packaging dependencies on a best-effort basis, probes the
// PEP 517 build frontend and falls back to the legacy setup.py entry
// point when the probe fails. Exactly one strategy executes per run and
// its failure is the only fatal outcome of the whole pipeline.
package builder
