// Package release orchestrates a full package release.
//
// The pipeline is strictly linear: synchronize the version literal
// across the project files, resolve a Python toolchain, drive the
// packaging backend and report the produced artifacts. Only a build
// failure is fatal. A marker file guards against two builds mutating
// the output directory at the same time, and a YAML manifest with
// artifact checksums is recorded next to the artifacts.
package release
