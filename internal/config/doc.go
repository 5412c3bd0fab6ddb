// Package config defines release settings used by binaries and provides
// helpers to load, validate and save them in YAML format.
//
// The Config type holds the release version, the target files carrying
// version declarations, and the Python toolchain preferences.
package config
