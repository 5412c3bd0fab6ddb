package release

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"
	"gopkg.in/yaml.v3"

	"github.com/gladistony/hydroopt-release/internal/logger"
	"github.com/gladistony/hydroopt-release/internal/version"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

const (
	// ManifestFilename stores the release manifest written next to the artifacts.
	ManifestFilename = "hydroopt-release-manifest.yaml"

	// MarkerFilename marks that a release build is running right now to avoid parallel execution.
	MarkerFilename = "hydroopt-release-marker.bin"

	// DefaultFileMode is used when writing the release manifest.
	DefaultFileMode os.FileMode = 0o644

	// DefaultChecksumFunction is used to calculate artifact hashes.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512

	// releaseExecutable is the process name checked when a marker looks fresh.
	releaseExecutable = "hydroopt-release"

	// markerLifetime is the period after which a release marker is
	// considered stale. Builds can be slow, so it is generous.
	markerLifetime = time.Hour

	// defaultMapCapacity is the default initial capacity for maps and slices.
	defaultMapCapacity = 16
)

var errHashUnavailable = errors.New("hash function unavailable")

// Manifest describes a completed release build.
type Manifest struct {
	// VersionNumber is the semantic version of this release.
	VersionNumber string `yaml:"version"`
	// Strategy is the packaging entry point that produced the artifacts.
	Strategy string `yaml:"strategy"`
	// Interpreter is the toolchain that drove the build.
	Interpreter string `yaml:"interpreter"`
	// Artifacts maps artifact filenames to their base64-encoded checksums.
	Artifacts map[string]string `yaml:"artifacts"`
}

// NewManifest produces a Manifest initialized for the given release version.
func NewManifest(versionNumber string) *Manifest {
	return &Manifest{
		VersionNumber: versionNumber,
		Artifacts:     make(map[string]string, defaultMapCapacity),
	}
}

// LoadManifest reads a previously written manifest from the output directory.
func LoadManifest(path string) (*Manifest, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(contents, &manifest); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	return &manifest, nil
}

// Save writes the manifest to the provided path.
func (m *Manifest) Save(path string) error {
	contents, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), contents, DefaultFileMode); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// IsDowngradeFrom reports whether requested is lower than the version
// recorded in the manifest. Unparseable recorded versions never block a
// release.
func (m *Manifest) IsDowngradeFrom(requested string) bool {
	recorded, err := version.ParseRelease(m.VersionNumber)
	if err != nil {
		return false
	}

	next, err := version.ParseRelease(requested)
	if err != nil {
		return false
	}

	return next.LessThan(recorded)
}

// GetFileChecksum returns checksum bytes for a file using DefaultChecksumFunction.
func GetFileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	hash := hasher.Sum(nil)

	return hash, nil
}

// IsReleaseRunningNow checks presence of a marker file and attempts recovery
// when it looks abandoned. A fresh marker always means busy; a stale one is
// kept only while another release process is still alive.
func IsReleaseRunningNow(ctx context.Context) bool {
	logger.Info(ctx, "Checking for the presence of a release marker")

	fileInfo, err := os.Stat(MarkerFilename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info(ctx, "Release marker not found, continuing")
			return false
		}

		logger.Infof(ctx, "Unable to read release marker: %v", err)

		return false
	}

	if time.Since(fileInfo.ModTime()) <= markerLifetime {
		return true
	}

	logger.Info(ctx, "The release marker is stale, attempting cleanup")

	if isReleaseProcessAlive() {
		return true
	}

	if err = os.Remove(MarkerFilename); err != nil {
		return true
	}

	return false
}

// isReleaseProcessAlive reports whether another release process is running.
// When the process table cannot be read, the marker is trusted.
func isReleaseProcessAlive() bool {
	processList, err := ps.Processes()
	if err != nil {
		return true
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		name := process.Executable()
		if strings.TrimSuffix(name, executableExtension()) == releaseExecutable {
			return true
		}
	}

	return false
}

// executableExtension returns ".exe" on Windows and "" elsewhere.
func executableExtension() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return ".exe"
	}

	return ""
}
