package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gladistony/hydroopt-release/internal/version"
)

// Target declares a project file carrying a mutable version declaration.
type Target struct {
	// Path is the file location relative to the project root.
	Path string `yaml:"path"`
	// Declaration is the assignment key preceding the quoted version
	// literal: "version" in setup.py and pyproject.toml, "__version__"
	// in the package module.
	Declaration string `yaml:"declaration"`
}

// Config holds release parameters shared by the hydroopt-release binaries.
type Config struct {
	// ProjectName is the distribution name used to recognize artifacts.
	ProjectName string `yaml:"project_name"`
	// Version is the release version stamped into every target file.
	Version string `yaml:"version"`
	// Targets are the files whose version declarations are rewritten.
	Targets []Target `yaml:"targets"`
	// OutputDir is where the packaging backend deposits artifacts.
	OutputDir string `yaml:"output_dir"`
	// VenvInterpreter is the preferred virtual-environment interpreter.
	VenvInterpreter string `yaml:"venv_interpreter"`
	// InterpreterCandidates are probed on PATH when no venv is usable.
	InterpreterCandidates []string `yaml:"interpreter_candidates"`
	// AllowDowngrade permits releasing a version lower than the one
	// recorded in an existing manifest.
	AllowDowngrade bool `yaml:"allow_downgrade"`
	// ProbeTimeout bounds the build-frontend availability probe.
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

const (
	// DefaultConfigFilename is the default filename for release settings.
	DefaultConfigFilename = "hydroopt-release-settings.yaml"

	// DefaultProjectName is the distribution name of the package.
	DefaultProjectName = "hydroopt"

	// DefaultVersion is the release version used when none is configured.
	DefaultVersion = "0.6.1"

	// DefaultOutputDir is where setuptools and build deposit artifacts.
	DefaultOutputDir = "dist"

	// DefaultProbeTimeout bounds the build-frontend version probe.
	DefaultProbeTimeout = 30 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNoTargets is returned when the target file set is empty.
	errNoTargets = errors.New("at least one target file must be declared")
	// errTargetIncomplete is returned when a target misses its path or declaration.
	errTargetIncomplete = errors.New("target must declare both path and declaration")
)

// Default returns settings matching the hydroopt project layout.
func Default() *Config {
	return &Config{
		ProjectName: DefaultProjectName,
		Version:     DefaultVersion,
		Targets: []Target{
			{Path: "setup.py", Declaration: "version"},
			{Path: "pyproject.toml", Declaration: "version"},
			{Path: filepath.Join("HydroOpt", "__init__.py"), Declaration: "__version__"},
		},
		OutputDir:             DefaultOutputDir,
		VenvInterpreter:       filepath.Join("venv", "bin", "python"),
		InterpreterCandidates: []string{"python3", "python"},
		ProbeTimeout:          DefaultProbeTimeout,
	}
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load but returns Default settings
// when no settings file exists yet.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	if _, err := os.Stat(filepath.Clean(path)); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return Load(path)
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ProjectName == "" {
		cfg.ProjectName = DefaultProjectName
	}

	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}

	if _, err := version.ParseRelease(cfg.Version); err != nil {
		return err
	}

	if len(cfg.Targets) == 0 {
		return errNoTargets
	}

	for _, target := range cfg.Targets {
		if target.Path == "" || target.Declaration == "" {
			return fmt.Errorf("%q: %w", target.Path, errTargetIncomplete)
		}
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	if len(cfg.InterpreterCandidates) == 0 {
		cfg.InterpreterCandidates = []string{"python3", "python"}
	}

	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}

	return nil
}
