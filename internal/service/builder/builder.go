package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/gladistony/hydroopt-release/internal/logger"
)

// Strategy identifies which packaging entry point produced the artifacts.
type Strategy string

const (
	// StrategyFrontend is the PEP 517 build frontend (python -m build).
	StrategyFrontend Strategy = "frontend"
	// StrategyLegacy is the direct setup.py invocation producing sdist
	// and wheel targets.
	StrategyLegacy Strategy = "legacy"
)

// defaultProbeTimeout bounds the frontend availability probe.
const defaultProbeTimeout = 30 * time.Second

// errInterpreterNotSet is returned when no interpreter reference is provided.
var errInterpreterNotSet = errors.New("interpreter is not set")

// Options contains inputs for the package builder.
type Options struct {
	// Interpreter is the executable reference chosen by the resolver.
	Interpreter string
	// OutputDir is where the backend deposits artifacts.
	OutputDir string
	// ProbeTimeout bounds the frontend availability probe.
	ProbeTimeout time.Duration
}

// Result describes a completed build.
type Result struct {
	// Strategy is the entry point that actually ran.
	Strategy Strategy
}

// Run ensures packaging dependencies are present, selects a build
// strategy and executes it. Exactly one strategy runs per call; its
// failure is fatal and propagates to the caller, while the dependency
// upgrade is best-effort only.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	if opts.Interpreter == "" {
		return nil, errInterpreterNotSet
	}

	installPackagingDeps(ctx, opts.Interpreter)

	strategy := StrategyFrontend
	if !frontendAvailable(ctx, opts) {
		strategy = StrategyLegacy
	}

	logger.InfoKV(ctx, "Building distribution packages", "strategy", string(strategy))

	var err error

	switch strategy {
	case StrategyFrontend:
		err = runPassthrough(ctx, opts.Interpreter, "-m", "build", "--outdir", opts.OutputDir)
		if err != nil {
			err = fmt.Errorf("build frontend: %w", err)
		}
	case StrategyLegacy:
		err = runPassthrough(ctx, opts.Interpreter, "setup.py",
			"sdist", "--dist-dir", opts.OutputDir,
			"bdist_wheel", "--dist-dir", opts.OutputDir)
		if err != nil {
			err = fmt.Errorf("legacy build: %w", err)
		}
	}

	if err != nil {
		return nil, err
	}

	return &Result{Strategy: strategy}, nil
}

// installPackagingDeps upgrades the packaging toolchain. Failure is
// intentionally discarded: an offline upgrade may fail while a cached
// toolchain still builds fine.
func installPackagingDeps(ctx context.Context, interpreter string) {
	logger.Info(ctx, "Upgrading packaging dependencies")

	err := runPassthrough(ctx, interpreter, "-m", "pip", "install", "--upgrade",
		"build", "wheel", "setuptools")
	if err != nil {
		logger.WarnKV(ctx, "Packaging dependency upgrade failed, continuing",
			"error", err)
	}
}

// frontendAvailable probes the build frontend with a version check.
// A failed probe is expected on hosts without the frontend installed
// and simply selects the legacy strategy.
func frontendAvailable(ctx context.Context, opts *Options) bool {
	probeTimeout := opts.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, opts.Interpreter, "-m", "build", "--version")

	output, err := cmd.Output()
	if err != nil {
		logger.InfoKV(ctx, "Build frontend unavailable, falling back to setup.py",
			"error", err)

		return false
	}

	logger.InfoKV(ctx, "Build frontend detected",
		"version", strings.TrimSpace(string(output)))

	return true
}

// runPassthrough executes the interpreter with the provided arguments,
// streaming subprocess output so failures surface through the failing
// tool's own messages.
func runPassthrough(ctx context.Context, interpreter string, args ...string) error {
	cmd := exec.CommandContext(ctx, interpreter, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
