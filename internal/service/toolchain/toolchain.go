package toolchain

import (
	"context"
	"os"
	"os/exec"

	"github.com/gladistony/hydroopt-release/internal/logger"
)

// Source identifies how the interpreter was chosen.
type Source string

const (
	// SourceVenv means the local virtual-environment interpreter was used.
	SourceVenv Source = "venv"
	// SourcePath means a candidate was resolved on the search path.
	SourcePath Source = "path"
	// SourceFallback means no interpreter was found and the literal
	// token is handed to the builder, deferring failure to invocation.
	SourceFallback Source = "fallback"
)

// fallbackInterpreter is invoked as-is when nothing else resolves.
const fallbackInterpreter = "python"

// Toolchain is the interpreter reference chosen once per run.
type Toolchain struct {
	// Interpreter is the executable path or literal token to invoke.
	Interpreter string
	// Source records which resolution rule produced the interpreter.
	Source Source
}

// Options contains inputs for the toolchain resolver.
type Options struct {
	// VenvInterpreter is the preferred virtual-environment interpreter.
	VenvInterpreter string
	// Candidates are probed on the search path, in order.
	Candidates []string
}

// Resolve picks the interpreter used for the rest of the run. The local
// virtual environment wins whenever it is present and executable, since
// that is where the packaging tool is expected to be installed; the
// resolver itself never fails.
func Resolve(ctx context.Context, opts *Options) *Toolchain {
	if path := opts.VenvInterpreter; path != "" && isExecutableFile(path) {
		logger.InfoKV(ctx, "Using virtual-environment interpreter", "interpreter", path)

		return &Toolchain{Interpreter: path, Source: SourceVenv}
	}

	for _, candidate := range opts.Candidates {
		resolved, err := exec.LookPath(candidate)
		if err != nil {
			continue
		}

		logger.InfoKV(ctx, "Using system interpreter", "interpreter", resolved)

		return &Toolchain{Interpreter: resolved, Source: SourcePath}
	}

	logger.WarnKV(ctx, "No interpreter resolved, deferring failure to invocation",
		"interpreter", fallbackInterpreter)

	return &Toolchain{Interpreter: fallbackInterpreter, Source: SourceFallback}
}

// isExecutableFile reports whether path points to an executable regular file.
func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}
