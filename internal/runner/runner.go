// Package runner spawns external executables and turns their exit status
// into errors carrying captured diagnostics.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

// Runner executes commands and captures standard error for diagnostics.
type Runner struct {
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run spawns name with args and blocks until it exits. Exit code 0 resolves
// to nil; any nonzero exit or spawn failure returns an error embedding the
// captured stderr.
func (r *Runner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr

	r.logger.Debug().Str("cmd", name).Strs("args", args).Msg("runner: spawning")

	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		if diag != "" {
			return fmt.Errorf("%s: %w - %s", name, err, diag)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Output runs name with args and returns its stdout, with stderr embedded in
// the error on failure.
func (r *Runner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug().Str("cmd", name).Strs("args", args).Msg("runner: spawning")

	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		if diag != "" {
			return nil, fmt.Errorf("%s: %w - %s", name, err, diag)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// Locate resolves an executable: the explicit override first, then a
// project-local bin directory, then a PATH probe. Returns "" when none of
// the locations yields the binary.
func Locate(override, name string) string {
	if override != "" {
		if _, err := os.Stat(override); err == nil {
			return override
		}
	}

	exe := name
	if runtime.GOOS == "windows" {
		exe = name + ".exe"
	}

	if wd, err := os.Getwd(); err == nil {
		local := filepath.Join(wd, "bin", exe)
		if _, err := os.Stat(local); err == nil {
			return local
		}
	}

	if path, err := exec.LookPath(exe); err == nil {
		return path
	}

	return ""
}
