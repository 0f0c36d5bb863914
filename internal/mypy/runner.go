package mypy

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"time"

	"github.com/codeglass/mypyscan/internal/config"
)

const stderrTailBytes = 32 * 1024

// formatArgs pin mypy's output to the line grammar the parser understands.
var formatArgs = []string{
	"--show-column-numbers",
	"--no-error-summary",
	"--no-color-output",
	"--no-pretty",
}

// Runner invokes the checker process once per batch of files.
// It never retries a failed invocation; failure classification is the
// coordinator's concern.
type Runner struct {
	cfg *config.Config
	log *slog.Logger
}

// NewRunner creates a process runner for the configured checker.
func NewRunner(cfg *config.Config, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{cfg: cfg, log: log}
}

// Run executes one checker invocation over the whole file set and returns
// raw diagnostic output. mypy exits 0 when clean and 1 when it reported
// type errors; both are successful invocations. Anything else (fatal exit,
// start failure, kill) is a ProcessError carrying the stderr tail.
func (r *Runner) Run(ctx context.Context, files []string) (string, error) {
	if len(files) == 0 {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.CheckerTimeout())
	defer cancel()

	args := make([]string, 0, len(formatArgs)+len(r.cfg.Checker.Args)+len(files))
	args = append(args, formatArgs...)
	args = append(args, r.cfg.Checker.Args...)
	args = append(args, files...)

	cmd := exec.CommandContext(ctx, r.cfg.Checker.Path, args...) //nolint:gosec // Checker path is explicit user configuration.
	configureProcessGroup(cmd)

	var stdout bytes.Buffer
	stderr := newTailBuffer(stderrTailBytes)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	r.log.Debug("mypy run finished",
		"files", len(files),
		"duration", time.Since(start),
		"bytes", stdout.Len(),
	)

	if err != nil {
		// Cancellation wins over whatever exit state the kill produced.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if code := exitErr.ExitCode(); code == 1 {
				// Diagnostics were reported; the run itself succeeded.
				return stdout.String(), nil
			}
			return "", &ProcessError{
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
				Err:      err,
			}
		}
		return "", &ProcessError{ExitCode: -1, Stderr: stderr.String(), Err: err}
	}

	return stdout.String(), nil
}
