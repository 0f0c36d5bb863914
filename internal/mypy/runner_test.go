package mypy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/codeglass/mypyscan/internal/testutil"
)

// fakeChecker writes an executable shell script standing in for mypy and
// returns its path.
func fakeChecker(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script checker fakes are not portable to windows")
	}
	path := filepath.Join(t.TempDir(), "fake-mypy")
	content := "#!/bin/sh\n" + script + "\n"
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write fake checker: %v", err)
	}
	return path
}

func runnerConfig(t *testing.T, checkerPath string) *Runner {
	t.Helper()
	cfg := testutil.Config(t, map[string]any{"checker.path": checkerPath})
	return NewRunner(cfg, testutil.DiscardLogger())
}

func TestRunCleanExit(t *testing.T) {
	t.Parallel()
	r := runnerConfig(t, fakeChecker(t, "exit 0"))
	out, err := r.Run(context.Background(), []string{"a.py"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "" {
		t.Errorf("out = %q, want empty", out)
	}
}

func TestRunExitOneIsSuccessWithOutput(t *testing.T) {
	t.Parallel()
	r := runnerConfig(t, fakeChecker(t, `echo "a.py:1:1: error: Name 'x' is not defined"; exit 1`))
	out, err := r.Run(context.Background(), []string{"a.py"})
	if err != nil {
		t.Fatalf("exit code 1 means diagnostics, not failure: %v", err)
	}
	if !strings.Contains(out, "Name 'x' is not defined") {
		t.Errorf("out = %q, want the diagnostic line", out)
	}
}

func TestRunFatalExitIsProcessError(t *testing.T) {
	t.Parallel()
	r := runnerConfig(t, fakeChecker(t, `echo "internal error" >&2; exit 2`))
	_, err := r.Run(context.Background(), []string{"a.py"})

	var procErr *ProcessError
	if !errors.As(err, &procErr) {
		t.Fatalf("got %v, want ProcessError", err)
	}
	if procErr.ExitCode != 2 {
		t.Errorf("exit code = %d, want 2", procErr.ExitCode)
	}
	if !strings.Contains(procErr.Stderr, "internal error") {
		t.Errorf("stderr tail = %q, want the captured stderr", procErr.Stderr)
	}
}

func TestRunMissingExecutable(t *testing.T) {
	t.Parallel()
	r := runnerConfig(t, filepath.Join(t.TempDir(), "no-such-mypy"))
	_, err := r.Run(context.Background(), []string{"a.py"})

	var procErr *ProcessError
	if !errors.As(err, &procErr) {
		t.Fatalf("got %v, want ProcessError for a start failure", err)
	}
	if procErr.ExitCode != -1 {
		t.Errorf("exit code = %d, want -1 for a process that never started", procErr.ExitCode)
	}
}

func TestRunEmptyFileListSkipsProcess(t *testing.T) {
	t.Parallel()
	r := runnerConfig(t, filepath.Join(t.TempDir(), "no-such-mypy"))
	out, err := r.Run(context.Background(), nil)
	if err != nil || out != "" {
		t.Fatalf("empty file list must not start a process, got (%q, %v)", out, err)
	}
}

func TestRunTimeoutCancels(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script checker fakes are not portable to windows")
	}
	cfg := testutil.Config(t, map[string]any{
		"checker.path":    fakeChecker(t, "sleep 30"),
		"checker.timeout": "100ms",
	})
	r := NewRunner(cfg, testutil.DiscardLogger())

	start := time.Now()
	_, err := r.Run(context.Background(), []string{"a.py"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("timeout took %v, the process was not killed promptly", elapsed)
	}
}

func TestRunCallerCancellation(t *testing.T) {
	t.Parallel()
	r := runnerConfig(t, fakeChecker(t, "sleep 30"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := r.Run(ctx, []string{"a.py"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want Canceled", err)
	}
}

func TestRunPassesFormatArgsAndFiles(t *testing.T) {
	t.Parallel()
	r := runnerConfig(t, fakeChecker(t, `echo "$@"`))
	out, err := r.Run(context.Background(), []string{"a.py", "b.py"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"--show-column-numbers", "--no-error-summary", "a.py", "b.py"} {
		if !strings.Contains(out, want) {
			t.Errorf("argv missing %q: %q", want, out)
		}
	}
}
