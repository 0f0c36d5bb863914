// Package testutil provides shared fakes and builders for pipeline tests.
package testutil

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/codeglass/mypyscan/internal/buffer"
	"github.com/codeglass/mypyscan/internal/config"
)

// NewStore creates a buffer store whose temp files live under the test's
// temp directory, so leaked materializations fail loudly.
func NewStore(tb testing.TB) *buffer.Store {
	tb.Helper()
	s := buffer.NewStore()
	s.TempDir = tb.TempDir()
	return s
}

// OpenBuffer opens a buffer for a synthetic absolute path with the given
// content.
func OpenBuffer(tb testing.TB, store *buffer.Store, name, content string) *buffer.Buffer {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), name)
	return store.Open(path, []byte(content))
}

// Config returns the default config with the checker timeout shortened for
// tests, applying any overrides.
func Config(tb testing.TB, overrides map[string]any) *config.Config {
	tb.Helper()
	values := map[string]any{
		"checker.timeout": "5s",
		"inspect.timeout": "5s",
	}
	for k, v := range overrides {
		values[k] = v
	}
	cfg, err := config.LoadFromMap(values)
	if err != nil {
		tb.Fatalf("load test config: %v", err)
	}
	return cfg
}

// FakeRunner is a scripted ProcessRunner. Each call consumes the next
// scripted step; the last step repeats.
type FakeRunner struct {
	Output string
	Err    error

	// RunFunc, when set, overrides Output/Err entirely.
	RunFunc func(ctx context.Context, files []string) (string, error)

	calls atomic.Int32

	mu        sync.Mutex
	lastFiles []string
}

// Run implements scan.ProcessRunner.
func (r *FakeRunner) Run(ctx context.Context, files []string) (string, error) {
	r.calls.Add(1)
	r.mu.Lock()
	r.lastFiles = append([]string(nil), files...)
	r.mu.Unlock()
	if r.RunFunc != nil {
		return r.RunFunc(ctx, files)
	}
	return r.Output, r.Err
}

// Calls returns how many times Run was invoked.
func (r *FakeRunner) Calls() int {
	return int(r.calls.Load())
}

// LastFiles returns the file list of the most recent invocation.
func (r *FakeRunner) LastFiles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastFiles
}

// FakeAvailability reports a fixed availability answer.
type FakeAvailability struct {
	Available bool
	calls     atomic.Int32
}

// Check implements inspect.AvailabilityChecker.
func (a *FakeAvailability) Check(context.Context) bool {
	a.calls.Add(1)
	return a.Available
}

// Calls returns how many times Check was invoked.
func (a *FakeAvailability) Calls() int {
	return int(a.calls.Load())
}

// RecordingNotifier captures notifications for assertions.
type RecordingNotifier struct {
	mu       sync.Mutex
	Warnings []string
	Reports  []error
}

func (n *RecordingNotifier) Warn(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Warnings = append(n.Warnings, msg)
}

func (n *RecordingNotifier) ReportError(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Reports = append(n.Reports, err)
}

// WarnCount returns the number of captured warnings.
func (n *RecordingNotifier) WarnCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Warnings)
}

// ReportCount returns the number of captured exception reports.
func (n *RecordingNotifier) ReportCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Reports)
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
