// Package mypy wraps the external mypy executable: a cheap availability
// probe, and a single-shot process invocation that turns raw diagnostic text
// over to the parser. mypy itself is treated as an opaque text-in/text-out
// black box.
package mypy

import (
	"context"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v5"

	"github.com/codeglass/mypyscan/internal/config"
)

// Availability answers the question "can mypy be invoked right now" without
// committing to a scan. The probe result is cached: executables rarely
// appear or disappear mid-session, and the check runs on every inspection.
type Availability struct {
	cfg *config.Config
	log *slog.Logger

	mu      sync.Mutex
	probed  bool
	present bool
}

// NewAvailability creates an availability prober for the configured checker.
func NewAvailability(cfg *config.Config, log *slog.Logger) *Availability {
	if log == nil {
		log = slog.Default()
	}
	return &Availability{cfg: cfg, log: log}
}

// Check reports whether the checker executable is resolvable. The first call
// probes the PATH; later calls return the cached result. A negative result
// is not cached, so a checker installed mid-session is picked up.
func (a *Availability) Check(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.probed && a.present {
		return true
	}

	path, err := exec.LookPath(a.cfg.Checker.Path)
	if err != nil {
		a.log.Debug("mypy not available", "path", a.cfg.Checker.Path, "err", err)
		a.probed = true
		a.present = false
		return false
	}

	a.log.Debug("mypy available", "path", path)
	a.probed = true
	a.present = true
	return true
}

// Reset clears the cached probe result.
func (a *Availability) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.probed = false
	a.present = false
}

// ErrNotReady is reported by WaitUntilReady probes while the checker is
// still unresolvable.
var ErrNotReady = &ProcessError{ExitCode: -1, Err: exec.ErrNotFound}

// WaitUntilReady polls the availability probe with exponential backoff until
// the checker becomes resolvable or ctx is cancelled. The inspection fast
// path never waits; this exists for CLI startup, where a user has asked for
// a scan explicitly and a just-provisioned environment is common.
func (a *Availability) WaitUntilReady(ctx context.Context, maxWait time.Duration) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		a.Reset()
		if !a.Check(ctx) {
			return struct{}{}, ErrNotReady
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(maxWait),
	)
	return err
}
