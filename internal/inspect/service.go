// Package inspect is the async inspection facade: the entry point the
// editor's annotation machinery calls. It runs the scan pipeline off the
// caller's thread, waits with a bounded, cancellation-aware policy, absorbs
// every failure into an empty result plus a classified side effect, and
// guarantees temp-file cleanup on every exit path.
package inspect

import (
	"context"
	"log/slog"
	"time"

	"github.com/codeglass/mypyscan/internal/buffer"
	"github.com/codeglass/mypyscan/internal/checker"
	"github.com/codeglass/mypyscan/internal/config"
	"github.com/codeglass/mypyscan/internal/notify"
	"github.com/codeglass/mypyscan/internal/scan"
)

// AvailabilityChecker is the cheap precondition probe consulted before any
// scan work is committed.
type AvailabilityChecker interface {
	Check(ctx context.Context) bool
}

// Service runs scans for the editor. It holds no per-request state: every
// call constructs its own job and file set, so overlapping inspections for
// different buffers need no coordination. Overlapping inspections for the
// same buffer are not deduplicated; downstream consumers apply results by
// buffer identity and let the latest delivery win.
type Service struct {
	cfg      *config.Config
	store    *buffer.Store
	avail    AvailabilityChecker
	runner   scan.ProcessRunner
	log      *slog.Logger
	notifier notify.Notifier
}

// NewService wires the inspection facade. A nil logger falls back to
// slog.Default, a nil notifier to the silent one.
func NewService(cfg *config.Config, store *buffer.Store, avail AvailabilityChecker, runner scan.ProcessRunner, log *slog.Logger, notifier notify.Notifier) *Service {
	if log == nil {
		log = slog.Default()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		cfg:      cfg,
		store:    store,
		avail:    avail,
		runner:   runner,
		log:      log,
		notifier: notifier,
	}
}

// Inspect scans a single buffer and returns its diagnostics. It never
// blocks the caller for the duration of the checker run beyond the bounded
// wait, and it never fails: every error resolves to an empty result plus a
// classified side effect.
func (s *Service) Inspect(ctx context.Context, buf *buffer.Buffer) []checker.Problem {
	if buf == nil {
		return nil
	}
	return s.Scan(ctx, []*buffer.Buffer{buf})[buf]
}

type scanResult struct {
	problems map[*buffer.Buffer][]checker.Problem
	err      error
}

// Scan runs the pipeline for a batch of buffers. The returned map omits
// clean buffers; callers treat an absent key exactly like an empty slice.
func (s *Service) Scan(ctx context.Context, buffers []*buffer.Buffer) map[*buffer.Buffer][]checker.Problem {
	start := time.Now()

	if !s.avail.Check(ctx) {
		s.log.Debug("scan skipped: mypy not available")
		return map[*buffer.Buffer][]checker.Problem{}
	}

	job := scan.NewJob(s.cfg, s.store, s.runner, s.log)
	// Cleanup must run on every exit path, including abandonment below.
	defer job.Dispose()

	done := make(chan scanResult, 1)
	go func() {
		// The goroutine owns a second disposal pass: if the waiter gave up
		// and already released what existed at that point, files prepared
		// afterwards would otherwise leak. Disposal is exactly-once per file.
		defer job.Dispose()
		problems, err := job.Run(ctx, buffers)
		done <- scanResult{problems: problems, err: err}
	}()

	// The one suspension point: wait for the background scan, the caller's
	// cancellation, or the bounded timeout.
	timeout := time.NewTimer(s.cfg.InspectTimeout())
	defer timeout.Stop()

	var res scanResult
	select {
	case res = <-done:
	case <-ctx.Done():
		s.log.Debug("scan cancelled while waiting", "err", ctx.Err(), "elapsed", time.Since(start))
		return map[*buffer.Buffer][]checker.Problem{}
	case <-timeout.C:
		// Same reporting as cancellation. The checker process, if still
		// running, is not killed by this layer; its own process timeout is
		// the backstop. Known resource-risk boundary, accepted.
		s.log.Debug("scan wait timed out", "timeout", s.cfg.InspectTimeout())
		return map[*buffer.Buffer][]checker.Problem{}
	}

	if res.err != nil {
		s.handleFailure(res.err, buffers)
		return map[*buffer.Buffer][]checker.Problem{}
	}

	total := 0
	for _, problems := range res.problems {
		total += len(problems)
	}
	s.log.Debug("scan completed",
		"buffers", len(buffers),
		"problems", total,
		"duration", time.Since(start),
	)
	return res.problems
}
