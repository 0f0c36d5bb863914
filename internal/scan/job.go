package scan

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/codeglass/mypyscan/internal/buffer"
	"github.com/codeglass/mypyscan/internal/checker"
	"github.com/codeglass/mypyscan/internal/config"
	"github.com/codeglass/mypyscan/internal/processor"
)

// ErrJobReused is returned when a Job is run a second time.
var ErrJobReused = errors.New("scan: job already ran; create a new job per request")

// ProcessRunner executes one checker invocation over a prepared file set.
// The concrete implementation lives in internal/mypy; tests inject fakes.
type ProcessRunner interface {
	Run(ctx context.Context, files []string) (string, error)
}

// Job is the unit of work for one scan request: prepare, invoke once for
// the whole batch, parse, post-filter. A Job is single-use: it owns the
// scannable files it created until Dispose releases them, and it must be
// discarded after Run.
type Job struct {
	cfg    *config.Config
	store  *buffer.Store
	runner ProcessRunner
	chain  *processor.Chain
	log    *slog.Logger

	ran atomic.Bool

	// mu guards files: an abandoning waiter may dispose concurrently with
	// a still-running pipeline goroutine.
	mu    sync.Mutex
	files []*ScannableFile
}

// NewJob creates a single-use scan job.
func NewJob(cfg *config.Config, store *buffer.Store, runner ProcessRunner, log *slog.Logger) *Job {
	if log == nil {
		log = slog.Default()
	}
	return &Job{
		cfg:    cfg,
		store:  store,
		runner: runner,
		chain:  processor.Default(),
		log:    log,
	}
}

// Run executes the pipeline for the given buffers and returns problems
// grouped by buffer in checker emission order. A buffer absent from the map
// means no diagnostics; callers must not distinguish that from an empty
// slice. The checker runs once for the whole batch, never per file.
//
// Run does not release the scannable files it created: the owner must call
// Dispose on every exit path, including after an error.
func (j *Job) Run(ctx context.Context, buffers []*buffer.Buffer) (map[*buffer.Buffer][]checker.Problem, error) {
	if !j.ran.CompareAndSwap(false, true) {
		return nil, ErrJobReused
	}

	files, err := Prepare(j.store, j.cfg, buffers)
	if err != nil {
		return nil, err
	}
	j.mu.Lock()
	j.files = files
	j.mu.Unlock()

	if len(files) == 0 {
		j.log.Debug("scan: no eligible buffers")
		return map[*buffer.Buffer][]checker.Problem{}, nil
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}

	raw, err := j.runner.Run(ctx, paths)
	if err != nil {
		return nil, err
	}

	parsed := ParseOutput(raw, files)

	result := make(map[*buffer.Buffer][]checker.Problem, len(parsed))
	for buf, problems := range parsed {
		filtered := j.chain.Process(problems)
		if len(filtered) > 0 {
			result[buf] = filtered
		}
	}

	return result, nil
}

// Dispose releases every scannable file the job created. Idempotent and
// safe to call concurrently with a running pipeline.
func (j *Job) Dispose() {
	j.mu.Lock()
	files := j.files
	j.mu.Unlock()
	disposeAll(files)
}

// Files exposes the prepared file set, for tests asserting the disposal
// invariant.
func (j *Job) Files() []*ScannableFile {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.files
}
