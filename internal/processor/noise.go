package processor

import "github.com/codeglass/mypyscan/internal/checker"

// InvalidSyntaxMessage is the bare diagnostic mypy emits on incomplete
// source. It shows up constantly while a file is mid-edit, so it is treated
// as non-actionable noise rather than a real type error.
const InvalidSyntaxMessage = "invalid syntax"

// NoiseFilter removes diagnostics whose message exactly equals a known
// transient-edit sentinel.
type NoiseFilter struct{}

// NewNoiseFilter creates a new noise filter processor.
func NewNoiseFilter() *NoiseFilter {
	return &NoiseFilter{}
}

// Name returns the processor's identifier.
func (p *NoiseFilter) Name() string {
	return "noise-filter"
}

// Process drops problems carrying the invalid-syntax sentinel message.
func (p *NoiseFilter) Process(problems []checker.Problem) []checker.Problem {
	return filterProblems(problems, func(p checker.Problem) bool {
		return p.Message != InvalidSyntaxMessage
	})
}
