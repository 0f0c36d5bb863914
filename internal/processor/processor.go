// Package processor provides a composable post-filter pipeline over scan
// results.
//
// The processor chain pattern is inspired by golangci-lint's approach:
// problems flow through a sequence of processors, each transforming the
// slice (filtering, modifying, or augmenting).
//
// Standard pipeline order:
//  1. NoiseFilter - Remove transient-edit noise diagnostics
//  2. Deduplication - Remove duplicate problems
package processor

import "github.com/codeglass/mypyscan/internal/checker"

// Processor transforms a slice of problems.
// Implementations should be stateless.
type Processor interface {
	// Name returns the processor's identifier (for debugging/logging).
	Name() string

	// Process applies the processor's logic to problems.
	// Must not modify the input slice; return a new slice if filtering.
	Process(problems []checker.Problem) []checker.Problem
}

// Chain runs processors in sequence.
type Chain struct {
	processors []Processor
}

// NewChain creates a new processor chain.
func NewChain(processors ...Processor) *Chain {
	return &Chain{processors: processors}
}

// Default returns the standard post-filter chain applied to every scan.
func Default() *Chain {
	return NewChain(
		NewNoiseFilter(),
		NewDeduplication(),
	)
}

// Process runs all processors in sequence.
func (c *Chain) Process(problems []checker.Problem) []checker.Problem {
	for _, p := range c.processors {
		problems = p.Process(problems)
	}
	return problems
}

// filterProblems is a helper for processors that filter problems.
// It returns a new slice containing only problems where keep() returns true.
func filterProblems(problems []checker.Problem, keep func(p checker.Problem) bool) []checker.Problem {
	result := make([]checker.Problem, 0, len(problems))
	for _, p := range problems {
		if keep(p) {
			result = append(result, p)
		}
	}
	return result
}
