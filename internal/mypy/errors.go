package mypy

import "fmt"

// ProcessError is returned when the checker process could not produce usable
// output: it failed to start, was killed, or exited with a fatal status.
// A non-zero exit caused by reported type errors is not a ProcessError.
type ProcessError struct {
	// ExitCode is the process exit code, or -1 if the process never ran
	// or was terminated by a signal.
	ExitCode int

	// Stderr is the tail of the process's stderr output.
	Stderr string

	Err error
}

func (e *ProcessError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("mypy process failed (exit %d): %v: %s", e.ExitCode, e.Err, e.Stderr)
	}
	return fmt.Sprintf("mypy process failed (exit %d): %v", e.ExitCode, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }
