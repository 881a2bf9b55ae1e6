package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/revline/internal/ir"
)

// ErrExecution marks a failure while applying a step. Effects up to the
// previous step are committed.
var ErrExecution = errors.New("revision step failed")

// ExecutionError reports the step that failed and the last identifier whose
// effects were fully committed, so the caller can resume from there.
type ExecutionError struct {
	// Step is the identifier of the failing revision.
	Step string

	// Direction of the failing step.
	Direction ir.Direction

	// Index is the failing step's position in the plan (0-based).
	Index int

	// LastCommitted is the marker value after the last successful step, or
	// the starting position when the first step failed. Empty (None) also
	// when the starting position was unknown in text mode.
	LastCommitted string

	// Err is the underlying cause.
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s of %s failed (step %d, last committed %s): %v",
		e.Direction, e.Step, e.Index+1, displayID(e.LastCommitted), e.Err)
}

// Unwrap exposes both the execution category and the cause.
func (e *ExecutionError) Unwrap() []error {
	return []error{ErrExecution, e.Err}
}

// IsExecutionError reports whether err is (or wraps) an ExecutionError.
func IsExecutionError(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}
