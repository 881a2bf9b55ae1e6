package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/revline/internal/engine"
	"github.com/roach88/revline/internal/graph"
	"github.com/roach88/revline/internal/loader"
)

// Error codes for CLI output.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeConfig      = "E002" // Config file unreadable or invalid
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeLoad        = "E010" // Revision files invalid or graph malformed
	ErrCodeResolution  = "E020" // Revision reference does not resolve
	ErrCodePath        = "E030" // No path between revisions, or range misuse
	ErrCodeNoCurrent   = "E031" // Offline downgrade without a starting revision
	ErrCodeExecution   = "E040" // A step failed while running
	ErrCodeDatabase    = "E050" // Database could not be opened or queried
	ErrCodeCheck       = "E060" // check found problems
)

// errorCode maps an error to its CLI code. Typed revline errors are matched
// by category.
func errorCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrExecution):
		return ErrCodeExecution
	case errors.Is(err, engine.ErrNoCurrentState):
		return ErrCodeNoCurrent
	case errors.Is(err, graph.ErrResolution):
		return ErrCodeResolution
	case errors.Is(err, graph.ErrPath):
		return ErrCodePath
	case errors.Is(err, os.ErrNotExist):
		return ErrCodeNotFound
	case errors.Is(err, graph.ErrLoad):
		return ErrCodeLoad
	}
	return ErrCodeGeneric
}

// errorDetails returns structured context for JSON output.
func errorDetails(err error) any {
	var ee *engine.ExecutionError
	if errors.As(err, &ee) {
		return map[string]any{
			"revision":       ee.Step,
			"direction":      string(ee.Direction),
			"step":           ee.Index + 1,
			"last_committed": ee.LastCommitted,
		}
	}
	var le *loader.LoadError
	if errors.As(err, &le) {
		d := map[string]any{"path": le.Path}
		if le.Field != "" {
			d["field"] = le.Field
		}
		if le.Pos.IsValid() {
			d["line"] = le.Pos.Line()
		}
		return d
	}
	var ahe *graph.AmbiguousHeadError
	if errors.As(err, &ahe) {
		return map[string]any{"heads": ahe.Heads}
	}
	var are *graph.AmbiguousRevisionError
	if errors.As(err, &are) {
		return map[string]any{"matches": are.Matches}
	}
	return nil
}

// fail reports err through the formatter and returns the ExitError for
// cobra. Step failures exit with ExitFailure; everything else is a command
// error.
func fail(f *OutputFormatter, code string, err error) error {
	if code == "" {
		code = errorCode(err)
	}
	_ = f.Error(code, err.Error(), errorDetails(err))

	exit := ExitCommandError
	if code == ErrCodeExecution || code == ErrCodeCheck {
		exit = ExitFailure
	}
	return WrapExitError(exit, code, err)
}

// failf is fail with a formatted message and no underlying typed error.
func failf(f *OutputFormatter, code, format string, args ...any) error {
	return fail(f, code, fmt.Errorf(format, args...))
}
