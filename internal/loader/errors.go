package loader

import (
	"fmt"

	"cuelang.org/go/cue/token"

	"github.com/roach88/revline/internal/graph"
)

// LoadError reports a revision file that could not be read or decoded.
// It matches graph.ErrLoad.
type LoadError struct {
	Path    string
	Field   string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *LoadError) Error() string {
	loc := e.Path
	if e.Pos.IsValid() {
		loc = fmt.Sprintf("%s:%d:%d", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
	}
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", loc, msg)
}

// Unwrap exposes both the load category and the underlying cause.
func (e *LoadError) Unwrap() []error {
	if e.Err != nil {
		return []error{graph.ErrLoad, e.Err}
	}
	return []error{graph.ErrLoad}
}
