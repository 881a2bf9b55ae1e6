package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/revline/internal/ir"
)

// Error categories. Each typed error below unwraps to exactly one of these.
var (
	// ErrLoad marks a malformed revision set. Fatal before any planning.
	ErrLoad = errors.New("revision graph load failed")

	// ErrResolution marks a reference that could not be turned into a
	// single identifier. No side effects have happened yet.
	ErrResolution = errors.New("revision resolution failed")

	// ErrPath marks a request for a path that cannot be computed.
	ErrPath = errors.New("revision path unavailable")
)

// InvalidRevisionError reports a record that cannot be a graph node.
type InvalidRevisionError struct {
	Path    string
	Message string
}

func (e *InvalidRevisionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid revision in %s: %s", e.Path, e.Message)
	}
	return "invalid revision: " + e.Message
}

func (e *InvalidRevisionError) Unwrap() error { return ErrLoad }

// DuplicateRevisionError reports two records sharing one identifier.
type DuplicateRevisionError struct {
	ID    string
	Paths []string
}

func (e *DuplicateRevisionError) Error() string {
	if len(e.Paths) > 0 {
		return fmt.Sprintf("duplicate revision %q (%s)", e.ID, strings.Join(e.Paths, ", "))
	}
	return fmt.Sprintf("duplicate revision %q", e.ID)
}

func (e *DuplicateRevisionError) Unwrap() error { return ErrLoad }

// DanglingReferenceError reports a down_revision naming no known revision.
type DanglingReferenceError struct {
	ID           string
	DownRevision string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("revision %q refers to unknown down_revision %q", e.ID, e.DownRevision)
}

func (e *DanglingReferenceError) Unwrap() error { return ErrLoad }

// CycleError reports a parent chain that never reaches a root.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "revision cycle: " + strings.Join(e.Path, " -> ")
}

func (e *CycleError) Unwrap() error { return ErrLoad }

// NoSuchRevisionError reports a reference matching nothing.
type NoSuchRevisionError struct {
	Ref string
}

func (e *NoSuchRevisionError) Error() string {
	return fmt.Sprintf("no such revision %q", e.Ref)
}

func (e *NoSuchRevisionError) Unwrap() error { return ErrResolution }

// AmbiguousRevisionError reports a prefix matching several identifiers.
type AmbiguousRevisionError struct {
	Prefix  string
	Matches []string
}

func (e *AmbiguousRevisionError) Error() string {
	return fmt.Sprintf("revision prefix %q is ambiguous; matches: %s", e.Prefix, strings.Join(e.Matches, ", "))
}

func (e *AmbiguousRevisionError) Unwrap() error { return ErrResolution }

// AmbiguousHeadError reports "head" requested while several heads exist.
type AmbiguousHeadError struct {
	Heads []string
}

func (e *AmbiguousHeadError) Error() string {
	return "multiple heads present: " + strings.Join(e.Heads, ", ")
}

func (e *AmbiguousHeadError) Unwrap() error { return ErrResolution }

// AmbiguousBaseError reports "base" requested while several roots exist.
type AmbiguousBaseError struct {
	Bases []string
}

func (e *AmbiguousBaseError) Error() string {
	return "multiple bases present: " + strings.Join(e.Bases, ", ")
}

func (e *AmbiguousBaseError) Unwrap() error { return ErrResolution }

// NotAncestorError reports a destination unreachable by single-branch
// ascension (or descent) from the current position.
type NotAncestorError struct {
	Current     string
	Destination string
	Direction   ir.Direction
}

func (e *NotAncestorError) Error() string {
	ancestor, descendant := e.Current, e.Destination
	if e.Direction == ir.Downgrade {
		ancestor, descendant = e.Destination, e.Current
	}
	return fmt.Sprintf("revision %s is not an ancestor of revision %s", display(ancestor), display(descendant))
}

func (e *NotAncestorError) Unwrap() error { return ErrPath }

// RangeNotAllowedError reports an "A:B" range used with live execution.
type RangeNotAllowedError struct {
	Ref string
}

func (e *RangeNotAllowedError) Error() string {
	return fmt.Sprintf("range revision %q not allowed outside offline mode", e.Ref)
}

func (e *RangeNotAllowedError) Unwrap() error { return ErrPath }

// display renders the None position readably.
func display(id string) string {
	if id == "" {
		return "<base>"
	}
	return id
}
