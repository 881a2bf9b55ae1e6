package engine

import (
	"context"
	"errors"

	"github.com/roach88/revline/internal/ir"
)

// Mode selects how a target applies steps.
type Mode int

const (
	// ModeLive executes statements and persists the marker.
	ModeLive Mode = iota
	// ModeText emits statements as text; nothing is persisted.
	ModeText
)

func (m Mode) String() string {
	switch m {
	case ModeLive:
		return "live"
	case ModeText:
		return "text"
	}
	return "unknown"
}

// ErrNoCurrentState is returned when a text target is asked for its current
// position and the caller supplied no starting revision.
var ErrNoCurrentState = errors.New("current revision is unknown in offline mode; supply a starting revision")

// Target is the collaborator a session runs against.
type Target interface {
	// Mode reports whether the target executes or emits.
	Mode() Mode

	// CurrentPosition reads the marker without side effects.
	// Returns ir.None when no revision has been applied.
	// Text targets return ErrNoCurrentState.
	CurrentPosition(ctx context.Context) (string, error)

	// Begin opens the transaction for one step.
	Begin(ctx context.Context) (Tx, error)

	// Close releases the target. The session calls it exactly once.
	Close() error
}

// Tx is one step's unit of work. Its Exec method is the ir.Executor handed
// to payloads.
type Tx interface {
	ir.Executor

	// SetMarker moves the marker from one position to another:
	// from None inserts, to None deletes, otherwise updates.
	SetMarker(ctx context.Context, from, to string) error

	// ReplaceMarker sets the marker to `to` regardless of its previous value.
	ReplaceMarker(ctx context.Context, to string) error

	Commit() error
	Rollback() error
}

// Framer is implemented by text targets that wrap their output.
type Framer interface {
	Header(ctx context.Context, info FrameInfo) error
	Footer(ctx context.Context) error
}

// FrameInfo describes the script being framed.
type FrameInfo struct {
	Direction        ir.Direction
	StartingRevision string
	HasStart         bool
	Destination      string
	Tag              string
}

// Annotator is implemented by transactions that can carry a comment, used to
// label each step in emitted text.
type Annotator interface {
	Annotate(ctx context.Context, text string) error
}
