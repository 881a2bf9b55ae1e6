package ir

import "context"

// None is the position before any revision has been applied.
const None = ""

// Revision is one migration step node in the revision graph.
type Revision struct {
	ID           string  `json:"revision"`
	DownRevision string  `json:"down_revision,omitempty"` // None for a root
	Message      string  `json:"message"`
	Payload      Payload `json:"-"`
	Path         string  `json:"path,omitempty"` // Source file, if loaded from disk
}

// IsRoot reports whether the revision has no parent.
func (r *Revision) IsRoot() bool {
	return r.DownRevision == None
}

// String renders the revision the way history listings show it:
// "parent -> id, message".
func (r *Revision) String() string {
	parent := r.DownRevision
	if parent == None {
		parent = "<base>"
	}
	return parent + " -> " + r.ID + ", " + r.Message
}

// Direction selects which half of a payload runs.
type Direction string

const (
	Upgrade   Direction = "upgrade"
	Downgrade Direction = "downgrade"
)

// Executor runs a single statement against a target.
// Live targets execute it; text targets write it out.
type Executor interface {
	Exec(ctx context.Context, stmt string) error
}

// Payload is the opaque upgrade/downgrade logic attached to a revision.
// Loading a payload never runs it; only the engine invokes these methods.
type Payload interface {
	Upgrade(ctx context.Context, x Executor) error
	Downgrade(ctx context.Context, x Executor) error
}

// Run dispatches to the half of the payload selected by dir.
// A nil payload is a no-op step.
func Run(ctx context.Context, p Payload, dir Direction, x Executor) error {
	if p == nil {
		return nil
	}
	if dir == Downgrade {
		return p.Downgrade(ctx, x)
	}
	return p.Upgrade(ctx, x)
}
