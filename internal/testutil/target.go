package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/revline/internal/engine"
	"github.com/roach88/revline/internal/ir"
)

// TraceEntry is one committed effect on a MemoryTarget.
type TraceEntry struct {
	Seq  int64  `json:"seq"`
	Kind string `json:"kind"` // "exec" or "marker"
	Text string `json:"text"`
}

// MemoryTarget is a transactional in-memory live target for tests.
//
// Each transaction buffers its statements and marker change; Commit applies
// them atomically, Rollback discards them. Committed effects are recorded in
// order with seq numbers from a DeterministicClock.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type MemoryTarget struct {
	mu     sync.Mutex
	marker string
	trace  []TraceEntry
	clock  *DeterministicClock
	closed int

	// FailStatements makes Exec fail for the listed statements.
	FailStatements map[string]error

	// FailCommit makes every Commit fail.
	FailCommit error

	// FailQuery makes CurrentPosition fail.
	FailQuery error
}

var _ engine.Target = (*MemoryTarget)(nil)

// NewMemoryTarget creates a target whose marker is at the given position.
func NewMemoryTarget(marker string) *MemoryTarget {
	return &MemoryTarget{
		marker:         marker,
		clock:          NewDeterministicClock(),
		FailStatements: map[string]error{},
	}
}

// Mode implements engine.Target.
func (m *MemoryTarget) Mode() engine.Mode { return engine.ModeLive }

// CurrentPosition implements engine.Target.
func (m *MemoryTarget) CurrentPosition(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailQuery != nil {
		return "", m.FailQuery
	}
	return m.marker, nil
}

// Begin implements engine.Target.
func (m *MemoryTarget) Begin(context.Context) (engine.Tx, error) {
	return &memoryTx{target: m}, nil
}

// Close implements engine.Target. Close counts calls; the target stays usable.
func (m *MemoryTarget) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

// Marker returns the committed marker.
func (m *MemoryTarget) Marker() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.marker
}

// Closed returns how many times Close was called.
func (m *MemoryTarget) Closed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Trace returns a copy of the committed effects.
func (m *MemoryTarget) Trace() []TraceEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TraceEntry(nil), m.trace...)
}

// ResetTrace clears the recorded effects and rewinds the seq clock.
// The marker is kept.
func (m *MemoryTarget) ResetTrace() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trace = nil
	m.clock.Reset()
}

// Statements returns the committed statements in order.
func (m *MemoryTarget) Statements() []string {
	var out []string
	for _, e := range m.Trace() {
		if e.Kind == "exec" {
			out = append(out, e.Text)
		}
	}
	return out
}

type memoryTx struct {
	target    *MemoryTarget
	stmts     []string
	setMarker bool
	marker    string
	done      bool
}

func (tx *memoryTx) Exec(_ context.Context, stmt string) error {
	if tx.done {
		return errors.New("transaction already finished")
	}
	tx.target.mu.Lock()
	failure := tx.target.FailStatements[stmt]
	tx.target.mu.Unlock()
	if failure != nil {
		return failure
	}
	tx.stmts = append(tx.stmts, stmt)
	return nil
}

func (tx *memoryTx) SetMarker(_ context.Context, from, to string) error {
	current := tx.target.Marker()
	if tx.setMarker {
		current = tx.marker
	}
	if current != from {
		return fmt.Errorf("marker is %q, expected %q", current, from)
	}
	tx.setMarker, tx.marker = true, to
	return nil
}

func (tx *memoryTx) ReplaceMarker(_ context.Context, to string) error {
	tx.setMarker, tx.marker = true, to
	return nil
}

func (tx *memoryTx) Commit() error {
	if tx.done {
		return errors.New("transaction already finished")
	}
	tx.done = true

	m := tx.target
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCommit != nil {
		return m.FailCommit
	}
	for _, stmt := range tx.stmts {
		m.trace = append(m.trace, TraceEntry{Seq: m.clock.Next(), Kind: "exec", Text: stmt})
	}
	if tx.setMarker {
		m.marker = tx.marker
		m.trace = append(m.trace, TraceEntry{Seq: m.clock.Next(), Kind: "marker", Text: displayMarker(tx.marker)})
	}
	return nil
}

func (tx *memoryTx) Rollback() error {
	tx.done = true
	tx.stmts = nil
	tx.setMarker = false
	return nil
}

func displayMarker(id string) string {
	if id == ir.None {
		return "<base>"
	}
	return id
}
