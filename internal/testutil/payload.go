package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/revline/internal/graph"
	"github.com/roach88/revline/internal/ir"
)

// CountingPayload counts invocations and executes one statement per call:
// "up <id>" or "down <id>". Setting FailUp/FailDown makes that direction
// fail before executing anything.
type CountingPayload struct {
	ID       string
	FailUp   error
	FailDown error

	mu        sync.Mutex
	upCalls   int
	downCalls int
}

// Upgrade implements ir.Payload.
func (p *CountingPayload) Upgrade(ctx context.Context, x ir.Executor) error {
	p.mu.Lock()
	p.upCalls++
	p.mu.Unlock()
	if p.FailUp != nil {
		return p.FailUp
	}
	return x.Exec(ctx, "up "+p.ID)
}

// Downgrade implements ir.Payload.
func (p *CountingPayload) Downgrade(ctx context.Context, x ir.Executor) error {
	p.mu.Lock()
	p.downCalls++
	p.mu.Unlock()
	if p.FailDown != nil {
		return p.FailDown
	}
	return x.Exec(ctx, "down "+p.ID)
}

// Calls returns the upgrade and downgrade invocation counts.
func (p *CountingPayload) Calls() (up, down int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.upCalls, p.downCalls
}

// Fixture is a graph whose revisions all carry CountingPayloads.
type Fixture struct {
	Graph    *graph.Graph
	Payloads map[string]*CountingPayload
}

// Rev describes a fixture revision: id and parent.
type Rev struct {
	ID   string
	Down string
}

// NewFixture builds a graph of counting revisions or fails the test.
func NewFixture(t testing.TB, revs ...Rev) *Fixture {
	t.Helper()
	f := &Fixture{Payloads: make(map[string]*CountingPayload, len(revs))}
	records := make([]ir.Revision, 0, len(revs))
	for _, r := range revs {
		p := &CountingPayload{ID: r.ID}
		f.Payloads[r.ID] = p
		records = append(records, ir.Revision{ID: r.ID, DownRevision: r.Down, Message: "rev " + r.ID, Payload: p})
	}
	g, err := graph.New(records)
	require.NoError(t, err)
	f.Graph = g
	return f
}

// BranchedFixture is r1 -> r2 -> {r3a, r3b}.
func BranchedFixture(t testing.TB) *Fixture {
	t.Helper()
	return NewFixture(t,
		Rev{ID: "r1"},
		Rev{ID: "r2", Down: "r1"},
		Rev{ID: "r3a", Down: "r2"},
		Rev{ID: "r3b", Down: "r2"},
	)
}

// LinearFixture is r1 -> r2 -> ... -> rN.
func LinearFixture(t testing.TB, ids ...string) *Fixture {
	t.Helper()
	revs := make([]Rev, len(ids))
	for i, id := range ids {
		revs[i] = Rev{ID: id}
		if i > 0 {
			revs[i].Down = ids[i-1]
		}
	}
	return NewFixture(t, revs...)
}

// TotalCalls sums invocation counts over every payload.
func (f *Fixture) TotalCalls() (up, down int) {
	for _, p := range f.Payloads {
		u, d := p.Calls()
		up += u
		down += d
	}
	return up, down
}
