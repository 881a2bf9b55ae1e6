package graph

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/revline/internal/ir"
)

// rev creates a revision record with no payload.
func rev(id, down string) ir.Revision {
	return ir.Revision{ID: id, DownRevision: down, Message: "rev " + id}
}

// mustGraph builds a graph or fails the test.
func mustGraph(t *testing.T, revs ...ir.Revision) *Graph {
	t.Helper()
	g, err := New(revs)
	require.NoError(t, err)
	return g
}

// branchedGraph is r1 -> r2 -> {r3a, r3b}.
func branchedGraph(t *testing.T) *Graph {
	t.Helper()
	return mustGraph(t,
		rev("r1", ""),
		rev("r2", "r1"),
		rev("r3a", "r2"),
		rev("r3b", "r2"),
	)
}

type sliceSource struct {
	revs []ir.Revision
	err  error
}

func (s sliceSource) Revisions() ([]ir.Revision, error) {
	return s.revs, s.err
}

func walkIDs(g *Graph) []string {
	var ids []string
	for e := range g.Walk() {
		ids = append(ids, e.Revision.ID)
	}
	return ids
}

func indexOf(ids []string, id string) int {
	return slices.Index(ids, id)
}
