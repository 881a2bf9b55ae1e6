package graph

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/revline/internal/ir"
)

func TestWalkVisitsEachOnceChildBeforeParent(t *testing.T) {
	graphs := map[string]*Graph{
		"linear":   mustGraph(t, rev("a", ""), rev("b", "a"), rev("c", "b")),
		"branched": branchedGraph(t),
		"forest":   mustGraph(t, rev("a", ""), rev("b", "a"), rev("x", ""), rev("y", "x"), rev("z", "x")),
		"deep fan": mustGraph(t,
			rev("a", ""),
			rev("b1", "a"), rev("b2", "a"),
			rev("c1", "b1"), rev("c2", "b1"),
			rev("d1", "b2"), rev("d2", "b2"), rev("d3", "b2"),
			rev("e1", "d3"),
		),
	}

	for name, g := range graphs {
		t.Run(name, func(t *testing.T) {
			ids := walkIDs(g)
			assert.Len(t, ids, g.Len())
			assert.ElementsMatch(t, g.IDs(), ids, "every revision exactly once")

			for i, id := range ids {
				r, _ := g.Get(id)
				if r.IsRoot() {
					continue
				}
				parentAt := indexOf(ids, r.DownRevision)
				require.NotEqual(t, -1, parentAt, "parent of %s missing from walk", id)
				assert.Greater(t, parentAt, i, "%s must precede its parent %s", id, r.DownRevision)
			}
		})
	}
}

func TestWalkBranchChainsContiguous(t *testing.T) {
	g := mustGraph(t,
		rev("a", ""),
		rev("b", "a"),
		rev("x1", "b"), rev("x2", "x1"), rev("x3", "x2"),
		rev("y1", "b"), rev("y2", "y1"),
	)
	ids := walkIDs(g)

	x := indexOf(ids, "x3")
	assert.Equal(t, []string{"x3", "x2", "x1"}, ids[x:x+3])
	y := indexOf(ids, "y2")
	assert.Equal(t, []string{"y2", "y1"}, ids[y:y+2])

	// The shared trunk comes after both branches.
	assert.Equal(t, []string{"b", "a"}, ids[len(ids)-2:])
}

func TestWalkAnnotations(t *testing.T) {
	g := branchedGraph(t)

	byID := map[string]Entry{}
	for e := range g.Walk() {
		byID[e.Revision.ID] = e
	}

	assert.True(t, byID["r3a"].IsHead)
	assert.True(t, byID["r3b"].IsHead)
	assert.False(t, byID["r2"].IsHead)

	assert.True(t, byID["r2"].IsBranchPoint)
	assert.Equal(t, []string{"r3a", "r3b"}, byID["r2"].NextRev)
	assert.False(t, byID["r1"].IsBranchPoint)
	assert.Equal(t, []string{"r2"}, byID["r1"].NextRev)
}

func TestWalkRestartable(t *testing.T) {
	g := branchedGraph(t)
	seq := g.Walk()

	first := slices.Collect(func(yield func(string) bool) {
		for e := range seq {
			if !yield(e.Revision.ID) {
				return
			}
		}
	})
	second := walkIDs(g)
	assert.Equal(t, first, second)
}

func TestWalkEarlyStop(t *testing.T) {
	g := branchedGraph(t)

	count := 0
	for range g.Walk() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
	assert.Len(t, walkIDs(g), 4, "breaking does not disturb later walks")
}

func TestWalkLargeLinear(t *testing.T) {
	revs := []ir.Revision{rev("r000", "")}
	for i := 1; i < 200; i++ {
		revs = append(revs, rev(fmt.Sprintf("r%03d", i), fmt.Sprintf("r%03d", i-1)))
	}
	g := mustGraph(t, revs...)

	ids := walkIDs(g)
	require.Len(t, ids, 200)
	assert.Equal(t, "r199", ids[0])
	assert.Equal(t, "r000", ids[199])
}
