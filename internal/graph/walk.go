package graph

import (
	"iter"

	"github.com/roach88/revline/internal/ir"
)

// Entry is one revision emitted by Walk, annotated from the graph.
type Entry struct {
	Revision      *ir.Revision
	IsHead        bool
	IsBranchPoint bool
	NextRev       []string // sorted children; more than one for branch points
}

// Walk yields every revision exactly once, newest first.
//
// Heads are visited in sorted order. From each head the walk follows parent
// links and stops at a branch point until the last of its child branches
// has been emitted, then continues below it. Every child therefore precedes
// its parent and each branch's chain stays contiguous.
//
// The sequence is lazy; each call to the returned function starts over.
func (g *Graph) Walk() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		pending := make(map[string]int, len(g.next))
		for id, kids := range g.next {
			pending[id] = len(kids)
		}

		for _, head := range g.heads {
			cur := head
			for {
				if !yield(g.entry(cur)) {
					return
				}
				parent := g.revs[cur].DownRevision
				if parent == ir.None {
					break
				}
				pending[parent]--
				if pending[parent] > 0 {
					break
				}
				cur = parent
			}
		}
	}
}

func (g *Graph) entry(id string) Entry {
	kids := g.next[id]
	return Entry{
		Revision:      copyOf(g.revs[id]),
		IsHead:        len(kids) == 0,
		IsBranchPoint: len(kids) > 1,
		NextRev:       append([]string(nil), kids...),
	}
}
