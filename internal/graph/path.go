package graph

import (
	"slices"

	"github.com/roach88/revline/internal/ir"
)

// UpgradePath returns the identifiers to apply, in application order, to
// move from current to dest.
//
// The walk starts at dest and follows parent links until it meets current.
// Reaching a root first means current is not an ancestor of dest, and the
// request fails with NotAncestorError: cross-branch moves are never guessed.
// current == dest yields an empty path.
func (g *Graph) UpgradePath(current, dest string) ([]string, error) {
	if err := g.checkKnown(current, dest); err != nil {
		return nil, err
	}

	path := []string{}
	for cur := dest; cur != current; cur = g.revs[cur].DownRevision {
		if cur == ir.None {
			return nil, &NotAncestorError{Current: current, Destination: dest, Direction: ir.Upgrade}
		}
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path, nil
}

// DowngradePath returns the identifiers to revert, child first, to move from
// current back to dest. dest == None reverts everything below current.
// Fails with NotAncestorError when dest is not on current's parent chain.
func (g *Graph) DowngradePath(current, dest string) ([]string, error) {
	if err := g.checkKnown(current, dest); err != nil {
		return nil, err
	}

	path := []string{}
	for cur := current; cur != dest; cur = g.revs[cur].DownRevision {
		if cur == ir.None {
			return nil, &NotAncestorError{Current: current, Destination: dest, Direction: ir.Downgrade}
		}
		path = append(path, cur)
	}
	return path, nil
}

func (g *Graph) checkKnown(ids ...string) error {
	for _, id := range ids {
		if id == ir.None {
			continue
		}
		if _, ok := g.revs[id]; !ok {
			return &NoSuchRevisionError{Ref: id}
		}
	}
	return nil
}
