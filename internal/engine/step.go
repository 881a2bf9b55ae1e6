package engine

import (
	"fmt"

	"github.com/roach88/revline/internal/graph"
	"github.com/roach88/revline/internal/ir"
)

// Step is one revision applied in one direction.
type Step struct {
	Revision  *ir.Revision
	Direction ir.Direction
}

// ID returns the revision identifier.
func (s Step) ID() string {
	return s.Revision.ID
}

// From is the marker value before the step.
func (s Step) From() string {
	if s.Direction == ir.Downgrade {
		return s.Revision.ID
	}
	return s.Revision.DownRevision
}

// To is the marker value after the step.
func (s Step) To() string {
	if s.Direction == ir.Downgrade {
		return s.Revision.DownRevision
	}
	return s.Revision.ID
}

// String renders "upgrade a -> b" with <base> for None.
func (s Step) String() string {
	return fmt.Sprintf("%s %s -> %s", s.Direction, displayID(s.From()), displayID(s.To()))
}

func displayID(id string) string {
	if id == ir.None {
		return "<base>"
	}
	return id
}

// PlanUpgrade returns the steps moving the target from current up to dest.
// Fails with graph.NotAncestorError when dest is not reachable by ascension.
func PlanUpgrade(g *graph.Graph, current, dest string) ([]Step, error) {
	ids, err := g.UpgradePath(current, dest)
	if err != nil {
		return nil, err
	}
	return toSteps(g, ids, ir.Upgrade), nil
}

// PlanDowngrade returns the steps moving the target from current back to dest.
// dest == ir.None reverts every applied revision.
func PlanDowngrade(g *graph.Graph, current, dest string) ([]Step, error) {
	ids, err := g.DowngradePath(current, dest)
	if err != nil {
		return nil, err
	}
	return toSteps(g, ids, ir.Downgrade), nil
}

func toSteps(g *graph.Graph, ids []string, dir ir.Direction) []Step {
	steps := make([]Step, 0, len(ids))
	for _, id := range ids {
		rev, _ := g.Get(id)
		steps = append(steps, Step{Revision: rev, Direction: dir})
	}
	return steps
}

// StepIDs lists the identifiers of steps in order.
func StepIDs(steps []Step) []string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID()
	}
	return ids
}
