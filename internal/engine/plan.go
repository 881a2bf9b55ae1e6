package engine

import (
	"context"
	"errors"

	"github.com/roach88/revline/internal/graph"
	"github.com/roach88/revline/internal/ir"
)

// UpgradePlan returns a PlanFunc that resolves destRef against g and plans an
// upgrade from the target's current position.
//
// In text mode without an explicit starting revision the plan starts from
// None, so "upgrade head" emits the whole history.
func UpgradePlan(g *graph.Graph, destRef string) PlanFunc {
	return func(ctx context.Context, s *Session) ([]Step, error) {
		dest, err := g.Resolve(destRef)
		if err != nil {
			return nil, err
		}
		cur, err := s.Current(ctx)
		if errors.Is(err, ErrNoCurrentState) {
			cur = ir.None
			s.current, s.currentKnown = cur, true
		} else if err != nil {
			return nil, err
		}
		return PlanUpgrade(g, cur, dest)
	}
}

// DowngradePlan returns a PlanFunc that resolves destRef against g and plans
// a downgrade from the target's current position. Text mode requires an
// explicit starting revision.
func DowngradePlan(g *graph.Graph, destRef string) PlanFunc {
	return func(ctx context.Context, s *Session) ([]Step, error) {
		dest, err := g.Resolve(destRef)
		if err != nil {
			return nil, err
		}
		cur, err := s.Current(ctx)
		if err != nil {
			return nil, err
		}
		return PlanDowngrade(g, cur, dest)
	}
}

// StampPlan returns a PlanFunc that resolves destRef and stamps the target
// with it. It never returns steps.
func StampPlan(g *graph.Graph, destRef string) PlanFunc {
	return func(ctx context.Context, s *Session) ([]Step, error) {
		dest, err := g.Resolve(destRef)
		if err != nil {
			return nil, err
		}
		return nil, s.Stamp(ctx, dest)
	}
}
