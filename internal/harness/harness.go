package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/revline/internal/engine"
	"github.com/roach88/revline/internal/graph"
	"github.com/roach88/revline/internal/ir"
	"github.com/roach88/revline/internal/testutil"
)

// Harness holds one scenario's graph and target.
type Harness struct {
	graph    *graph.Graph
	target   *testutil.MemoryTarget
	payloads map[string]*testutil.CountingPayload
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory target. An invalid revision
// graph is returned as an error; failing steps are recorded in the result.
func Run(scenario *Scenario) (*Result, error) {
	h, err := newHarness(scenario)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Steps {
		err := h.runStep(ctx, step)
		outcome := StepOutcome{
			Action: step.Action,
			To:     step.To,
			Final:  displayID(h.target.Marker()),
			Error:  categorize(err),
		}
		if err != nil {
			outcome.Detail = err.Error()
		}
		result.Steps = append(result.Steps, outcome)
		checkExpect(result, i, step, outcome, h.target.Marker())
	}

	for _, e := range h.target.Trace() {
		result.Trace = append(result.Trace, TraceEvent{Seq: e.Seq, Kind: e.Kind, Text: e.Text})
	}
	result.Marker = h.target.Marker()
	for id, p := range h.payloads {
		up, down := p.Calls()
		result.Calls[id] = Calls{Upgrade: up, Downgrade: down}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func newHarness(scenario *Scenario) (*Harness, error) {
	h := &Harness{
		target:   testutil.NewMemoryTarget(scenario.Start),
		payloads: make(map[string]*testutil.CountingPayload, len(scenario.Revisions)),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	revs := make([]ir.Revision, 0, len(scenario.Revisions))
	for _, def := range scenario.Revisions {
		p := &testutil.CountingPayload{ID: def.ID}
		failure := fmt.Errorf("%s of %s failed as configured", def.FailOn, def.ID)
		switch ir.Direction(def.FailOn) {
		case ir.Upgrade:
			p.FailUp = failure
		case ir.Downgrade:
			p.FailDown = failure
		}
		h.payloads[def.ID] = p
		revs = append(revs, ir.Revision{ID: def.ID, DownRevision: def.Down, Message: def.Message, Payload: p})
	}

	g, err := graph.New(revs)
	if err != nil {
		return nil, fmt.Errorf("build revision graph: %w", err)
	}
	h.graph = g
	return h, nil
}

func (h *Harness) runStep(ctx context.Context, step Step) error {
	var (
		plan engine.PlanFunc
		dir  ir.Direction
	)
	switch step.Action {
	case ActionUpgrade:
		plan, dir = engine.UpgradePlan(h.graph, step.To), ir.Upgrade
	case ActionDowngrade:
		plan, dir = engine.DowngradePlan(h.graph, step.To), ir.Downgrade
	case ActionStamp:
		plan, dir = engine.StampPlan(h.graph, step.To), ir.Upgrade
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}

	_, err := engine.RunSession(ctx, h.target, engine.Options{Direction: dir, Logger: h.logger}, plan)
	return err
}

func checkExpect(result *Result, i int, step Step, outcome StepOutcome, marker string) {
	var want StepExpect
	if step.Expect != nil {
		want = *step.Expect
	}

	if outcome.Error != want.Error {
		if want.Error == "" {
			result.AddError(fmt.Sprintf("steps[%d] %s %s: unexpected error: %s", i, step.Action, step.To, outcome.Detail))
		} else {
			result.AddError(fmt.Sprintf("steps[%d] %s %s: expected %s error, got %q", i, step.Action, step.To, want.Error, outcome.Error))
		}
	}
	if want.Marker != nil && *want.Marker != marker {
		result.AddError(fmt.Sprintf("steps[%d] %s %s: expected marker %s, got %s",
			i, step.Action, step.To, displayID(*want.Marker), displayID(marker)))
	}
}

func displayID(id string) string {
	if id == ir.None {
		return "<base>"
	}
	return id
}
