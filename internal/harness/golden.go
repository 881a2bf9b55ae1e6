package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/revline/internal/ir"
)

// TraceSnapshot captures what a scenario did, for golden comparison.
type TraceSnapshot struct {
	ScenarioName string        `json:"scenario_name"`
	Steps        []StepOutcome `json:"steps"`
	Trace        []TraceEvent  `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot for canonical JSON serialization,
// which only handles maps, slices and primitives.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	steps := make([]any, len(s.Steps))
	for i, step := range s.Steps {
		m := map[string]any{
			"action": step.Action,
			"to":     step.To,
			"final":  step.Final,
		}
		if step.Error != "" {
			m["error"] = step.Error
		}
		steps[i] = m
	}

	trace := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		trace[i] = map[string]any{
			"seq":  event.Seq,
			"kind": event.Kind,
			"text": event.Text,
		}
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"steps":         steps,
		"trace":         trace,
	}
}

// Snapshot renders a result as canonical JSON followed by a newline.
func Snapshot(name string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: name,
		Steps:        result.Steps,
		Trace:        result.Trace,
	}
	data, err := ir.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
