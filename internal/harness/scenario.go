package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/revline/internal/ir"
)

// Scenario is a revision graph plus the steps to run against it.
type Scenario struct {
	// Name uniquely identifies this scenario; also the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Start is the marker before the first step. Empty means none.
	Start string `yaml:"start,omitempty"`

	// Revisions declares the graph.
	Revisions []RevisionDef `yaml:"revisions"`

	// Steps run in order against one target.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and marker.
	Assertions []Assertion `yaml:"assertions"`
}

// RevisionDef declares one revision.
type RevisionDef struct {
	ID      string `yaml:"id"`
	Down    string `yaml:"down,omitempty"`
	Message string `yaml:"message,omitempty"`

	// FailOn makes the payload fail in that direction ("upgrade" or "downgrade").
	FailOn string `yaml:"fail_on,omitempty"`
}

// Step is one session against the target.
type Step struct {
	// Action is "upgrade", "downgrade" or "stamp".
	Action string `yaml:"action"`

	// To is the destination reference: identifier, prefix, head or base.
	To string `yaml:"to"`

	// Expect checks the step's outcome. Nil expects success.
	Expect *StepExpect `yaml:"expect,omitempty"`
}

// StepExpect describes the expected outcome of a step.
type StepExpect struct {
	// Marker is the expected marker after the step. Nil skips the check.
	Marker *string `yaml:"marker,omitempty"`

	// Error is the expected error category; empty expects success.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the final trace or marker.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Revision is used by final_marker (expected marker) and payload_count.
	Revision *string `yaml:"revision,omitempty"`

	// Statement is used by trace_contains.
	Statement string `yaml:"statement,omitempty"`

	// Statements is used by trace_order.
	Statements []string `yaml:"statements,omitempty"`

	// Direction and Count are used by payload_count.
	Direction string `yaml:"direction,omitempty"`
	Count     int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalMarker   = "final_marker"
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertPayloadCount  = "payload_count"
)

// Step actions.
const (
	ActionUpgrade   = "upgrade"
	ActionDowngrade = "downgrade"
	ActionStamp     = "stamp"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes scenario YAML strictly and validates it.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, rev := range s.Revisions {
		if rev.ID == "" {
			return fmt.Errorf("revisions[%d]: id is required", i)
		}
		switch ir.Direction(rev.FailOn) {
		case "", ir.Upgrade, ir.Downgrade:
		default:
			return fmt.Errorf("revisions[%d]: fail_on must be upgrade or downgrade, got %q", i, rev.FailOn)
		}
	}

	for i, step := range s.Steps {
		switch step.Action {
		case ActionUpgrade, ActionDowngrade, ActionStamp:
		case "":
			return fmt.Errorf("steps[%d]: action is required", i)
		default:
			return fmt.Errorf("steps[%d]: unknown action %q", i, step.Action)
		}
		if step.To == "" {
			return fmt.Errorf("steps[%d]: to is required", i)
		}
		if step.Expect != nil && step.Expect.Error != "" && !validCategory(step.Expect.Error) {
			return fmt.Errorf("steps[%d].expect: unknown error category %q", i, step.Expect.Error)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertFinalMarker:
		if a.Revision == nil {
			return fmt.Errorf("assertions[%d]: revision is required for final_marker", index)
		}
	case AssertTraceContains:
		if a.Statement == "" {
			return fmt.Errorf("assertions[%d]: statement is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Statements) == 0 {
			return fmt.Errorf("assertions[%d]: statements list is required for trace_order", index)
		}
	case AssertPayloadCount:
		if a.Revision == nil || *a.Revision == "" {
			return fmt.Errorf("assertions[%d]: revision is required for payload_count", index)
		}
		switch ir.Direction(a.Direction) {
		case ir.Upgrade, ir.Downgrade:
		default:
			return fmt.Errorf("assertions[%d]: direction must be upgrade or downgrade for payload_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for payload_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
