package harness

import (
	"errors"

	"github.com/roach88/revline/internal/engine"
	"github.com/roach88/revline/internal/graph"
)

// Error categories reported for failed steps.
const (
	CategoryExecution  = "execution"
	CategoryResolution = "resolution"
	CategoryPath       = "path"
	CategoryNoCurrent  = "no_current"
	CategoryOther      = "other"
)

func validCategory(c string) bool {
	switch c {
	case CategoryExecution, CategoryResolution, CategoryPath, CategoryNoCurrent, CategoryOther:
		return true
	}
	return false
}

// categorize maps a step error to its category; nil maps to "".
func categorize(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, engine.ErrExecution):
		return CategoryExecution
	case errors.Is(err, graph.ErrResolution):
		return CategoryResolution
	case errors.Is(err, graph.ErrPath):
		return CategoryPath
	case errors.Is(err, engine.ErrNoCurrentState):
		return CategoryNoCurrent
	}
	return CategoryOther
}

// TraceEvent is one committed effect on the target.
type TraceEvent struct {
	Seq  int64  `json:"seq"`
	Kind string `json:"kind"` // "exec" or "marker"
	Text string `json:"text"`
}

// StepOutcome records what one step did.
type StepOutcome struct {
	Action string `json:"action"`
	To     string `json:"to"`
	Final  string `json:"final"`
	Error  string `json:"error,omitempty"` // category
	Detail string `json:"-"`               // full error text
}

// Calls counts one revision's payload invocations.
type Calls struct {
	Upgrade   int `json:"upgrade"`
	Downgrade int `json:"downgrade"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Steps lists each step's outcome in order.
	Steps []StepOutcome `json:"steps"`

	// Trace contains all committed statements and marker changes in order.
	Trace []TraceEvent `json:"trace"`

	// Marker is the target's marker after the last step.
	Marker string `json:"marker"`

	// Calls counts payload invocations per revision.
	Calls map[string]Calls `json:"calls"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepOutcome{},
		Trace:  []TraceEvent{},
		Calls:  make(map[string]Calls),
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Statements returns the committed statements in order.
func (r *Result) Statements() []string {
	var out []string
	for _, e := range r.Trace {
		if e.Kind == "exec" {
			out = append(out, e.Text)
		}
	}
	return out
}
