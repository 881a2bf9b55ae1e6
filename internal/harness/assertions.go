package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s\n", event.Seq, event.Kind, event.Text)
	}
	return buf.String()
}

// assertFinalMarker checks the marker after the last step.
func assertFinalMarker(result *Result, a Assertion) error {
	if *a.Revision == result.Marker {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalMarker,
		Expected: displayID(*a.Revision),
		Actual:   displayID(result.Marker),
		Trace:    result.Trace,
	}
}

// assertTraceContains checks that a statement was committed.
func assertTraceContains(result *Result, a Assertion) error {
	if slices.Contains(result.Statements(), a.Statement) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("statement %q", a.Statement),
		Actual:   "not found in trace",
		Trace:    result.Trace,
	}
}

// assertTraceOrder checks that statements were committed in the given
// relative order. Intervening statements are allowed.
func assertTraceOrder(result *Result, a Assertion) error {
	stmts := result.Statements()
	positions := make([]int, len(a.Statements))
	for i, want := range a.Statements {
		positions[i] = slices.Index(stmts, want)
		if positions[i] < 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all statements present: %v", a.Statements),
				Actual:   fmt.Sprintf("missing statement: %s", want),
				Trace:    result.Trace,
			}
		}
	}

	for i := 1; i < len(positions); i++ {
		if positions[i-1] >= positions[i] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("statements in order: %v", a.Statements),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					a.Statements[i-1], positions[i-1]+1, a.Statements[i], positions[i]+1),
				Trace: result.Trace,
			}
		}
	}
	return nil
}

// assertPayloadCount checks how many times a revision's payload ran in one
// direction, including failed attempts.
func assertPayloadCount(result *Result, a Assertion) error {
	calls := result.Calls[*a.Revision]
	got := calls.Upgrade
	if a.Direction == "downgrade" {
		got = calls.Downgrade
	}
	if got == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertPayloadCount,
		Expected: fmt.Sprintf("%s of %s called %d time(s)", a.Direction, *a.Revision, a.Count),
		Actual:   fmt.Sprintf("called %d time(s)", got),
		Trace:    result.Trace,
	}
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertFinalMarker:
			err = assertFinalMarker(result, a)
		case AssertTraceContains:
			err = assertTraceContains(result, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result, a)
		case AssertPayloadCount:
			err = assertPayloadCount(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}
