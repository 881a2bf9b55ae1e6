// Package harness runs revision scenarios against an in-memory target.
//
// A scenario declares a revision graph, a sequence of upgrade / downgrade /
// stamp steps, and assertions on the outcome. Every revision's payload is a
// counting payload that executes one statement ("up <id>" or "down <id>"),
// so the committed trace shows exactly which payloads ran and in what order.
//
// # Scenario Format
//
//	name: failing_step
//	description: "A failing step leaves the marker at the previous revision"
//	start: ""                 # initial marker, empty for none
//	revisions:
//	  - id: r1
//	  - id: r2
//	    down: r1
//	    fail_on: upgrade      # upgrade | downgrade
//	steps:
//	  - action: upgrade       # upgrade | downgrade | stamp
//	    to: head
//	    expect:
//	      marker: r1
//	      error: execution    # execution | resolution | path | no_current | other
//	assertions:
//	  - type: final_marker
//	    revision: r1
//	  - type: trace_order
//	    statements: ["up r1"]
//
// # Assertion Types
//
//   - final_marker: the marker after the last step
//   - trace_contains: a statement was committed
//   - trace_order: statements were committed in this relative order
//   - payload_count: a revision's payload ran N times in one direction
//
// # Deterministic Testing
//
// Seq numbers come from testutil.DeterministicClock, so traces are identical
// across runs and can be compared with golden files (RunWithGolden).
package harness
