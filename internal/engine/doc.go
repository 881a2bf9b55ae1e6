// Package engine runs planned revision steps against a target.
//
// ARCHITECTURE:
//
// Scoped Session:
// RunSession brackets one command's work. It opens with the target already
// acquired, hands the caller's PlanFunc a Session that can report the
// target's current position, executes the returned steps and releases the
// target exactly once on every exit path (success, planning error, execution
// error, panic).
//
// Deferred Planning:
// The plan is computed only after the session exists, because targeting
// "head" from an unknown position needs the target's marker first. Planners
// for the common cases are UpgradePlan and DowngradePlan.
//
// Step Execution:
//  1. Steps run strictly in the order the planner produced them
//  2. Each step is one target transaction: payload statements, then the
//     marker update, then commit
//  3. The first failing step aborts the session; the marker stays at the
//     last committed step and the error is an ExecutionError
//
// Modes:
//   - ModeLive: statements execute against a live target and the marker is
//     persisted with each step
//   - ModeText: statements are emitted as text, framed by a header and
//     footer; nothing is persisted and the script is always re-runnable
//
// The engine is not safe for two sessions against the same target at once.
// Serializing access to a shared target is the caller's concern.
package engine
