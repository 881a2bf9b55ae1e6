// Package ir provides the revision data model shared by every revline package.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// data model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - A Revision is immutable once loaded
//   - The empty string never names a revision; it encodes the "None"
//     position (before any revision was applied)
//   - Payloads are opaque capability handles, invoked only by the engine
//   - All JSON tags use snake_case
package ir
