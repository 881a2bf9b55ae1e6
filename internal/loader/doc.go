// Package loader reads revision files from a scripts directory.
//
// Each file holds exactly one revision. Two formats are accepted:
//
// YAML (*.yaml, *.yml), decoded strictly so typos are rejected:
//
//	revision: ae1027a6acf
//	down_revision: 1975ea83b712
//	message: add account table
//	upgrade:
//	  - CREATE TABLE account (id INTEGER PRIMARY KEY, name TEXT NOT NULL)
//	downgrade:
//	  - DROP TABLE account
//
// CUE (*.cue), with the same fields under a top-level "revision" struct:
//
//	revision: {
//		revision:      "ae1027a6acf"
//		down_revision: "1975ea83b712"
//		message:       "add account table"
//		upgrade: ["CREATE TABLE account (id INTEGER PRIMARY KEY)"]
//		downgrade: ["DROP TABLE account"]
//	}
//
// A root revision omits down_revision (or sets it to null). Files whose names
// start with "." or "_" are skipped, as are other extensions.
//
// Loading never executes anything: statements become an ir.SQLPayload that
// only the engine invokes.
package loader
