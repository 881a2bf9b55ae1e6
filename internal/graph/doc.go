// Package graph holds the revision DAG and every pure computation over it.
//
// A Graph is built once from a Source and never mutated afterwards, so all
// methods are safe for concurrent use by multiple readers. Reload by building
// a new Graph.
//
// # Components
//
//   - Store: Load/New validate records (duplicate ids, dangling parents,
//     cycles) and build the child index.
//   - Resolver: Resolve turns "head", "base", exact ids and unique prefixes
//     into concrete identifiers. ParseRange splits "A:B" expressions.
//   - Walker: Walk yields every revision once, heads first, with head and
//     branch point annotations.
//   - Paths: UpgradePath and DowngradePath compute the ordered identifiers
//     between two positions by pure single-branch ascension.
//
// # Errors
//
// Every failure is a typed error that also matches one of the category
// sentinels ErrLoad, ErrResolution or ErrPath via errors.Is.
package graph
