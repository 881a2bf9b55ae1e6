package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/revline/internal/ir"
)

// Symbolic references understood by Resolve. Neither may be used as a
// revision identifier.
const (
	SymbolHead = "head"
	SymbolBase = "base"
)

// Source supplies revision records, typically from a scripts directory.
type Source interface {
	Revisions() ([]ir.Revision, error)
}

// Graph is an immutable revision DAG with a derived child index.
type Graph struct {
	revs  map[string]*ir.Revision
	next  map[string][]string // id -> sorted child ids
	ids   []string            // sorted
	heads []string            // sorted
	bases []string            // sorted
}

// Load reads every record from src and builds the graph.
func Load(src Source) (*Graph, error) {
	revs, err := src.Revisions()
	if err != nil {
		return nil, fmt.Errorf("load revisions: %w", err)
	}
	return New(revs)
}

// New builds a graph from records.
//
// Fails with InvalidRevisionError, DuplicateRevisionError,
// DanglingReferenceError or CycleError; all match ErrLoad.
func New(revs []ir.Revision) (*Graph, error) {
	g := &Graph{
		revs: make(map[string]*ir.Revision, len(revs)),
		next: make(map[string][]string, len(revs)),
	}

	for i := range revs {
		rev := revs[i]
		if err := validateID(rev.ID, rev.Path); err != nil {
			return nil, err
		}
		if existing, ok := g.revs[rev.ID]; ok {
			return nil, &DuplicateRevisionError{ID: rev.ID, Paths: nonEmpty(existing.Path, rev.Path)}
		}
		g.revs[rev.ID] = &rev
		g.ids = append(g.ids, rev.ID)
	}
	slices.Sort(g.ids)

	for _, id := range g.ids {
		rev := g.revs[id]
		if rev.IsRoot() {
			g.bases = append(g.bases, id)
			continue
		}
		if _, ok := g.revs[rev.DownRevision]; !ok {
			return nil, &DanglingReferenceError{ID: id, DownRevision: rev.DownRevision}
		}
		g.next[rev.DownRevision] = append(g.next[rev.DownRevision], id)
	}

	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}

	for _, id := range g.ids {
		if len(g.next[id]) == 0 {
			g.heads = append(g.heads, id)
		}
	}
	return g, nil
}

// checkAcyclic verifies every parent chain reaches a root within Len steps.
func (g *Graph) checkAcyclic() error {
	rooted := make(map[string]bool, len(g.ids))
	for _, id := range g.ids {
		var chain []string
		cur := id
		for cur != ir.None && !rooted[cur] {
			if len(chain) > len(g.ids) {
				return &CycleError{Path: cycleOf(chain)}
			}
			chain = append(chain, cur)
			cur = g.revs[cur].DownRevision
		}
		for _, c := range chain {
			rooted[c] = true
		}
	}
	return nil
}

// cycleOf trims a chain that overran the node count down to one turn of
// the loop, closed with its first member.
func cycleOf(chain []string) []string {
	last := chain[len(chain)-1]
	start := slices.Index(chain, last)
	end := start + 1 + slices.Index(chain[start+1:], last)
	return slices.Clone(chain[start : end+1])
}

// ValidateID reports whether id may name a revision. Identifiers double as
// script file names, so path separators are rejected along with the
// reserved symbols, whitespace and ':'.
func ValidateID(id string) error {
	return validateID(id, "")
}

func validateID(id, path string) error {
	switch {
	case id == ir.None:
		return &InvalidRevisionError{Path: path, Message: "revision identifier is empty"}
	case id == SymbolHead || id == SymbolBase:
		return &InvalidRevisionError{Path: path, Message: fmt.Sprintf("%q is reserved", id)}
	case strings.ContainsAny(id, ": \t\n"):
		return &InvalidRevisionError{Path: path, Message: fmt.Sprintf("revision identifier %q contains whitespace or ':'", id)}
	case strings.ContainsAny(id, `/\`) || id == "." || id == "..":
		return &InvalidRevisionError{Path: path, Message: fmt.Sprintf("revision identifier %q is not a valid file name", id)}
	}
	return nil
}

func nonEmpty(vals ...string) []string {
	var out []string
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Get returns a copy of the revision with exactly this identifier, so
// callers cannot rewrite the graph's parent links. Partial and symbolic
// lookups live in Resolve.
func (g *Graph) Get(id string) (*ir.Revision, bool) {
	rev, ok := g.revs[id]
	if !ok {
		return nil, false
	}
	return copyOf(rev), true
}

func copyOf(rev *ir.Revision) *ir.Revision {
	cp := *rev
	return &cp
}

// Len returns the number of revisions.
func (g *Graph) Len() int {
	return len(g.ids)
}

// IDs returns all identifiers in sorted order.
func (g *Graph) IDs() []string {
	return slices.Clone(g.ids)
}

// Heads returns the sorted identifiers with no children.
func (g *Graph) Heads() []string {
	return slices.Clone(g.heads)
}

// Bases returns the sorted identifiers with no parent.
func (g *Graph) Bases() []string {
	return slices.Clone(g.bases)
}

// Children returns the sorted identifiers naming id as down_revision.
func (g *Graph) Children(id string) []string {
	return slices.Clone(g.next[id])
}

// IsHead reports whether no revision names id as its parent.
func (g *Graph) IsHead(id string) bool {
	_, ok := g.revs[id]
	return ok && len(g.next[id]) == 0
}

// IsBranchPoint reports whether more than one revision names id as its parent.
func (g *Graph) IsBranchPoint(id string) bool {
	return len(g.next[id]) > 1
}

// BranchPoints returns the sorted identifiers with more than one child.
func (g *Graph) BranchPoints() []string {
	var out []string
	for _, id := range g.ids {
		if g.IsBranchPoint(id) {
			out = append(out, id)
		}
	}
	return out
}
