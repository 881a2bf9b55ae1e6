package graph

import (
	"strings"

	"github.com/roach88/revline/internal/ir"
)

// Resolve turns a reference into a concrete identifier.
//
// Accepted forms:
//   - "head": the single head; AmbiguousHeadError when several exist
//   - "base": the None position before the single root; AmbiguousBaseError
//     when several roots exist
//   - an exact identifier
//   - a unique identifier prefix; AmbiguousRevisionError when it matches
//     several, NoSuchRevisionError when it matches none
//
// An empty graph resolves both symbols to None.
func (g *Graph) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	switch ref {
	case SymbolHead:
		switch len(g.heads) {
		case 0:
			return ir.None, nil
		case 1:
			return g.heads[0], nil
		}
		return "", &AmbiguousHeadError{Heads: g.Heads()}
	case SymbolBase:
		if len(g.bases) > 1 {
			return "", &AmbiguousBaseError{Bases: g.Bases()}
		}
		return ir.None, nil
	case "":
		return "", &NoSuchRevisionError{Ref: ref}
	}

	if _, ok := g.revs[ref]; ok {
		return ref, nil
	}

	var matches []string
	for _, id := range g.ids {
		if strings.HasPrefix(id, ref) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", &NoSuchRevisionError{Ref: ref}
	case 1:
		return matches[0], nil
	}
	return "", &AmbiguousRevisionError{Prefix: ref, Matches: matches}
}

// ResolveRevision is Resolve followed by Get. The None position resolves to
// a nil revision.
func (g *Graph) ResolveRevision(ref string) (*ir.Revision, error) {
	id, err := g.Resolve(ref)
	if err != nil || id == ir.None {
		return nil, err
	}
	return copyOf(g.revs[id]), nil
}

// Range is a parsed "start:destination" expression. Start is empty when the
// expression named only a destination.
type Range struct {
	Start       string
	Destination string
	HasStart    bool
}

// ParseRange splits a destination reference that may carry an explicit
// starting point ("A:B"). Ranges are only meaningful when planning offline,
// where the target cannot be asked for its current position; with
// offline=false a range fails with RangeNotAllowedError.
//
// The parts are returned unresolved.
func ParseRange(ref string, offline bool) (Range, error) {
	start, dest, found := strings.Cut(ref, ":")
	if !found {
		return Range{Destination: strings.TrimSpace(ref)}, nil
	}
	if !offline {
		return Range{}, &RangeNotAllowedError{Ref: ref}
	}
	return Range{
		Start:       strings.TrimSpace(start),
		Destination: strings.TrimSpace(dest),
		HasStart:    true,
	}, nil
}
