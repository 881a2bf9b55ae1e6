package loader

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// decodeCUE compiles one CUE revision file and extracts its "revision" struct.
func decodeCUE(ctx *cue.Context, data []byte, path string) (*File, error) {
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, cueError(path, "", err)
	}

	rv := value.LookupPath(cue.ParsePath("revision"))
	if !rv.Exists() {
		return nil, &LoadError{Path: path, Field: "revision", Message: "top-level revision struct is required", Pos: value.Pos()}
	}
	if err := rv.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(path, "revision", err)
	}

	var f File
	var err error
	if f.Revision, err = cueString(rv, "revision", true); err != nil {
		return nil, cueError(path, "revision.revision", err)
	}
	if f.DownRevision, err = cueString(rv, "down_revision", false); err != nil {
		return nil, cueError(path, "revision.down_revision", err)
	}
	if f.Message, err = cueString(rv, "message", false); err != nil {
		return nil, cueError(path, "revision.message", err)
	}
	if f.Upgrade, err = cueStrings(rv, "upgrade"); err != nil {
		return nil, cueError(path, "revision.upgrade", err)
	}
	if f.Downgrade, err = cueStrings(rv, "downgrade"); err != nil {
		return nil, cueError(path, "revision.downgrade", err)
	}

	if err := validateFile(&f, path); err != nil {
		return nil, err
	}
	return &f, nil
}

// cueString reads an optional (or required) string field. A null value reads
// as the empty string.
func cueString(v cue.Value, field string, required bool) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() || fv.Kind() == cue.NullKind {
		if required {
			return "", fmt.Errorf("%s is required", field)
		}
		return "", nil
	}
	return fv.String()
}

// cueStrings reads an optional list of strings.
func cueStrings(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() || fv.Kind() == cue.NullKind {
		return nil, nil
	}
	iter, err := fv.List()
	if err != nil {
		return nil, err
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", len(out), err)
		}
		out = append(out, s)
	}
	return out, nil
}

// cueError converts a CUE error into a LoadError. CUE errors may carry
// several causes; the first one with position info wins.
func cueError(path, field string, err error) *LoadError {
	le := &LoadError{Path: path, Field: field, Message: err.Error()}
	if errs := errors.Errors(err); len(errs) > 0 {
		first := errs[0]
		le.Message = first.Error()
		if positions := errors.Positions(first); len(positions) > 0 {
			le.Pos = positions[0]
		}
	}
	return le
}

func newCUEContext() *cue.Context {
	return cuecontext.New()
}
