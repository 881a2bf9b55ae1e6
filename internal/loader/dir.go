package loader

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/revline/internal/graph"
	"github.com/roach88/revline/internal/ir"
)

// Dir loads revisions from the files directly inside Path.
// It implements graph.Source.
type Dir struct {
	Path   string
	Logger *slog.Logger
}

var _ graph.Source = Dir{}

// Revisions reads and decodes every revision file, in file name order.
// The first malformed file aborts the load.
func (d Dir) Revisions() ([]ir.Revision, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	files, err := FindRevisionFiles(d.Path)
	if err != nil {
		return nil, err
	}

	var (
		revs   []ir.Revision
		cueCtx *cue.Context
	)
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Path: path, Message: "failed to read file", Err: err}
		}

		var f *File
		switch filepath.Ext(path) {
		case ".cue":
			if cueCtx == nil {
				cueCtx = newCUEContext()
			}
			f, err = decodeCUE(cueCtx, data, path)
		default:
			f, err = decodeYAML(data, path)
		}
		if err != nil {
			return nil, err
		}

		logger.Debug("loaded revision", "revision", f.Revision, "down_revision", f.DownRevision, "path", path)
		revs = append(revs, f.ToRevision(path))
	}

	logger.Debug("revision files loaded", "dir", d.Path, "count", len(revs))
	return revs, nil
}

// FindRevisionFiles returns the sorted revision file paths inside dir.
// Subdirectories are not descended into.
func FindRevisionFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Path: dir, Message: "scripts directory not found", Err: os.ErrNotExist}
	}
	if err != nil {
		return nil, &LoadError{Path: dir, Message: "error accessing scripts directory", Err: err}
	}
	if !info.IsDir() {
		return nil, &LoadError{Path: dir, Message: "not a directory"}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{Path: dir, Message: "error scanning scripts directory", Err: err}
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		if isRevisionFile(name) {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)
	return files, nil
}

func isRevisionFile(name string) bool {
	switch filepath.Ext(name) {
	case ".yaml", ".yml", ".cue":
		return true
	}
	return false
}

// LoadGraph loads dir and builds the revision graph in one call.
func LoadGraph(dir string, logger *slog.Logger) (*graph.Graph, error) {
	g, err := graph.Load(Dir{Path: dir, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}
	return g, nil
}
