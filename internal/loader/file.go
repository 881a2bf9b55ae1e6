package loader

import (
	"fmt"
	"strings"

	"github.com/roach88/revline/internal/ir"
)

// File is the on-disk shape of one revision.
type File struct {
	Revision     string   `yaml:"revision" json:"revision"`
	DownRevision string   `yaml:"down_revision,omitempty" json:"down_revision,omitempty"`
	Message      string   `yaml:"message" json:"message"`
	Upgrade      []string `yaml:"upgrade" json:"upgrade"`
	Downgrade    []string `yaml:"downgrade" json:"downgrade"`
}

// ToRevision converts the file into a graph record sourced from path.
func (f File) ToRevision(path string) ir.Revision {
	return ir.Revision{
		ID:           f.Revision,
		DownRevision: f.DownRevision,
		Message:      f.Message,
		Payload:      ir.SQLPayload{Up: f.Upgrade, Down: f.Downgrade},
		Path:         path,
	}
}

func validateFile(f *File, path string) error {
	if f.Revision == "" {
		return &LoadError{Path: path, Field: "revision", Message: "revision is required"}
	}
	for i, stmt := range f.Upgrade {
		if strings.TrimSpace(stmt) == "" {
			return &LoadError{Path: path, Field: fmt.Sprintf("upgrade[%d]", i), Message: "empty statement"}
		}
	}
	for i, stmt := range f.Downgrade {
		if strings.TrimSpace(stmt) == "" {
			return &LoadError{Path: path, Field: fmt.Sprintf("downgrade[%d]", i), Message: "empty statement"}
		}
	}
	return nil
}
