package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/roach88/revline/internal/graph"
	"github.com/roach88/revline/internal/ir"
)

const maxSlugLen = 40

// NewRevisionID returns a fresh 12 hex character revision identifier taken
// from the random tail of a UUIDv4.
func NewRevisionID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return hex[len(hex)-12:]
}

// GenerateOptions controls Generate.
type GenerateOptions struct {
	// ID overrides the generated identifier (tests, scripted imports).
	ID string

	// Parent is the down_revision of the new file; None creates a root.
	Parent string

	Upgrade   []string
	Downgrade []string
}

// Generate writes a new YAML revision file into dir and returns its path and
// record. It refuses to overwrite an existing file.
func Generate(dir, message string, opts GenerateOptions) (string, ir.Revision, error) {
	id := opts.ID
	if id == "" {
		id = NewRevisionID()
	}
	if err := graph.ValidateID(id); err != nil {
		return "", ir.Revision{}, err
	}

	f := File{
		Revision:     id,
		DownRevision: opts.Parent,
		Message:      message,
		Upgrade:      opts.Upgrade,
		Downgrade:    opts.Downgrade,
	}
	if f.Upgrade == nil {
		f.Upgrade = []string{}
	}
	if f.Downgrade == nil {
		f.Downgrade = []string{}
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return "", ir.Revision{}, fmt.Errorf("generate revision: %w", err)
	}

	name := id
	if slug := Slug(message); slug != "" {
		name += "_" + slug
	}
	path := filepath.Join(dir, name+".yaml")

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", ir.Revision{}, fmt.Errorf("generate revision: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return "", ir.Revision{}, fmt.Errorf("generate revision: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", ir.Revision{}, fmt.Errorf("generate revision: %w", err)
	}

	return path, f.ToRevision(path), nil
}

// Slug turns a message into a lowercase file name fragment.
func Slug(message string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(message) {
		if unicode.IsLetter(r) && r < unicode.MaxASCII || unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	slug := strings.TrimRight(b.String(), "_")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "_")
	}
	return slug
}
