// Package config loads the revline.yaml project file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/revline/internal/store"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "revline.yaml"

// Config is the project configuration.
type Config struct {
	// ScriptLocation is the directory holding revision files.
	ScriptLocation string `yaml:"script_location"`

	// Database is the SQLite file of the live target.
	Database string `yaml:"database"`

	// VersionTable names the marker table.
	VersionTable string `yaml:"version_table"`

	// Path is the file the config was read from; empty for defaults.
	Path string `yaml:"-"`
}

// Overrides carries command-line values that take precedence over the file.
// Empty fields leave the loaded value alone.
type Overrides struct {
	ScriptLocation string
	Database       string
	VersionTable   string
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ScriptLocation: "revisions",
		Database:       "revline.db",
		VersionTable:   store.DefaultVersionTable,
	}
}

// Load reads the config at path. When path is empty DefaultFile is tried and
// a missing file yields Default(); an explicitly named file must exist.
//
// Relative locations in the file are resolved against the file's directory.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path

	base := filepath.Dir(path)
	cfg.ScriptLocation = resolve(base, cfg.ScriptLocation)
	cfg.Database = resolve(base, cfg.Database)
	return cfg, nil
}

// Parse decodes config YAML strictly and fills defaults for absent fields.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Apply returns cfg with non-empty overrides substituted.
func (c Config) Apply(o Overrides) Config {
	if o.ScriptLocation != "" {
		c.ScriptLocation = o.ScriptLocation
	}
	if o.Database != "" {
		c.Database = o.Database
	}
	if o.VersionTable != "" {
		c.VersionTable = o.VersionTable
	}
	return c
}

// Validate checks required fields.
func (c Config) Validate() error {
	if c.ScriptLocation == "" {
		return errors.New("script_location is required")
	}
	if c.Database == "" {
		return errors.New("database is required")
	}
	return store.ValidateTableName(c.VersionTable)
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) || p == ":memory:" {
		return p
	}
	return filepath.Join(base, p)
}
