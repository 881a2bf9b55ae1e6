package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := writeConfig(t, `
script_location: migrations
database: data/app.db
version_table: app_version
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, filepath.Join(dir, "migrations"), cfg.ScriptLocation)
	assert.Equal(t, filepath.Join(dir, "data/app.db"), cfg.Database)
	assert.Equal(t, "app_version", cfg.VersionTable)
	assert.Equal(t, path, cfg.Path)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "database: /var/lib/app.db\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/app.db", cfg.Database)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "revisions"), cfg.ScriptLocation)
	assert.Equal(t, "revline_version", cfg.VersionTable)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "revline_version", cfg.VersionTable)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoad_MissingDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("script_location: x\nsqlalchemy.url: y\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParse_InvalidVersionTable(t *testing.T) {
	_, err := Parse([]byte("version_table: \"bad name\"\n"))
	assert.Error(t, err)
}

func TestParse_BlankRequired(t *testing.T) {
	_, err := Parse([]byte("script_location: \"\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script_location is required")
}

func TestApply(t *testing.T) {
	cfg := Default().Apply(Overrides{Database: "other.db"})
	assert.Equal(t, "other.db", cfg.Database)
	assert.Equal(t, "revisions", cfg.ScriptLocation)
	assert.Equal(t, "revline_version", cfg.VersionTable)

	cfg = cfg.Apply(Overrides{ScriptLocation: "s", VersionTable: "v"})
	assert.Equal(t, "s", cfg.ScriptLocation)
	assert.Equal(t, "v", cfg.VersionTable)
}
