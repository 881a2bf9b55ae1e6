package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/revline/internal/ir"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	assert.True(t, tableExists(t, s, DefaultVersionTable))
	assert.True(t, tableExists(t, s, "revline_history"))
	assert.Equal(t, DefaultVersionTable, s.VersionTable())
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path, Options{})
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path, Options{})
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t, Options{})

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.verifyPragma(tt.name, tt.expected); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestOpen_MigrationIndex(t *testing.T) {
	s := createTestStore(t, Options{})

	var name string
	err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name='idx_revline_history_to_rev'").Scan(&name)
	require.NoError(t, err)
}

func TestOpen_CustomVersionTable(t *testing.T) {
	s := createTestStore(t, Options{VersionTable: "app_schema_version"})

	assert.True(t, tableExists(t, s, "app_schema_version"))
	assert.False(t, tableExists(t, s, DefaultVersionTable))
}

func TestOpen_InvalidVersionTable(t *testing.T) {
	for _, name := range []string{"1abc", "drop table;", "a-b", "a b"} {
		_, err := Open(filepath.Join(t.TempDir(), "test.db"), Options{VersionTable: name})
		assert.Error(t, err, name)
	}
}

func TestCurrentPosition_Empty(t *testing.T) {
	s := createTestStore(t, Options{})

	cur, err := s.CurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ir.None, cur)
}

func TestCurrentPosition_MultipleRows(t *testing.T) {
	s := createTestStore(t, Options{})
	_, err := s.db.Exec("INSERT INTO revline_version (version_num) VALUES ('a'), ('b')")
	require.NoError(t, err)

	_, err = s.CurrentPosition(context.Background())
	assert.ErrorIs(t, err, ErrCorruptMarker)
}

func TestVersionTableDDL(t *testing.T) {
	assert.Equal(t,
		"CREATE TABLE IF NOT EXISTS revline_version (version_num TEXT NOT NULL PRIMARY KEY)",
		VersionTableDDL(DefaultVersionTable))
}

func TestOpen_ReadOnlyMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	_, err := Open(path, Options{ReadOnly: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "read-only open must not create the file")
}

func TestOpen_ReadOnlyExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	rw := openAt(t, path)
	require.NoError(t, setMarker(t, rw, ir.None, "a"))
	require.NoError(t, rw.Close())

	s, err := Open(path, Options{ReadOnly: true})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "a", currentOf(t, s))
	_, err = s.History(context.Background())
	require.NoError(t, err)

	_, err = s.Begin(context.Background())
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestOpen_ReadOnlyWithoutSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	s, err := Open(path, Options{ReadOnly: true})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, ir.None, currentOf(t, s))
	entries, err := s.History(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.False(t, tableExists(t, s, DefaultVersionTable))
}
