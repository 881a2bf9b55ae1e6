package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// testProject is a scripts directory and database path in a temp dir.
type testProject struct {
	Scripts  string
	Database string
}

func (p testProject) args(args ...string) []string {
	return append([]string{"--scripts", p.Scripts, "--db", p.Database}, args...)
}

func newTestProject(t *testing.T, files map[string]string) testProject {
	t.Helper()
	dir := t.TempDir()
	p := testProject{
		Scripts:  filepath.Join(dir, "revisions"),
		Database: filepath.Join(dir, "app.db"),
	}
	require.NoError(t, os.MkdirAll(p.Scripts, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(p.Scripts, name), []byte(content), 0o644))
	}
	return p
}

// widgetFiles is a linear chain a1 -> b2 -> c3.
var widgetFiles = map[string]string{
	"a1_create_widgets.yaml": `revision: a1
message: create widgets
upgrade:
  - CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT)
downgrade:
  - DROP TABLE widgets
`,
	"b2_seed_widgets.yaml": `revision: b2
down_revision: a1
message: seed widgets
upgrade:
  - INSERT INTO widgets (name) VALUES ('gear')
downgrade:
  - DELETE FROM widgets
`,
	"c3_index_names.cue": `revision: {
	revision:      "c3"
	down_revision: "b2"
	message:       "index names"
	upgrade: ["CREATE INDEX ix_widgets_name ON widgets (name)"]
	downgrade: ["DROP INDEX ix_widgets_name"]
}
`,
}

// branchFiles is r1 -> r2 -> {r3a, r3b}.
var branchFiles = map[string]string{
	"r1.yaml":  "revision: r1\nmessage: root\n",
	"r2.yaml":  "revision: r2\ndown_revision: r1\nmessage: fork\n",
	"r3a.yaml": "revision: r3a\ndown_revision: r2\nmessage: branch a\n",
	"r3b.yaml": "revision: r3b\ndown_revision: r2\nmessage: branch b\n",
}

// execute runs the root command and returns stdout, stderr and the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func assertGolden(t *testing.T, name string, got string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(got))
}
