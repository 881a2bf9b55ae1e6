package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_Linear(t *testing.T) {
	p := newTestProject(t, widgetFiles)

	out, _, err := execute(t, p.args("history")...)
	require.NoError(t, err)
	assertGolden(t, "history_linear", out)
}

func TestHistory_Branched(t *testing.T) {
	p := newTestProject(t, branchFiles)

	out, _, err := execute(t, p.args("history")...)
	require.NoError(t, err)
	assertGolden(t, "history_branched", out)
}

func TestHistory_IndicateCurrent(t *testing.T) {
	p := newTestProject(t, widgetFiles)
	_, _, err := execute(t, p.args("upgrade", "b2")...)
	require.NoError(t, err)

	out, _, err := execute(t, p.args("history", "-i")...)
	require.NoError(t, err)
	assert.Contains(t, out, "a1 -> b2 (current), seed widgets\n")
}

func TestHistory_JSON(t *testing.T) {
	p := newTestProject(t, branchFiles)

	out, _, err := execute(t, p.args("--format", "json", "history")...)
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   []RevisionInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 4)

	ids := make([]string, len(resp.Data))
	for i, info := range resp.Data {
		ids[i] = info.Revision
		assert.Len(t, info.Checksum, 64)
	}
	assert.Equal(t, []string{"r3a", "r3b", "r2", "r1"}, ids)
	assert.True(t, resp.Data[2].IsBranchPoint)
	assert.Equal(t, []string{"r3a", "r3b"}, resp.Data[2].Next)
}

func TestHistory_Empty(t *testing.T) {
	p := newTestProject(t, nil)

	out, _, err := execute(t, p.args("history")...)
	require.NoError(t, err)
	assert.Equal(t, "No revisions found\n", out)
}

func TestHeads(t *testing.T) {
	p := newTestProject(t, branchFiles)

	out, _, err := execute(t, p.args("heads")...)
	require.NoError(t, err)
	assert.Equal(t, "r3a (head)\nr3b (head)\n", out)

	out, _, err = execute(t, p.args("-v", "heads")...)
	require.NoError(t, err)
	assert.Contains(t, out, "r3a (head), branch a\n")
}

func TestBranches(t *testing.T) {
	p := newTestProject(t, branchFiles)

	out, _, err := execute(t, p.args("branches")...)
	require.NoError(t, err)
	assert.Equal(t, "r1 -> r2 (branchpoint), fork\n"+
		"    -> r3a (head), branch a\n"+
		"    -> r3b (head), branch b\n", out)

	linear := newTestProject(t, widgetFiles)
	out, _, err = execute(t, linear.args("branches")...)
	require.NoError(t, err)
	assert.Equal(t, "No branch points\n", out)
}

func TestCheck_OK(t *testing.T) {
	p := newTestProject(t, widgetFiles)

	out, _, err := execute(t, p.args("check")...)
	require.NoError(t, err)
	assert.Equal(t, "Revisions: 3\n"+
		"Heads: c3\n"+
		"Bases: a1\n"+
		"Branch points: (none)\n"+
		"✓ Revision graph OK\n", out)
}

func TestCheck_MultipleHeads(t *testing.T) {
	p := newTestProject(t, branchFiles)

	out, _, err := execute(t, p.args("check")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Revision graph has problems")
	assert.Contains(t, out, "E060: multiple heads: r3a, r3b")
}

func TestCheck_DuplicateBodies(t *testing.T) {
	files := map[string]string{
		"a.yaml": "revision: a\nupgrade: [\"CREATE TABLE t (id INT)\"]\ndowngrade: [\"DROP TABLE t\"]\n",
		"b.yaml": "revision: b\ndown_revision: a\nupgrade: [\"CREATE TABLE t (id INT)\"]\ndowngrade: [\"DROP TABLE t\"]\n",
	}
	p := newTestProject(t, files)

	out, _, err := execute(t, p.args("--format", "json", "check")...)
	require.Error(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CheckResult `json:"data"`
		Error  *CLIError   `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.Equal(t, []string{"revision b repeats the statements of a"}, resp.Data.Problems)
	assert.Equal(t, ErrCodeCheck, resp.Error.Code)
}

func TestCurrent_JSON(t *testing.T) {
	p := newTestProject(t, widgetFiles)
	_, _, err := execute(t, p.args("upgrade", "head")...)
	require.NoError(t, err)

	out, _, err := execute(t, p.args("--format", "json", "current")...)
	require.NoError(t, err)

	var resp struct {
		Data CurrentResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, CurrentResult{Current: "c3", IsHead: true, Message: "index names"}, resp.Data)
}
