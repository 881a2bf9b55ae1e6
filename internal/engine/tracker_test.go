package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/revline/internal/engine"
	"github.com/roach88/revline/internal/ir"
	"github.com/roach88/revline/internal/testutil"
)

func TestCurrentPosition_Live(t *testing.T) {
	target := testutil.NewMemoryTarget("abc")

	cur, err := engine.CurrentPosition(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, "abc", cur)
	assert.Equal(t, 1, target.Closed())
	assert.Empty(t, target.Trace())
}

func TestCurrentPosition_Text(t *testing.T) {
	target := &textTarget{}

	_, err := engine.CurrentPosition(context.Background(), target)
	require.ErrorIs(t, err, engine.ErrNoCurrentState)
	assert.Equal(t, 1, target.closed)
}

func TestStamp_DoesNotRunPayloads(t *testing.T) {
	f := testutil.LinearFixture(t, "r1", "r2", "r3")
	target := testutil.NewMemoryTarget("r1")

	err := engine.Stamp(context.Background(), target, "r3", engine.Options{})
	require.NoError(t, err)

	assert.Equal(t, "r3", target.Marker())
	assert.Empty(t, target.Statements())
	assert.Equal(t, 1, target.Closed())

	up, down := f.TotalCalls()
	assert.Zero(t, up+down)
}

func TestStamp_ToBase(t *testing.T) {
	target := testutil.NewMemoryTarget("r2")

	require.NoError(t, engine.Stamp(context.Background(), target, ir.None, engine.Options{}))
	assert.Equal(t, ir.None, target.Marker())
}

func TestStamp_SameRevisionIsNoOp(t *testing.T) {
	target := testutil.NewMemoryTarget("r2")

	require.NoError(t, engine.Stamp(context.Background(), target, "r2", engine.Options{}))
	assert.Empty(t, target.Trace())
	assert.Equal(t, 1, target.Closed())
}

func TestStampPlan_ResolvesSymbols(t *testing.T) {
	f := testutil.LinearFixture(t, "r1", "r2")
	target := testutil.NewMemoryTarget(ir.None)

	_, err := engine.RunSession(context.Background(), target, engine.Options{}, engine.StampPlan(f.Graph, "head"))
	require.NoError(t, err)
	assert.Equal(t, "r2", target.Marker())
}

func TestStamp_TextMode(t *testing.T) {
	target := &textTarget{}

	err := engine.Stamp(context.Background(), target, "r2", engine.Options{Direction: ir.Upgrade})
	require.NoError(t, err)
	assert.Equal(t, []string{
		`header upgrade start="" has=false dest="r2"`,
		`replace marker "r2"`,
		"footer",
	}, target.events)
}
