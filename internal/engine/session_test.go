package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/revline/internal/engine"
	"github.com/roach88/revline/internal/graph"
	"github.com/roach88/revline/internal/ir"
	"github.com/roach88/revline/internal/testutil"
)

func upgradeOpts() engine.Options {
	return engine.Options{Direction: ir.Upgrade}
}

func TestRunSession_UpgradeToHead(t *testing.T) {
	f := testutil.LinearFixture(t, "r1", "r2", "r3", "r4")
	target := testutil.NewMemoryTarget(ir.None)

	report, err := engine.RunSession(context.Background(), target, upgradeOpts(), engine.UpgradePlan(f.Graph, "head"))
	require.NoError(t, err)

	assert.Equal(t, "r4", target.Marker())
	assert.Equal(t, []string{"up r1", "up r2", "up r3", "up r4"}, target.Statements())
	assert.Equal(t, 1, target.Closed())

	assert.Equal(t, ir.None, report.Start)
	assert.Equal(t, "r4", report.Final)
	require.Len(t, report.Applied, 4)
	for i, res := range report.Applied {
		assert.Equal(t, int64(i+1), res.Seq)
		assert.Equal(t, "upgrade", res.Kind)
	}
	assert.Equal(t, engine.StepResult{Seq: 2, ID: "r2", From: "r1", To: "r2", Kind: "upgrade"}, report.Applied[1])
}

func TestRunSession_FailingStepKeepsPriorCommits(t *testing.T) {
	f := testutil.LinearFixture(t, "r1", "r2", "r3", "r4")
	boom := errors.New("boom")
	f.Payloads["r2"].FailUp = boom
	target := testutil.NewMemoryTarget(ir.None)

	report, err := engine.RunSession(context.Background(), target, upgradeOpts(), engine.UpgradePlan(f.Graph, "r4"))
	require.Error(t, err)

	var ee *engine.ExecutionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "r2", ee.Step)
	assert.Equal(t, 1, ee.Index)
	assert.Equal(t, "r1", ee.LastCommitted)
	assert.ErrorIs(t, err, engine.ErrExecution)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, "r1", target.Marker())
	assert.Equal(t, []string{"up r1"}, target.Statements())
	assert.Equal(t, 1, target.Closed())

	for _, id := range []string{"r3", "r4"} {
		up, down := f.Payloads[id].Calls()
		assert.Zero(t, up, id)
		assert.Zero(t, down, id)
	}

	require.NotNil(t, report)
	assert.Equal(t, "r1", report.Final)
	assert.Len(t, report.Applied, 1)
}

func TestRunSession_FailingStatementRollsBackStep(t *testing.T) {
	g, err := graph.New([]ir.Revision{
		{ID: "a", Payload: ir.SQLPayload{Up: []string{"CREATE TABLE a (id INT)"}}},
		{ID: "b", DownRevision: "a", Payload: ir.SQLPayload{Up: []string{
			"CREATE TABLE b (id INT)",
			"INSERT INTO missing VALUES (1)",
		}}},
	})
	require.NoError(t, err)

	target := testutil.NewMemoryTarget(ir.None)
	target.FailStatements["INSERT INTO missing VALUES (1)"] = errors.New("no such table: missing")

	_, err = engine.RunSession(context.Background(), target, upgradeOpts(), engine.UpgradePlan(g, "b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement 2")

	assert.Equal(t, "a", target.Marker())
	assert.Equal(t, []string{"CREATE TABLE a (id INT)"}, target.Statements())
}

func TestRunSession_CommitFailure(t *testing.T) {
	f := testutil.LinearFixture(t, "r1")
	target := testutil.NewMemoryTarget(ir.None)
	target.FailCommit = errors.New("disk full")

	_, err := engine.RunSession(context.Background(), target, upgradeOpts(), engine.UpgradePlan(f.Graph, "r1"))
	require.Error(t, err)

	var ee *engine.ExecutionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "r1", ee.Step)
	assert.Equal(t, ir.None, ee.LastCommitted)
	assert.Contains(t, err.Error(), "commit: disk full")
	assert.Equal(t, ir.None, target.Marker())
}

func TestRunSession_RoundTrip(t *testing.T) {
	f := testutil.LinearFixture(t, "r1", "r2", "r3")
	target := testutil.NewMemoryTarget(ir.None)
	ctx := context.Background()

	_, err := engine.RunSession(ctx, target, upgradeOpts(), engine.UpgradePlan(f.Graph, "head"))
	require.NoError(t, err)
	assert.Equal(t, "r3", target.Marker())

	_, err = engine.RunSession(ctx, target, engine.Options{Direction: ir.Downgrade}, engine.DowngradePlan(f.Graph, "base"))
	require.NoError(t, err)

	assert.Equal(t, ir.None, target.Marker())
	assert.Equal(t, []string{
		"up r1", "up r2", "up r3",
		"down r3", "down r2", "down r1",
	}, target.Statements())
	assert.Equal(t, 2, target.Closed())

	up, down := f.TotalCalls()
	assert.Equal(t, 3, up)
	assert.Equal(t, 3, down)
}

func TestRunSession_PlanErrorClosesOnce(t *testing.T) {
	f := testutil.LinearFixture(t, "r1", "r2")
	target := testutil.NewMemoryTarget(ir.None)

	_, err := engine.RunSession(context.Background(), target, upgradeOpts(), engine.UpgradePlan(f.Graph, "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrResolution)
	assert.False(t, engine.IsExecutionError(err))

	assert.Equal(t, 1, target.Closed())
	up, down := f.TotalCalls()
	assert.Zero(t, up+down)
}

func TestRunSession_AmbiguousHead(t *testing.T) {
	f := testutil.BranchedFixture(t)
	target := testutil.NewMemoryTarget(ir.None)

	_, err := engine.RunSession(context.Background(), target, upgradeOpts(), engine.UpgradePlan(f.Graph, "head"))
	var ahe *graph.AmbiguousHeadError
	require.ErrorAs(t, err, &ahe)
	assert.Equal(t, []string{"r3a", "r3b"}, ahe.Heads)
	assert.Equal(t, ir.None, target.Marker())
}

func TestRunSession_QueryFailure(t *testing.T) {
	f := testutil.LinearFixture(t, "r1")
	target := testutil.NewMemoryTarget(ir.None)
	target.FailQuery = errors.New("connection refused")

	_, err := engine.RunSession(context.Background(), target, upgradeOpts(), engine.UpgradePlan(f.Graph, "r1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query current revision: connection refused")
	assert.Equal(t, 1, target.Closed())
}

func TestRunSession_CancelledContext(t *testing.T) {
	f := testutil.LinearFixture(t, "r1", "r2")
	target := testutil.NewMemoryTarget(ir.None)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.RunSession(ctx, target, upgradeOpts(), engine.UpgradePlan(f.Graph, "head"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	var ee *engine.ExecutionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "r1", ee.Step)
	assert.Equal(t, ir.None, ee.LastCommitted)

	assert.Equal(t, 1, target.Closed())
	up, _ := f.TotalCalls()
	assert.Zero(t, up)
}

func TestRunSession_CancelBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, err := graph.New([]ir.Revision{
		{ID: "a", Payload: ir.FuncPayload{Up: func(ctx context.Context, x ir.Executor) error {
			cancel()
			return x.Exec(ctx, "up a")
		}}},
		{ID: "b", DownRevision: "a", Payload: ir.SQLPayload{Up: []string{"up b"}}},
	})
	require.NoError(t, err)
	target := testutil.NewMemoryTarget(ir.None)

	_, err = engine.RunSession(ctx, target, upgradeOpts(), engine.UpgradePlan(g, "b"))
	require.ErrorIs(t, err, context.Canceled)

	var ee *engine.ExecutionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "b", ee.Step)
	assert.Equal(t, "a", ee.LastCommitted)
	assert.Equal(t, "a", target.Marker())
}

func TestRunSession_DeferredPlanSeesCurrent(t *testing.T) {
	f := testutil.LinearFixture(t, "r1", "r2", "r3")
	target := testutil.NewMemoryTarget("r1")

	var seen string
	_, err := engine.RunSession(context.Background(), target, upgradeOpts(), func(ctx context.Context, s *engine.Session) ([]engine.Step, error) {
		cur, err := s.Current(ctx)
		if err != nil {
			return nil, err
		}
		seen = cur
		assert.Equal(t, engine.ModeLive, s.Mode())
		return engine.PlanUpgrade(f.Graph, cur, "r3")
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", seen)
	assert.Equal(t, []string{"up r2", "up r3"}, target.Statements())
}

func TestRunSession_NilTarget(t *testing.T) {
	_, err := engine.RunSession(context.Background(), nil, upgradeOpts(), nil)
	require.Error(t, err)
}

func TestRunSession_TextModeFraming(t *testing.T) {
	f := testutil.LinearFixture(t, "r1", "r2")
	target := &textTarget{}

	opts := engine.Options{Direction: ir.Upgrade, Destination: "r2"}
	report, err := engine.RunSession(context.Background(), target, opts, engine.UpgradePlan(f.Graph, "head"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		`header upgrade start="" has=false dest="r2"`,
		"-- Running upgrade <base> -> r1",
		"up r1",
		`marker "" -> "r1"`,
		"-- Running upgrade r1 -> r2",
		"up r2",
		`marker "r1" -> "r2"`,
		"footer",
	}, target.events)
	assert.Equal(t, 1, target.closed)
	assert.Equal(t, engine.ModeText, report.Mode)
}

func TestRunSession_TextModeRange(t *testing.T) {
	f := testutil.LinearFixture(t, "r1", "r2", "r3")
	target := &textTarget{}

	opts := engine.Options{Direction: ir.Downgrade, StartingRevision: "r3", HasStart: true, Destination: "r1"}
	_, err := engine.RunSession(context.Background(), target, opts, engine.DowngradePlan(f.Graph, "r1"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		`header downgrade start="r3" has=true dest="r1"`,
		"-- Running downgrade r3 -> r2",
		"down r3",
		`marker "r3" -> "r2"`,
		"-- Running downgrade r2 -> r1",
		"down r2",
		`marker "r2" -> "r1"`,
		"footer",
	}, target.events)
}

func TestRunSession_TextDowngradeNeedsStart(t *testing.T) {
	f := testutil.LinearFixture(t, "r1", "r2")
	target := &textTarget{}

	_, err := engine.RunSession(context.Background(), target, engine.Options{Direction: ir.Downgrade}, engine.DowngradePlan(f.Graph, "base"))
	require.ErrorIs(t, err, engine.ErrNoCurrentState)
	assert.Equal(t, 1, target.closed)
	assert.Empty(t, target.events, "a failed plan must not emit a header")
}

func TestRunSession_TextPathErrorEmitsNothing(t *testing.T) {
	f := testutil.BranchedFixture(t)
	target := &textTarget{}

	opts := engine.Options{Direction: ir.Upgrade, StartingRevision: "r3a", HasStart: true, Destination: "r3b"}
	_, err := engine.RunSession(context.Background(), target, opts, engine.UpgradePlan(f.Graph, "r3b"))
	require.ErrorIs(t, err, graph.ErrPath)
	assert.Empty(t, target.events)
	assert.Equal(t, 1, target.closed)
}

func TestRunSession_TextStampFramed(t *testing.T) {
	f := testutil.LinearFixture(t, "r1", "r2")
	target := &textTarget{}

	opts := engine.Options{Direction: ir.Upgrade, Destination: "r2", Tag: "release-7"}
	report, err := engine.RunSession(context.Background(), target, opts, engine.StampPlan(f.Graph, "r2"))
	require.NoError(t, err)
	assert.Equal(t, "release-7", report.Tag)
	assert.Equal(t, []string{
		`header upgrade start="" has=false dest="r2"`,
		`replace marker "r2"`,
		"footer",
	}, target.events)
}
