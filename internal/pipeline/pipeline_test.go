package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/gppgo/internal/metrics"
	"github.com/specialistvlad/gppgo/internal/nav"
	"github.com/specialistvlad/gppgo/internal/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakePlan_FallbackPlanner(t *testing.T) {
	rec := &recorder{}
	p := newPipeline(t, rec, `
gpp = {
  planning = [
    { name = "A", type = "fake", on_failure_break = false },
    { name = "B", type = "fake", on_success_break = true },
  ]
  A = { result = false }
}
`)

	plan, err := p.MakePlan(context.Background(), origin, target)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, rec.calls)
	assert.Equal(t, nav.Path{origin, target}, plan.Path)
	assert.InDelta(t, 5.0, plan.Cost, 1e-9)
}

func TestMakePlan_PlannerFailureBreaks(t *testing.T) {
	rec := &recorder{}
	p := newPipeline(t, rec, `
gpp = {
  planning = [
    { name = "A", type = "fake" },
    { name = "B", type = "fake" },
  ]
  A = { result = false }
}
`)

	outcome, plan, msg := p.MakePlanWithTolerance(context.Background(), origin, target, 0.1)
	assert.Equal(t, OutcomeFailure, outcome)
	assert.Nil(t, plan)
	assert.Equal(t, "no planner produced a path (at 'A')", msg)
	assert.Equal(t, []string{"A"}, rec.calls, "B must not run")
}

func TestMakePlan_PostDefaultValueFalse(t *testing.T) {
	rec := &recorder{}
	p := newPipeline(t, rec, `
gpp = {
  planning      = [{ name = "P", type = "fake" }]
  post_planning = [{ name = "X", type = "fake", on_failure_break = false }]
  post_planning_default_value = false
  X = { result = false }
}
`)

	_, err := p.MakePlan(context.Background(), origin, target)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPlanningFailed)

	var planErr *PlanError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, KeyPostPlanning, planErr.Stage)
	assert.Empty(t, planErr.Plugin, "decided by the default value")
	assert.Equal(t, "post-planning rejected path", planErr.Reason)
	assert.Equal(t, OutcomeFailure, Outcome(err))
}

func TestMakePlan_PreFailureSkipsPlanning(t *testing.T) {
	rec := &recorder{}
	p := newPipeline(t, rec, `
gpp = {
  pre_planning  = [{ name = "check", type = "fake" }]
  planning      = [{ name = "P", type = "fake" }]
  check = { result = false }
}
`)

	_, err := p.MakePlan(context.Background(), origin, target)
	var planErr *PlanError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, KeyPrePlanning, planErr.Stage)
	assert.Equal(t, "check", planErr.Plugin)
	assert.Equal(t, []string{"check"}, rec.calls)
}

func TestMakePlan_CancelBeforePlanningStage(t *testing.T) {
	rec := &recorder{}
	p := newPipeline(t, rec, `
gpp = {
  pre_planning = [{ name = "P1", type = "fake" }]
  planning     = [{ name = "A", type = "fake" }]
  P1 = { cancel = true }
}
`)

	outcome, plan, msg := p.MakePlanWithTolerance(context.Background(), origin, target, 0.1)
	assert.Equal(t, OutcomeCanceled, outcome)
	assert.Nil(t, plan)
	assert.Contains(t, msg, "cancelled")
	assert.Equal(t, []string{"P1"}, rec.calls, "no planner may run after cancellation")
}

func TestMakePlan_CancelBetweenInstances(t *testing.T) {
	rec := &recorder{}
	p := newPipeline(t, rec, `
gpp = {
  planning = [
    { name = "A", type = "fake", on_failure_break = false },
    { name = "B", type = "fake" },
  ]
  A = { result = false, cancel = true }
}
`)

	_, err := p.MakePlan(context.Background(), origin, target)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, []string{"A"}, rec.calls)
}

func TestMakePlan_CancelFlagClearedOnNextInvocation(t *testing.T) {
	rec := &recorder{}
	p := newPipeline(t, rec, `gpp = { planning = [{ name = "A", type = "fake" }] }`)

	assert.True(t, p.Cancel())
	_, err := p.MakePlan(context.Background(), origin, target)
	require.NoError(t, err, "a stale cancel request must not leak into a new invocation")
}

func TestMakePlan_ContextCancelled(t *testing.T) {
	rec := &recorder{}
	p := newPipeline(t, rec, `gpp = { planning = [{ name = "A", type = "fake" }] }`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.MakePlan(ctx, origin, target)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, OutcomeCanceled, Outcome(err))
	assert.Empty(t, rec.calls)
}

func TestMakePlan_StateFlowsThroughStages(t *testing.T) {
	rec := &recorder{}
	p := newPipeline(t, rec, `
gpp = {
  pre_planning  = [{ name = "nudge", type = "fake" }]
  planning      = [{ name = "P", type = "fake" }]
  post_planning = [{ name = "tax", type = "fake" }]
  nudge = { shift = 1 }
  tax   = { cost = 2 }
}
`)

	plan, err := p.MakePlan(context.Background(), origin, target)
	require.NoError(t, err)

	shifted := nav.Pose{Frame: "map", X: 4, Y: 4}
	require.Len(t, rec.goals, 1)
	assert.Equal(t, shifted, rec.goals[0], "planner sees the pre-processed goal")
	assert.Equal(t, nav.Path{origin, shifted}, plan.Path)
	assert.InDelta(t, shifted.X*1.4142135623730951+2, plan.Cost, 1e-9)
	assert.Equal(t, []string{"nudge", "P", "tax"}, rec.calls)

	// The caller's poses are untouched and the next invocation starts fresh.
	assert.Equal(t, 3.0, target.X)
	rec.goals = nil
	_, err = p.MakePlan(context.Background(), origin, target)
	require.NoError(t, err)
	assert.Equal(t, shifted, rec.goals[0])
}

func TestMakePlan_Tolerance(t *testing.T) {
	rec := &recorder{}
	p := newPipeline(t, rec, `
gpp = {
  tolerance = 0.5
  planning  = [{ name = "A", type = "fake" }]
}
`)
	assert.Equal(t, 0.5, p.Tolerance())

	_, err := p.MakePlan(context.Background(), origin, target)
	require.NoError(t, err)
	outcome, _, _ := p.MakePlanWithTolerance(context.Background(), origin, target, 2)
	require.Equal(t, OutcomeSuccess, outcome)
	_, err = p.MakePlan(context.Background(), origin, target)
	require.NoError(t, err)

	assert.Equal(t, []float64{0.5, 2, 0.5}, rec.tolerances)
}

func TestInitialize_DefaultTolerance(t *testing.T) {
	p := newPipeline(t, &recorder{}, `gpp = { planning = [{ name = "A", type = "fake" }] }`)
	assert.Equal(t, DefaultTolerance, p.Tolerance())
	assert.Equal(t, "gpp", p.Name())
	assert.Equal(t, map[string][]string{
		KeyPrePlanning:  {},
		KeyPlanning:     {"A"},
		KeyPostPlanning: {},
	}, p.Plugins())
}

func TestInitialize_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantErr error
		wantMsg string
	}{
		{
			name:    "planning missing",
			src:     `gpp = { tolerance = 0.2 }`,
			wantErr: plugin.ErrConfiguration,
			wantMsg: "at least one plugin is required",
		},
		{
			name:    "planning empty",
			src:     `gpp = { planning = [] }`,
			wantErr: plugin.ErrConfiguration,
			wantMsg: "at least one plugin is required",
		},
		{
			name:    "stage not an array",
			src:     `gpp = { planning = [{ name = "A", type = "fake" }], pre_planning = "nope" }`,
			wantErr: plugin.ErrConfiguration,
			wantMsg: "must be an array",
		},
		{
			name:    "unknown type",
			src:     `gpp = { planning = [{ name = "A", type = "teleport" }] }`,
			wantErr: plugin.ErrResolution,
			wantMsg: "teleport",
		},
		{
			name:    "bad tolerance",
			src:     `gpp = { tolerance = "wide", planning = [{ name = "A", type = "fake" }] }`,
			wantErr: plugin.ErrConfiguration,
			wantMsg: "tolerance",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := New(testRegistry(&recorder{}), parseParams(t, tc.src))
			err := p.Initialize(context.Background(), "gpp", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Contains(t, err.Error(), tc.wantMsg)

			_, err = p.MakePlan(context.Background(), origin, target)
			assert.ErrorIs(t, err, ErrNotInitialized)
		})
	}
}

func TestInitialize_FailureReleasesLoadedStages(t *testing.T) {
	rec := &recorder{}
	p := New(testRegistry(rec), parseParams(t, `
gpp = {
  pre_planning  = [{ name = "pre", type = "fake" }]
  post_planning = [{ name = "post", type = "fake" }]
  planning      = [{ name = "P", type = "teleport" }]
}
`))
	require.Error(t, p.Initialize(context.Background(), "gpp", nil))
	assert.Equal(t, []string{"post", "pre"}, rec.closed)
}

func TestInitialize_ReloadIsAtomic(t *testing.T) {
	rec := &recorder{}
	p := newPipeline(t, rec, `
gpp    = { planning = [{ name = "old", type = "fake" }] }
broken = { planning = [] }
fresh  = { planning = [{ name = "new", type = "fake" }] }
`)

	require.Error(t, p.Initialize(context.Background(), "broken", nil))
	assert.Empty(t, rec.closed, "a failed reload keeps the running stages")
	assert.Equal(t, "gpp", p.Name())
	_, err := p.MakePlan(context.Background(), origin, target)
	require.NoError(t, err)

	require.NoError(t, p.Initialize(context.Background(), "fresh", nil))
	assert.Equal(t, []string{"old"}, rec.closed)
	rec.calls = nil
	_, err = p.MakePlan(context.Background(), origin, target)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, rec.calls)
}

func TestClose_TeardownOrder(t *testing.T) {
	rec := &recorder{}
	p := New(testRegistry(rec), parseParams(t, `
gpp = {
  pre_planning  = [{ name = "pre1", type = "fake" }, { name = "pre2", type = "fake" }]
  planning      = [{ name = "plan", type = "fake" }]
  post_planning = [{ name = "post", type = "fake" }]
}
`))
	require.NoError(t, p.Initialize(context.Background(), "gpp", nil))
	require.NoError(t, p.Close())

	assert.Equal(t, []string{"post", "plan", "pre2", "pre1"}, rec.closed)

	_, err := p.MakePlan(context.Background(), origin, target)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.NoError(t, p.Close(), "closing twice is harmless")
}

func TestMakePlan_Metrics(t *testing.T) {
	m := metrics.NewRegistry()
	rec := &recorder{}
	p := newPipeline(t, rec, `
gpp = {
  planning = [{ name = "A", type = "fake" }]
  A = { result = false }
}
`, WithMetrics(m))

	_, err := p.MakePlan(context.Background(), origin, target)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Invocations.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageResults.WithLabelValues(KeyPrePlanning, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageResults.WithLabelValues(KeyPlanning, "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PluginRuns.WithLabelValues(KeyPlanning, "A", "failure")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Invocations.WithLabelValues("success")))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, Outcome(nil))
	assert.Equal(t, OutcomeCanceled, Outcome(&PlanError{Cancelled: true}))
	assert.Equal(t, OutcomeFailure, Outcome(&PlanError{}))
	assert.Equal(t, OutcomeFailure, Outcome(errors.New("boom")))
	assert.Equal(t, OutcomeFailure, Outcome(ErrNotInitialized))
}
