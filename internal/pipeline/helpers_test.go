package pipeline

import (
	"context"
	"testing"

	"github.com/specialistvlad/gppgo/internal/config"
	"github.com/specialistvlad/gppgo/internal/hcl_adapter"
	"github.com/specialistvlad/gppgo/internal/nav"
	"github.com/specialistvlad/gppgo/internal/plugin"
	"github.com/specialistvlad/gppgo/internal/registry"
	"github.com/stretchr/testify/require"
)

// recorder is shared by all fake plugins of one test.
type recorder struct {
	calls      []string
	closed     []string
	tolerances []float64
	goals      []nav.Pose
	cancel     func() bool
}

// fake implements all three capabilities. Its behaviour comes from its own
// namespace: result (default true), shift (added to goal x), cost (added to
// the cost), cancel (request cancellation while running).
type fake struct {
	rec    *recorder
	name   string
	result bool
	shift  float64
	cost   float64
	cancel bool
}

func (f *fake) Initialize(scope plugin.Scope) error {
	f.name = scope.Name
	var err error
	if f.result, err = scope.Config.Bool("result", true); err != nil {
		return err
	}
	if f.shift, err = scope.Config.Float("shift", 0); err != nil {
		return err
	}
	if f.cost, err = scope.Config.Float("cost", 0); err != nil {
		return err
	}
	f.cancel, err = scope.Config.Bool("cancel", false)
	return err
}

func (f *fake) enter(tolerance float64) {
	f.rec.calls = append(f.rec.calls, f.name)
	f.rec.tolerances = append(f.rec.tolerances, tolerance)
	if f.cancel && f.rec.cancel != nil {
		f.rec.cancel()
	}
}

func (f *fake) PreProcess(_ context.Context, _, goal *nav.Pose, tolerance float64) bool {
	f.enter(tolerance)
	goal.X += f.shift
	return f.result
}

func (f *fake) MakePlan(_ context.Context, start, goal nav.Pose, tolerance float64, path *nav.Path, cost *float64) bool {
	f.enter(tolerance)
	f.rec.goals = append(f.rec.goals, goal)
	if !f.result {
		return false
	}
	*path = nav.Path{start, goal}
	*cost = path.Length() + f.cost
	return true
}

func (f *fake) PostProcess(_ context.Context, path *nav.Path, cost *float64) bool {
	f.enter(-1)
	*cost += f.cost
	return f.result
}

func (f *fake) Close() error {
	f.rec.closed = append(f.rec.closed, f.name)
	return nil
}

func testRegistry(rec *recorder) *registry.Registry {
	reg := registry.New()
	reg.PrePlanning.Register("fake", func() plugin.PrePlanner { return &fake{rec: rec} })
	reg.Planning.Register("fake", func() plugin.Planner { return &fake{rec: rec} })
	reg.PostPlanning.Register("fake", func() plugin.PostPlanner { return &fake{rec: rec} })
	return reg
}

func parseParams(t *testing.T, src string) config.Scope {
	t.Helper()
	doc, err := hcl_adapter.NewLoader().Parse([]byte(src), "params.hcl")
	require.NoError(t, err)
	return doc.Scope
}

// newPipeline builds and initializes a pipeline named "gpp" from src.
func newPipeline(t *testing.T, rec *recorder, src string, opts ...Option) *Pipeline {
	t.Helper()
	p := New(testRegistry(rec), parseParams(t, src), opts...)
	rec.cancel = p.Cancel
	require.NoError(t, p.Initialize(context.Background(), "gpp", nav.Bounds{FrameID: "map", MaxX: 10, MaxY: 10}))
	t.Cleanup(func() { p.Close() })
	return p
}

var (
	origin = nav.Pose{Frame: "map"}
	target = nav.Pose{Frame: "map", X: 3, Y: 4}
)
