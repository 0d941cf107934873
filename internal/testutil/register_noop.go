package testutil

import (
	"context"

	"github.com/specialistvlad/gppgo/internal/nav"
	"github.com/specialistvlad/gppgo/internal/plugin"
	"github.com/specialistvlad/gppgo/internal/registry"
)

// NoOpModule registers a "noop" type in every category. The noop planner
// returns the two-pose path from start to goal; the others accept
// everything unchanged.
type NoOpModule struct{}

// Register implements the registry.Module interface.
func (m *NoOpModule) Register(r *registry.Registry) {
	r.PrePlanning.Register("noop", func() plugin.PrePlanner { return noop{} })
	r.Planning.Register("noop", func() plugin.Planner { return noop{} })
	r.PostPlanning.Register("noop", func() plugin.PostPlanner { return noop{} })
}

type noop struct{}

func (noop) Initialize(plugin.Scope) error { return nil }

func (noop) PreProcess(context.Context, *nav.Pose, *nav.Pose, float64) bool { return true }

func (noop) MakePlan(_ context.Context, start, goal nav.Pose, _ float64, path *nav.Path, cost *float64) bool {
	*path = nav.Path{start, goal}
	*cost = path.Length()
	return true
}

func (noop) PostProcess(context.Context, *nav.Path, *float64) bool { return true }
