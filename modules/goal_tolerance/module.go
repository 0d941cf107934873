// Package goal_tolerance provides a pre-planning step that pulls a goal
// lying just outside the map back inside, by at most the request tolerance.
package goal_tolerance

import (
	"context"
	"fmt"
	"math"

	"github.com/specialistvlad/gppgo/internal/ctxlog"
	"github.com/specialistvlad/gppgo/internal/nav"
	"github.com/specialistvlad/gppgo/internal/plugin"
	"github.com/specialistvlad/gppgo/internal/registry"
)

// maxSteps bounds the walk; larger tolerances are sampled more coarsely.
const maxSteps = 10000

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the "goal_tolerance" pre-planning type.
func (m *Module) Register(r *registry.Registry) {
	r.PrePlanning.Register("goal_tolerance", func() plugin.PrePlanner { return new(Adjuster) })
}

// Adjuster walks from the goal toward the start in steps of "resolution"
// (default 0.01) and takes the first point inside the map, never moving
// further than the tolerance.
type Adjuster struct {
	m          nav.Map
	resolution float64
}

// Initialize implements plugin.Initializer.
func (a *Adjuster) Initialize(scope plugin.Scope) error {
	if scope.Map == nil {
		return fmt.Errorf("goal tolerance '%s' requires a map", scope.Name)
	}
	res, err := scope.Config.Float("resolution", 0.01)
	if err != nil {
		return err
	}
	if res <= 0 || math.IsNaN(res) {
		return fmt.Errorf("%s: must be positive, got %g", scope.Config.Path("resolution"), res)
	}
	a.m = scope.Map
	a.resolution = res
	return nil
}

// PreProcess implements plugin.PrePlanner.
func (a *Adjuster) PreProcess(ctx context.Context, start, goal *nav.Pose, tolerance float64) bool {
	if a.m.Contains(goal.X, goal.Y) {
		return true
	}

	logger := ctxlog.FromContext(ctx)
	dist := nav.Distance(*goal, *start)
	limit := math.Min(tolerance, dist)
	if dist == 0 || limit <= 0 || math.IsInf(limit, 0) || math.IsNaN(limit) {
		logger.Warn("Goal is outside the map and cannot be moved.", "goal", goal.String(), "tolerance", tolerance)
		return false
	}

	dx, dy := (start.X-goal.X)/dist, (start.Y-goal.Y)/dist
	step := math.Max(a.resolution, limit/maxSteps)
	steps := int(math.Ceil(limit / step))
	for i := 1; i <= steps; i++ {
		d := math.Min(float64(i)*step, limit)
		x, y := goal.X+dx*d, goal.Y+dy*d
		if a.m.Contains(x, y) {
			logger.Info("Moved goal into the map.", "from", goal.String(), "distance", d)
			goal.X, goal.Y = x, y
			return true
		}
	}

	logger.Warn("Goal is further outside the map than the tolerance.", "goal", goal.String(), "tolerance", tolerance)
	return false
}
