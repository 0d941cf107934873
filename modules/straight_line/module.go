// Package straight_line provides a planner that connects start and goal with
// an evenly sampled straight segment. It ignores obstacles and is meant as a
// fallback and as a reference planner.
package straight_line

import (
	"context"
	"fmt"
	"math"

	"github.com/specialistvlad/gppgo/internal/ctxlog"
	"github.com/specialistvlad/gppgo/internal/nav"
	"github.com/specialistvlad/gppgo/internal/plugin"
	"github.com/specialistvlad/gppgo/internal/registry"
)

// DefaultStep is the sampling distance used when "step" is not configured.
const DefaultStep = 0.1

// DefaultMaxPoses bounds the number of poses in one path when "max_poses" is
// not configured.
const DefaultMaxPoses = 100000

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers "straight_line" as a basic planner; its cost is the
// path length.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBasicPlanner("straight_line", func() plugin.BasicPlanner { return new(Planner) })
}

// Planner samples the segment from start to goal every Step metres.
// Intermediate poses face the goal; the last pose is the goal itself.
// A zero MaxPoses means DefaultMaxPoses.
type Planner struct {
	Step     float64
	MaxPoses int
	m        nav.Map
}

// Initialize implements plugin.Initializer. Parameters: step (default 0.1),
// max_poses (default 100000). When a map is given, paths leaving it are
// rejected.
func (p *Planner) Initialize(scope plugin.Scope) error {
	step, err := scope.Config.Float("step", DefaultStep)
	if err != nil {
		return err
	}
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return fmt.Errorf("%s: must be a positive number, got %g", scope.Config.Path("step"), step)
	}
	maxPoses, err := scope.Config.Int("max_poses", DefaultMaxPoses)
	if err != nil {
		return err
	}
	if maxPoses < 2 {
		return fmt.Errorf("%s: must be at least 2, got %d", scope.Config.Path("max_poses"), maxPoses)
	}
	p.Step = step
	p.MaxPoses = maxPoses
	p.m = scope.Map
	return nil
}

// MakePlan implements plugin.BasicPlanner.
func (p *Planner) MakePlan(ctx context.Context, start, goal nav.Pose, path *nav.Path) bool {
	limit := p.MaxPoses
	if limit <= 0 {
		limit = DefaultMaxPoses
	}
	segments := math.Ceil(nav.Distance(start, goal) / p.Step)
	if math.IsNaN(segments) || segments+1 > float64(limit) {
		ctxlog.FromContext(ctx).Warn("Straight line needs too many poses.", "start", start.String(), "goal", goal.String(), "max_poses", limit)
		return false
	}
	n := int(segments)
	heading := math.Atan2(goal.Y-start.Y, goal.X-start.X)

	out := make(nav.Path, 0, n+1)
	out = append(out, start)
	for i := 1; i < n; i++ {
		f := float64(i) / float64(n)
		out = append(out, nav.Pose{
			Frame: start.Frame,
			X:     start.X + f*(goal.X-start.X),
			Y:     start.Y + f*(goal.Y-start.Y),
			Yaw:   heading,
		})
	}
	if n > 0 {
		out = append(out, goal)
	}

	if p.m != nil {
		for _, pose := range out {
			if !p.m.Contains(pose.X, pose.Y) {
				return false
			}
		}
	}

	*path = out
	return true
}
