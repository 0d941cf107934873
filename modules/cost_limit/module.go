// Package cost_limit provides a post-planning check that rejects paths that
// are too expensive or too long.
package cost_limit

import (
	"context"
	"fmt"
	"math"

	"github.com/specialistvlad/gppgo/internal/ctxlog"
	"github.com/specialistvlad/gppgo/internal/nav"
	"github.com/specialistvlad/gppgo/internal/plugin"
	"github.com/specialistvlad/gppgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the "cost_limit" post-planning type.
func (m *Module) Register(r *registry.Registry) {
	r.PostPlanning.Register("cost_limit", func() plugin.PostPlanner { return new(Limit) })
}

// Limit fails when the cost exceeds max_cost or the path has more than
// max_poses poses. Either limit is disabled when not configured.
type Limit struct {
	maxCost  float64
	maxPoses int
}

// Initialize implements plugin.Initializer.
func (l *Limit) Initialize(scope plugin.Scope) error {
	var err error
	if l.maxCost, err = scope.Config.Float("max_cost", math.Inf(1)); err != nil {
		return err
	}
	if l.maxCost < 0 || math.IsNaN(l.maxCost) {
		return fmt.Errorf("%s: must not be negative, got %g", scope.Config.Path("max_cost"), l.maxCost)
	}
	if l.maxPoses, err = scope.Config.Int("max_poses", 0); err != nil {
		return err
	}
	if l.maxPoses < 0 {
		return fmt.Errorf("%s: must not be negative, got %d", scope.Config.Path("max_poses"), l.maxPoses)
	}
	return nil
}

// PostProcess implements plugin.PostPlanner.
func (l *Limit) PostProcess(ctx context.Context, path *nav.Path, cost *float64) bool {
	logger := ctxlog.FromContext(ctx)
	if *cost > l.maxCost {
		logger.Warn("Path is too expensive.", "cost", *cost, "max_cost", l.maxCost)
		return false
	}
	if l.maxPoses > 0 && len(*path) > l.maxPoses {
		logger.Warn("Path has too many poses.", "poses", len(*path), "max_poses", l.maxPoses)
		return false
	}
	return true
}
