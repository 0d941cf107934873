// Package bounds provides a pre-planning check that rejects requests whose
// start or goal lies outside the map.
package bounds

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/gppgo/internal/ctxlog"
	"github.com/specialistvlad/gppgo/internal/nav"
	"github.com/specialistvlad/gppgo/internal/plugin"
	"github.com/specialistvlad/gppgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the "bounds" pre-planning type.
func (m *Module) Register(r *registry.Registry) {
	r.PrePlanning.Register("bounds", func() plugin.PrePlanner { return new(Checker) })
}

// Checker validates poses against the map handed over at load time.
//
// Parameters: check_start (bool, default true), check_goal (bool, default
// true), check_frame (bool, default true).
type Checker struct {
	m          nav.Map
	logger     *slog.Logger
	checkStart bool
	checkGoal  bool
	checkFrame bool
}

// Initialize implements plugin.Initializer.
func (c *Checker) Initialize(scope plugin.Scope) error {
	if scope.Map == nil {
		return fmt.Errorf("bounds check '%s' requires a map", scope.Name)
	}
	c.m = scope.Map
	c.logger = scope.Logger

	var err error
	if c.checkStart, err = scope.Config.Bool("check_start", true); err != nil {
		return err
	}
	if c.checkGoal, err = scope.Config.Bool("check_goal", true); err != nil {
		return err
	}
	c.checkFrame, err = scope.Config.Bool("check_frame", true)
	return err
}

// PreProcess implements plugin.PrePlanner. It never modifies the poses.
func (c *Checker) PreProcess(ctx context.Context, start, goal *nav.Pose, _ float64) bool {
	logger := ctxlog.FromContext(ctx)
	if c.checkStart && !c.accepts(logger, "start", *start) {
		return false
	}
	if c.checkGoal && !c.accepts(logger, "goal", *goal) {
		return false
	}
	return true
}

func (c *Checker) accepts(logger *slog.Logger, role string, p nav.Pose) bool {
	if c.checkFrame && p.Frame != "" && c.m.Frame() != "" && p.Frame != c.m.Frame() {
		logger.Warn("Pose is in the wrong frame.", "pose", role, "frame", p.Frame, "map_frame", c.m.Frame())
		return false
	}
	if !c.m.Contains(p.X, p.Y) {
		logger.Warn("Pose is outside the map.", "pose", role, "x", p.X, "y", p.Y)
		return false
	}
	return true
}
