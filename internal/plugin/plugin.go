// Package plugin defines the three capabilities a pipeline stage can be built
// from, and the context every plugin instance receives at load time.
//
// Each capability is its own interface, so an implementation registered for
// one category can never be resolved by another even if the type names
// collide.
package plugin

import (
	"context"
	"log/slog"

	"github.com/specialistvlad/gppgo/internal/config"
	"github.com/specialistvlad/gppgo/internal/nav"
)

// Category names a plugin capability.
type Category string

const (
	CategoryPrePlanning  Category = "pre_planning"
	CategoryPlanning     Category = "planning"
	CategoryPostPlanning Category = "post_planning"
)

// Scope is handed to a plugin exactly once, when it is loaded.
type Scope struct {
	// Name is the instance name from the stage configuration.
	Name string
	// Config is the namespace named after the instance, for the plugin's
	// own parameters.
	Config config.Scope
	// Map is the handle supplied by the host at pipeline initialization.
	Map nav.Map
	// Logger is pre-tagged with the stage and instance name.
	Logger *slog.Logger
}

// Initializer is the load-time entry point shared by all capabilities.
type Initializer interface {
	Initialize(scope Scope) error
}

// PrePlanner runs before planning and may adjust the start and goal.
type PrePlanner interface {
	Initializer
	PreProcess(ctx context.Context, start, goal *nav.Pose, tolerance float64) bool
}

// Planner produces a candidate path between start and goal.
type Planner interface {
	Initializer
	MakePlan(ctx context.Context, start, goal nav.Pose, tolerance float64, path *nav.Path, cost *float64) bool
}

// PostPlanner runs after planning and may adjust the path and its cost.
type PostPlanner interface {
	Initializer
	PostProcess(ctx context.Context, path *nav.Path, cost *float64) bool
}

// BasicPlanner is a planner that knows nothing about tolerance or cost.
// Wrap it with AdaptBasic to use it in the planning stage.
type BasicPlanner interface {
	Initializer
	MakePlan(ctx context.Context, start, goal nav.Pose, path *nav.Path) bool
}
