package testutil

import (
	"github.com/specialistvlad/gppgo/internal/plugin"
	"github.com/specialistvlad/gppgo/internal/registry"
)

// SimpleModule is a test helper for registering ad hoc plugin factories.
type SimpleModule struct {
	PrePlanning  map[string]registry.Factory[plugin.PrePlanner]
	Planning     map[string]registry.Factory[plugin.Planner]
	PostPlanning map[string]registry.Factory[plugin.PostPlanner]
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	for name, f := range m.PrePlanning {
		r.PrePlanning.Register(name, f)
	}
	for name, f := range m.Planning {
		r.Planning.Register(name, f)
	}
	for name, f := range m.PostPlanning {
		r.PostPlanning.Register(name, f)
	}
}
