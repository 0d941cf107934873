package registry

import (
	"github.com/specialistvlad/gppgo/internal/plugin"
)

// Module is the interface that all plugin modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds one catalog per plugin category for a single application
// instance.
type Registry struct {
	PrePlanning  *Catalog[plugin.PrePlanner]
	Planning     *Catalog[plugin.Planner]
	PostPlanning *Catalog[plugin.PostPlanner]
}

// New creates and initializes a new, empty Registry instance.
func New() *Registry {
	return &Registry{
		PrePlanning:  NewCatalog[plugin.PrePlanner](plugin.CategoryPrePlanning),
		Planning:     NewCatalog[plugin.Planner](plugin.CategoryPlanning),
		PostPlanning: NewCatalog[plugin.PostPlanner](plugin.CategoryPostPlanning),
	}
}

// Install lets every module register its plugin types.
func (r *Registry) Install(modules ...Module) *Registry {
	for _, mod := range modules {
		mod.Register(r)
	}
	return r
}

// RegisterBasicPlanner adds a planner that has no notion of tolerance or
// cost to the planning catalog, wrapped by plugin.AdaptBasic.
func (r *Registry) RegisterBasicPlanner(typeName string, factory Factory[plugin.BasicPlanner]) {
	if factory == nil {
		panic("basic planner '" + typeName + "' registered with a nil factory")
	}
	r.Planning.Register(typeName, func() plugin.Planner {
		impl := factory()
		if isNil(impl) {
			return nil
		}
		return plugin.AdaptBasic(impl)
	})
}
