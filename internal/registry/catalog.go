package registry

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/specialistvlad/gppgo/internal/plugin"
)

// Factory constructs a fresh, uninitialized plugin instance.
type Factory[T any] func() T

// Catalog maps type identifiers to factories for one plugin category.
type Catalog[T any] struct {
	category  plugin.Category
	factories map[string]Factory[T]
}

// NewCatalog creates an empty catalog for category.
func NewCatalog[T any](category plugin.Category) *Catalog[T] {
	return &Catalog[T]{
		category:  category,
		factories: make(map[string]Factory[T]),
	}
}

// Category returns the capability this catalog serves.
func (c *Catalog[T]) Category() plugin.Category {
	return c.category
}

// Register binds typeName to factory. Registering the same name twice is a
// programming error and panics.
func (c *Catalog[T]) Register(typeName string, factory Factory[T]) {
	if typeName == "" {
		panic(fmt.Sprintf("%s plugin registered with an empty type name", c.category))
	}
	if factory == nil {
		panic(fmt.Sprintf("%s plugin '%s' registered with a nil factory", c.category, typeName))
	}
	if _, exists := c.factories[typeName]; exists {
		panic(fmt.Sprintf("%s plugin with type '%s' already registered", c.category, typeName))
	}
	slog.Debug("Registering plugin type.", "category", c.category, "type", typeName)
	c.factories[typeName] = factory
}

// Has reports whether typeName is registered.
func (c *Catalog[T]) Has(typeName string) bool {
	_, ok := c.factories[typeName]
	return ok
}

// Types returns the registered identifiers in sorted order.
func (c *Catalog[T]) Types() []string {
	types := make([]string, 0, len(c.factories))
	for name := range c.factories {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// Create resolves typeName and constructs a new instance. Unknown names,
// factories returning nil and factories that panic all yield a
// *plugin.ResolutionError.
func (c *Catalog[T]) Create(typeName string) (instance T, err error) {
	factory, ok := c.factories[typeName]
	if !ok {
		return instance, c.resolutionError(typeName, fmt.Errorf("no factory registered for type %q", typeName))
	}

	defer func() {
		if r := recover(); r != nil {
			var zero T
			instance = zero
			err = c.resolutionError(typeName, fmt.Errorf("factory panicked: %v", r))
		}
	}()

	instance = factory()
	if isNil(instance) {
		var zero T
		return zero, c.resolutionError(typeName, fmt.Errorf("factory returned nil"))
	}
	return instance, nil
}

func (c *Catalog[T]) resolutionError(typeName string, cause error) error {
	return &plugin.ResolutionError{Category: c.category, Type: typeName, Err: cause}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
