package stage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/specialistvlad/gppgo/internal/config"
	"github.com/specialistvlad/gppgo/internal/ctxlog"
	"github.com/specialistvlad/gppgo/internal/nav"
	"github.com/specialistvlad/gppgo/internal/plugin"
	"github.com/specialistvlad/gppgo/internal/registry"
)

// Entry is one loaded plugin instance together with its break conditions.
type Entry[T plugin.Initializer] struct {
	Spec
	Plugin T
}

// Group is an ordered, named sequence of plugin instances of one category.
// It owns its instances. Loading and running are not safe for concurrent use.
type Group[T plugin.Initializer] struct {
	key          string
	entries      []Entry[T]
	defaultValue bool
}

// NewGroup creates an empty group for the stage stored under key.
func NewGroup[T plugin.Initializer](key string) *Group[T] {
	return &Group[T]{key: key, defaultValue: true}
}

// LoadOptions tune Load.
type LoadOptions struct {
	// Required rejects a missing or empty stage.
	Required bool
	// Map is passed on to every plugin's Initialize.
	Map nav.Map
}

// Key returns the configuration key of the stage.
func (g *Group[T]) Key() string { return g.key }

// Entries returns the loaded instances in execution order.
func (g *Group[T]) Entries() []Entry[T] { return g.entries }

// Len returns the number of loaded instances.
func (g *Group[T]) Len() int { return len(g.entries) }

// Default returns the stage result used when no break condition fires.
func (g *Group[T]) Default() bool { return g.defaultValue }

// Names returns the instance names in execution order.
func (g *Group[T]) Names() []string {
	names := make([]string, len(g.entries))
	for i, e := range g.entries {
		names[i] = e.Name
	}
	return names
}

// Load reads the stage from scope, constructs every instance through catalog
// and initializes it with its own namespace, scope.Sub(name). On success the
// previous sequence is replaced as a whole and its instances are closed. On
// failure nothing built by this call survives and the previous sequence is
// kept.
func (g *Group[T]) Load(ctx context.Context, scope config.Scope, catalog *registry.Catalog[T], opts LoadOptions) error {
	ctx, logger := ctxlog.With(ctx, "stage", g.key)

	cfg, err := ParseConfig(scope, g.key)
	if err != nil {
		return err
	}
	if !cfg.Present {
		logger.Debug("No parameter for stage.", "namespace", scope.Path(g.key))
	}
	if opts.Required && len(cfg.Specs) == 0 {
		return &plugin.ConfigError{Key: g.key, Index: -1, Reason: "at least one plugin is required"}
	}

	built := make([]Entry[T], 0, len(cfg.Specs))
	for i, spec := range cfg.Specs {
		instance, err := catalog.Create(spec.Type)
		if err != nil {
			closeEntries(ctx, built)
			return fmt.Errorf("%s[%d] '%s': %w", g.key, i, spec.Name, err)
		}
		// Anything appended is owned by this call until the swap below.
		built = append(built, Entry[T]{Spec: spec, Plugin: instance})

		err = instance.Initialize(plugin.Scope{
			Name:   spec.Name,
			Config: scope.Sub(spec.Name),
			Map:    opts.Map,
			Logger: logger.With("plugin", spec.Name),
		})
		if err != nil {
			closeEntries(ctx, built)
			return fmt.Errorf("%s[%d] '%s': %w", g.key, i, spec.Name, &plugin.ResolutionError{
				Category: catalog.Category(),
				Type:     spec.Type,
				Err:      fmt.Errorf("initialize: %w", err),
			})
		}

		logger.Info("Successfully loaded plugin.", "type", spec.Type, "name", spec.Name)
	}

	previous := g.entries
	g.entries = built
	g.defaultValue = cfg.DefaultValue
	closeEntries(ctx, previous)

	logger.Debug("Stage loaded.", "plugins", len(built), "default_value", cfg.DefaultValue)
	return nil
}

// Close releases every instance that implements io.Closer, last loaded
// first, and empties the group.
func (g *Group[T]) Close() error {
	err := closeEntries(context.Background(), g.entries)
	g.entries = nil
	return err
}

func closeEntries[T plugin.Initializer](ctx context.Context, entries []Entry[T]) error {
	var errs []error
	for i := len(entries) - 1; i >= 0; i-- {
		closer, ok := any(entries[i].Plugin).(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			ctxlog.FromContext(ctx).Warn("Failed to close plugin.", "plugin", entries[i].Name, "error", err)
			errs = append(errs, fmt.Errorf("close '%s': %w", entries[i].Name, err))
		}
	}
	return errors.Join(errs...)
}
