package stage

import (
	"fmt"

	"github.com/specialistvlad/gppgo/internal/config"
	"github.com/specialistvlad/gppgo/internal/plugin"
	"github.com/zclconf/go-cty/cty"
)

// Spec is the declarative description of one plugin instance in a stage.
type Spec struct {
	Name           string
	Type           string
	OnFailureBreak bool
	OnSuccessBreak bool
}

// Config is the full description of one stage.
type Config struct {
	Key          string
	Specs        []Spec
	DefaultValue bool
	// Present is false when the stage key is missing from the scope.
	Present bool
}

// DefaultValueKey returns the key holding a stage's default outcome.
func DefaultValueKey(key string) string {
	return key + "_default_value"
}

// ParseConfig reads the stage stored under key. A missing key yields an empty
// stage; anything that is not an array of {name, type} objects is a
// *plugin.ConfigError.
func ParseConfig(scope config.Scope, key string) (Config, error) {
	cfg := Config{Key: key, DefaultValue: true}

	def, err := scope.Bool(DefaultValueKey(key), true)
	if err != nil {
		return cfg, &plugin.ConfigError{Key: DefaultValueKey(key), Index: -1, Reason: err.Error()}
	}
	cfg.DefaultValue = def

	raw, ok := scope.Get(key)
	if !ok {
		return cfg, nil
	}
	cfg.Present = true

	items, ok := config.Elements(raw)
	if !ok {
		return cfg, &plugin.ConfigError{
			Key:    key,
			Index:  -1,
			Reason: fmt.Sprintf("must be an array, got %s", raw.Type().FriendlyName()),
		}
	}

	seen := make(map[string]int, len(items))
	for i, item := range items {
		spec, err := parseSpec(key, i, item)
		if err != nil {
			return cfg, err
		}
		if prev, dup := seen[spec.Name]; dup {
			return cfg, &plugin.ConfigError{
				Key:    key,
				Index:  i,
				Reason: fmt.Sprintf("name '%s' is already used by element %d", spec.Name, prev),
			}
		}
		seen[spec.Name] = i
		cfg.Specs = append(cfg.Specs, spec)
	}
	return cfg, nil
}

func parseSpec(key string, index int, item cty.Value) (Spec, error) {
	if !config.IsMapping(item) {
		return Spec{}, &plugin.ConfigError{
			Key:    key,
			Index:  index,
			Reason: fmt.Sprintf("element must be an object, got %s", friendlyName(item)),
		}
	}
	el := config.NewScope(key, item)

	typ, err := literal(el, "type")
	if err != nil {
		return Spec{}, &plugin.ConfigError{Key: key, Index: index, Reason: err.Error()}
	}
	name, err := literal(el, "name")
	if err != nil {
		return Spec{}, &plugin.ConfigError{Key: key, Index: index, Reason: err.Error()}
	}

	spec := Spec{Name: name, Type: typ}
	if spec.OnFailureBreak, err = el.Bool("on_failure_break", true); err != nil {
		return Spec{}, &plugin.ConfigError{Key: key, Index: index, Reason: err.Error()}
	}
	if spec.OnSuccessBreak, err = el.Bool("on_success_break", false); err != nil {
		return Spec{}, &plugin.ConfigError{Key: key, Index: index, Reason: err.Error()}
	}
	return spec, nil
}

// literal reads a tag that must be a non-empty string. Numbers and bools are
// not silently converted.
func literal(el config.Scope, tag string) (string, error) {
	v, ok := el.Get(tag)
	if !ok {
		return "", fmt.Errorf("'%s' not found", tag)
	}
	if !v.Type().Equals(cty.String) {
		return "", fmt.Errorf("'%s' must be a string, got %s", tag, v.Type().FriendlyName())
	}
	s := v.AsString()
	if s == "" {
		return "", fmt.Errorf("'%s' must not be empty", tag)
	}
	return s, nil
}

func friendlyName(v cty.Value) string {
	if v.IsNull() {
		return "null"
	}
	return v.Type().FriendlyName()
}
