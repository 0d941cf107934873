package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Scope is a read-only view of one namespace of a configuration document.
// The zero value is an empty scope.
type Scope struct {
	namespace string
	value     cty.Value
}

// NewScope wraps v, which should be an object or a map, as a namespace. Any
// other value yields an empty scope.
func NewScope(namespace string, v cty.Value) Scope {
	if !IsMapping(v) {
		v = cty.NilVal
	}
	return Scope{namespace: namespace, value: v}
}

// Namespace returns the slash separated path of this scope.
func (s Scope) Namespace() string {
	return s.namespace
}

// Value returns the raw object behind the scope, or cty.NilVal when empty.
func (s Scope) Value() cty.Value {
	return s.value
}

// Get returns the value stored under key. Null values count as absent.
func (s Scope) Get(key string) (cty.Value, bool) {
	if !IsMapping(s.value) {
		return cty.NilVal, false
	}

	var v cty.Value
	ty := s.value.Type()
	switch {
	case ty.IsObjectType():
		if !ty.HasAttribute(key) {
			return cty.NilVal, false
		}
		v = s.value.GetAttr(key)
	default:
		k := cty.StringVal(key)
		if !s.value.HasIndex(k).True() {
			return cty.NilVal, false
		}
		v = s.value.Index(k)
	}

	if v.IsNull() || !v.IsKnown() {
		return cty.NilVal, false
	}
	return v, true
}

// Has reports whether key holds a non-null value.
func (s Scope) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Keys returns the sorted keys of the scope.
func (s Scope) Keys() []string {
	if !IsMapping(s.value) {
		return nil
	}
	var keys []string
	for it := s.value.ElementIterator(); it.Next(); {
		k, _ := it.Element()
		keys = append(keys, k.AsString())
	}
	sort.Strings(keys)
	return keys
}

// Sub returns the nested namespace called name. A missing namespace, or a
// key holding something other than an object, yields an empty scope.
func (s Scope) Sub(name string) Scope {
	v, _ := s.Get(name)
	return NewScope(s.Path(name), v)
}

// Path joins key onto the scope's namespace.
func (s Scope) Path(key string) string {
	if s.namespace == "" {
		return key
	}
	return strings.TrimSuffix(s.namespace, "/") + "/" + key
}

// Float reads a number, returning def when key is absent.
func (s Scope) Float(key string, def float64) (float64, error) {
	v, ok := s.Get(key)
	if !ok {
		return def, nil
	}
	var out float64
	if err := decode(v, cty.Number, &out); err != nil {
		return def, fmt.Errorf("%s: %w", s.Path(key), err)
	}
	return out, nil
}

// Int reads a whole number, returning def when key is absent.
func (s Scope) Int(key string, def int) (int, error) {
	v, ok := s.Get(key)
	if !ok {
		return def, nil
	}
	var out int
	if err := decode(v, cty.Number, &out); err != nil {
		return def, fmt.Errorf("%s: %w", s.Path(key), err)
	}
	return out, nil
}

// Bool reads a boolean, returning def when key is absent.
func (s Scope) Bool(key string, def bool) (bool, error) {
	v, ok := s.Get(key)
	if !ok {
		return def, nil
	}
	var out bool
	if err := decode(v, cty.Bool, &out); err != nil {
		return def, fmt.Errorf("%s: %w", s.Path(key), err)
	}
	return out, nil
}

// String reads a string, returning def when key is absent.
func (s Scope) String(key string, def string) (string, error) {
	v, ok := s.Get(key)
	if !ok {
		return def, nil
	}
	var out string
	if err := decode(v, cty.String, &out); err != nil {
		return def, fmt.Errorf("%s: %w", s.Path(key), err)
	}
	return out, nil
}

// Duration reads either a Go duration string ("250ms") or a number of
// seconds, returning def when key is absent.
func (s Scope) Duration(key string, def time.Duration) (time.Duration, error) {
	v, ok := s.Get(key)
	if !ok {
		return def, nil
	}
	if v.Type().Equals(cty.Number) {
		var secs float64
		if err := gocty.FromCtyValue(v, &secs); err != nil {
			return def, fmt.Errorf("%s: %w", s.Path(key), err)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	var raw string
	if err := decode(v, cty.String, &raw); err != nil {
		return def, fmt.Errorf("%s: %w", s.Path(key), err)
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("%s: %w", s.Path(key), err)
	}
	return d, nil
}

func decode(v cty.Value, ty cty.Type, target any) error {
	converted, err := convert.Convert(v, ty)
	if err != nil {
		return fmt.Errorf("expected %s, got %s", ty.FriendlyName(), v.Type().FriendlyName())
	}
	return gocty.FromCtyValue(converted, target)
}

// IsMapping reports whether v is a known, non-null object or map.
func IsMapping(v cty.Value) bool {
	if v.IsNull() || !v.IsKnown() {
		return false
	}
	ty := v.Type()
	return ty.IsObjectType() || ty.IsMapType()
}

// Elements returns the items of a known, non-null tuple or list. The second
// result is false for every other kind of value.
func Elements(v cty.Value) ([]cty.Value, bool) {
	if v.IsNull() || !v.IsKnown() {
		return nil, false
	}
	ty := v.Type()
	if !ty.IsTupleType() && !ty.IsListType() {
		return nil, false
	}
	var out []cty.Value
	for it := v.ElementIterator(); it.Next(); {
		_, el := it.Element()
		out = append(out, el)
	}
	return out, true
}
