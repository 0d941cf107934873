package config

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Builder accumulates top-level keys from one or more source files into a
// single Document. A key may only be defined once across all files.
type Builder struct {
	values  map[string]cty.Value
	origins map[string]string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		values:  make(map[string]cty.Value),
		origins: make(map[string]string),
	}
}

// Set records key from file. Redefining a key is an error.
func (b *Builder) Set(file, key string, v cty.Value) error {
	if prev, exists := b.origins[key]; exists {
		return fmt.Errorf("key '%s' in %s is already defined in %s", key, file, prev)
	}
	b.values[key] = v
	b.origins[key] = file
	return nil
}

// Document builds the root document.
func (b *Builder) Document(source string) *Document {
	root := cty.EmptyObjectVal
	if len(b.values) > 0 {
		root = cty.ObjectVal(b.values)
	}
	return &Document{Scope: NewScope("", root), Source: source}
}
