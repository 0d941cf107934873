// Package yaml_adapter implements config.Loader for YAML documents, using the
// same layout as a ROS parameter file:
//
//	gpp:
//	  tolerance: 0.2
//	  planning:
//	    - {name: line, type: straight_line, on_success_break: true}
//	  line:
//	    step: 0.05
package yaml_adapter

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/specialistvlad/gppgo/internal/config"
	"github.com/specialistvlad/gppgo/internal/ctxlog"
	"github.com/specialistvlad/gppgo/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Loader is the YAML-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads a single YAML file, or every .yaml/.yml file below a directory.
func (l *Loader) Load(ctx context.Context, path string) (*config.Document, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path", path)

	files, err := fsutil.FindFilesByExtension(path, ".yaml", ".yml")
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", path, err)
	}

	builder := config.NewBuilder()
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read YAML file %s: %w", file, err)
		}
		if err := parseInto(builder, src, file); err != nil {
			return nil, err
		}
	}

	logger.Debug("YAML loading complete.", "files", len(files))
	return builder.Document(path), nil
}

// Parse decodes a single in-memory YAML document.
func (l *Loader) Parse(src []byte, filename string) (*config.Document, error) {
	builder := config.NewBuilder()
	if err := parseInto(builder, src, filename); err != nil {
		return nil, err
	}
	return builder.Document(filename), nil
}

func parseInto(builder *config.Builder, src []byte, filename string) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML file %s: %w", filename, err)
	}
	// An empty file decodes to a zero node.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return nil
	}
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("failed to decode YAML file %s: top level must be a mapping", filename)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		val, err := toCty(root.Content[i+1])
		if err != nil {
			return fmt.Errorf("invalid value for '%s' in %s: %w", key, filename, err)
		}
		if err := builder.Set(filename, key, val); err != nil {
			return err
		}
	}
	return nil
}

// toCty converts a YAML node into a cty value: mappings become objects,
// sequences become tuples and scalars follow their resolved tag.
func toCty(n *yaml.Node) (cty.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return toCty(n.Alias)

	case yaml.MappingNode:
		attrs := make(map[string]cty.Value, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return cty.NilVal, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			if _, dup := attrs[k.Value]; dup {
				return cty.NilVal, fmt.Errorf("line %d: duplicate key '%s'", k.Line, k.Value)
			}
			v, err := toCty(n.Content[i+1])
			if err != nil {
				return cty.NilVal, err
			}
			attrs[k.Value] = v
		}
		if len(attrs) == 0 {
			return cty.EmptyObjectVal, nil
		}
		return cty.ObjectVal(attrs), nil

	case yaml.SequenceNode:
		items := make([]cty.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := toCty(c)
			if err != nil {
				return cty.NilVal, err
			}
			items = append(items, v)
		}
		if len(items) == 0 {
			return cty.EmptyTupleVal, nil
		}
		return cty.TupleVal(items), nil

	case yaml.ScalarNode:
		return scalarToCty(n)
	}
	return cty.NilVal, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func scalarToCty(n *yaml.Node) (cty.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return cty.NullVal(cty.DynamicPseudoType), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return cty.NilVal, err
		}
		return cty.BoolVal(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return cty.NilVal, err
		}
		return cty.NumberIntVal(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return cty.NilVal, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return cty.NilVal, fmt.Errorf("line %d: non-finite number '%s'", n.Line, n.Value)
		}
		return cty.NumberFloatVal(f), nil
	default:
		return cty.StringVal(n.Value), nil
	}
}
