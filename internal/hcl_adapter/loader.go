package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/gppgo/internal/config"
	"github.com/specialistvlad/gppgo/internal/ctxlog"
	"github.com/specialistvlad/gppgo/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
// Expressions may read the process environment as env.NAME.
type Loader struct {
	env map[string]string
}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL configuration loader that exposes the current
// process environment.
func NewLoader() *Loader {
	env := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			env[pair[0]] = pair[1]
		}
	}
	return NewLoaderWithEnv(env)
}

// NewLoaderWithEnv creates a loader that exposes env instead of the process
// environment.
func NewLoaderWithEnv(env map[string]string) *Loader {
	return &Loader{env: env}
}

func (l *Loader) evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(l.env))
	for k, v := range l.env {
		vars[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(vars)},
	}
}

// Load reads a single .hcl file, or every .hcl file below a directory, and
// merges their top-level attributes into one document.
func (l *Loader) Load(ctx context.Context, path string) (*config.Document, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", path, err)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	builder := config.NewBuilder()
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read HCL file %s: %w", file, err)
		}
		if err := l.parseInto(parser, builder, src, file); err != nil {
			return nil, err
		}
	}

	logger.Debug("HCL loading complete.", "files", len(files))
	return builder.Document(path), nil
}

// Parse decodes a single in-memory HCL document.
func (l *Loader) Parse(src []byte, filename string) (*config.Document, error) {
	builder := config.NewBuilder()
	if err := l.parseInto(hclparse.NewParser(), builder, src, filename); err != nil {
		return nil, err
	}
	return builder.Document(filename), nil
}

func (l *Loader) parseInto(parser *hclparse.Parser, builder *config.Builder, src []byte, filename string) error {
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	attrs, diags := hclFile.Body.JustAttributes()
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	evalCtx := l.evalContext()
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return fmt.Errorf("invalid value for '%s' in %s: %w", name, filename, diags)
		}
		if err := builder.Set(filename, name, val); err != nil {
			return err
		}
	}
	return nil
}
