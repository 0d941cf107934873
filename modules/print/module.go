// Package print provides a post-planning step that writes the final path to
// standard output.
package print

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/gppgo/internal/ctxlog"
	"github.com/specialistvlad/gppgo/internal/nav"
	"github.com/specialistvlad/gppgo/internal/plugin"
	"github.com/specialistvlad/gppgo/internal/registry"
)

// Module implements the registry.Module interface for this package. Out
// defaults to os.Stdout.
type Module struct {
	Out io.Writer
}

// Register registers the "print" post-planning type.
func (m *Module) Register(r *registry.Registry) {
	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	r.PostPlanning.Register("print", func() plugin.PostPlanner { return &Printer{out: out} })
}

// Printer writes every path it sees and always succeeds.
//
// Parameters: format ("text" or "json", default "text").
type Printer struct {
	out    io.Writer
	format string
}

// Initialize implements plugin.Initializer.
func (p *Printer) Initialize(scope plugin.Scope) error {
	format, err := scope.Config.String("format", "text")
	if err != nil {
		return err
	}
	switch format {
	case "text", "json":
		p.format = format
		return nil
	default:
		return fmt.Errorf("%s: unknown format '%s'", scope.Config.Path("format"), format)
	}
}

// PostProcess implements plugin.PostPlanner.
func (p *Printer) PostProcess(ctx context.Context, path *nav.Path, cost *float64) bool {
	ctxlog.FromContext(ctx).Info("Printing path", "poses", len(*path))

	if p.format == "json" {
		err := json.NewEncoder(p.out).Encode(struct {
			Path nav.Path `json:"path"`
			Cost float64  `json:"cost"`
		}{*path, *cost})
		if err != nil {
			ctxlog.FromContext(ctx).Warn("Failed to print path.", "error", err)
		}
		return true
	}

	if len(*path) == 0 {
		fmt.Fprintln(p.out, "      (empty)")
		return true
	}
	fmt.Fprintf(p.out, "      cost = %g\n", *cost)
	for i, pose := range *path {
		fmt.Fprintf(p.out, "      [%d] = %s\n", i, pose)
	}
	return true
}
