package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/specialistvlad/gppgo/internal/config"
	"github.com/specialistvlad/gppgo/internal/hcl_adapter"
	"github.com/specialistvlad/gppgo/internal/nav"
	"github.com/specialistvlad/gppgo/internal/plugin"
	"github.com/stretchr/testify/require"
)

// ParseScope parses an inline HCL document into its root scope.
func ParseScope(t *testing.T, src string) config.Scope {
	t.Helper()
	doc, err := hcl_adapter.NewLoader().Parse([]byte(src), "test.hcl")
	require.NoError(t, err, "test HCL must parse")
	return doc.Scope
}

// PluginScope builds what a plugin instance called name receives at load
// time, with its own parameters taken from the top level of src.
func PluginScope(t *testing.T, name, src string, m nav.Map) plugin.Scope {
	t.Helper()
	return plugin.Scope{
		Name:   name,
		Config: config.NewScope(name, ParseScope(t, src).Value()),
		Map:    m,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}
