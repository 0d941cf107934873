package testutil

import (
	"testing"

	"github.com/specialistvlad/gppgo/internal/nav"
	"github.com/specialistvlad/gppgo/internal/plugin"
	"github.com/specialistvlad/gppgo/internal/registry"
	"github.com/stretchr/testify/require"
)

// PluginConfigCase is one scenario for initializing a plugin from its
// parameters.
type PluginConfigCase[T any] struct {
	Name string
	// HCL holds the plugin's own parameters as top-level attributes.
	HCL string
	// Map is handed to Initialize; nil is allowed.
	Map nav.Map
	// ExpectErr should be true if Initialize is expected to fail.
	ExpectErr bool
	// ErrContains must appear in the error message if ExpectErr is true.
	ErrContains string
	// Validate runs against the initialized plugin when ExpectErr is false.
	Validate func(t *testing.T, p T)
}

// NewPlugin creates typeName from catalog and initializes it as instance
// name with the parameters in src. It fails the test on any error.
func NewPlugin[T plugin.Initializer](t *testing.T, catalog *registry.Catalog[T], typeName, name, src string, m nav.Map) T {
	t.Helper()
	p, err := catalog.Create(typeName)
	require.NoError(t, err)
	require.NoError(t, p.Initialize(PluginScope(t, name, src, m)))
	return p
}

// RunPluginConfigTests runs each case as a subtest against a fresh instance
// of typeName.
func RunPluginConfigTests[T plugin.Initializer](t *testing.T, catalog *registry.Catalog[T], typeName string, cases []PluginConfigCase[T]) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			p, err := catalog.Create(typeName)
			require.NoError(t, err)

			err = p.Initialize(PluginScope(t, "under_test", tc.HCL, tc.Map))
			if tc.ExpectErr {
				require.Error(t, err, "expected Initialize to fail")
				if tc.ErrContains != "" {
					require.Contains(t, err.Error(), tc.ErrContains)
				}
				return
			}

			require.NoError(t, err)
			if tc.Validate != nil {
				tc.Validate(t, p)
			}
		})
	}
}
