package integration_tests

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/gppgo/internal/app"
	"github.com/specialistvlad/gppgo/internal/testutil"

	"github.com/specialistvlad/gppgo/internal/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test for: unknown plugin types fail initialization with a resolution error
// naming the category, the type and the instance.
func TestErrorHandling_UnknownPluginType(t *testing.T) {
	err := initPipeline(t, `
gpp = {
  planning      = [{ name = "p", type = "noop" }]
  post_planning = [{ name = "smooth", type = "spline_smoother" }]
}
`)
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin.ErrResolution)
	assert.NotErrorIs(t, err, plugin.ErrConfiguration)
	assert.Contains(t, err.Error(), "post_planning[0] 'smooth'")
	assert.Contains(t, err.Error(), "cannot create post_planning plugin of type 'spline_smoother'")
}

// Test for: a type registered for one category cannot be used in another.
// "bounds" is a pre-planning type of the core modules.
func TestErrorHandling_CategoryIsolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gpp.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
gpp = {
  pre_planning = [{ name = "fence", type = "bounds" }]
  planning     = [{ name = "p", type = "bounds" }]
}
`), 0600))

	a, _, logs := app.SetupAppTest(t, &app.Config{ConfigPath: path, Name: "gpp", Tolerance: -1})
	err := a.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin.ErrResolution)
	assert.Contains(t, err.Error(), "planning[0] 'p'")
	testutil.AssertPluginLoaded(t, logs.String(), "fence")
}
