package integration_tests

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/gppgo/internal/app"
	"github.com/specialistvlad/gppgo/internal/nav"
	"github.com/specialistvlad/gppgo/internal/testutil"
	"github.com/stretchr/testify/require"
)

// initPipeline writes src and runs the app, returning the run error. Only the
// noop plugins are available.
func initPipeline(t *testing.T, src string) error {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gpp.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0600))

	a, _, _ := app.SetupAppTest(t, &app.Config{
		ConfigPath: path,
		Name:       "gpp",
		Goal:       nav.Pose{X: 1},
		Tolerance:  -1,
	}, &testutil.NoOpModule{})
	return a.Run(context.Background())
}
