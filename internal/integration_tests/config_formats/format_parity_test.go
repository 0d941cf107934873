package integration_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/gppgo/internal/app"
	"github.com/specialistvlad/gppgo/internal/nav"
	"github.com/stretchr/testify/require"
)

const parityHCL = `
gpp = {
  tolerance = 0.5
  pre_planning  = [{ name = "fence", type = "bounds" }]
  planning      = [
    { name = "line", type = "straight_line", on_success_break = true },
  ]
  post_planning = [{ name = "limit", type = "cost_limit" }]
  line  = { step = 0.5 }
  limit = { max_cost = 100, max_poses = 50 }
}
`

const parityYAML = `
gpp:
  tolerance: 0.5
  pre_planning:
    - {name: fence, type: bounds}
  planning:
    - name: line
      type: straight_line
      on_success_break: true
  post_planning:
    - {name: limit, type: cost_limit}
  line:
    step: 0.5
  limit:
    max_cost: 100
    max_poses: 50
`

func runWith(t *testing.T, file, content string) app.Result {
	t.Helper()

	path := filepath.Join(t.TempDir(), file)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	a, out, _ := app.SetupAppTest(t, &app.Config{
		ConfigPath: path,
		Name:       "gpp",
		Start:      nav.Pose{Frame: "map", X: 1, Y: 1},
		Goal:       nav.Pose{Frame: "map", X: 4, Y: 5},
		Tolerance:  -1,
		Frame:      "map",
		Bounds:     &nav.Bounds{MaxX: 10, MaxY: 10},
	})
	require.NoError(t, a.Run(context.Background()))

	var res app.Result
	require.NoError(t, json.NewDecoder(bytes.NewReader(out.Bytes())).Decode(&res))
	return res
}

// Test for: the same pipeline written in HCL and in YAML plans identically.
func TestConfigFormats_Parity(t *testing.T) {
	fromHCL := runWith(t, "gpp.hcl", parityHCL)
	fromYAML := runWith(t, "gpp.yaml", parityYAML)

	if diff := cmp.Diff(fromHCL, fromYAML); diff != "" {
		t.Errorf("HCL and YAML results differ (-hcl +yaml):\n%s", diff)
	}
	require.Len(t, fromHCL.Path, 11)
}
