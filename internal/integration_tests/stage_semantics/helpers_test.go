package integration_tests

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/gppgo/internal/app"
	"github.com/specialistvlad/gppgo/internal/nav"
	"github.com/specialistvlad/gppgo/internal/plugin"
	"github.com/specialistvlad/gppgo/internal/registry"
	"github.com/specialistvlad/gppgo/internal/testutil"
	"github.com/stretchr/testify/require"
)

// callLog records the order in which scripted plugins ran.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// scriptedModule registers a "scripted" type in every category. Each
// instance reads "result" (default true) from its namespace.
func scriptedModule(log *callLog) *testutil.SimpleModule {
	return &testutil.SimpleModule{
		PrePlanning: map[string]registry.Factory[plugin.PrePlanner]{
			"scripted": func() plugin.PrePlanner { return &scripted{log: log} },
		},
		Planning: map[string]registry.Factory[plugin.Planner]{
			"scripted": func() plugin.Planner { return &scripted{log: log} },
		},
		PostPlanning: map[string]registry.Factory[plugin.PostPlanner]{
			"scripted": func() plugin.PostPlanner { return &scripted{log: log} },
		},
	}
}

type scripted struct {
	log    *callLog
	name   string
	result bool
}

func (p *scripted) Initialize(scope plugin.Scope) error {
	p.name = scope.Name
	var err error
	p.result, err = scope.Config.Bool("result", true)
	return err
}

func (p *scripted) PreProcess(context.Context, *nav.Pose, *nav.Pose, float64) bool {
	p.log.add(p.name)
	return p.result
}

func (p *scripted) MakePlan(_ context.Context, start, goal nav.Pose, _ float64, path *nav.Path, cost *float64) bool {
	p.log.add(p.name)
	if p.result {
		*path = nav.Path{start, goal}
		*cost = path.Length()
	}
	return p.result
}

func (p *scripted) PostProcess(context.Context, *nav.Path, *float64) bool {
	p.log.add(p.name)
	return p.result
}

// runPipeline writes src as the configuration, runs the app once and
// returns the run error, the plugin calls and the log output.
func runPipeline(t *testing.T, src string) (error, []string, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gpp.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0600))

	calls := &callLog{}
	a, _, logs := app.SetupAppTest(t, &app.Config{
		ConfigPath: path,
		Name:       "gpp",
		Goal:       nav.Pose{X: 1},
		Tolerance:  -1,
	}, scriptedModule(calls), &testutil.NoOpModule{})

	err := a.Run(context.Background())
	return err, calls.Calls(), logs.String()
}
