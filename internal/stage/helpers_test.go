package stage

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/gppgo/internal/config"
	"github.com/specialistvlad/gppgo/internal/hcl_adapter"
	"github.com/specialistvlad/gppgo/internal/nav"
	"github.com/specialistvlad/gppgo/internal/plugin"
	"github.com/specialistvlad/gppgo/internal/registry"
	"github.com/stretchr/testify/require"
)

// journal records what the fake plugins did, in order.
type journal struct {
	calls  []string
	closed []string
	inits  map[string]config.Scope
}

func newJournal() *journal {
	return &journal{inits: make(map[string]config.Scope)}
}

// scripted is a pre-planning plugin whose outcome is taken from its own
// configuration namespace ("result", default true). It shifts the goal by
// "shift" along x so state threading is observable.
type scripted struct {
	j      *journal
	name   string
	result bool
	shift  float64
	fail   bool
}

func (s *scripted) Initialize(scope plugin.Scope) error {
	if s.fail {
		return errors.New("refusing to initialize")
	}
	s.name = scope.Name
	s.j.inits[scope.Name] = scope.Config
	var err error
	if s.result, err = scope.Config.Bool("result", true); err != nil {
		return err
	}
	s.shift, err = scope.Config.Float("shift", 0)
	return err
}

func (s *scripted) PreProcess(_ context.Context, _, goal *nav.Pose, _ float64) bool {
	s.j.calls = append(s.j.calls, s.name)
	goal.X += s.shift
	return s.result
}

func (s *scripted) Close() error {
	s.j.closed = append(s.j.closed, s.name)
	return nil
}

func testCatalog(j *journal) *registry.Catalog[plugin.PrePlanner] {
	reg := registry.New()
	reg.PrePlanning.Register("scripted", func() plugin.PrePlanner { return &scripted{j: j} })
	reg.PrePlanning.Register("broken_init", func() plugin.PrePlanner { return &scripted{j: j, fail: true} })
	return reg.PrePlanning
}

func parseHCL(t *testing.T, src string) config.Scope {
	t.Helper()
	doc, err := hcl_adapter.NewLoader().Parse([]byte(src), "test.hcl")
	require.NoError(t, err)
	return doc.Scope
}

func loadGroup(t *testing.T, j *journal, src string) *Group[plugin.PrePlanner] {
	t.Helper()
	g := NewGroup[plugin.PrePlanner]("pre_planning")
	require.NoError(t, g.Load(context.Background(), parseHCL(t, src), testCatalog(j), LoadOptions{}))
	return g
}

func preInvoke(start, goal *nav.Pose) Invoke[plugin.PrePlanner] {
	return func(ctx context.Context, p plugin.PrePlanner) bool {
		return p.PreProcess(ctx, start, goal, 0.1)
	}
}
