package plugin

import (
	"context"
	"io"

	"github.com/specialistvlad/gppgo/internal/nav"
)

// basicPlanner lifts a BasicPlanner into a Planner. Tolerance is dropped and
// the cost is the length of the produced path.
type basicPlanner struct {
	impl BasicPlanner
}

var (
	_ Planner   = (*basicPlanner)(nil)
	_ io.Closer = (*basicPlanner)(nil)
)

// AdaptBasic wraps impl so it satisfies Planner. It panics on a nil impl so
// the check happens once, not on every plan.
func AdaptBasic(impl BasicPlanner) Planner {
	if impl == nil {
		panic("plugin: nil BasicPlanner")
	}
	return &basicPlanner{impl: impl}
}

func (b *basicPlanner) Initialize(scope Scope) error {
	return b.impl.Initialize(scope)
}

func (b *basicPlanner) MakePlan(ctx context.Context, start, goal nav.Pose, _ float64, path *nav.Path, cost *float64) bool {
	if !b.impl.MakePlan(ctx, start, goal, path) {
		return false
	}
	*cost = path.Length()
	return true
}

// Close forwards to the wrapped planner when it holds resources.
func (b *basicPlanner) Close() error {
	if c, ok := b.impl.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
