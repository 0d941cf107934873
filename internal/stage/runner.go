package stage

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/gppgo/internal/ctxlog"
)

// Result is the aggregate outcome of one stage run.
type Result struct {
	Success bool
	// Cancelled is set when the run stopped because cancellation was
	// requested. Success is always false in that case.
	Cancelled bool
	// Terminator names the instance whose break condition ended the stage.
	// It is empty when the default value decided the result.
	Terminator string
	// Ran counts the instances that were invoked.
	Ran int
}

// Observer is told about every plugin invocation.
type Observer func(plugin string, ok bool, took time.Duration)

// Invoke calls one plugin instance against the caller's state.
type Invoke[T any] func(ctx context.Context, p T) bool

// Run executes the group's instances in order. Before each instance it checks
// cancelled and ctx; either one stops the stage as cancelled. A plugin call
// itself is never interrupted. observe may be nil.
func (g *Group[T]) Run(ctx context.Context, cancelled *atomic.Bool, invoke Invoke[T], observe Observer) Result {
	ctx, logger := ctxlog.With(ctx, "stage", g.key)

	var res Result
	for _, e := range g.entries {
		if (cancelled != nil && cancelled.Load()) || ctx.Err() != nil {
			logger.Info("Stage cancelled.", "before", e.Name, "ran", res.Ran)
			res.Success = false
			res.Cancelled = true
			return res
		}

		started := time.Now()
		ok := invoke(ctxlog.WithLogger(ctx, logger.With("plugin", e.Name)), e.Plugin)
		res.Ran++
		if observe != nil {
			observe(e.Name, ok, time.Since(started))
		}

		if ok && e.OnSuccessBreak {
			logger.Debug("Stage succeeded.", "plugin", e.Name)
			res.Success = true
			res.Terminator = e.Name
			return res
		}
		if !ok && e.OnFailureBreak {
			logger.Debug("Stage failed.", "plugin", e.Name)
			res.Success = false
			res.Terminator = e.Name
			return res
		}
		logger.Debug("Plugin finished without a break.", "plugin", e.Name, "result", ok)
	}

	res.Success = g.defaultValue
	logger.Debug("Stage exhausted, using default value.", "default_value", g.defaultValue, "ran", res.Ran)
	return res
}
