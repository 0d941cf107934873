package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/gppgo/internal/ctxlog"
	"github.com/specialistvlad/gppgo/internal/nav"
	"github.com/specialistvlad/gppgo/internal/pipeline"
)

// Result is what Run writes to the output, one JSON object per invocation.
type Result struct {
	Outcome uint32   `json:"outcome"`
	Message string   `json:"message,omitempty"`
	Path    nav.Path `json:"path,omitempty"`
	Cost    float64  `json:"cost"`
}

// PlanError is returned by Run when the invocation did not succeed.
type PlanError struct {
	Outcome uint32
	Message string
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("planning ended with outcome %d: %s", e.Outcome, e.Message)
}

// Run initializes the pipeline, performs one planning invocation and writes
// its Result. SIGINT and SIGTERM cancel the invocation.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	if err := a.healthCheckServer(); err != nil {
		return err
	}
	defer a.closeHealthCheckServer()

	if err := a.pipeline.Initialize(ctx, a.config.Name, a.config.Map()); err != nil {
		return fmt.Errorf("failed to initialize pipeline '%s': %w", a.config.Name, err)
	}
	defer func() {
		if err := a.pipeline.Close(); err != nil {
			a.logger.Warn("Pipeline did not close cleanly.", "error", err)
		}
	}()

	stop := a.cancelOnSignal()
	defer stop()

	a.logger.Info("🚀 Planning...", "start", a.config.Start.String(), "goal", a.config.Goal.String())
	res := a.plan(ctx)

	enc := json.NewEncoder(a.outW)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	if res.Outcome != pipeline.OutcomeSuccess {
		return &PlanError{Outcome: res.Outcome, Message: res.Message}
	}
	a.logger.Info("🏁 Planning finished.", "poses", len(res.Path), "cost", res.Cost)
	return nil
}

func (a *App) plan(ctx context.Context) Result {
	if a.config.Tolerance < 0 {
		plan, err := a.pipeline.MakePlan(ctx, a.config.Start, a.config.Goal)
		if err != nil {
			return Result{Outcome: pipeline.Outcome(err), Message: err.Error()}
		}
		return Result{Outcome: pipeline.OutcomeSuccess, Path: plan.Path, Cost: plan.Cost}
	}

	outcome, plan, msg := a.pipeline.MakePlanWithTolerance(ctx, a.config.Start, a.config.Goal, a.config.Tolerance)
	res := Result{Outcome: outcome, Message: msg}
	if plan != nil {
		res.Path, res.Cost = plan.Path, plan.Cost
	}
	return res
}

// cancelOnSignal forwards SIGINT and SIGTERM to the pipeline's Cancel until
// the returned function is called.
func (a *App) cancelOnSignal() func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			a.logger.Info("Received signal, cancelling planning.", "signal", sig.String())
			a.pipeline.Cancel()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
