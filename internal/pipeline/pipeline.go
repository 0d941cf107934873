// Package pipeline chains pre-planning, planning and post-planning plugin
// groups into a single global planner.
//
// A Pipeline serves one planning invocation at a time; callers serialize
// MakePlan, MakePlanWithTolerance, Initialize and Close. Cancel is the only
// method that may be called concurrently with an invocation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/gppgo/internal/config"
	"github.com/specialistvlad/gppgo/internal/ctxlog"
	"github.com/specialistvlad/gppgo/internal/metrics"
	"github.com/specialistvlad/gppgo/internal/nav"
	"github.com/specialistvlad/gppgo/internal/plugin"
	"github.com/specialistvlad/gppgo/internal/registry"
	"github.com/specialistvlad/gppgo/internal/stage"
)

// Configuration keys, relative to the pipeline's namespace.
const (
	KeyPrePlanning  = "pre_planning"
	KeyPlanning     = "planning"
	KeyPostPlanning = "post_planning"
	KeyTolerance    = "tolerance"

	DefaultTolerance = 0.1
)

// Plan is the result of a successful invocation.
type Plan struct {
	Path nav.Path
	Cost float64
}

// state is the working data of one invocation.
type state struct {
	start     nav.Pose
	goal      nav.Pose
	tolerance float64
	path      nav.Path
	cost      float64
}

// Pipeline is the global planner built from three plugin stages.
type Pipeline struct {
	registry *registry.Registry
	params   config.Scope
	metrics  *metrics.Registry
	logger   *slog.Logger

	name      string
	tolerance float64

	pre      *stage.Group[plugin.PrePlanner]
	planning *stage.Group[plugin.Planner]
	post     *stage.Group[plugin.PostPlanner]

	cancelled atomic.Bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics records stage and plugin outcomes on m.
func WithMetrics(m *metrics.Registry) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithLogger sets the logger used when a call's context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New creates an uninitialized pipeline. params plays the role of the
// parameter server; each pipeline reads the namespace named after it.
func New(reg *registry.Registry, params config.Scope, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry:  reg,
		params:    params,
		tolerance: DefaultTolerance,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the name given to Initialize.
func (p *Pipeline) Name() string { return p.name }

// Tolerance returns the configured default tolerance.
func (p *Pipeline) Tolerance() float64 { return p.tolerance }

// Plugins lists the loaded instance names per stage key.
func (p *Pipeline) Plugins() map[string][]string {
	out := make(map[string][]string, 3)
	if p.pre != nil {
		out[KeyPrePlanning] = p.pre.Names()
	}
	if p.planning != nil {
		out[KeyPlanning] = p.planning.Names()
	}
	if p.post != nil {
		out[KeyPostPlanning] = p.post.Names()
	}
	return out
}

// Initialize reads the namespace called name (the root namespace when name
// is empty), loads all three stages and hands m to every plugin. Calling it
// again replaces all stages; if any stage fails to load, the pipeline keeps
// its previous stages.
func (p *Pipeline) Initialize(ctx context.Context, name string, m nav.Map) error {
	ctx, logger := ctxlog.With(p.context(ctx), "pipeline", name)

	scope := p.params
	if name != "" {
		scope = p.params.Sub(name)
	}

	tolerance, err := scope.Float(KeyTolerance, DefaultTolerance)
	if err != nil {
		return &plugin.ConfigError{Key: KeyTolerance, Index: -1, Reason: err.Error()}
	}

	pre := stage.NewGroup[plugin.PrePlanner](KeyPrePlanning)
	if err := pre.Load(ctx, scope, p.registry.PrePlanning, stage.LoadOptions{Map: m}); err != nil {
		return fmt.Errorf("failed to load %s: %w", KeyPrePlanning, err)
	}

	post := stage.NewGroup[plugin.PostPlanner](KeyPostPlanning)
	if err := post.Load(ctx, scope, p.registry.PostPlanning, stage.LoadOptions{Map: m}); err != nil {
		pre.Close()
		return fmt.Errorf("failed to load %s: %w", KeyPostPlanning, err)
	}

	planning := stage.NewGroup[plugin.Planner](KeyPlanning)
	if err := planning.Load(ctx, scope, p.registry.Planning, stage.LoadOptions{Map: m, Required: true}); err != nil {
		post.Close()
		pre.Close()
		return fmt.Errorf("failed to load %s: %w", KeyPlanning, err)
	}

	if err := p.closeStages(); err != nil {
		logger.Warn("Previous plugins did not close cleanly.", "error", err)
	}
	p.name = name
	p.tolerance = tolerance
	p.pre, p.planning, p.post = pre, planning, post

	logger.Info("Pipeline initialized.",
		"tolerance", tolerance,
		KeyPrePlanning, pre.Names(),
		KeyPlanning, planning.Names(),
		KeyPostPlanning, post.Names(),
	)
	return nil
}

// MakePlan plans from start to goal with the configured tolerance.
func (p *Pipeline) MakePlan(ctx context.Context, start, goal nav.Pose) (*Plan, error) {
	return p.makePlan(ctx, start, goal, p.tolerance)
}

// MakePlanWithTolerance plans with a caller-supplied tolerance that applies
// to this call only. It reports an outcome code and a diagnostic message
// instead of an error.
func (p *Pipeline) MakePlanWithTolerance(ctx context.Context, start, goal nav.Pose, tolerance float64) (uint32, *Plan, string) {
	plan, err := p.makePlan(ctx, start, goal, tolerance)
	if err != nil {
		return Outcome(err), nil, err.Error()
	}
	return OutcomeSuccess, plan, ""
}

// Cancel asks the running invocation to stop before its next plugin. It is
// safe to call from any goroutine; the request is cleared when the next
// invocation starts.
func (p *Pipeline) Cancel() bool {
	ctxlog.FromContext(p.context(context.Background())).Info("Cancelling.", "pipeline", p.name)
	p.cancelled.Store(true)
	return true
}

// Close tears down post-planning, planning and pre-planning plugins in that
// order. The pipeline must be initialized again before further use.
func (p *Pipeline) Close() error {
	return p.closeStages()
}

func (p *Pipeline) closeStages() error {
	var errs []error
	if p.post != nil {
		errs = append(errs, p.post.Close())
	}
	if p.planning != nil {
		errs = append(errs, p.planning.Close())
	}
	if p.pre != nil {
		errs = append(errs, p.pre.Close())
	}
	p.pre, p.planning, p.post = nil, nil, nil
	return errors.Join(errs...)
}

func (p *Pipeline) makePlan(ctx context.Context, start, goal nav.Pose, tolerance float64) (*Plan, error) {
	if p.planning == nil {
		return nil, ErrNotInitialized
	}
	p.cancelled.Store(false)

	ctx, logger := ctxlog.With(p.context(ctx), "pipeline", p.name, "invocation", uuid.NewString())
	logger.Debug("Planning started.", "start", start, "goal", goal, "tolerance", tolerance)

	// Local copies: whatever the stages do stays inside this invocation.
	st := &state{start: start, goal: goal, tolerance: tolerance}

	res := p.pre.Run(ctx, &p.cancelled, func(ctx context.Context, pl plugin.PrePlanner) bool {
		return pl.PreProcess(ctx, &st.start, &st.goal, st.tolerance)
	}, p.observer(KeyPrePlanning))
	p.metrics.ObserveStage(KeyPrePlanning, res.Success, res.Cancelled)
	if !res.Success {
		return p.fail(ctx, KeyPrePlanning, res, "pre-planning rejected request")
	}

	res = p.planning.Run(ctx, &p.cancelled, func(ctx context.Context, pl plugin.Planner) bool {
		return pl.MakePlan(ctx, st.start, st.goal, st.tolerance, &st.path, &st.cost)
	}, p.observer(KeyPlanning))
	p.metrics.ObserveStage(KeyPlanning, res.Success, res.Cancelled)
	if !res.Success {
		return p.fail(ctx, KeyPlanning, res, "no planner produced a path")
	}

	res = p.post.Run(ctx, &p.cancelled, func(ctx context.Context, pl plugin.PostPlanner) bool {
		return pl.PostProcess(ctx, &st.path, &st.cost)
	}, p.observer(KeyPostPlanning))
	p.metrics.ObserveStage(KeyPostPlanning, res.Success, res.Cancelled)
	if !res.Success {
		return p.fail(ctx, KeyPostPlanning, res, "post-planning rejected path")
	}

	p.metrics.ObserveInvocation("success")
	logger.Info("Planning succeeded.", "poses", len(st.path), "cost", st.cost)
	return &Plan{Path: st.path, Cost: st.cost}, nil
}

func (p *Pipeline) fail(ctx context.Context, key string, res stage.Result, reason string) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	if res.Cancelled {
		p.metrics.ObserveInvocation("cancelled")
		logger.Info("Planning cancelled.", "stage", key, "ran", res.Ran)
		return nil, &PlanError{Stage: key, Reason: "cancelled during " + key, Cancelled: true}
	}

	p.metrics.ObserveInvocation("failure")
	logger.Warn("Planning failed.", "stage", key, "plugin", res.Terminator, "reason", reason)
	return nil, &PlanError{Stage: key, Plugin: res.Terminator, Reason: reason}
}

func (p *Pipeline) observer(key string) stage.Observer {
	if p.metrics == nil {
		return nil
	}
	return func(name string, ok bool, took time.Duration) {
		p.metrics.ObservePlugin(key, name, ok, took)
	}
}

// context attaches the pipeline's own logger unless ctx already has one.
func (p *Pipeline) context(ctx context.Context) context.Context {
	if p.logger == nil || ctxlog.FromContext(ctx) != slog.Default() {
		return ctx
	}
	return ctxlog.WithLogger(ctx, p.logger)
}
