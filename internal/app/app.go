package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/gppgo/internal/config"
	"github.com/specialistvlad/gppgo/internal/ctxlog"
	"github.com/specialistvlad/gppgo/internal/metrics"
	"github.com/specialistvlad/gppgo/internal/pipeline"
	"github.com/specialistvlad/gppgo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	metrics    *metrics.Registry
	document   *config.Document
	pipeline   *pipeline.Pipeline
	httpServer *http.Server
}

// NewApp is the constructor for the main application. Results go to outW and
// logs to logW. It loads the configuration document and registers the given
// modules, or the core modules when none are given. The pipeline itself is
// initialized by Run.
func NewApp(outW, logW io.Writer, appConfig *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	doc, err := LoadDocument(ctx, appConfig.ConfigPath)
	if err != nil {
		return nil, err
	}

	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	reg := registry.New().Install(modules...)
	logger.Debug("All Go modules registered.",
		"count", len(modules),
		"pre_planning", reg.PrePlanning.Types(),
		"planning", reg.Planning.Types(),
		"post_planning", reg.PostPlanning.Types(),
	)

	m := metrics.NewRegistry()
	return &App{
		ctx:      ctx,
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		registry: reg,
		metrics:  m,
		document: doc,
		pipeline: pipeline.New(reg, doc.Scope, pipeline.WithMetrics(m), pipeline.WithLogger(logger)),
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Metrics returns the application's metrics registry.
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

// Pipeline returns the application's planner.
func (a *App) Pipeline() *pipeline.Pipeline {
	return a.pipeline
}
