package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/recruiter-api/internal/config"
	"github.com/phrazzld/recruiter-api/internal/metrics"
	"github.com/phrazzld/recruiter-api/internal/platform/llm"
	"github.com/phrazzld/recruiter-api/internal/ratelimit"
	"github.com/phrazzld/recruiter-api/internal/service/recruiting"
)

// application holds the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	gate    *ratelimit.Gate
	service recruiting.Service

	sweeperCancel context.CancelFunc
	sweeperDone   sync.WaitGroup
}

// newApplication creates an application with all dependencies initialized.
// A missing API key is not fatal: the generation endpoints then report a
// misconfiguration per request.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	generator, err := llm.NewGenerator(ctx, cfg.LLM, logger, app.metrics)
	if err != nil {
		return nil, err
	}
	if generator != nil {
		logger.Info("LLM generation client initialized",
			"provider", cfg.LLM.Provider,
			"model", cfg.LLM.Model)
	} else {
		logger.Warn("No LLM API key configured; generation endpoints will report a misconfiguration",
			"provider", cfg.LLM.Provider)
	}

	prompts, err := recruiting.LoadPrompts(recruiting.PromptOptions{
		PostingPath: cfg.LLM.PostingPromptPath,
		KitPath:     cfg.LLM.KitPromptPath,
		CompanyName: cfg.LLM.CompanyName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	app.service, err = recruiting.NewService(generator, prompts, logger, app.metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create recruiting service: %w", err)
	}

	app.gate, err = ratelimit.New(
		ratelimit.Config{
			MaxRequests:   cfg.RateLimit.MaxRequests,
			Window:        cfg.RateLimit.Window,
			SweepInterval: cfg.RateLimit.SweepInterval,
		},
		logger.With("component", "rate_limiter"),
		ratelimit.WithMetrics(app.metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the sweeper and the HTTP server, blocking until ctx is done
// and shutdown has completed.
func (app *application) Run(ctx context.Context) error {
	app.startSweeper(ctx)
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// startSweeper runs the rate limiter's periodic sweep until cleanup.
func (app *application) startSweeper(ctx context.Context) {
	sweepCtx, cancel := context.WithCancel(ctx)
	app.sweeperCancel = cancel
	app.sweeperDone.Add(1)
	go func() {
		defer app.sweeperDone.Done()
		app.gate.Run(sweepCtx)
	}()
}

// cleanup handles graceful shutdown of background work.
func (app *application) cleanup() {
	if app.sweeperCancel != nil {
		app.sweeperCancel()
		app.sweeperDone.Wait()
		app.sweeperCancel = nil
	}
	app.logger.Info("Application resources released")
}
