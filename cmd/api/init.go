package main

import (
	"context"
	"errors"

	"smart-calculator/internal/calculator"
	"smart-calculator/internal/config"
	"smart-calculator/internal/observability"
	"smart-calculator/internal/session"
	"smart-calculator/internal/solver"

	"go.uber.org/zap"
)

type shutdownFunc func(context.Context) error

// initTelemetry starts OTLP export of traces, metrics and logs, and creates
// the domain metric instruments. Add new domain InitMetrics calls here as the
// project grows. The returned function shuts every provider down.
func initTelemetry(ctx context.Context, enabled bool) (shutdownFunc, error) {
	var shutdowns []shutdownFunc
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	if enabled {
		for _, start := range []func(context.Context) (func(context.Context) error, error){
			observability.InitTracing,
			observability.InitMetrics,
			observability.InitLogging,
		} {
			fn, err := start(ctx)
			if err != nil {
				_ = shutdown(ctx)
				return nil, err
			}
			shutdowns = append(shutdowns, fn)
		}
	}

	if err := calculator.InitMetrics(); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}
	if err := session.InitMetrics(); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	return shutdown, nil
}

// newSolverClient builds the protected model client, or an always-failing
// one when no API key is configured.
func newSolverClient(cfg config.Config) solver.Client {
	if !cfg.SolverConfigured() {
		observability.Logger.Warn("no API key configured; word problems will be rejected",
			zap.String("hint", "set API_KEY or GEMINI_API_KEY"),
		)
		return solver.Unavailable{}
	}

	observability.Logger.Info("solver configured",
		zap.String("base_url", cfg.Solver.BaseURL),
		zap.String("model", cfg.Solver.Model),
		zap.String("explain_model", cfg.Solver.ExplainModel),
	)
	return solver.NewProtected(solver.NewOpenAIClient(cfg.Solver), cfg.Protection)
}
