package app

import (
	"context"

	"stock-sentry/logger"
	"stock-sentry/trace"
)

// RunPipeline chains the daily stages: scrape the candidate universe,
// label trends, execute trade decisions, then archive yesterday's rows.
// A stage failure stops the chain; later stages would act on stale data.
func (a *App) RunPipeline(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "pipeline")
	defer span.End()

	stages := []struct {
		name string
		run  func(context.Context) error
	}{
		{"scrape", a.RunScrape},
		{"trend", a.RunTrend},
		{"trade", a.RunTrade},
		{"cleanup", a.RunCleanup},
	}

	for _, stage := range stages {
		logger.Infow("pipeline stage starting", "stage", stage.name)
		if err := stage.run(ctx); err != nil {
			logger.Errorw("pipeline stage failed", "stage", stage.name, "error", err)
			return err
		}
	}
	logger.Infow("pipeline complete")
	return nil
}
