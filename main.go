package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stock-sentry/app"
	"stock-sentry/config"
	"stock-sentry/logger"
	"stock-sentry/trace"
)

func main() {
	cfg := config.LoadFromEnv()

	if err := logger.Init(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Errorw("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := trace.Init(); err != nil {
		logger.Warnw("tracing init failed, continuing without it", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer trace.Shutdown(context.Background())

	command := "monitor"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	a := app.New(cfg)
	if err := a.Init(); err != nil {
		logger.Errorw("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	var err error
	switch command {
	case "monitor":
		err = a.RunMonitor(ctx)
	case "trend":
		err = a.RunTrend(ctx)
	case "trade":
		err = a.RunTrade(ctx)
	case "scrape":
		err = a.RunScrape(ctx)
	case "eod":
		err = a.RunEOD(ctx)
	case "backfill":
		err = a.RunBackfill(ctx)
	case "stream":
		err = a.RunStream(ctx)
	case "cleanup":
		err = a.RunCleanup(ctx)
	case "pipeline":
		err = a.RunPipeline(ctx)
	case "report":
		err = a.RunReport(ctx)
	default:
		logger.Errorw("unknown command", "command", command)
		fmt.Fprintln(os.Stderr, "usage: stock-sentry [monitor|trend|trade|scrape|eod|backfill|stream|cleanup|pipeline|report]")
		os.Exit(2)
	}
	if err != nil {
		logger.Errorw("run failed", "command", command, "error", err)
		os.Exit(1)
	}
}
