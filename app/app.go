// Package app wires the components together and drives the pipelines:
// monitor (watchlist signal detection and alerting), trend, trade,
// scrape, eod, stream, cleanup, and the combined pipeline run.
package app

import (
	"fmt"
	"strconv"

	"stock-sentry/cache"
	"stock-sentry/config"
	"stock-sentry/database"
	"stock-sentry/database/bars"
	newsdb "stock-sentry/database/news"
	"stock-sentry/database/retention"
	"stock-sentry/database/signals"
	"stock-sentry/database/snapshots"
	"stock-sentry/database/trades"
	"stock-sentry/llm"
	"stock-sentry/logger"
	"stock-sentry/marketdata"
	"stock-sentry/news"
	"stock-sentry/notifications"
	"stock-sentry/scraper"
)

// App holds every wired component.
type App struct {
	cfg *config.Config

	db    *database.Database
	redis *cache.RedisClient

	bars      *bars.Repository
	signals   *signals.Repository
	trades    *trades.Repository
	snapshots *snapshots.Repository
	news      *newsdb.Repository
	retention *retention.Manager

	market    *marketdata.Client
	streamer  *marketdata.Streamer
	scraper   *scraper.Scraper
	headlines *news.Fetcher

	email    *notifications.EmailSender
	webhooks *notifications.WebhookManager

	summarizer   *llm.Summarizer
	summaryCache *cache.SummaryCache
}

// New creates an unconnected App. Call Init before running a pipeline.
func New(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

// Init connects storage, migrates the schema, and builds every component.
func (a *App) Init() error {
	port, err := strconv.Atoi(a.cfg.DatabasePort)
	if err != nil {
		return fmt.Errorf("invalid DB_PORT %q: %w", a.cfg.DatabasePort, err)
	}

	db, err := database.Connect(a.cfg.DatabaseHost, port, a.cfg.DatabaseName, a.cfg.DatabaseUser, a.cfg.DatabasePassword)
	if err != nil {
		return err
	}
	if err := db.InitSchema(); err != nil {
		db.Close()
		return err
	}
	a.db = db
	logger.Infow("database ready", "host", a.cfg.DatabaseHost, "db", a.cfg.DatabaseName)

	// Redis is optional: a nil client disables summary caching, nothing else.
	a.redis = cache.NewRedisClient(a.cfg.RedisHost, a.cfg.RedisPort, a.cfg.RedisPassword)
	a.summaryCache = cache.NewSummaryCache(a.redis)

	gormDB := db.DB()
	a.bars = bars.NewRepository(gormDB)
	a.signals = signals.NewRepository(gormDB)
	a.trades = trades.NewRepository(gormDB)
	a.snapshots = snapshots.NewRepository(gormDB)
	a.news = newsdb.NewRepository(gormDB)
	a.retention = retention.New(retention.NewGormStore(gormDB))

	a.market = marketdata.NewClient(a.cfg.TwelveDataAPIKey, a.cfg.TwelveDataBase)
	a.streamer = marketdata.NewStreamer(a.cfg.QuoteStreamURL, a.cfg.TwelveDataAPIKey)
	a.scraper = scraper.New()
	a.headlines = news.New()

	a.email = notifications.NewEmailSender(a.cfg.Email)
	a.webhooks = notifications.NewWebhookManager(a.cfg.WebhookURLs)

	if a.cfg.LLM.Enabled {
		client := llm.NewClient(a.cfg.LLM.Endpoint, a.cfg.LLM.APIKey, a.cfg.LLM.Model)
		a.summarizer = llm.NewSummarizer(client)
	}

	return nil
}

// Close releases storage connections.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warnw("redis close failed", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logger.Warnw("database close failed", "error", err)
		}
	}
}
