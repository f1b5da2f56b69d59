package main

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"bbcstats/internal/backend"
	"bbcstats/internal/cache"
	"bbcstats/internal/chart"
	"bbcstats/internal/cli"
	"bbcstats/internal/config"
	"bbcstats/internal/core"
	apphttp "bbcstats/internal/http"
	"bbcstats/internal/loader"
	applog "bbcstats/internal/log"
	"bbcstats/internal/table"
	appweb "bbcstats/web"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.SlogLevel())

	if err := cfg.Validate(); err != nil {
		cli.Exit(logger, "Configuration validation failed", err)
	}

	if err := run(cfg, logger); err != nil {
		cli.Exit(logger, "Server error", err)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, stop := cli.SignalContext()
	defer stop()
	ctx = context.WithValue(ctx, applog.LoggerContextKey, logger)

	result, err := loadDataset(ctx, cfg, logger)
	if err != nil {
		return err
	}

	caches := cache.NewManager()
	deps := apphttp.Deps{
		Logger: logger,
		Result: result,
		Charts: chart.NewECharts(),
		Caches: caches,
	}

	if result.OK() {
		renderer, err := table.NewRenderer(appweb.TemplatesFS, core.DefaultColumns)
		if err != nil {
			return fmt.Errorf("table templates: %w", err)
		}
		bodies := cache.NewLRUCache[template.HTML](cfg.CacheSize, cfg.CacheTTL)
		caches.Register(bodies)
		caches.StartCleanup(cfg.CacheTTL)

		deps.Tables = table.NewController(result.Dataset(), renderer, bodies)
		deps.BodyStats = bodies.Stats

		applog.NewStructuredLogger(logger).LogDatasetLoaded(ctx, cfg.DataBackend, result.Dataset().Len())
	}

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:              ":" + cfg.Port,
		RequestsPerMinute: cfg.RateLimitPerMinute,
	}, deps)
	if err != nil {
		return err
	}

	logger.Info("Starting bbcstats server", applog.FieldOperation, applog.OpStartup, "port", cfg.Port, "backend", cfg.DataBackend, "loaded", result.OK())
	return cli.Serve(ctx, logger, srv, shutdownTimeout)
}

// loadDataset fetches once from the configured backend. A failed fetch is
// not an error here: the server still starts and shows the reason.
func loadDataset(ctx context.Context, cfg *config.Config, logger *applog.Logger) (loader.Result, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return loader.Result{}, fmt.Errorf("backend config: %w", err)
	}

	res, err := backend.NewFactory(logger.With(applog.FieldComponent, applog.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return loader.Result{}, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}
	if res.Cleanup != nil {
		defer func() {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", applog.FieldError, err)
			}
		}()
	}

	// No deadline: the fetch is bounded only by the signal context.
	return loader.Load(ctx, res.Fetcher), nil
}
