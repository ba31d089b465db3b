package app

import (
	"context"
	"nburates/internal/adapters"
	"nburates/internal/adapters/cache"
	"nburates/internal/adapters/httpclient"
	"nburates/internal/adapters/xlsx"
	"nburates/internal/api"
	"nburates/internal/config"
	httpserver "nburates/internal/platform/http"
	"nburates/internal/platform/metrics"
	"nburates/internal/rate"
	"nburates/internal/rate/handler"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultHTTPTimeout = 10 * time.Second

// App holds the wired components shared by the export, serve and schedule commands.
type App struct {
	Config  *config.AppConfig
	Service *rate.Service
	Metrics *metrics.Metrics

	log   logrus.FieldLogger
	cache *cache.CachingRateClient
}

// New wires the application components from cfg.
func New(cfg *config.AppConfig, log logrus.FieldLogger) (*App, error) {
	// Base HTTP client (configurable timeout)
	httpTimeout := time.Duration(cfg.NBU.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = defaultHTTPTimeout
	}
	baseHTTPClient := &http.Client{Timeout: httpTimeout}

	m := metrics.New()
	nbuClient := httpclient.NewNBUClient(baseHTTPClient, cfg.NBU.BaseURL, cfg.NBU.UserAgent, log).WithObserver(m)

	a := &App{Config: cfg, Metrics: m, log: log}

	var client adapters.RateClient = nbuClient
	if cfg.Cache.MaxItems > 0 {
		cached, err := cache.NewCachingRateClient(nbuClient, cfg.Cache.MaxItems)
		if err != nil {
			return nil, err
		}
		a.cache = cached
		client = cached
	}

	fetcher, err := rate.NewFetcher(cfg.NBU.Strategy, client, log, cfg.NBU.Workers)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Service = rate.NewService(fetcher, xlsx.NewExporter(), log)
	return a, nil
}

// Serve runs the HTTP API until ctx is canceled.
func (a *App) Serve(ctx context.Context) error {
	rateHandler := handler.NewRateHandler(a.Service, a.log, a.Config.HTTPServer.MaxDays)
	router := api.NewRouter(rateHandler, a.Metrics.Handler())

	a.log.Info("Starting http server")
	if err := httpserver.Start(ctx, a.Config.HTTPServer, router, a.log); err != nil {
		a.log.Errorf("HTTP server error: %v", err)
		return err
	}
	return nil
}

// Schedule runs the periodic export until ctx is canceled.
func (a *App) Schedule(ctx context.Context) error {
	cfg := a.Config.Scheduler
	codes, err := rate.ParseCurrencies(cfg.Currencies...)
	if err != nil {
		return err
	}

	scheduler := rate.NewScheduler(a.Service, codes, cfg.OutputDir, time.Duration(cfg.IntervalSeconds)*time.Second, a.log)
	if err = scheduler.Validate(); err != nil {
		return err
	}
	defer func() {
		if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
			a.log.Errorf("Scheduler shutdown error: %v", shutDownErr)
		}
	}()

	if startErr := scheduler.Start(ctx); startErr != nil {
		a.log.WithError(startErr).Error("Failed to start scheduler")
		return startErr
	}
	a.log.Info("✅ Scheduler activation successful")

	<-ctx.Done()
	return nil
}

func (a *App) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
}
