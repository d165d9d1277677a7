package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/playerhunt/internal/adapters/cache"
	"github.com/okian/playerhunt/internal/adapters/http/api"
	"github.com/okian/playerhunt/internal/adapters/http/swagger"
	"github.com/okian/playerhunt/internal/adapters/localindex"
	"github.com/okian/playerhunt/internal/adapters/repository"
	"github.com/okian/playerhunt/internal/adapters/wikidata"
	app "github.com/okian/playerhunt/internal/app"
	"github.com/okian/playerhunt/internal/config"
	"github.com/okian/playerhunt/internal/domain/resolver"
	"github.com/okian/playerhunt/internal/domain/scoring"
	"github.com/okian/playerhunt/pkg/logger"
	"github.com/okian/playerhunt/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// logConfig records the settings that change lookup behaviour.
func logConfig(ctx context.Context, log logger.Logger, cfg *config.Config) {
	log.Info(ctx, "configuration loaded",
		logger.String("index_path", cfg.IndexPath),
		logger.Bool("external_lookups", cfg.ExternalLookups),
		logger.Float64("rate_limit_rps", cfg.RateLimitRPS),
		logger.Int("rate_limit_burst", cfg.RateLimitBurst),
		logger.Duration("lookup_cache_ttl", cfg.LookupCacheTTL()))
}

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}

	loggerInstance := logger.Get()
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	logConfig(ctx, loggerInstance, cfg)

	svc, index, err := buildService(ctx, cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "failed to build service", logger.Error(err))
		return
	}
	defer func() { _ = index.Close() }()

	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// buildService wires the resolution pipeline and the room store from cfg.
// The returned index must be closed by the caller.
func buildService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, *localindex.Index, error) {
	index := localindex.Open(ctx, cfg.IndexPath, localindex.WithLogger(log.Named("localindex")))

	var external resolver.ExternalResolver
	if cfg.ExternalLookups {
		client := wikidata.NewClient(
			wikidata.WithBaseURL(cfg.WikidataURL),
			wikidata.WithUserAgent(cfg.UserAgent),
			wikidata.WithTimeouts(cfg.ConnectTimeout(), cfg.RequestTimeout()),
			wikidata.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
			wikidata.WithLogger(log.Named("wikidata")),
		)
		external = wikidata.NewResolver(client, wikidata.WithResolverLogger(log.Named("wikidata-resolver")))
	}

	lookup := cache.New(
		resolver.New(index, external, resolver.WithLogger(log.Named("resolver"))),
		cache.WithTTL(cfg.LookupCacheTTL()),
		cache.WithMaxSize(cfg.LookupCacheSize),
		cache.WithLogger(log.Named("lookup-cache")),
	)

	store, err := newStore(cfg, log)
	if err != nil {
		_ = index.Close()
		return nil, nil, err
	}

	scorer := scoring.NewRarityScorer(
		scoring.WithSportThresholds(toThresholds(cfg.SportThresholds)),
		scoring.WithCountryThresholds(toThresholds(cfg.CountryThresholds)),
	)

	svc := app.New(
		app.WithLogger(log),
		app.WithLookuper(lookup),
		app.WithStore(store),
		app.WithScorer(scorer),
		app.WithCountryCounter(index),
	)
	return svc, index, nil
}

// newStore opens the bbolt store at cfg.StorePath, or an in-memory store
// when no path is configured.
func newStore(cfg *config.Config, log logger.Logger) (repository.Store, error) {
	if cfg.StorePath == "" {
		return repository.NewMemoryStore(repository.WithLogger(log.Named("store"))), nil
	}
	store, err := repository.NewBoltStore(cfg.StorePath, repository.WithLogger(log.Named("store")))
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.StorePath, err)
	}
	return store, nil
}

func toThresholds(in []config.Threshold) []scoring.Threshold {
	out := make([]scoring.Threshold, len(in))
	for i, t := range in {
		out[i] = scoring.Threshold{MaxPercent: t.MaxPercent, Bonus: t.Bonus}
	}
	return out
}

// newMux registers the docs and business API routes.
func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if rooms, ok := stats["rooms"].(int); ok {
		metrics.UpdateRoomCount(rooms)
	}
	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueLength(queueLen)
	}
}
