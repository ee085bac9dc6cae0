// Package main is the entry point for the ScholarStream core service: the
// onboarding wizard and the application tracker behind a REST API.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: pure business logic without external dependencies
// - Application: orchestration of the wizard, discovery, and tracker flows
// - Infrastructure: PostgreSQL/Redis persistence, backend-of-record client
// - Interface: HTTP endpoints
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/scholarstream/scholarstream-core/config"
	"github.com/scholarstream/scholarstream-core/internal/application/discovery"
	"github.com/scholarstream/scholarstream-core/internal/application/eventhandler"
	"github.com/scholarstream/scholarstream-core/internal/application/tracker"
	"github.com/scholarstream/scholarstream-core/internal/application/wizard"
	"github.com/scholarstream/scholarstream-core/internal/domain/profile"
	"github.com/scholarstream/scholarstream-core/internal/domain/shared"
	"github.com/scholarstream/scholarstream-core/internal/infrastructure/external/scholar"
	"github.com/scholarstream/scholarstream-core/internal/infrastructure/messaging"
	"github.com/scholarstream/scholarstream-core/internal/infrastructure/persistence/memory"
	"github.com/scholarstream/scholarstream-core/internal/infrastructure/persistence/postgres"
	"github.com/scholarstream/scholarstream-core/internal/infrastructure/persistence/redis"
	httpserver "github.com/scholarstream/scholarstream-core/internal/interface/http"
	"github.com/scholarstream/scholarstream-core/internal/observability"
	"github.com/scholarstream/scholarstream-core/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFormat)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting scholarstream-core",
		zap.String("version", cfg.App.Version),
		zap.String("environment", string(cfg.App.Environment)))

	// ─────────────────────────────────────────────────────────────────────────
	// Infrastructure
	// ─────────────────────────────────────────────────────────────────────────

	session := shared.NewSession()
	metrics := observability.NewDefaultMetrics()

	eventBus := messaging.NewEventBus(messaging.Config{
		AsyncMode:      true,
		WorkerPoolSize: 10,
		Logger:         log.Named("eventbus"),
	})
	defer func() { _ = eventBus.Close() }()

	var (
		snapshots   profile.SnapshotStore   = memory.NewSnapshotStore()
		completions profile.CompletionStore = memory.NewCompletionStore()
		dbHealth    httpserver.HealthChecker
		cacheHealth httpserver.HealthChecker
		portfolio   *redis.PortfolioCache
	)

	if cfg.Database.URL != "" {
		conn, err := postgres.NewConnection(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer conn.Close()

		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		store := postgres.NewSessionStore(conn, log.Named("postgres"))
		snapshots = store
		completions = store
		dbHealth = conn
		log.Info("postgres connected")
	} else {
		log.Warn("DATABASE_URL not set, onboarding sessions are in-memory only")
	}

	cache, err := redis.NewCache(redis.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		PoolSize:    cfg.Redis.PoolSize,
		DialTimeout: cfg.Redis.DialTimeout,
	})
	if err != nil {
		log.Warn("redis unavailable, running without cache", zap.Error(err))
	} else {
		defer func() { _ = cache.Close() }()
		portfolio = redis.NewPortfolioCache(cache, cfg.Redis.PortfolioTTL, log.Named("cache"))
		completions = redis.NewCompletionCache(cache, completions, log.Named("cache"))
		cacheHealth = cache
		log.Info("redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	backend := scholar.NewClient(scholar.Config{
		BaseURL: cfg.Backend.BaseURL,
		APIKey:  cfg.Backend.APIKey,
		Timeout: cfg.Backend.Timeout,
		Logger:  log.Named("scholar"),
	})

	// ─────────────────────────────────────────────────────────────────────────
	// Application
	// ─────────────────────────────────────────────────────────────────────────

	trigger := discovery.NewTrigger(discovery.Options{
		Client:    backend,
		Interval:  cfg.Wizard.NarrativeInterval,
		Publisher: eventBus,
		Enabled:   func() bool { return cfg.Features.Enabled(config.FeatureDiscovery) },
		Logger:    log.Named("discovery"),
	})

	controller := wizard.NewController(wizard.Options{
		Session:     session,
		Snapshots:   snapshots,
		Completions: completions,
		Submitter:   trigger,
		Publisher:   eventBus,
		Metrics:     metrics,
		Logger:      log.Named("wizard"),
	})

	portfolioStore := tracker.NewStore(tracker.Options{
		Session:   session,
		Client:    backend,
		Cache:     portfolio,
		Publisher: eventBus,
		Metrics:   metrics,
		Logger:    log.Named("tracker"),
	})

	// Event subscribers: an audit trail for every event, plus a portfolio
	// warm-up once onboarding completes.
	if err := eventBus.Subscribe(eventhandler.NewAuditHandler(log.Named("audit"))); err != nil {
		return fmt.Errorf("eventbus: %w", err)
	}
	if err := eventBus.Subscribe(eventhandler.NewOnOnboardingCompletedHandler(portfolioStore, log.Named("events"))); err != nil {
		return fmt.Errorf("eventbus: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Interface
	// ─────────────────────────────────────────────────────────────────────────

	server := httpserver.NewServer(httpserver.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		EnableCORS:     cfg.Server.EnableCORS,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		EnableMetrics:  cfg.Server.EnableMetrics,
	}, httpserver.Dependencies{
		Wizard:      controller,
		Tracker:     portfolioStore,
		Session:     session,
		Snapshots:   snapshots,
		Completions: completions,
		Features:    cfg.Features,
		Publisher:   eventBus,
		Database:    dbHealth,
		Cache:       cacheHealth,
		Logger:      log.Named("http"),
	})

	serverErr := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// Shutdown
	// ─────────────────────────────────────────────────────────────────────────

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case s := <-sig:
		log.Info("shutdown signal received", zap.String("signal", s.String()))
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}

	log.Info("scholarstream-core stopped")
	return nil
}
