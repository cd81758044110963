package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"smartmatch/internal/breaker"
	"smartmatch/internal/config"
	"smartmatch/internal/database"
	dbpostgres "smartmatch/internal/database/postgres"
	"smartmatch/internal/infrastructure/backend"
	"smartmatch/internal/infrastructure/cache"
	"smartmatch/internal/metrics"
	"smartmatch/internal/pkg/jwt"
	"smartmatch/internal/repository"
	"smartmatch/internal/usecase"
	"smartmatch/internal/ws"
)

// Container wires the object graph once at startup. Everything downstream
// receives its dependencies explicitly; nothing reaches for globals.
type Container struct {
	Config config.Config
	Logger *log.Logger

	Cache    *cache.Redis
	DB       database.DB
	History  repository.MatchHistoryRepository
	Breakers *breaker.Registry
	Metrics  *metrics.Metrics
	Hub      *ws.Hub
	Notifier *ws.EventNotifier
	JWT      jwt.Service

	Selector     usecase.SelectionUsecase
	Orchestrator usecase.MatchingUsecase
}

func NewContainer(cfg config.Config) (*Container, error) {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	redisCache := cache.NewRedis(cache.Options{
		Host:       cfg.Cache.RedisHost,
		Port:       cfg.Cache.RedisPort,
		Password:   cfg.Cache.RedisPassword,
		DB:         cfg.Cache.RedisDB,
		DefaultTTL: cfg.Cache.ResultTTL,
	}, logger)

	var db database.DB
	var history repository.MatchHistoryRepository
	if cfg.Database.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := dbpostgres.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := repository.EnsureSchema(ctx, pool); err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("ensure history schema: %w", err)
		}
		db = pool
		history = repository.NewMatchHistoryRepository(pool)
	}

	m := metrics.New()
	hub := ws.NewHub(logger)
	notifier := ws.NewEventNotifier(hub)

	breakers := breaker.NewRegistry(cfg.Breaker.FailureThreshold, cfg.Breaker.RecoveryTimeout, logger)
	breakers.OnTransition(func(name string, from, to breaker.State, _ breaker.Snapshot) {
		m.ObserveBreakerTransition(name, string(from), string(to))
		notifier.BreakerTransition(name, string(from), string(to))
	})

	// A typed-nil store would defeat the nil checks downstream, so the
	// interface stays nil when caching is off.
	var selStore usecase.Store
	var resultStore backend.Store
	if cfg.App.EnableCaching {
		selStore = redisCache
		resultStore = redisCache
	}

	selector, err := usecase.NewSelectionUsecase(cfg.Selector, selStore, cfg.Cache.SelectionTTL, logger)
	if err != nil {
		return nil, fmt.Errorf("build selector: %w", err)
	}

	ml := backend.NewMLAdapter(cfg.Backends.NextenURL, cfg.Backends.NextenTimeout, cfg.Backends.MaxRetries, resultStore, cfg.Cache.ResultTTL, logger)
	heuristic := backend.NewHeuristicAdapter(cfg.Backends.V1URL, cfg.Backends.V1Timeout, cfg.Backends.MaxRetries, resultStore, cfg.Cache.ResultTTL, logger)

	orchestrator := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Selector:       selector,
		ML:             ml,
		Heuristic:      heuristic,
		Breakers:       breakers,
		Store:          selStore,
		RequestTTL:     cfg.Cache.RequestTTL,
		EnableFallback: cfg.App.EnableFallback,
		History:        history,
		Observer:       m,
		Notifier:       notifier,
		Logger:         logger,
	})

	jwtSvc := jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Cache:        redisCache,
		DB:           db,
		History:      history,
		Breakers:     breakers,
		Metrics:      m,
		Hub:          hub,
		Notifier:     notifier,
		JWT:          jwtSvc,
		Selector:     selector,
		Orchestrator: orchestrator,
	}, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}

	var firstErr error
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			firstErr = err
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
