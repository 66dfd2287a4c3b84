package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/upb/wellchat-api/config"
	"github.com/upb/wellchat-api/handlers"
	"github.com/upb/wellchat-api/internal/auth"
	"github.com/upb/wellchat-api/internal/observability"
	"github.com/upb/wellchat-api/middleware"
	"github.com/upb/wellchat-api/repositories"
	"github.com/upb/wellchat-api/repositories/postgres"
	redisrepo "github.com/upb/wellchat-api/repositories/redis"
	"github.com/upb/wellchat-api/services/chat"
	"github.com/upb/wellchat-api/services/personality"
	"github.com/upb/wellchat-api/services/provisioning"
	"github.com/upb/wellchat-api/services/ratelimit"
	"github.com/upb/wellchat-api/supabase"
	"go.uber.org/zap"
)

// Dependencies is the central wiring point for the application
type Dependencies struct {
	// Infrastructure
	Config   *config.Config
	Logger   *zap.Logger
	DB       *postgres.DB
	Counters *redisrepo.CounterStore
	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	RepoFactory *postgres.RepositoryFactory
	Repos       *repositories.Repositories
	TxManager   repositories.TransactionManager

	// Authorization pipeline
	Keys        *supabase.JWKSResolver
	Verifier    *supabase.Verifier
	Provisioner *provisioning.Service
	Gate        *auth.Gate
	RateLimiter *ratelimit.Service

	// Route-facing collaborators
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
	Users               handlers.UserReader
	Chats               handlers.ChatStarter
	Personality         handlers.PersonalityService
	HealthChecks        map[string]handlers.HealthCheck
}

// NewDependencies connects to Postgres and Redis and wires every component
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initObservability()

	if err := deps.initDatabase(ctx, cfg); err != nil {
		_ = deps.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := deps.initRedis(ctx, cfg); err != nil {
		_ = deps.Close(ctx)
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	deps.initAuth(cfg)
	deps.initServices()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func (d *Dependencies) initObservability() {
	d.Registry = prometheus.NewRegistry()
	d.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.Metrics = observability.NewMetrics(d.Registry)
}

// initDatabase opens the pool, creates the schema and builds repositories
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := d.DB.InitSchema(ctx); err != nil {
		return err
	}

	d.Repos = factory.NewRepositories()
	d.TxManager = factory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
	return nil
}

func (d *Dependencies) initRedis(ctx context.Context, cfg *config.Config) error {
	client, err := redisrepo.NewClient(ctx, redisrepo.Config{
		URL:      cfg.Redis.URL,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return err
	}

	d.Counters = redisrepo.NewCounterStore(client, d.Logger)
	d.Logger.Info("redis connection established")
	return nil
}

// initAuth builds the verifier, provisioner and gate chain
func (d *Dependencies) initAuth(cfg *config.Config) {
	d.Keys = supabase.NewJWKSResolver(supabase.ResolverConfig{
		URL:         cfg.Supabase.JWKSURL,
		CacheTTL:    cfg.Supabase.JWKSTTL,
		HTTPTimeout: cfg.Supabase.HTTPTimeout,
	}, d.Logger, d.Metrics)

	d.Verifier = supabase.NewVerifier(d.Keys, supabase.VerifierConfig{
		Issuer:   cfg.Supabase.Issuer,
		Audience: cfg.Supabase.Audience,
	}, d.Logger)

	d.Provisioner = provisioning.NewService(d.Repos.Users, d.Logger, d.Metrics)
	d.Gate = auth.NewGate(d.Verifier, d.Provisioner, d.Logger, d.Metrics)
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Gate, d.Logger)

	d.RateLimiter = ratelimit.NewService(d.Counters, d.Logger, d.Metrics)
	d.RateLimitMiddleware = middleware.NewRateLimitMiddleware(d.RateLimiter, d.Logger)

	d.Logger.Info("authorization pipeline initialized",
		zap.String("issuer", cfg.Supabase.Issuer),
		zap.String("audience", cfg.Supabase.Audience))
}

func (d *Dependencies) initServices() {
	d.Users = d.Repos.Users
	d.Chats = chat.NewService(d.Repos.Chats, d.TxManager, d.Logger)
	d.Personality = personality.NewService(d.Repos.Personality, d.Logger)
	d.HealthChecks = map[string]handlers.HealthCheck{
		"database": d.DB.HealthCheck,
		"redis":    d.Counters.Ping,
	}
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Counters != nil {
		if err := d.Counters.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	_ = d.Logger.Sync()

	return errors.Join(errs...)
}
