package app

import (
	"context"
	"fmt"

	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"

	"github.com/noah-isme/toko-tierprice/internal/cart"
	"github.com/noah-isme/toko-tierprice/internal/config"
	"github.com/noah-isme/toko-tierprice/internal/obs"
	"github.com/noah-isme/toko-tierprice/internal/pricing"
	"github.com/noah-isme/toko-tierprice/internal/ratelimit"
	"github.com/noah-isme/toko-tierprice/internal/tierstore"
)

// Dependencies holds the long-lived services built at startup.
type Dependencies struct {
	DB              *pgxpool.Pool
	Redis           *redis.Client
	Validator       *validator.Validate
	Limiter         *limiter.Limiter
	MetricsRegistry *prometheus.Registry
	HTTPMetrics     *obs.HTTPMetrics
	PricingMetrics  *obs.PricingMetrics
	Store           *tierstore.Store
	Engine          *pricing.Engine
	Cart            *cart.Service
}

// NewEngine builds the pricing engine from the configured price format.
func NewEngine(cfg config.PriceFormat) *pricing.Engine {
	return pricing.NewEngine(pricing.Formatter{
		Symbol:       cfg.CurrencySymbol,
		SymbolAfter:  cfg.SymbolAfter,
		ThousandsSep: cfg.ThousandsSep,
		DecimalSep:   cfg.DecimalSep,
		UnitDecimals: cfg.UnitDecimals,
		BaseLabel:    cfg.BaseLabel,
	})
}

// NewRegistry returns a Prometheus registry carrying the runtime collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Build connects to Postgres and Redis and wires the pricing services.
// Callers must Close the returned Dependencies.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Validator:       validator.New(validator.WithRequiredStructEnabled()),
		MetricsRegistry: NewRegistry(),
		Engine:          NewEngine(cfg.Price),
	}
	if cfg.Obs.MetricsEnabled {
		deps.HTTPMetrics = obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, obs.ParseBucketsCSV(cfg.Obs.MetricsBuckets), deps.MetricsRegistry)
		deps.PricingMetrics = obs.NewPricingMetrics(cfg.Obs.MetricsNamespace, deps.MetricsRegistry)
	}

	if cfg.MigrateOnStart {
		if err := tierstore.Migrate(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		logger.Info().Msg("tier pricing schema migrated")
	}

	pool, err := NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	deps.DB = pool

	redisClient, err := NewRedis(ctx, cfg.RedisURL, logger)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Redis = redisClient

	store, err := tierstore.NewStore(tierstore.StoreConfig{
		Queries: tierstore.PGQueries{Pool: pool},
		Cache:   tierstore.NewCache(redisClient, cfg.TierCacheTTL),
		Logger:  logger.With().Str("component", "tierstore").Logger(),
		Metrics: deps.PricingMetrics,
	})
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Store = store

	limiterStore, err := ratelimit.NewStore(redisClient, ratelimit.DefaultPrefix)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Limiter, err = ratelimit.New(cfg.RateLimit, limiterStore)
	if err != nil {
		deps.Close()
		return nil, err
	}

	deps.Cart, err = cart.NewService(cart.ServiceConfig{
		Source:      store,
		Engine:      deps.Engine,
		Logger:      logger.With().Str("component", "cart").Logger(),
		Metrics:     deps.PricingMetrics,
		MaxLines:    cfg.QuoteMaxLines,
		Concurrency: cfg.QuoteConcurrency,
	})
	if err != nil {
		deps.Close()
		return nil, err
	}
	return deps, nil
}

// NewPool opens a traced pgx pool and verifies connectivity.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "toko-tierprice"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// NewRedis opens a traced Redis client and verifies connectivity.
func NewRedis(ctx context.Context, redisURL string, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Close releases the database pool and Redis client.
func (d *Dependencies) Close() error {
	if d == nil {
		return nil
	}
	var err error
	if d.Redis != nil {
		err = d.Redis.Close()
	}
	if d.DB != nil {
		d.DB.Close()
	}
	return err
}
