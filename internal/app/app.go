package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/promotion"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/file"
	"github.com/utafrali/storefront/internal/repository/memory"
	"github.com/utafrali/storefront/internal/repository/postgres"
	"github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/repository/rest"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/migrations"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *goredis.Client
	producer       *pkgkafka.Producer
	sessions       *session.Registry
	limiter        *middleware.RateLimiter
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// initTracer is replaced in tests.
var initTracer = tracing.InitTracer

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := initTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
		IgnoredPaths:   tracing.DefaultIgnoredPaths,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	healthHandler := health.NewHandler()

	if err := a.connect(ctx, reg); err != nil {
		a.abort()
		return nil, err
	}

	snapshots, err := a.snapshotStore()
	if err != nil {
		a.abort()
		return nil, err
	}
	products, err := a.productSource(reg)
	if err != nil {
		a.abort()
		return nil, err
	}
	for name, backend := range map[string]any{"snapshots": snapshots, "products": products} {
		if p, ok := backend.(repository.Pinger); ok {
			healthHandler.Register(name, p.Ping)
		}
	}

	// Session events go to Kafka only when enabled.
	var publisher event.Publisher = event.Discard{}
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger, pkgkafka.WithMetrics(reg))
		publisher = event.NewProducer(a.producer, logger)
		healthHandler.Register("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	promos, err := promotion.LoadFile(cfg.PromotionsFile, cfg.DealsLimit)
	if err != nil {
		a.abort()
		return nil, fmt.Errorf("load promotions: %w", err)
	}

	// Build the dependency graph.
	engine := catalog.NewEngine(
		catalog.WithCanonical(canonical(cfg)),
		catalog.WithPageSize(cfg.PageSize),
		catalog.WithCollation(cfg.Language()),
	)
	a.sessions = session.NewRegistry(snapshots, session.Config{
		IdleTTL:       cfg.SessionIdleTTL,
		SweepInterval: cfg.SessionSweep,
		ToastTTL:      cfg.ToastTTL,
		ToastLimit:    cfg.ToastLimit,
	}, logger, session.WithMetrics(reg))
	a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 0, logger)

	checkoutCfg := service.DefaultCheckoutConfig()
	checkoutCfg.Currency = cfg.CurrencyUnit()
	checkoutCfg.EstimatedTax = decimal.NewFromFloat(cfg.EstimatedTax)
	checkoutCfg.ExpressShipping = decimal.NewFromFloat(cfg.ExpressShipping)

	svc := handler.Services{
		Catalog:       service.NewCatalogService(products, engine, promos, logger, service.WithCatalogMetrics(reg)),
		Cart:          service.NewCartService(a.sessions, publisher, logger),
		Wishlist:      service.NewWishlistService(a.sessions, publisher, logger),
		Notifications: service.NewNotificationService(a.sessions),
		Checkout:      service.NewCheckoutService(a.sessions, checkoutCfg),
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins

	// HTTP router.
	router := handler.NewRouter(svc, handler.RouterConfig{
		ServiceName:        serviceName,
		Health:             healthHandler,
		Metrics:            middleware.NewHTTPMetrics(reg, serviceName),
		Gatherer:           reg,
		RateLimiter:        a.limiter,
		CORS:               cors,
		PprofCIDRs:         cfg.PprofAllowedCIDRs,
		ProductCacheMaxAge: cfg.ProductCacheMaxAge,
		Logger:             logger,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// connect opens the PostgreSQL pool and Redis client required by the
// configured backends.
func (a *App) connect(ctx context.Context, reg prometheus.Registerer) error {
	cfg := a.cfg

	if cfg.SnapshotBackend == config.SnapshotPostgres || cfg.ProductSource == config.SourcePostgres {
		pgCfg := database.DefaultPostgresConfig()
		pgCfg.Host = cfg.PostgresHost
		pgCfg.Port = cfg.PostgresPort
		pgCfg.User = cfg.PostgresUser
		pgCfg.Password = cfg.PostgresPass
		pgCfg.DBName = cfg.PostgresDB
		pgCfg.SSLMode = cfg.PostgresSSL

		pool, err := database.NewPostgresPool(ctx, &pgCfg, a.logger)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		a.pool = pool
		a.logger.Info("connected to PostgreSQL",
			slog.String("host", cfg.PostgresHost),
			slog.Int("port", cfg.PostgresPort),
			slog.String("database", cfg.PostgresDB),
		)
		reg.MustRegister(database.NewPoolStatsCollector(pool, serviceName))

		// Run database migrations.
		if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		a.logger.Info("database migrations completed")
	}

	if cfg.SnapshotBackend == config.SnapshotRedis {
		redisCfg := database.DefaultRedisConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.Host = cfg.RedisHost
		redisCfg.Port = cfg.RedisPort
		redisCfg.Password = cfg.RedisPassword
		redisCfg.DB = cfg.RedisDB
		redisCfg.PoolSize = cfg.RedisPoolSize
		client, err := database.NewRedisClient(ctx, redisCfg, a.logger)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		a.redis = client
		a.logger.Info("connected to Redis", slog.String("host", cfg.RedisHost), slog.Int("port", cfg.RedisPort))
	}
	return nil
}

func (a *App) queryTracer() database.QueryTracer {
	return database.QueryTracer{System: "postgresql", SlowThreshold: 200 * time.Millisecond, Logger: a.logger}
}

func (a *App) snapshotStore() (repository.SnapshotStore, error) {
	switch a.cfg.SnapshotBackend {
	case config.SnapshotMemory:
		a.logger.Warn("session snapshots are kept in memory and lost on restart")
		return memory.NewSnapshotStore(), nil
	case config.SnapshotRedis:
		return redis.NewSnapshotStore(a.redis, a.cfg.SnapshotTTL), nil
	case config.SnapshotPostgres:
		return postgres.NewSnapshotStore(a.pool, a.queryTracer()), nil
	}
	return nil, fmt.Errorf("unknown snapshot backend %q", a.cfg.SnapshotBackend)
}

func (a *App) productSource(reg prometheus.Registerer) (repository.ProductSource, error) {
	cfg := a.cfg
	switch cfg.ProductSource {
	case config.SourceFile:
		return file.NewProductSource(cfg.ProductFile), nil
	case config.SourceREST:
		src, err := rest.NewProductSource(rest.Config{
			BaseURL:    cfg.ProductAPIURL,
			APIKey:     cfg.ProductAPIKey,
			Table:      cfg.ProductAPITable,
			Timeout:    cfg.ProductTimeout,
			Registerer: reg,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("product api: %w", err)
		}
		return src, nil
	case config.SourcePostgres:
		return postgres.NewProductSource(a.pool, a.queryTracer()), nil
	}
	return nil, fmt.Errorf("unknown product source %q", cfg.ProductSource)
}

// canonical overrides the built-in facet lists with any configured ones.
func canonical(cfg *config.Config) catalog.Canonical {
	c := catalog.DefaultCanonical()
	if len(cfg.Brands) > 0 {
		c.Brands = cfg.Brands
	}
	if len(cfg.BatteryOptions) > 0 {
		c.Battery = cfg.BatteryOptions
	}
	if len(cfg.SizeOptions) > 0 {
		c.Sizes = cfg.SizeOptions
	}
	return c
}

// Handler returns the HTTP handler serving all routes.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and background janitors, and blocks until the
// context is canceled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error { return a.sessions.Run(gCtx) })
	g.Go(func() error { return a.limiter.Run(gCtx) })
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutdown signal received")
		return a.Shutdown()
	})

	return g.Wait()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer, Redis client and PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests.
	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Flush pending spans after HTTP drain so in-flight request spans are captured.
	tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer tracerCancel()
	if err := a.tracerShutdown(tracerCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 3. Close backing connections.
	errs = append(errs, a.release())

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// abort undoes a partially built App: the tracer is flushed and stopped,
// then any opened connections are closed.
func (a *App) abort() {
	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Warn("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
	_ = a.release()
}

// release closes the Kafka producer, Redis client and PostgreSQL pool,
// whichever were opened.
func (a *App) release() error {
	var errs []error
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return errors.Join(errs...)
}
