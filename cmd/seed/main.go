// Command seed generates a fake product catalog and writes it to the
// storefront's catalog file, and optionally to PostgreSQL.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository/file"
	"github.com/utafrali/storefront/internal/repository/postgres"
	"github.com/utafrali/storefront/migrations"
	pkgconfig "github.com/utafrali/storefront/pkg/config"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/logger"
)

const batchSize = 500

type seedConfig struct {
	Count    int    `env:"SEED_COUNT" envDefault:"120"`
	Seed     uint64 `env:"SEED_VALUE" envDefault:"42"`
	Output   string `env:"SEED_OUTPUT"`
	Postgres bool   `env:"SEED_POSTGRES" envDefault:"false"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	var seed seedConfig
	if err := pkgconfig.Load(&seed); err != nil {
		return err
	}
	if seed.Count < 1 {
		return fmt.Errorf("SEED_COUNT must be positive, got %d", seed.Count)
	}
	if seed.Output == "" {
		seed.Output = cfg.ProductFile
	}

	log := logger.New("storefront-seed", cfg.LogLevel)
	products := Generate(seed.Seed, seed.Count, time.Now())
	log.Info("generated products", slog.Int("count", len(products)), slog.Uint64("seed", seed.Seed))

	if err := file.Write(seed.Output, products); err != nil {
		return err
	}
	log.Info("catalog file written", slog.String("path", seed.Output))

	if !seed.Postgres {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	return seedPostgres(ctx, cfg, products, log)
}

func seedPostgres(ctx context.Context, cfg *config.Config, products []domain.Product, log *slog.Logger) error {
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL

	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	src := postgres.NewProductSource(pool, database.QueryTracer{System: "postgresql", Logger: log})
	for start := 0; start < len(products); start += batchSize {
		end := min(start+batchSize, len(products))
		if err := src.Upsert(ctx, products[start:end]); err != nil {
			return fmt.Errorf("insert products %d-%d: %w", start, end, err)
		}
		log.Info("inserted products", slog.Int("done", end), slog.Int("total", len(products)))
	}
	return nil
}
