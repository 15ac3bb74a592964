// Command storefront serves the catalog, cart, wishlist and notification API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/utafrali/storefront/internal/app"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/pkg/logger"
)

func main() {
	checkOnly := flag.Bool("check", false, "validate configuration and exit")
	showVersion := flag.Bool("version", false, "print build information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version())
		return
	}

	if err := run(*checkOnly); err != nil {
		slog.Error("storefront exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(checkOnly bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if checkOnly {
		fmt.Fprintln(os.Stdout, "configuration ok")
		return nil
	}

	log := logger.New("storefront", cfg.LogLevel)
	log.Info("starting",
		slog.String("version", version()),
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.HTTPPort),
		slog.String("snapshot_backend", cfg.SnapshotBackend),
		slog.String("product_source", cfg.ProductSource),
		slog.Bool("kafka", cfg.KafkaEnabled),
	)

	a, err := app.NewApp(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		return fmt.Errorf("run application: %w", err)
	}
	log.Info("stopped")
	return nil
}

func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "devel"
	}
	return info.Main.Version
}
