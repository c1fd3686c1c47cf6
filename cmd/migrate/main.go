// Command migrate applies or reverts the embedded schema migrations against
// the database described by the application configuration.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"fitspace-backend/cmd/api/infrastructure"
	"fitspace-backend/internal/adapter/db/migrations"
	"fitspace-backend/internal/config"
	"fitspace-backend/pkg/logger"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	configPath := flag.String("config", envOr("CONFIG_PATH", "."), "directory containing app.env")
	timeout := flag.Duration("timeout", time.Minute, "timeout for resolving the connection")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	l, err := logger.NewWithConfig(logger.Config{
		Level:          cfg.Logger.Level,
		Format:         cfg.Logger.Format,
		OutputPath:     cfg.Logger.OutputPath,
		ServiceName:    cfg.Logger.ServiceName + "-migrate",
		ServiceVersion: cfg.Logger.ServiceVersion,
		Environment:    cfg.App.Environment,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = l.Sync() }()

	if err := run(cfg, migrations.Direction(*direction), *timeout, l); err != nil {
		l.Fatal("migration failed", zap.Error(err))
	}
}

func run(cfg *config.Config, dir migrations.Direction, timeout time.Duration, l *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	connector, err := infrastructure.NewConnector(ctx, cfg, l)
	if err != nil {
		return err
	}
	if _, err := connector.Resolve(ctx); err != nil {
		return err
	}

	db, err := infrastructure.NewDatabase(connector, cfg, l)
	if err != nil {
		return err
	}
	defer func() { _ = infrastructure.CloseDatabase(db) }()

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if err := migrations.Run(sqlDB, dir, l); err != nil {
		return err
	}
	l.Info("migration command completed", zap.String("direction", string(dir)))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
