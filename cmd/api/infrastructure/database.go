package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fitspace-backend/internal/adapter/db/connection"
	"fitspace-backend/internal/adapter/db/migrations"
	"fitspace-backend/internal/adapter/secrets"
	"fitspace-backend/internal/config"
	"fitspace-backend/pkg/logger"
)

// NewConnector builds the connector that resolves connection parameters on
// first use. The secret store client is only created when explicit
// credentials are incomplete; creating it makes no network calls.
func NewConnector(ctx context.Context, cfg *config.Config, l *zap.Logger) (*connection.Connector, error) {
	var fetcher connection.SecretFetcher
	if !cfg.DB.HasExplicitCredentials() && cfg.DB.SecretARN != "" {
		client, err := secrets.NewFromEnvironment(ctx,
			cfg.AWS.Region,
			time.Duration(cfg.AWS.SecretsTimeoutSeconds)*time.Second,
			l,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create secrets client: %w", err)
		}
		fetcher = client
	}

	return connection.NewConnector(connection.NewResolver(cfg.DB, fetcher, l), l), nil
}

// NewDatabase creates the GORM handle on top of connector. No connection is
// made until the first query, so neither an unreachable database nor an
// unreachable secret store prevents startup.
func NewDatabase(connector *connection.Connector, cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	gormLogger := logger.NewGormLogger(l, cfg.Logger.SlowQuerySeconds, cfg.Logger.Level)

	sqlDB := sql.OpenDB(connector)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DB.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DB.ConnMaxIdleTime) * time.Second)

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               gormLogger,
		TranslateError:       true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	l.Info("database configured",
		zap.Int("max_open_conns", cfg.DB.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.DB.MaxIdleConns),
		zap.Int("conn_max_lifetime_seconds", cfg.DB.ConnMaxLifetime),
		zap.Int("conn_max_idle_time_seconds", cfg.DB.ConnMaxIdleTime),
	)

	return db, nil
}

// MigrateDatabase applies all pending up migrations.
func MigrateDatabase(db *gorm.DB, l *zap.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return migrations.Run(sqlDB, migrations.Up, l)
}

// CloseDatabase closes the database connection
func CloseDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
