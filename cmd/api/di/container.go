package di

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fitspace-backend/cmd/api/infrastructure"
	"fitspace-backend/internal/adapter/cache"
	"fitspace-backend/internal/adapter/db/postgres"
	ginhandler "fitspace-backend/internal/adapter/gin/handler"
	"fitspace-backend/internal/adapter/gin/middleware"
	ginrouter "fitspace-backend/internal/adapter/gin/router"
	"fitspace-backend/internal/adapter/repository/cached"
	"fitspace-backend/internal/config"
	"fitspace-backend/internal/usecase/avatar"
	"fitspace-backend/internal/usecase/user"
	"fitspace-backend/pkg/metrics"
	redisclient "fitspace-backend/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	Metrics     *metrics.Metrics
	UserUC      user.Usecase
	AvatarUC    avatar.Usecase
	RateLimiter *middleware.RateLimiter
	Router      *gin.Engine
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	connector, err := infrastructure.NewConnector(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database connector: %w", err)
	}

	db, err := infrastructure.NewDatabase(connector, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// An unresolved connection is retried on first use; /status reports it meanwhile
	if _, err := connector.Resolve(ctx); err != nil {
		l.Warn("database connection unresolved, serving degraded", zap.Error(err))
		if cfg.DB.AutoMigrate {
			l.Warn("skipping migrations until the database is reachable")
		}
	} else if cfg.DB.AutoMigrate {
		if err := infrastructure.MigrateDatabase(db, l); err != nil {
			_ = infrastructure.CloseDatabase(db)
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Redis only backs the cache and the rate limiter, so losing it is not fatal
	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		l.Warn("continuing without redis", zap.Error(err))
		rdb = nil
	}

	var m *metrics.Metrics
	if cfg.App.MetricsEnabled {
		m = metrics.New("fitspace")
	}

	// Initialize repositories; the user repository is cached when Redis is available
	var userRepo user.Repository = postgres.NewUserRepoPG(db, l)
	var rateLimiter *middleware.RateLimiter
	if rdb != nil {
		userCache := cache.NewRedisUserCache(
			rdb.Client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
			m,
		)
		userRepo = cached.NewCachedUserRepository(userRepo, userCache, l)

		rateLimiter = middleware.NewRateLimiter(
			rdb.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
				Enabled:           cfg.RateLimit.Enabled,
			},
			l,
			m,
		)
	}
	avatarRepo := postgres.NewAvatarRepoPG(db, l)

	// Initialize use cases
	userUC := user.New(userRepo, l, user.Limits{
		DefaultLimit:       cfg.Pagination.DefaultLimit,
		SearchDefaultLimit: cfg.Pagination.SearchDefaultLimit,
		MaxLimit:           cfg.Pagination.MaxLimit,
	})
	avatarUC := avatar.New(avatarRepo, userRepo, l)

	router := ginrouter.SetupRouter(ginrouter.Options{
		UserHandler:   ginhandler.NewUserHandler(userUC, l),
		AvatarHandler: ginhandler.NewAvatarHandler(avatarUC, l),
		StatusHandler: ginhandler.NewStatusHandler(
			postgres.NewHealthChecker(db),
			ginhandler.ServiceInfo{
				Name:        cfg.Logger.ServiceName,
				Version:     cfg.Logger.ServiceVersion,
				Environment: cfg.App.Environment,
			},
			time.Duration(cfg.DB.ConnectTimeoutSeconds)*time.Second,
			l,
		),
		RateLimiter: rateLimiter,
		Metrics:     m,
		Swagger:     cfg.App.SwaggerEnabled,
		ReleaseMode: cfg.App.Environment == "production",
		Log:         l,
	})

	return &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
		Metrics:     m,
		UserUC:      userUC,
		AvatarUC:    avatarUC,
		RateLimiter: rateLimiter,
		Router:      router,
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
