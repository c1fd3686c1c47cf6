package router

import (
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "fitspace-backend/docs" // registers the swagger document
	"fitspace-backend/internal/adapter/gin/handler"
	"fitspace-backend/internal/adapter/gin/middleware"
	"fitspace-backend/pkg/logger"
	"fitspace-backend/pkg/metrics"
)

// Options are the pieces SetupRouter wires together. RateLimiter and Metrics
// may be nil.
type Options struct {
	UserHandler   *handler.UserHandler
	AvatarHandler *handler.AvatarHandler
	StatusHandler *handler.StatusHandler
	RateLimiter   *middleware.RateLimiter
	Metrics       *metrics.Metrics
	Swagger       bool
	ReleaseMode   bool
	Log           *zap.Logger
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(opts Options) *gin.Engine {
	if opts.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.ContextWithFallback = true

	// Global middleware; they also run for unmatched routes
	router.Use(middleware.Recovery(opts.Log))
	router.Use(logger.RequestID())
	router.Use(middleware.Logger(opts.Log))
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics(opts.Metrics))

	router.NoRoute(middleware.NotFound)

	router.GET("/status", opts.StatusHandler.Status)
	router.GET("/status/db", opts.StatusHandler.DatabaseStatus)

	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	if opts.Swagger {
		router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(opts.RateLimiter.Middleware())
	{
		users := v1.Group("/users")
		{
			users.POST("", opts.UserHandler.CreateUser)
			users.GET("", opts.UserHandler.ListUsers)
			users.GET("/search", opts.UserHandler.SearchUsers)
			users.GET("/:id", opts.UserHandler.GetUser)
			users.PUT("/:id", opts.UserHandler.UpdateUser)
			users.DELETE("/:id", opts.UserHandler.DeleteUser)

			avatars := users.Group("/:id/avatars")
			{
				avatars.GET("", opts.AvatarHandler.ListAvatars)
				avatars.POST("", opts.AvatarHandler.CreateAvatar)
				avatars.GET("/:avatar_id", opts.AvatarHandler.GetAvatar)
				avatars.PUT("/:avatar_id", opts.AvatarHandler.UpdateAvatar)
				avatars.PATCH("/:avatar_id", opts.AvatarHandler.UpdateAvatar)
				avatars.DELETE("/:avatar_id", opts.AvatarHandler.DeleteAvatar)
			}
		}
	}

	return router
}
