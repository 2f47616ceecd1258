package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/api/handlers"
	"github.com/freshfold/laundryapi/internal/api/middleware"
	"github.com/freshfold/laundryapi/internal/cache"
	"github.com/freshfold/laundryapi/internal/config"
	"github.com/freshfold/laundryapi/internal/domain"
	"github.com/freshfold/laundryapi/internal/repository"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, repos *repository.Repositories, trackingCache cache.Cache, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Health check endpoint (no auth required)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "laundry-api",
		})
	})

	// Root endpoint
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Laundry Booking API",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	// Payment provider callbacks (shared-secret auth, not API keys)
	router.POST("/webhooks/payment", handlers.HandlePaymentWebhook(cfg, repos, logger))

	// API v1 routes (authenticated)
	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(repos, logger))
	{
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.IdempotencyMiddleware(repos, logger))
		{
			bookings.POST("", handlers.HandleCreateBooking(cfg, repos, logger))
			bookings.GET("", handlers.HandleListBookings(repos, logger))
			bookings.GET("/:id", handlers.HandleGetBooking(repos, logger))
			bookings.GET("/:id/track", handlers.HandleTrackBooking(repos, trackingCache, logger))
			bookings.POST("/:id/cancel", handlers.HandleCancelBooking(repos, trackingCache, logger))
		}

		rider := v1.Group("/rider")
		rider.Use(middleware.RequireRole(domain.RoleRider))
		{
			rider.GET("/jobs", handlers.HandleListJobs(repos, logger))
			rider.POST("/jobs/:id/status", handlers.HandleUpdateJobStatus(repos, trackingCache, logger))
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.RequireRole(domain.RoleAdmin))
		{
			admin.GET("/bookings", handlers.HandleAdminListBookings(repos, logger))
			admin.POST("/bookings/:id/assign", handlers.HandleAssignRider(repos, logger))
			admin.POST("/bookings/:id/status", handlers.HandleAdminUpdateStatus(repos, trackingCache, logger))
			admin.GET("/riders", handlers.HandleAdminListRiders(repos, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests using zap
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// customRecovery recovers from panics and logs them
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "internal server error",
		})
	})
}
