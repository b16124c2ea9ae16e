package delivery

import (
	"margemreal/internal/delivery/middleware"
	"margemreal/pkg/config"
	"margemreal/pkg/logger"
	"margemreal/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type HTTPRouter struct {
	handlers *HTTPHandlers
	config   *config.Config
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewHTTPRouter(handlers *HTTPHandlers, config *config.Config, logger *logger.Logger, metrics *metrics.Metrics) *HTTPRouter {
	return &HTTPRouter{
		handlers: handlers,
		config:   config,
		logger:   logger,
		metrics:  metrics,
	}
}

func (r *HTTPRouter) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.Recovery(r.logger))
	router.Use(middleware.RateLimit(r.config.HTTP.RateLimitPerSecond, r.config.HTTP.RateLimitBurst))
	router.Use(middleware.Metrics(r.metrics))
	router.Use(middleware.Timeout(r.config.HTTP.RequestTimeout))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}

	router.Use(cors.New(corsConfig))

	// Health endpoint
	router.GET("/health", r.handlers.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/", r.handlers.GetAPIInfo)
		v1.GET("", r.handlers.GetAPIInfo)

		// Auth endpoints
		auth := v1.Group("/auth")
		{
			auth.POST("/login", r.handlers.Login)
			auth.POST("/logout", r.handlers.Logout)
			auth.GET("/me", r.handlers.CurrentUser)
		}

		// Calculator endpoints
		metricsGroup := v1.Group("/metrics")
		{
			metricsGroup.POST("/calculate", r.handlers.Calculate)
			metricsGroup.GET("/example", r.handlers.GetExample)
		}

		// Analysis endpoints
		analyses := v1.Group("/analyses")
		{
			analyses.POST("", r.handlers.SaveAnalysis)
			analyses.GET("", r.handlers.ListAnalyses)
			analyses.GET("/export", r.handlers.ExportCSV)
			analyses.DELETE("/:id", r.handlers.DeleteAnalysis)
		}
	}

	// Prometheus metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler())

	return router
}
