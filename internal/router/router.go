package router

import (
	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter configures the middleware chain and application routes
func SetupRouter(cfg *config.Config, svc api.Services) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	api.RegisterRoutes(router, svc)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Uploaded images are served locally unless they live in a bucket
	if cfg.S3Bucket == "" && cfg.MediaDir != "" {
		router.Static(cfg.MediaURL, cfg.MediaDir)
	}

	return router
}
