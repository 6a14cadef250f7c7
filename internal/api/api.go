package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/restock-engine/internal/api/handlers"
	"github.com/andresuchdata/restock-engine/internal/api/middleware"
	"github.com/andresuchdata/restock-engine/internal/metrics"
	"github.com/andresuchdata/restock-engine/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	RestockService *service.RestockService
	Metrics        *metrics.Metrics
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	if services != nil && services.Metrics != nil {
		router.Use(metrics.Middleware(services.Metrics))
	}

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services == nil {
		return router
	}

	if services.Metrics != nil {
		router.GET("/metrics", metrics.Endpoint(services.Metrics))
	}

	if services.RestockService != nil {
		restockHandler := handlers.NewRestockHandler(services.RestockService)
		restockGroup := router.Group("/api/v1/restock")
		{
			restockGroup.POST("/sales", restockHandler.AnalyzeSales)
			restockGroup.POST("/levels", restockHandler.AnalyzeLevels)
			restockGroup.POST("/analyze/:mode", restockHandler.Analyze)
			restockGroup.POST("/crosscheck", restockHandler.CrossCheck)
			restockGroup.POST("/shelf-life", restockHandler.ShelfLife)
			restockGroup.GET("/rules", restockHandler.GetRules)
			restockGroup.DELETE("/cache", restockHandler.InvalidateCache)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
