package http

import (
	"maps"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	healthStatusOK        = "ok"
	healthStatusDegraded  = "degraded"
	healthStatusUnhealthy = "unhealthy"
)

type HealthChecker interface {
	Health() error
}

// Health lists what /healthz checks. A failing Required checker makes the
// service unhealthy. A failing Optional checker, keyed by name, only marks it
// degraded because the service keeps answering without it.
type Health struct {
	Required []HealthChecker
	Optional map[string]HealthChecker
}

func RegisterRoutes(router *gin.Engine, handler *Handler, health Health) {
	router.GET("/products", handler.SearchProducts)
	router.GET("/products/:id", handler.GetProduct)
	router.POST("/products/:id/favorite", handler.ToggleFavorite)
	router.POST("/listings", handler.SubmitListing)
	router.GET("/categories", handler.ListCategories)
	router.GET("/feed", handler.GetFeed)
	router.GET("/favorites", handler.ListFavorites)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", health.handle)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (h Health) handle(c *gin.Context) {
	for _, checker := range h.Required {
		if err := checker.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": healthStatusUnhealthy})
			return
		}
	}

	degraded := make([]string, 0)
	for _, name := range slices.Sorted(maps.Keys(h.Optional)) {
		if err := h.Optional[name].Health(); err != nil {
			degraded = append(degraded, name)
		}
	}
	if len(degraded) > 0 {
		c.JSON(http.StatusOK, gin.H{"status": healthStatusDegraded, "degraded": degraded})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": healthStatusOK})
}
