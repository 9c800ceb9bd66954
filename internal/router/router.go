package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/platefeed/backend/internal/api"
	"github.com/platefeed/backend/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth       *api.AuthHandler
	Users      *api.UserHandler
	Ingredient *api.IngredientHandler
	Recipes    *api.RecipeHandler
	ShortLinks *api.ShortLinkHandler
	MediaDir   string
}

// SetupRouter configures the application routes.
func SetupRouter(h Handlers, logger *zap.SugaredLogger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if h.MediaDir != "" {
		router.Static("/media", h.MediaDir)
	}

	h.ShortLinks.RegisterRoutes(router)

	v1 := router.Group("/api/v1")
	h.Auth.RegisterRoutes(v1)
	h.Users.RegisterRoutes(v1)
	h.Ingredient.RegisterRoutes(v1)
	h.Recipes.RegisterRoutes(v1)

	return router
}
