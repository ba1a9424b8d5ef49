package api

import (
	"net/http"

	"alcyxob/exercise-resolver/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the resolver's HTTP surface.
func SetupRoutes(router *gin.Engine, resolverService service.ResolverService) {
	resolverHandler := NewResolverHandler(resolverService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		// POST /api/v1/resolve - route a free-text name to an outcome
		apiV1.POST("/resolve", resolverHandler.Resolve)

		exerciseGroup := apiV1.Group("/exercises")
		{
			exerciseGroup.GET("/:id", resolverHandler.GetExercise)
			// Called by the logging pipeline after the user confirms a match.
			exerciseGroup.POST("/:id/usage", resolverHandler.RecordUsage)
		}
	}
}
