package router

import (
	"net/http"

	"user-rest-service/api"
	"user-rest-service/internal/adapter/gin/handler"
	"user-rest-service/internal/adapter/gin/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "user-rest-service"

// SetupRouter configures and returns a Gin router with all routes and middleware.
// rateLimiter may be nil.
func SetupRouter(
	userHandler *handler.UserHandler,
	rateLimiter *middleware.RateLimiter,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.ErrorHandler(log))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": ServiceName,
		})
	})

	// API documentation
	router.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", api.OpenAPI)
	})
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/openapi.json"))))

	users := router.Group("/user")
	users.Use(rateLimiter.Middleware())
	{
		users.GET("", userHandler.FindAll)
		users.POST("", userHandler.Create)
		users.GET("/:id", userHandler.FindByID)
		users.PUT("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
	}

	return router
}

// WithCORS wraps the router so browsers on allowedOrigins can call the API.
func WithCORS(h http.Handler, allowedOrigins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Location", "X-Request-ID"},
	}).Handler(h)
}
