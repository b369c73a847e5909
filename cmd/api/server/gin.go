package server

import (
	"net/http"
	"time"

	ginhandler "user-rest-service/internal/adapter/gin/handler"
	"user-rest-service/internal/adapter/gin/middleware"
	ginrouter "user-rest-service/internal/adapter/gin/router"

	"go.uber.org/zap"
)

// SetupGinServer creates the REST API server: the gin router behind the CORS handler.
func SetupGinServer(
	handler *ginhandler.UserHandler,
	rateLimiter *middleware.RateLimiter,
	allowedOrigins []string,
	addr string,
	l *zap.Logger,
) *http.Server {
	router := ginrouter.SetupRouter(handler, rateLimiter, l)

	l.Info("REST API configured",
		zap.String("address", addr),
		zap.Strings("cors_origins", allowedOrigins),
	)

	return &http.Server{
		Addr:              addr,
		Handler:           ginrouter.WithCORS(router, allowedOrigins),
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
