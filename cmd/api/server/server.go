package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"user-rest-service/cmd/api/di"
	grpcadapter "user-rest-service/internal/adapter/grpc"
	"user-rest-service/internal/config"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// healthInterval is how often dependencies are probed for the gRPC health status.
const healthInterval = 10 * time.Second

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	Gin    *http.Server
	GRPC   *grpc.Server
	Health *grpcadapter.HealthService
}

// New creates a new server instance from the wired container
func New(cfg *config.Config, l *zap.Logger, c *di.Container) *Server {
	return &Server{
		Config: cfg,
		Logger: l,
		Gin:    SetupGinServer(c.GinHandler, c.RateLimiter, cfg.CORS.AllowedOrigins, httpAddress(cfg), l),
		GRPC:   SetupGRPC(c.Health),
		Health: c.Health,
	}
}

// Start listens on the configured ports and serves until the servers are stopped.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}

	httpLis, err := lc.Listen(ctx, "tcp", s.Gin.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Gin.Addr, err)
	}

	grpcLis, err := lc.Listen(ctx, "tcp", grpcAddress(s.Config))
	if err != nil {
		_ = httpLis.Close()
		return fmt.Errorf("failed to listen on %s: %w", grpcAddress(s.Config), err)
	}

	return s.Serve(ctx, httpLis, grpcLis)
}

// Serve runs the REST server, the gRPC server and the health prober on the given listeners.
// It returns once both servers have stopped, or as soon as one fails.
func (s *Server) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.Logger.Info("REST API running", zap.String("address", httpLis.Addr().String()))
		if err := s.Gin.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("REST server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.Logger.Info("gRPC server running", zap.String("address", grpcLis.Addr().String()))
		if err := s.GRPC.Serve(grpcLis); err != nil {
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.Health.Run(gctx, healthInterval)
		return nil
	})

	// graceful shutdown on cancel belongs to the caller; on a failure the other server is stopped here
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() == nil {
			s.GRPC.Stop()
			_ = s.Gin.Close()
		}
		return nil
	})

	return g.Wait()
}

func grpcAddress(cfg *config.Config) string {
	return ":" + cfg.App.GRPCPort
}

func httpAddress(cfg *config.Config) string {
	return ":" + cfg.App.HTTPPort
}
