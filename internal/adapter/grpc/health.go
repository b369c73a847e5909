package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// PingFunc reports whether a dependency is reachable.
type PingFunc func(ctx context.Context) error

// HealthService publishes grpc.health.v1.Health for the service and keeps the
// status in line with its dependencies.
type HealthService struct {
	srv     *health.Server
	service string
	checks  map[string]PingFunc
	timeout time.Duration
	log     *zap.Logger
}

// NewHealthService creates a health service reporting under service and the
// empty (overall) name. Statuses start as NOT_SERVING until the first Probe.
func NewHealthService(service string, checks map[string]PingFunc, log *zap.Logger) *HealthService {
	h := &HealthService{
		srv:     health.NewServer(),
		service: service,
		checks:  checks,
		timeout: 2 * time.Second,
		log:     log,
	}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Register attaches the health service to s.
func (h *HealthService) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.srv)
}

// Probe pings every dependency once and publishes the result.
func (h *HealthService) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	for name, ping := range h.checks {
		pctx, cancel := context.WithTimeout(ctx, h.timeout)
		err := ping(pctx)
		cancel()
		if err != nil {
			h.log.Warn("dependency unhealthy", zap.String("dependency", name), zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.set(status)
	return status
}

// Run probes immediately and then every interval until ctx is done.
func (h *HealthService) Run(ctx context.Context, interval time.Duration) {
	h.Probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}

// Shutdown marks everything NOT_SERVING and ignores later updates.
func (h *HealthService) Shutdown() {
	h.srv.Shutdown()
}

func (h *HealthService) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.srv.SetServingStatus("", status)
	h.srv.SetServingStatus(h.service, status)
}
