package server

import (
	grpcadapter "user-rest-service/internal/adapter/grpc"
	"user-rest-service/pkg/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

// SetupGRPC creates the gRPC server that carries the health service.
func SetupGRPC(health *grpcadapter.HealthService) *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
		),
	)
	health.Register(grpcServer)
	reflection.Register(grpcServer)

	return grpcServer
}
