package logger

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// RequestIDHeader is the header (and gRPC metadata key, lowercased) used to propagate request IDs
const RequestIDHeader = "X-Request-ID"

// NewRequestID returns the incoming ID when present, otherwise a fresh UUID
func NewRequestID(incoming string) string {
	if incoming != "" && len(incoming) <= 128 {
		return incoming
	}
	return uuid.NewString()
}

// RequestIDInterceptor is a gRPC interceptor that adds a request ID to the context
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		var incoming string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get("x-request-id"); len(values) > 0 {
				incoming = values[0]
			}
		}

		return handler(ContextWithRequestID(ctx, NewRequestID(incoming)), req)
	}
}
