package infrastructure

import (
	"context"
	"fmt"

	"user-rest-service/internal/config"
	redisclient "user-rest-service/pkg/redis"

	"go.uber.org/zap"
)

// NewRedisClient connects to Redis when it is enabled. It returns nil, nil otherwise
// so callers can run without a cache or rate limiter.
func NewRedisClient(ctx context.Context, cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	if !cfg.Redis.Enabled {
		l.Info("redis disabled, user cache and rate limiting are off")
		return nil, nil
	}

	rdb, err := redisclient.Connect(ctx, redisclient.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		MinIdleConn: cfg.Redis.MinIdleConn,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	return rdb, nil
}
