package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"user-rest-service/cmd/api/infrastructure"
	"user-rest-service/internal/adapter/cache"
	"user-rest-service/internal/adapter/db/postgres"
	ginhandler "user-rest-service/internal/adapter/gin/handler"
	"user-rest-service/internal/adapter/gin/middleware"
	grpcadapter "user-rest-service/internal/adapter/grpc"
	"user-rest-service/internal/adapter/repository/cached"
	"user-rest-service/internal/config"
	"user-rest-service/internal/usecase/user"
	redisclient "user-rest-service/pkg/redis"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client // nil when Redis is disabled
	UserUC      user.Usecase
	RateLimiter *middleware.RateLimiter // nil when Redis is disabled
	GinHandler  *ginhandler.UserHandler
	Health      *grpcadapter.HealthService
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, err
	}

	dbRepo := postgres.NewUserRepoPG(db, l)
	if cfg.App.SeedData {
		if err := infrastructure.Seed(ctx, dbRepo, l); err != nil {
			_ = infrastructure.CloseDatabase(db)
			return nil, fmt.Errorf("failed to seed users: %w", err)
		}
	}

	var repo user.Repository = dbRepo
	var rateLimiter *middleware.RateLimiter
	checks := map[string]grpcadapter.PingFunc{"database": pingDB(db)}

	if rdb != nil {
		userCache := cache.NewRedisUserCache(
			rdb.Client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		repo = cached.NewUserRepository(dbRepo, userCache, l)

		rateLimiter = middleware.NewRateLimiter(
			rdb.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
				Enabled:           cfg.RateLimit.Enabled,
			},
			l,
		)
		checks["redis"] = rdb.Ping
	}

	userUC := user.New(repo, l)

	return &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
		UserUC:      userUC,
		RateLimiter: rateLimiter,
		GinHandler:  ginhandler.NewUserHandler(userUC, l),
		Health:      grpcadapter.NewHealthService(cfg.Logger.ServiceName, checks, l),
	}, nil
}

func pingDB(db *gorm.DB) grpcadapter.PingFunc {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
