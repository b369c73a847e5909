package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-rest-service/internal/domain/user"
	"user-rest-service/pkg/logger"
)

// keyPrefix namespaces user entries in a shared Redis database.
const keyPrefix = "user-rest-service:user:"

// Hash fields of a cached user.
const (
	fieldName     = "name"
	fieldEmail    = "email"
	fieldPassword = "password"
)

// ErrCorruptEntry is returned when a cached hash lacks the fields of a user.
var ErrCorruptEntry = errors.New("corrupt cached user entry")

// versionGrace keeps eviction counters alive past the entry TTL, longer than any
// database load that could still try to fill the entry.
const versionGrace = time.Minute

// UserCache holds users by id in front of the database.
//
// Fills are versioned: a loader reads Version before going to the database and
// passes it to SetIfVersion, which drops the write if Delete ran in between.
type UserCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, id int64) (*domain.User, error)
	Version(ctx context.Context, id int64) (int64, error)
	// SetIfVersion reports whether the user was stored.
	SetIfVersion(ctx context.Context, user *domain.User, version int64) (bool, error)
	// Delete evicts the entry and invalidates fills started before it.
	Delete(ctx context.Context, id int64) error
}

// RedisUserCache keeps each user as a Redis hash with a TTL, next to an
// eviction counter per id.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Key returns the Redis key used for a user ID.
func Key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// VersionKey returns the Redis key of the eviction counter for a user ID.
func VersionKey(id int64) string {
	return keyPrefix + "version:" + strconv.FormatInt(id, 10)
}

func (c *RedisUserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.WithContext(ctx, c.log).With(zap.Int64("user_id", id))

	fields, err := c.client.HGetAll(ctx, Key(id)).Result()
	if err != nil {
		log.Error("failed to read cached user", zap.Error(err))
		return nil, fmt.Errorf("cache get %d: %w", id, err)
	}
	if len(fields) == 0 {
		log.Debug("cache miss")
		return nil, nil
	}

	name, okName := fields[fieldName]
	email, okEmail := fields[fieldEmail]
	if !okName || !okEmail {
		log.Warn("cached user is missing fields", zap.Int("fields", len(fields)))
		return nil, fmt.Errorf("cache get %d: %w", id, ErrCorruptEntry)
	}

	log.Debug("cache hit")
	return &domain.User{
		ID:       id,
		Name:     name,
		Email:    email,
		Password: fields[fieldPassword],
	}, nil
}

func (c *RedisUserCache) Version(ctx context.Context, id int64) (int64, error) {
	v, err := readVersion(ctx, c.client, id)
	if err != nil {
		return 0, fmt.Errorf("cache version %d: %w", id, err)
	}
	return v, nil
}

// getter is satisfied by both *redis.Client and the *redis.Tx of a WATCH.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readVersion(ctx context.Context, cmd getter, id int64) (int64, error) {
	v, err := cmd.Get(ctx, VersionKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// SetIfVersion replaces the cached hash and its TTL in one MULTI/EXEC, under a
// WATCH on the eviction counter.
func (c *RedisUserCache) SetIfVersion(ctx context.Context, user *domain.User, version int64) (bool, error) {
	if user == nil {
		return false, errors.New("cannot cache nil user")
	}

	log := logger.WithContext(ctx, c.log).With(zap.Int64("user_id", user.ID))
	key := Key(user.ID)
	stored := false

	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readVersion(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		if current != version {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key,
				fieldName, user.Name,
				fieldEmail, user.Email,
				fieldPassword, user.Password,
			)
			pipe.Expire(ctx, key, c.ttl)
			return nil
		})
		stored = err == nil
		return err
	}, VersionKey(user.ID))

	if errors.Is(err, redis.TxFailedErr) {
		err = nil
	}
	if err != nil {
		log.Error("failed to cache user", zap.Error(err))
		return false, fmt.Errorf("cache set %d: %w", user.ID, err)
	}
	if !stored {
		log.Debug("cache fill skipped, user evicted during load")
	}
	return stored, nil
}

func (c *RedisUserCache) Delete(ctx context.Context, id int64) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, VersionKey(id))
		pipe.Expire(ctx, VersionKey(id), c.ttl+versionGrace)
		pipe.Del(ctx, Key(id))
		return nil
	})
	if err != nil {
		logger.WithContext(ctx, c.log).Error("failed to evict cached user", zap.Int64("user_id", id), zap.Error(err))
		return fmt.Errorf("cache delete %d: %w", id, err)
	}
	return nil
}
