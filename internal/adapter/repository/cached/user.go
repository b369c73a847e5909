package cached

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-rest-service/internal/adapter/cache"
	domain "user-rest-service/internal/domain/user"
	"user-rest-service/internal/usecase/user"
	"user-rest-service/pkg/logger"
)

// loadTimeout bounds a shared database read once it is detached from the caller.
const loadTimeout = 5 * time.Second

// UserRepository implements user.Repository with caching support.
// It wraps a persistent repository and a cache implementation.
type UserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

// NewUserRepository creates a new cached repository.
// With a nil cache every call goes straight to dbRepo.
func NewUserRepository(dbRepo user.Repository, c cache.UserCache, log *zap.Logger) *UserRepository {
	return &UserRepository{
		dbRepo: dbRepo,
		cache:  c,
		log:    log,
	}
}

// FindByID retrieves a user by ID using the cache-aside pattern.
// Concurrent misses for the same ID share a single database read; each caller
// still gives up when its own ctx is done.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	if r.cache == nil {
		return r.dbRepo.FindByID(ctx, id)
	}

	log := logger.WithContext(ctx, r.log)

	cachedUser, err := r.cache.Get(ctx, id)
	if err != nil {
		log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
	} else if cachedUser != nil {
		return cachedUser, nil
	}

	ch := r.group.DoChan(strconv.FormatInt(id, 10), func() (any, error) {
		return r.load(ctx, id)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		u, _ := res.Val.(*domain.User)
		return u, nil
	}
}

// load reads id from the database and fills the cache unless the entry was
// evicted while the read was in flight.
func (r *UserRepository) load(parent context.Context, id int64) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), loadTimeout)
	defer cancel()

	log := logger.WithContext(ctx, r.log).With(zap.Int64("id", id))

	version, verErr := r.cache.Version(ctx, id)
	if verErr != nil {
		log.Warn("cache version unavailable, result will not be cached", zap.Error(verErr))
	}

	u, err := r.dbRepo.FindByID(ctx, id)
	if err != nil || u == nil || verErr != nil {
		return u, err
	}

	if _, err := r.cache.SetIfVersion(ctx, u, version); err != nil {
		log.Warn("failed to cache user", zap.Error(err))
	}
	return u, nil
}

// ExistsByID always asks the database.
func (r *UserRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return r.dbRepo.ExistsByID(ctx, id)
}

// FindByEmail delegates to the DB repository.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.dbRepo.FindByEmail(ctx, email)
}

// FindAll delegates to the DB repository.
func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	return r.dbRepo.FindAll(ctx)
}

// Save writes through to the DB repository and invalidates the cached entry.
func (r *UserRepository) Save(ctx context.Context, u *domain.User) (*domain.User, error) {
	saved, err := r.dbRepo.Save(ctx, u)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, saved.ID)
	return saved, nil
}

// DeleteByID deletes the user from DB and invalidates the cache.
func (r *UserRepository) DeleteByID(ctx context.Context, id int64) error {
	if err := r.dbRepo.DeleteByID(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, id)
	return nil
}

func (r *UserRepository) invalidate(ctx context.Context, id int64) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, id); err != nil {
		logger.WithContext(ctx, r.log).Warn("failed to invalidate cache", zap.Int64("id", id), zap.Error(err))
	}
}
