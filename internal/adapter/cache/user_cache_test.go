package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-rest-service/internal/domain/user"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func TestRedisUserCache_SetGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	user := &domain.User{ID: 1, Name: "Adison", Email: "adison@test.com", Password: "123"}
	stored, err := cache.SetIfVersion(ctx, user, 0)
	require.NoError(t, err)
	assert.True(t, stored)

	assert.True(t, mr.Exists(Key(1)))
	assert.Equal(t, 5*time.Minute, mr.TTL(Key(1)))
	assert.Equal(t, "adison@test.com", mr.HGet(Key(1), "email"))

	got, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestRedisUserCache_Get_Miss(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))

	got, err := cache.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisUserCache_Get_Corrupted(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))

	mr.HSet(Key(3), "name", "Adison")

	got, err := cache.Get(context.Background(), 3)
	assert.ErrorIs(t, err, ErrCorruptEntry)
	assert.Nil(t, got)

	// a key of the wrong type is a read error, not a miss
	require.NoError(t, mr.Set(Key(4), "plain string"))
	got, err = cache.Get(context.Background(), 4)
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestRedisUserCache_Set_NilUser(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))

	stored, err := cache.SetIfVersion(context.Background(), nil, 0)
	assert.EqualError(t, err, "cannot cache nil user")
	assert.False(t, stored)
}

func TestRedisUserCache_Expiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Second, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := cache.SetIfVersion(ctx, &domain.User{ID: 5, Name: "Lorival", Email: "lorival@test.com"}, 0)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	got, err := cache.Get(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisUserCache_Delete(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := cache.SetIfVersion(ctx, &domain.User{ID: 7, Name: "Adison", Email: "adison@test.com"}, 0)
	require.NoError(t, err)
	require.NoError(t, cache.Delete(ctx, 7))
	assert.False(t, mr.Exists(Key(7)))

	v, err := cache.Version(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	assert.Equal(t, time.Minute+versionGrace, mr.TTL(VersionKey(7)))

	// deleting an absent key is fine
	assert.NoError(t, cache.Delete(ctx, 7))
	v, err = cache.Version(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestRedisUserCache_Version_Unset(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))

	v, err := cache.Version(context.Background(), 11)
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.False(t, mr.Exists(VersionKey(11)))
}

func TestRedisUserCache_SetIfVersion_SkipsAfterDelete(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	// a loader reads the version, then the user is deleted before it writes
	v, err := cache.Version(ctx, 8)
	require.NoError(t, err)
	require.NoError(t, cache.Delete(ctx, 8))

	stored, err := cache.SetIfVersion(ctx, &domain.User{ID: 8, Name: "Ghost", Email: "ghost@test.com"}, v)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, mr.Exists(Key(8)))

	// a load that starts after the delete fills normally
	v, err = cache.Version(ctx, 8)
	require.NoError(t, err)
	stored, err = cache.SetIfVersion(ctx, &domain.User{ID: 8, Name: "Back", Email: "back@test.com"}, v)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.Equal(t, "Back", mr.HGet(Key(8), "name"))
}

func TestRedisUserCache_ConnectionError(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))
	mr.Close()

	_, err := cache.Get(context.Background(), 1)
	assert.Error(t, err)

	_, err = cache.Version(context.Background(), 1)
	assert.Error(t, err)
}

func TestRedisUserCache_SetReplacesEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	mr.HSet(Key(9), "stale", "x")
	stored, err := cache.SetIfVersion(ctx, &domain.User{ID: 9, Name: "Maria", Email: "maria@test.com"}, 0)
	require.NoError(t, err)
	require.True(t, stored)

	fields, err := mr.HKeys(Key(9))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"name", "email", "password"}, fields)
}
