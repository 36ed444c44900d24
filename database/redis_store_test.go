package database

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queueapp/models"
)

// setupRedisStore needs a live server at REDIS_ADDR. Every test gets its own
// key prefix.
func setupRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	store := NewRedisStore(client, "queueapp-test-"+uuid.NewString())
	require.NoError(t, store.Ping(context.Background()))
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, store.prefix+":*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
	})
	return store
}

func TestRedisStore_Keys(t *testing.T) {
	store := NewRedisStore(nil, "")
	assert.Equal(t, "queueapp:restaurant:r1", store.restaurantKey("r1"))
	assert.Equal(t, "queueapp:restaurants", store.restaurantsKey())
	assert.Equal(t, "queueapp:archive:r1_2026-02-10_part1", store.partKey("r1_2026-02-10_part1"))
	assert.Equal(t, "queueapp:archives:r1", store.partsIndexKey("r1"))
}

func TestRedisStore_CreateGetList(t *testing.T) {
	ctx := context.Background()
	store := setupRedisStore(t)

	r := newRestaurant("Spice Garden")
	r.Queue = append(r.Queue, customer("A-101"))
	require.NoError(t, store.CreateRestaurant(ctx, r))
	assert.Error(t, store.CreateRestaurant(ctx, r))

	got, err := store.GetRestaurant(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spice Garden", got.Name)
	require.Len(t, got.Queue, 1)

	_, err = store.GetRestaurant(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)

	list, err := store.ListRestaurants(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRedisStore_UpdateAndParts(t *testing.T) {
	ctx := context.Background()
	store := setupRedisStore(t)
	r := newRestaurant("Spice Garden")
	r.Queue = append(r.Queue, customer("A-101"))
	require.NoError(t, store.CreateRestaurant(ctx, r))

	_, err := store.UpdateRestaurant(ctx, r.ID, func(r *models.Restaurant) ([]models.ArchivePart, error) {
		r.ResetQueue()
		r.LastCleanupDate = "2026-02-10"
		return []models.ArchivePart{part(r.ID, "2026-02-10", 1, 1)}, nil
	})
	require.NoError(t, err)

	got, err := store.GetRestaurant(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Queue)
	assert.Equal(t, "2026-02-10", got.LastCleanupDate)

	parts, err := store.ArchiveParts(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "A-1", parts[0].Customers[0].QueueNumber)

	boom := errors.New("boom")
	_, err = store.UpdateRestaurant(ctx, r.ID, func(*models.Restaurant) ([]models.ArchivePart, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestRedisStore_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	store := setupRedisStore(t)
	store.MaxRetries = 100
	r := newRestaurant("Spice Garden")
	require.NoError(t, store.CreateRestaurant(ctx, r))

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.UpdateRestaurant(ctx, r.ID, func(r *models.Restaurant) ([]models.ArchivePart, error) {
				usage := r.UsageData()
				usage.CustomersThisMonth++
				r.SetUsage(usage)
				return nil, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.GetRestaurant(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, writers, got.UsageData().CustomersThisMonth)
}

func TestRedisStore_PutSnapshot(t *testing.T) {
	ctx := context.Background()
	store := setupRedisStore(t)
	r := newRestaurant("Spice Garden")

	require.NoError(t, store.PutSnapshot(ctx, r, []models.ArchivePart{part(r.ID, "2026-02-10", 1, 1)}))

	got, err := store.GetRestaurant(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	list, err := store.ListRestaurants(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	parts, err := store.ArchiveParts(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, parts, 1)
}
