package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/matchroute-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupCache(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisFromClient(client, zap.NewNop())
}

func TestCacheRepository_GetSet(t *testing.T) {
	mr, r := setupCache(t)
	repo := NewCacheRepository(r)
	ctx := context.Background()

	val, err := repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, repo.Set(ctx, "k", []byte("v"), time.Minute))
	val, err = repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	exists, err := repo.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	mr.FastForward(2 * time.Minute)
	exists, err = repo.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Set(ctx, "k2", []byte("v"), time.Minute))
	require.NoError(t, repo.Delete(ctx, "k2"))
	val, err = repo.Get(ctx, "k2")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestCacheRepository_Occupancy(t *testing.T) {
	mr, r := setupCache(t)
	repo := NewCacheRepository(r)
	ctx := context.Background()

	snapshots := []domain.OccupancySnapshot{
		{SourceID: "P12", Name: "Parkhaus Westfalenhallen", FreeCount: 10, Capacity: 100, OccupancyRate: 90, AvailabilityScore: 2},
	}

	got, _, err := repo.GetOccupancy(ctx, "dortmund")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.SetOccupancy(ctx, "dortmund", snapshots, 5*time.Minute))
	assert.True(t, mr.Exists("occupancy:live:dortmund"))

	got, remaining, err := repo.GetOccupancy(ctx, "dortmund")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5*time.Minute, remaining)
	assert.Equal(t, "Parkhaus Westfalenhallen", got[0].Name)
	assert.Equal(t, 90.0, got[0].OccupancyRate)

	mr.FastForward(3 * time.Minute)
	_, remaining, err = repo.GetOccupancy(ctx, "dortmund")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, remaining)

	mr.FastForward(2 * time.Minute)
	got, _, err = repo.GetOccupancy(ctx, "dortmund")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheRepository_OccupancyWithoutExpiryIsMiss(t *testing.T) {
	mr, r := setupCache(t)
	repo := NewCacheRepository(r)

	require.NoError(t, mr.Set("occupancy:live:dortmund", `[{"source_id":"P1"}]`))
	got, remaining, err := repo.GetOccupancy(context.Background(), "dortmund")

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, remaining)
}

func TestCacheRepository_CorruptOccupancy(t *testing.T) {
	mr, r := setupCache(t)
	repo := NewCacheRepository(r)

	require.NoError(t, mr.Set("occupancy:live:dortmund", "not json"))
	mr.SetTTL("occupancy:live:dortmund", time.Minute)
	_, _, err := repo.GetOccupancy(context.Background(), "dortmund")
	assert.Error(t, err)
}

func TestCacheRepository_ConnectionError(t *testing.T) {
	mr, r := setupCache(t)
	repo := NewCacheRepository(r)
	mr.Close()

	_, err := repo.Get(context.Background(), "k")
	assert.Error(t, err)
}
