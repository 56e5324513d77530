package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/matchroute-service/internal/domain"
	"github.com/matchroute-service/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const occupancyKeyPrefix = "occupancy:live:"

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

func (r *cacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	val, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to check cache existence", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("cache exists error: %w", err)
	}

	return val > 0, nil
}

// GetOccupancy получает снимок загрузки источника из кеша вместе с оставшимся TTL.
// Ключ без срока жизни считается промахом: снимок без TTL нельзя отдать с ограниченной давностью.
func (r *cacheRepository) GetOccupancy(ctx context.Context, source string) ([]domain.OccupancySnapshot, time.Duration, error) {
	key := occupancyKeyPrefix + source

	pipe := r.client.TxPipeline()
	getCmd := pipe.Get(ctx, key)
	ttlCmd := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		r.logger.Error("Failed to get occupancy from cache", zap.String("key", key), zap.Error(err))
		return nil, 0, fmt.Errorf("cache get error: %w", err)
	}

	data, err := getCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, 0, nil // Cache miss
	}
	if err != nil {
		return nil, 0, fmt.Errorf("cache get error: %w", err)
	}

	remaining := ttlCmd.Val()
	if remaining <= 0 {
		r.logger.Warn("Occupancy key has no expiry, ignoring", zap.String("key", key))
		return nil, 0, nil
	}

	var snapshots []domain.OccupancySnapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		r.logger.Error("Failed to unmarshal occupancy from cache", zap.String("source", source), zap.Error(err))
		return nil, 0, fmt.Errorf("unmarshal occupancy: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key), zap.Duration("remaining", remaining))
	return snapshots, remaining, nil
}

// SetOccupancy сохраняет снимок загрузки источника в кеше
func (r *cacheRepository) SetOccupancy(ctx context.Context, source string, snapshots []domain.OccupancySnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snapshots)
	if err != nil {
		r.logger.Error("Failed to marshal occupancy", zap.Error(err))
		return fmt.Errorf("marshal occupancy: %w", err)
	}

	return r.Set(ctx, occupancyKeyPrefix+source, data, ttl)
}
