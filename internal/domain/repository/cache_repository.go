package repository

import (
	"context"
	"time"

	"github.com/matchroute-service/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// Exists проверяет существование ключа
	Exists(ctx context.Context, key string) (bool, error)

	// GetOccupancy получает снимок загрузки парковок источника и оставшийся TTL ключа.
	// Промах возвращает nil, 0, nil.
	GetOccupancy(ctx context.Context, source string) ([]domain.OccupancySnapshot, time.Duration, error)

	// SetOccupancy сохраняет полный снимок источника с TTL
	SetOccupancy(ctx context.Context, source string, snapshots []domain.OccupancySnapshot, ttl time.Duration) error
}
