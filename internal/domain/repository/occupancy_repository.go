package repository

import (
	"context"

	"github.com/matchroute-service/internal/domain"
)

// OccupancyRepository - источник живых данных о загрузке парковок.
// Ошибки всегда *domain.OccupancyError.
type OccupancyRepository interface {
	// FetchAll загружает все записи источника, элементы без координат отбрасываются
	FetchAll(ctx context.Context) ([]domain.OccupancySnapshot, error)

	// Source возвращает имя источника, используется как ключ кеша
	Source() string
}
