package repository

import (
	"context"
	"time"

	"github.com/matchroute-service/internal/domain"
)

// DirectionsRepository - клиент внешнего провайдера маршрутов.
// Ошибки всегда *domain.LegError.
type DirectionsRepository interface {
	// GetLeg запрашивает один участок маршрута. origin и destination - адрес или пара "lat,lng".
	GetLeg(ctx context.Context, mode domain.TravelMode, origin, destination string, departAt time.Time) (*domain.RouteLeg, error)
}
