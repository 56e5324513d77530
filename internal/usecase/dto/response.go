package dto

import (
	"github.com/google/uuid"
	"github.com/matchroute-service/internal/domain"
)

// SuggestResponse - лучший вариант, альтернативы и сводка по расчёту
type SuggestResponse struct {
	Recommended  *domain.RouteRecommendation  `json:"recommended"`
	Alternatives []domain.RouteRecommendation `json:"alternatives"`
	Meta         SuggestMeta                  `json:"meta"`
}

// SuggestMeta - сводка по расчёту
type SuggestMeta struct {
	RunID              uuid.UUID                 `json:"run_id"`
	Path               domain.RunPath            `json:"path"`
	FellBack           bool                      `json:"fell_back"`
	TotalOptions       int                       `json:"total_options"`
	LiveDataAvailable  int                       `json:"live_data_available"`
	LiveDataPercentage float64                   `json:"live_data_percentage"`
	DataSources        map[string]string         `json:"data_sources"`
	FailedLegs         map[domain.TravelMode]int `json:"failed_legs"`
	DurationMS         int64                     `json:"duration_ms"`
}

// LiveMatchResponse - результат сопоставления одной парковки с живыми данными
type LiveMatchResponse struct {
	Candidate   domain.ParkingCandidate   `json:"candidate"`
	HasLiveData bool                      `json:"has_live_data"`
	Occupancy   *domain.OccupancySnapshot `json:"occupancy,omitempty"`
}

// HealthResponse - состояние зависимостей
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}
