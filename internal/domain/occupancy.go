package domain

import (
	"fmt"
	"time"
)

// FreshnessClass describes how recent a live occupancy timestamp is.
type FreshnessClass string

const (
	FreshnessLive     FreshnessClass = "live"
	FreshnessCurrent  FreshnessClass = "current"
	FreshnessModerate FreshnessClass = "moderate"
	FreshnessStale    FreshnessClass = "stale"
	FreshnessUnknown  FreshnessClass = "unknown"
)

// Freshness - актуальность живых данных
type Freshness struct {
	Class      FreshnessClass `json:"class"`
	AgeMinutes *int           `json:"age_minutes,omitempty"`
}

// OccupancySnapshot - текущая загрузка парковки из открытых данных
type OccupancySnapshot struct {
	SourceID          string            `json:"source_id"`
	Name              string            `json:"name"`
	Type              string            `json:"type"`
	Facility          string            `json:"facility"`
	Latitude          float64           `json:"latitude"`
	Longitude         float64           `json:"longitude"`
	FreeCount         int               `json:"free_count"`
	Capacity          int               `json:"capacity"`
	OccupancyRate     float64           `json:"occupancy_rate"`
	AvailabilityScore int               `json:"availability_score"`
	OccupancyText     string            `json:"occupancy_text"`
	Freshness         Freshness         `json:"freshness"`
	RawTimestamp      string            `json:"raw_timestamp,omitempty"`
	LastUpdate        *time.Time        `json:"last_update,omitempty"`
	OpeningHours      map[string]string `json:"opening_hours,omitempty"`
	RawStand          string            `json:"raw_stand,omitempty"`
}

// HasCapacity reports whether the feed published a usable capacity.
func (s OccupancySnapshot) HasCapacity() bool {
	return s.Capacity > 0
}

// OccupancyOverview - сводка по всем живым парковкам
type OccupancyOverview struct {
	TotalLocations   int                 `json:"total_locations"`
	TotalCapacity    int                 `json:"total_capacity"`
	TotalFree        int                 `json:"total_free"`
	AvgOccupancyRate float64             `json:"avg_occupancy_rate"`
	LastUpdated      time.Time           `json:"last_updated"`
	Locations        []OccupancySnapshot `json:"locations"`
}

// OccupancyErrorKind classifies a failed live-data fetch.
type OccupancyErrorKind string

const (
	OccupancyErrTimeout OccupancyErrorKind = "timeout"
	OccupancyErrNetwork OccupancyErrorKind = "network"
	OccupancyErrSchema  OccupancyErrorKind = "schema"
)

// OccupancyError is the typed failure of the open-data fetch.
type OccupancyError struct {
	Kind OccupancyErrorKind
	Err  error
}

func (e *OccupancyError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("occupancy fetch failed: %s", e.Kind)
	}
	return fmt.Sprintf("occupancy fetch failed: %s: %v", e.Kind, e.Err)
}

func (e *OccupancyError) Unwrap() error {
	return e.Err
}
