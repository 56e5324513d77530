package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ParkingCandidate - парковка, известная вызывающей стороне
type ParkingCandidate struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LatLng formats the candidate position as a provider "lat,lng" pair.
func (p ParkingCandidate) LatLng() string {
	return FormatLatLng(p.Latitude, p.Longitude)
}

// Venue - стадион, конечная точка маршрута
type Venue struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (v Venue) LatLng() string {
	return FormatLatLng(v.Latitude, v.Longitude)
}

// FormatLatLng renders coordinates the way the directions provider expects them.
func FormatLatLng(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}

// ParseLatLng parses a "lat,lng" pair. Anything else is treated as a free-text address by callers.
func ParseLatLng(s string) (lat, lng float64, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, false
	}
	return lat, lng, true
}

// TrafficRating - оценка дорожной ситуации (1..5) и поясняющий текст
type TrafficRating struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// NavigationLinks - ссылки на Google Maps для навигации
type NavigationLinks struct {
	Drive  string `json:"drive"`
	Onward string `json:"onward"`
	Full   string `json:"full"`
}

// RouteRecommendation - один вариант парковки с полным маршрутом
type RouteRecommendation struct {
	Candidate                ParkingCandidate   `json:"candidate"`
	DriveLeg                 RouteLeg           `json:"drive_leg"`
	TransitLeg               *RouteLeg          `json:"transit_leg,omitempty"`
	WalkingLeg               *RouteLeg          `json:"walking_leg,omitempty"`
	BestOnwardMode           TravelMode         `json:"best_onward_mode"`
	DriveDurationUsedSeconds int                `json:"drive_duration_used_seconds"`
	OnwardDurationSeconds    int                `json:"onward_duration_seconds"`
	TotalDurationSeconds     int                `json:"total_duration_seconds"`
	TrafficRating            TrafficRating      `json:"traffic_rating"`
	HasLiveData              bool               `json:"has_live_data"`
	Occupancy                *OccupancySnapshot `json:"occupancy,omitempty"`
	NavigationLinks          NavigationLinks    `json:"navigation_links"`
}

// DelayMinutes is the traffic delay of the drive leg in whole minutes.
func (r RouteRecommendation) DelayMinutes() int {
	return (r.DriveDurationUsedSeconds - r.DriveLeg.DurationSeconds) / 60
}

// RunPath identifies which orchestration path produced a run.
type RunPath string

const (
	PathConcurrent RunPath = "concurrent"
	PathSequential RunPath = "sequential"
)

// RunState - состояния оркестрации
type RunState string

const (
	StateIdle          RunState = "idle"
	StateLiveDataFetch RunState = "live_data_fetching"
	StateBatchDispatch RunState = "batch_dispatch"
	StateBatchJoin     RunState = "batch_join"
	StateMerge         RunState = "merge"
	StateRank          RunState = "rank"
	StateDone          RunState = "done"
	StateFailed        RunState = "failed"
)

// OrchestrationRun groups one recommendation call: timing, path and failure counts.
type OrchestrationRun struct {
	ID              uuid.UUID          `json:"id" db:"id"`
	Path            RunPath            `json:"path" db:"path"`
	State           RunState           `json:"state" db:"state"`
	StartAddress    string             `json:"start_address" db:"start_address"`
	VenueName       string             `json:"venue_name" db:"venue_name"`
	CandidateCount  int                `json:"candidate_count" db:"candidate_count"`
	SurvivorCount   int                `json:"survivor_count" db:"survivor_count"`
	LiveDataCount   int                `json:"live_data_count" db:"live_data_count"`
	FailedLegs      map[TravelMode]int `json:"failed_legs" db:"-"`
	OccupancyFailed bool               `json:"occupancy_failed" db:"occupancy_failed"`
	FellBack        bool               `json:"fell_back" db:"fell_back"`
	StartedAt       time.Time          `json:"started_at" db:"started_at"`
	FinishedAt      time.Time          `json:"finished_at" db:"finished_at"`
	Outcome         string             `json:"outcome" db:"outcome"`
}

// NewOrchestrationRun starts a run in the idle state.
func NewOrchestrationRun(startAddress string, venue Venue, candidates int, now time.Time) *OrchestrationRun {
	return &OrchestrationRun{
		ID:             uuid.New(),
		State:          StateIdle,
		StartAddress:   startAddress,
		VenueName:      venue.Name,
		CandidateCount: candidates,
		FailedLegs:     make(map[TravelMode]int),
		StartedAt:      now,
	}
}

// RecordLegFailures counts absent results of one batch.
func (r *OrchestrationRun) RecordLegFailures(mode TravelMode, results []LegResult) {
	for _, res := range results {
		if !res.OK() {
			r.FailedLegs[mode]++
		}
	}
}

// Duration is the wall time of the run; zero until finished.
func (r *OrchestrationRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *OrchestrationRun) String() string {
	return fmt.Sprintf("run %s path=%s state=%s candidates=%d survivors=%d",
		r.ID, r.Path, r.State, r.CandidateCount, r.SurvivorCount)
}
