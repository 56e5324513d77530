package domain

import "github.com/google/uuid"

// Stream names
const (
	StreamRouteRecommend = "stream:route:recommend"
	StreamRouteDone      = "stream:route:done"
)

// RecommendEvent - входящее событие на расчёт рекомендации
type RecommendEvent struct {
	RequestID    uuid.UUID          `json:"request_id"`
	StartAddress string             `json:"start_address"`
	Venue        Venue              `json:"venue"`
	Candidates   []ParkingCandidate `json:"candidates"`
	Weather      string             `json:"weather,omitempty"`
}

// Validate checks the minimum an event needs before the orchestrator sees it.
// Zero candidates is left to the orchestrator, which reports it as no viable candidate.
func (e *RecommendEvent) Validate() error {
	if e.RequestID == uuid.Nil {
		return errMissingField("request_id")
	}
	if e.StartAddress == "" {
		return errMissingField("start_address")
	}
	if e.Venue.Latitude == 0 && e.Venue.Longitude == 0 {
		return errMissingField("venue")
	}
	return nil
}

// RecommendDoneEvent - результат расчёта
type RecommendDoneEvent struct {
	RequestID    uuid.UUID             `json:"request_id"`
	RunID        uuid.UUID             `json:"run_id,omitempty"`
	Path         RunPath               `json:"path,omitempty"`
	Recommended  *RouteRecommendation  `json:"recommended,omitempty"`
	Alternatives []RouteRecommendation `json:"alternatives,omitempty"`
	Error        string                `json:"error,omitempty"`
	ErrorCode    string                `json:"error_code,omitempty"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
