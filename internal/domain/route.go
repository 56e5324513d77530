package domain

import (
	"errors"
	"fmt"
)

// TravelMode - режим маршрута у провайдера
type TravelMode string

const (
	ModeDriving TravelMode = "driving"
	ModeTransit TravelMode = "transit"
	ModeWalking TravelMode = "walking"
)

// Valid reports whether the mode is one the directions provider understands.
func (m TravelMode) Valid() bool {
	switch m {
	case ModeDriving, ModeTransit, ModeWalking:
		return true
	}
	return false
}

// RouteLeg - нормализованный результат одного запроса к провайдеру маршрутов
type RouteLeg struct {
	Mode                     TravelMode `json:"mode"`
	DurationSeconds          int        `json:"duration_seconds"`
	DurationInTrafficSeconds *int       `json:"duration_in_traffic_seconds,omitempty"`
	DistanceMeters           int        `json:"distance_meters"`
	PathEncoding             string     `json:"path_encoding"`
	PathPoints               int        `json:"path_points"`
	OriginLabel              string     `json:"origin_label"`
	DestinationLabel         string     `json:"destination_label"`
}

// EffectiveDurationSeconds prefers the traffic-aware duration when the provider returned one.
func (l RouteLeg) EffectiveDurationSeconds() int {
	if l.DurationInTrafficSeconds != nil {
		return *l.DurationInTrafficSeconds
	}
	return l.DurationSeconds
}

// LegErrorKind classifies a failed leg request.
type LegErrorKind string

const (
	LegErrTimeout        LegErrorKind = "timeout"
	LegErrUpstreamStatus LegErrorKind = "upstream_status"
	LegErrNetwork        LegErrorKind = "network"
	LegErrMalformed      LegErrorKind = "malformed"
	// LegErrNotRequested marks a slot no request was issued for.
	LegErrNotRequested LegErrorKind = "not_requested"
)

// LegError is the typed failure returned by the directions client.
type LegError struct {
	Kind       LegErrorKind
	Mode       TravelMode
	Status     string
	StatusCode int
	Err        error
}

func (e *LegError) Error() string {
	msg := fmt.Sprintf("%s leg failed: %s", e.Mode, e.Kind)
	if e.Status != "" {
		msg += " (status " + e.Status + ")"
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (http %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LegError) Unwrap() error {
	return e.Err
}

// Category maps the leg failure onto the request-level taxonomy.
func (e *LegError) Category() FailureCategory {
	switch e.Kind {
	case LegErrTimeout, LegErrNetwork:
		return FailureUpstreamUnavailable
	default:
		return FailureUpstreamRejected
	}
}

// FailureCategory is the coarse error taxonomy shared by all upstream collaborators.
type FailureCategory string

const (
	FailureUpstreamUnavailable  FailureCategory = "upstream_unavailable"
	FailureUpstreamRejected     FailureCategory = "upstream_rejected"
	FailureNoViableCandidate    FailureCategory = "no_viable_candidate"
	FailureConfigurationMissing FailureCategory = "configuration_missing"
)

// LegResult is either a present leg or the reason it is absent.
// Exactly one of Leg and Err is set.
type LegResult struct {
	Leg *RouteLeg
	Err error
}

// Present wraps a successful leg.
func Present(leg RouteLeg) LegResult {
	return LegResult{Leg: &leg}
}

// Absent wraps a failure reason. A nil reason is recorded as not requested.
func Absent(reason error) LegResult {
	if reason == nil {
		reason = &LegError{Kind: LegErrNotRequested}
	}
	return LegResult{Err: reason}
}

// OK reports whether the leg is present.
func (r LegResult) OK() bool {
	return r.Leg != nil
}

// FailureKind returns the leg error kind for absent results, empty when present.
func (r LegResult) FailureKind() LegErrorKind {
	if r.OK() {
		return ""
	}
	var legErr *LegError
	if errors.As(r.Err, &legErr) {
		return legErr.Kind
	}
	return LegErrNetwork
}
