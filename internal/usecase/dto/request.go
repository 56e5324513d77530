package dto

import "github.com/matchroute-service/internal/domain"

// RecommendRequest - запрос на рекомендацию парковки и маршрута до стадиона
type RecommendRequest struct {
	StartAddress string             `json:"start_address" validate:"required,min=2,max=300"`
	Venue        VenueRequest       `json:"venue"`
	Candidates   []CandidateRequest `json:"candidates" validate:"max=50,dive"`
	Weather      string             `json:"weather,omitempty" validate:"omitempty,max=200"`
}

// VenueRequest - координаты стадиона.
// Указатели отличают отсутствующую координату от экватора и нулевого меридиана.
type VenueRequest struct {
	Name string   `json:"name" validate:"max=200"`
	Lat  *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lng  *float64 `json:"lng" validate:"required,min=-180,max=180"`
}

// CandidateRequest - известная парковка
type CandidateRequest struct {
	ID   int64    `json:"id" validate:"required"`
	Name string   `json:"name" validate:"required,max=200"`
	Lat  *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lng  *float64 `json:"lng" validate:"required,min=-180,max=180"`
}

// Coord returns a pointer to v for building requests in code.
func Coord(v float64) *float64 {
	return &v
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func (r VenueRequest) ToDomain() domain.Venue {
	return domain.Venue{Name: r.Name, Latitude: deref(r.Lat), Longitude: deref(r.Lng)}
}

func (r CandidateRequest) ToDomain() domain.ParkingCandidate {
	return domain.ParkingCandidate{ID: r.ID, Name: r.Name, Latitude: deref(r.Lat), Longitude: deref(r.Lng)}
}

// CandidatesToDomain keeps the input order, which is the ranking tie-break.
func CandidatesToDomain(in []CandidateRequest) []domain.ParkingCandidate {
	out := make([]domain.ParkingCandidate, len(in))
	for i, c := range in {
		out[i] = c.ToDomain()
	}
	return out
}

// FromEvent builds a request from a stream event.
func FromEvent(event *domain.RecommendEvent) RecommendRequest {
	req := RecommendRequest{
		StartAddress: event.StartAddress,
		Venue: VenueRequest{
			Name: event.Venue.Name,
			Lat:  Coord(event.Venue.Latitude),
			Lng:  Coord(event.Venue.Longitude),
		},
		Candidates: make([]CandidateRequest, len(event.Candidates)),
		Weather:    event.Weather,
	}
	for i, c := range event.Candidates {
		req.Candidates[i] = CandidateRequest{ID: c.ID, Name: c.Name, Lat: Coord(c.Latitude), Lng: Coord(c.Longitude)}
	}
	return req
}
