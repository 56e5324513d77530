package usecase

import (
	"net/url"

	"github.com/matchroute-service/internal/domain"
)

const googleMapsDirURL = "https://www.google.com/maps/dir/"

// BuildNavigationLinks собирает ссылки Google Maps: до парковки, от парковки до стадиона и весь путь
func BuildNavigationLinks(start string, candidate domain.ParkingCandidate, venue domain.Venue, onward domain.TravelMode) domain.NavigationLinks {
	parking := candidate.LatLng()
	stadium := venue.LatLng()

	return domain.NavigationLinks{
		Drive:  mapsURL(start, parking, domain.ModeDriving, ""),
		Onward: mapsURL(parking, stadium, onward, ""),
		Full:   mapsURL(start, stadium, domain.ModeDriving, parking),
	}
}

func mapsURL(origin, destination string, mode domain.TravelMode, waypoint string) string {
	q := url.Values{}
	q.Set("api", "1")
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("travelmode", string(mode))
	if waypoint != "" {
		q.Set("waypoints", waypoint)
	}
	return googleMapsDirURL + "?" + q.Encode()
}
