package opendata

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/matchroute-service/internal/domain"
	"github.com/matchroute-service/internal/pkg/utils"
)

type rawItem struct {
	ID       interface{} `json:"id"`
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	GeoPoint *struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	} `json:"geo_point_2d"`
	Free            *float64 `json:"frei"`
	Capacity        *float64 `json:"capacity"`
	Timestamp       string   `json:"zeitstempel"`
	Parkeinrichtung string   `json:"parkeinrichtung"`
	Stand           string   `json:"stand"`

	Montag     string `json:"montag"`
	Dienstag   string `json:"dienstag"`
	Mittwoch   string `json:"mittwoch"`
	Donnerstag string `json:"donnerstag"`
	Freitag    string `json:"freitag"`
	Samstag    string `json:"samstag"`
	Sonntag    string `json:"sonntag"`
}

// ProcessItem normalizes one feed record. Records without usable coordinates
// or that fail to decode are reported with ok=false.
func ProcessItem(raw json.RawMessage, now time.Time, loc *time.Location) (domain.OccupancySnapshot, bool) {
	var item rawItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return domain.OccupancySnapshot{}, false
	}
	if item.GeoPoint == nil || item.GeoPoint.Lat == nil || item.GeoPoint.Lon == nil {
		return domain.OccupancySnapshot{}, false
	}
	lat, lon := *item.GeoPoint.Lat, *item.GeoPoint.Lon
	if lat == 0 || lon == 0 || !utils.ValidateCoordinates(lat, lon) {
		return domain.OccupancySnapshot{}, false
	}

	free := intValue(item.Free)
	capacity := intValue(item.Capacity)
	rate := OccupancyRate(free, capacity)
	score := AvailabilityScore(capacity, rate)

	snapshot := domain.OccupancySnapshot{
		SourceID:          sourceID(item.ID),
		Name:              defaultString(item.Name, "Unbekannt"),
		Type:              defaultString(item.Type, "Parkhaus"),
		Facility:          defaultString(item.Parkeinrichtung, "unbekannt"),
		Latitude:          lat,
		Longitude:         lon,
		FreeCount:         free,
		Capacity:          capacity,
		OccupancyRate:     rate,
		AvailabilityScore: score,
		OccupancyText:     OccupancyText(score, free),
		RawTimestamp:      item.Timestamp,
		OpeningHours:      openingHours(item),
		RawStand:          item.Stand,
	}

	if ts, ok := parseTimestamp(item.Timestamp, loc); ok {
		snapshot.LastUpdate = &ts
	}
	snapshot.Freshness = AssessFreshness(snapshot.LastUpdate, now)

	return snapshot, true
}

// OccupancyRate is the occupied share in percent, one decimal. Zero capacity yields 0.
func OccupancyRate(free, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return utils.Round1(float64(capacity-free) / float64(capacity) * 100)
}

// AvailabilityScore buckets the occupancy rate into 1 (critical) .. 5 (excellent).
func AvailabilityScore(capacity int, rate float64) int {
	if capacity <= 0 {
		return 1
	}
	switch {
	case rate <= 30:
		return 5
	case rate <= 60:
		return 4
	case rate <= 85:
		return 3
	case rate <= 95:
		return 2
	default:
		return 1
	}
}

func OccupancyText(score, free int) string {
	switch score {
	case 5:
		return fmt.Sprintf("Viele Plätze frei (%d verfügbar)", free)
	case 4:
		return fmt.Sprintf("Gute Verfügbarkeit (%d frei)", free)
	case 3:
		return fmt.Sprintf("Moderate Belegung (%d frei)", free)
	case 2:
		return fmt.Sprintf("Wenige Plätze frei (%d verfügbar)", free)
	default:
		return fmt.Sprintf("Nahezu voll (%d Plätze)", free)
	}
}

// AssessFreshness classifies the age of a feed timestamp.
func AssessFreshness(lastUpdate *time.Time, now time.Time) domain.Freshness {
	if lastUpdate == nil {
		return domain.Freshness{Class: domain.FreshnessUnknown}
	}

	age := int(now.Sub(*lastUpdate).Minutes())
	f := domain.Freshness{AgeMinutes: &age}
	switch {
	case age <= 5:
		f.Class = domain.FreshnessLive
	case age <= 10:
		f.Class = domain.FreshnessCurrent
	case age <= 30:
		f.Class = domain.FreshnessModerate
	default:
		f.Class = domain.FreshnessStale
	}
	return f
}

func parseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func openingHours(item rawItem) map[string]string {
	days := []struct {
		name  string
		hours string
	}{
		{"montag", item.Montag},
		{"dienstag", item.Dienstag},
		{"mittwoch", item.Mittwoch},
		{"donnerstag", item.Donnerstag},
		{"freitag", item.Freitag},
		{"samstag", item.Samstag},
		{"sonntag", item.Sonntag},
	}

	hours := make(map[string]string)
	for _, d := range days {
		if d.hours != "" && d.hours != "-" {
			hours[d.name] = d.hours
		}
	}
	return hours
}

func intValue(v *float64) int {
	if v == nil {
		return 0
	}
	return int(*v)
}

func sourceID(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return fmt.Sprint(id)
	}
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
