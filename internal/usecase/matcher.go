package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/matchroute-service/internal/domain"
)

// minMatchTokenLen - слова короче не участвуют в сравнении имён ("P1", "am", "der")
const minMatchTokenLen = 4

// FindMatch reconciles a known parking candidate with a live occupancy record.
// Items are scanned in feed order: the first one whose name contains a candidate
// name token wins immediately, otherwise the nearest item strictly inside radiusMeters.
// Returns nil when nothing matches.
func FindMatch(candidate domain.ParkingCandidate, snapshots []domain.OccupancySnapshot, radiusMeters float64) *domain.OccupancySnapshot {
	tokens := nameTokens(candidate.Name)

	var (
		best     *domain.OccupancySnapshot
		bestDist = radiusMeters
	)

	for i := range snapshots {
		item := &snapshots[i]

		if matchesName(tokens, item.Name) {
			match := *item
			return &match
		}

		dist := domain.HaversineMeters(candidate.Latitude, candidate.Longitude, item.Latitude, item.Longitude)
		if dist < bestDist {
			bestDist = dist
			best = item
		}
	}

	if best == nil {
		return nil
	}
	match := *best
	return &match
}

func nameTokens(name string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(name)) {
		if utf8.RuneCountInString(word) >= minMatchTokenLen {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func matchesName(tokens []string, itemName string) bool {
	if len(tokens) == 0 || itemName == "" {
		return false
	}
	lower := strings.ToLower(itemName)
	for _, token := range tokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}
