package usecase

import (
	"sort"
	"time"

	"github.com/matchroute-service/internal/domain"
)

// merge combines the legs of each candidate. Candidates without a drive leg
// or without any onward leg are dropped.
func (uc *RecommendationUseCase) merge(
	startAddress string,
	candidates []domain.ParkingCandidate,
	venue domain.Venue,
	legs *candidateLegs,
	snapshots []domain.OccupancySnapshot,
	at time.Time,
) []domain.RouteRecommendation {
	recs := make([]domain.RouteRecommendation, 0, len(candidates))

	for i, candidate := range candidates {
		drive := legs.drive[i]
		if !drive.OK() {
			continue
		}
		mode, onward, ok := chooseOnward(legs.transit[i], legs.walking[i])
		if !ok {
			continue
		}

		driveUsed := drive.Leg.EffectiveDurationSeconds()
		onwardSeconds := onward.EffectiveDurationSeconds()

		rec := domain.RouteRecommendation{
			Candidate:                candidate,
			DriveLeg:                 *drive.Leg,
			TransitLeg:               legs.transit[i].Leg,
			WalkingLeg:               legs.walking[i].Leg,
			BestOnwardMode:           mode,
			DriveDurationUsedSeconds: driveUsed,
			OnwardDurationSeconds:    onwardSeconds,
			TotalDurationSeconds:     driveUsed + onwardSeconds,
			TrafficRating:            uc.scorer.Score(drive.Leg.DurationSeconds, driveUsed, at),
			NavigationLinks:          BuildNavigationLinks(startAddress, candidate, venue, mode),
		}

		if uc.live != nil && snapshots != nil {
			if match := uc.live.FindMatch(candidate, snapshots); match != nil {
				rec.Occupancy = match
				rec.HasLiveData = true
			}
		}

		recs = append(recs, rec)
	}

	return recs
}

// chooseOnward picks the faster onward leg; transit wins a tie.
func chooseOnward(transit, walking domain.LegResult) (domain.TravelMode, *domain.RouteLeg, bool) {
	switch {
	case transit.OK() && walking.OK():
		if walking.Leg.EffectiveDurationSeconds() < transit.Leg.EffectiveDurationSeconds() {
			return domain.ModeWalking, walking.Leg, true
		}
		return domain.ModeTransit, transit.Leg, true
	case transit.OK():
		return domain.ModeTransit, transit.Leg, true
	case walking.OK():
		return domain.ModeWalking, walking.Leg, true
	default:
		return "", nil, false
	}
}

// rankRecommendations sorts ascending by total duration, keeping input order on ties.
func rankRecommendations(recs []domain.RouteRecommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].TotalDurationSeconds < recs[j].TotalDurationSeconds
	})
}
