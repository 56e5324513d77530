package usecase

import (
	"context"
	"time"

	"github.com/matchroute-service/internal/domain"
)

// dispatchSequential requests every leg one at a time in candidate order.
// Result slots match dispatchConcurrent, so merge cannot tell the paths apart.
func (uc *RecommendationUseCase) dispatchSequential(
	ctx context.Context,
	run *domain.OrchestrationRun,
	startAddress string,
	candidates []domain.ParkingCandidate,
	venue domain.Venue,
	departAt time.Time,
) *candidateLegs {
	run.State = domain.StateBatchDispatch
	started := time.Now()
	legs := newCandidateLegs(len(candidates))
	batches := legs.batches(startAddress, candidates, venue)

	for i := range candidates {
		for _, batch := range batches {
			batch.results[i] = uc.requestLeg(ctx, batch.mode, batch.origin(i), batch.destination(i), departAt, i)
		}
	}

	uc.logBatches(run, legs, time.Since(started))
	return legs
}
