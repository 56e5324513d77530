package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/matchroute-service/internal/clock"
	"github.com/matchroute-service/internal/domain"
	"github.com/matchroute-service/internal/domain/repository"
	"github.com/matchroute-service/internal/metrics"
	"github.com/matchroute-service/internal/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	outcomeOK                = "ok"
	outcomeNoViableCandidate = "no_viable_candidate"
)

// LiveDataProvider - живая загрузка парковок для обогащения рекомендаций
type LiveDataProvider interface {
	FetchAll(ctx context.Context) ([]domain.OccupancySnapshot, error)
	FindMatch(candidate domain.ParkingCandidate, snapshots []domain.OccupancySnapshot) *domain.OccupancySnapshot
}

// RecommendOptions - параметры оркестрации
type RecommendOptions struct {
	// ConcurrentEnabled selects batch dispatch; false runs the sequential path.
	ConcurrentEnabled bool
	// MaxConcurrent caps in-flight leg requests across the batches.
	MaxConcurrent int
	// LegTimeout bounds every single leg request.
	LegTimeout time.Duration
	// Location is used for the time-of-day of traffic comments.
	Location *time.Location
}

// RecommendResult - ранжированный список и сводка по расчёту
type RecommendResult struct {
	Recommendations []domain.RouteRecommendation
	Run             *domain.OrchestrationRun
}

// RecommendationUseCase - оркестратор: три пакета запросов маршрутов, слияние, оценка и ранжирование
type RecommendationUseCase struct {
	directions repository.DirectionsRepository
	live       LiveDataProvider
	scorer     *TrafficScorer
	runRepo    repository.RunRepository
	metrics    *metrics.Metrics
	clock      clock.Clock
	logger     *zap.Logger
	opts       RecommendOptions
}

// NewRecommendationUseCase создает оркестратор. live и runRepo могут быть nil.
func NewRecommendationUseCase(
	directions repository.DirectionsRepository,
	live LiveDataProvider,
	scorer *TrafficScorer,
	runRepo repository.RunRepository,
	m *metrics.Metrics,
	clk clock.Clock,
	logger *zap.Logger,
	opts RecommendOptions,
) *RecommendationUseCase {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &RecommendationUseCase{
		directions: directions,
		live:       live,
		scorer:     scorer,
		runRepo:    runRepo,
		metrics:    m,
		clock:      clk,
		logger:     logger,
		opts:       opts,
	}
}

// Recommend returns the candidates ranked best-first by total duration.
func (uc *RecommendationUseCase) Recommend(
	ctx context.Context,
	startAddress string,
	candidates []domain.ParkingCandidate,
	venue domain.Venue,
) ([]domain.RouteRecommendation, error) {
	result, err := uc.Run(ctx, startAddress, candidates, venue)
	if err != nil {
		return nil, err
	}
	return result.Recommendations, nil
}

// Run is Recommend plus the run summary. The returned result and its Run are set even when err != nil.
func (uc *RecommendationUseCase) Run(
	ctx context.Context,
	startAddress string,
	candidates []domain.ParkingCandidate,
	venue domain.Venue,
) (*RecommendResult, error) {
	run := domain.NewOrchestrationRun(startAddress, venue, len(candidates), uc.clock.Now())
	run.Path = domain.PathSequential
	if uc.opts.ConcurrentEnabled {
		run.Path = domain.PathConcurrent
	}
	result := &RecommendResult{Run: run}

	if len(candidates) == 0 {
		run.State = domain.StateFailed
		uc.finish(ctx, run, outcomeNoViableCandidate)
		return result, errors.ErrNoViableCandidate.WithDetails(map[string]interface{}{
			"reason": "no candidates supplied",
		})
	}

	departAt := uc.clock.Now()

	run.State = domain.StateLiveDataFetch
	liveCh := uc.startLiveFetch(ctx)

	var legs *candidateLegs
	if uc.opts.ConcurrentEnabled {
		var err error
		legs, err = uc.dispatchConcurrent(ctx, run, startAddress, candidates, venue, departAt)
		if err != nil {
			uc.logger.Warn("Concurrent dispatch unavailable, falling back to sequential",
				zap.String("run_id", run.ID.String()),
				zap.Error(err))
			run.Path = domain.PathSequential
			run.FellBack = true
			legs = uc.dispatchSequential(ctx, run, startAddress, candidates, venue, departAt)
		}
	} else {
		legs = uc.dispatchSequential(ctx, run, startAddress, candidates, venue, departAt)
	}

	run.State = domain.StateBatchJoin
	run.RecordLegFailures(domain.ModeDriving, legs.drive)
	run.RecordLegFailures(domain.ModeTransit, legs.transit)
	run.RecordLegFailures(domain.ModeWalking, legs.walking)

	snapshots := uc.awaitLive(liveCh, run)

	run.State = domain.StateMerge
	recs := uc.merge(startAddress, candidates, venue, legs, snapshots, departAt.In(uc.opts.Location))

	run.State = domain.StateRank
	rankRecommendations(recs)

	run.SurvivorCount = len(recs)
	for _, rec := range recs {
		if rec.HasLiveData {
			run.LiveDataCount++
		}
	}
	result.Recommendations = recs
	run.State = domain.StateDone

	if len(recs) == 0 {
		uc.finish(ctx, run, outcomeNoViableCandidate)
		return result, errors.ErrNoViableCandidate.WithDetails(map[string]interface{}{
			"candidates":  len(candidates),
			"failed_legs": run.FailedLegs,
		})
	}

	uc.finish(ctx, run, outcomeOK)
	return result, nil
}

type liveResult struct {
	snapshots []domain.OccupancySnapshot
	err       error
}

// startLiveFetch runs the occupancy fetch next to the leg batches.
func (uc *RecommendationUseCase) startLiveFetch(ctx context.Context) <-chan liveResult {
	if uc.live == nil {
		return nil
	}

	ch := make(chan liveResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- liveResult{err: fmt.Errorf("occupancy fetch panicked: %v", r)}
			}
		}()
		snapshots, err := uc.live.FetchAll(ctx)
		ch <- liveResult{snapshots: snapshots, err: err}
	}()
	return ch
}

func (uc *RecommendationUseCase) awaitLive(ch <-chan liveResult, run *domain.OrchestrationRun) []domain.OccupancySnapshot {
	if ch == nil {
		return nil
	}
	res := <-ch
	if res.err != nil {
		run.OccupancyFailed = true
		uc.logger.Warn("Live occupancy unavailable, continuing without it",
			zap.String("run_id", run.ID.String()),
			zap.Error(res.err))
		return nil
	}
	return res.snapshots
}

// candidateLegs holds one result slot per candidate index and mode.
type candidateLegs struct {
	drive   []domain.LegResult
	transit []domain.LegResult
	walking []domain.LegResult
}

func newCandidateLegs(n int) *candidateLegs {
	legs := &candidateLegs{
		drive:   make([]domain.LegResult, n),
		transit: make([]domain.LegResult, n),
		walking: make([]domain.LegResult, n),
	}
	for i := 0; i < n; i++ {
		legs.drive[i] = domain.Absent(nil)
		legs.transit[i] = domain.Absent(nil)
		legs.walking[i] = domain.Absent(nil)
	}
	return legs
}

type legBatch struct {
	mode        domain.TravelMode
	results     []domain.LegResult
	origin      func(i int) string
	destination func(i int) string
}

// batches: drive start->candidate, transit and walking candidate->venue.
func (l *candidateLegs) batches(startAddress string, candidates []domain.ParkingCandidate, venue domain.Venue) []legBatch {
	parking := func(i int) string { return candidates[i].LatLng() }
	start := func(int) string { return startAddress }
	stadium := func(int) string { return venue.LatLng() }

	return []legBatch{
		{mode: domain.ModeDriving, results: l.drive, origin: start, destination: parking},
		{mode: domain.ModeTransit, results: l.transit, origin: parking, destination: stadium},
		{mode: domain.ModeWalking, results: l.walking, origin: parking, destination: stadium},
	}
}

// dispatchConcurrent fires every leg of every batch under one in-flight cap.
// Results land in their candidate's slot, so completion order does not matter.
// An error means nothing was dispatched and the caller should fall back.
func (uc *RecommendationUseCase) dispatchConcurrent(
	ctx context.Context,
	run *domain.OrchestrationRun,
	startAddress string,
	candidates []domain.ParkingCandidate,
	venue domain.Venue,
	departAt time.Time,
) (legs *candidateLegs, err error) {
	if uc.opts.MaxConcurrent <= 0 {
		return nil, errors.ErrConfigurationMissing.WithDetails(map[string]interface{}{
			"capability": "max_concurrent_connections",
		})
	}

	defer func() {
		if r := recover(); r != nil {
			legs = nil
			err = errors.ErrConfigurationMissing.WithDetails(map[string]interface{}{
				"capability": "concurrent_dispatch",
				"panic":      fmt.Sprint(r),
			})
		}
	}()

	run.State = domain.StateBatchDispatch
	started := time.Now()
	legs = newCandidateLegs(len(candidates))

	var g errgroup.Group
	g.SetLimit(uc.opts.MaxConcurrent)

	for _, batch := range legs.batches(startAddress, candidates, venue) {
		for i := range candidates {
			g.Go(func() error {
				batch.results[i] = uc.requestLeg(ctx, batch.mode, batch.origin(i), batch.destination(i), departAt, i)
				return nil
			})
		}
	}
	_ = g.Wait()

	uc.logBatches(run, legs, time.Since(started))
	return legs, nil
}

// requestLeg never panics and never returns an error; failures become absent results.
func (uc *RecommendationUseCase) requestLeg(
	ctx context.Context,
	mode domain.TravelMode,
	origin, destination string,
	departAt time.Time,
	index int,
) (result domain.LegResult) {
	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("Leg request panicked",
				zap.String("mode", string(mode)),
				zap.Int("index", index),
				zap.Any("panic", r))
			result = domain.Absent(fmt.Errorf("%s leg request panicked: %v", mode, r))
		}
	}()

	if uc.opts.LegTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.opts.LegTimeout)
		defer cancel()
	}

	leg, err := uc.directions.GetLeg(ctx, mode, origin, destination, departAt)
	if err == nil && leg == nil {
		err = &domain.LegError{Kind: domain.LegErrMalformed, Mode: mode}
	}
	if err != nil {
		result = domain.Absent(err)
		uc.logger.Warn("Leg request failed",
			zap.String("mode", string(mode)),
			zap.Int("index", index),
			zap.String("kind", string(result.FailureKind())),
			zap.Error(err))
		return result
	}

	return domain.Present(*leg)
}

func (uc *RecommendationUseCase) logBatches(run *domain.OrchestrationRun, legs *candidateLegs, d time.Duration) {
	for mode, results := range map[domain.TravelMode][]domain.LegResult{
		domain.ModeDriving: legs.drive,
		domain.ModeTransit: legs.transit,
		domain.ModeWalking: legs.walking,
	} {
		success := 0
		for _, r := range results {
			if r.OK() {
				success++
			}
		}
		uc.logger.Info("Batch joined",
			zap.String("run_id", run.ID.String()),
			zap.String("path", string(run.Path)),
			zap.String("mode", string(mode)),
			zap.Int("success", success),
			zap.Int("total", len(results)),
			zap.Duration("duration", d))
	}
}

func (uc *RecommendationUseCase) finish(ctx context.Context, run *domain.OrchestrationRun, outcome string) {
	run.Outcome = outcome
	run.FinishedAt = uc.clock.Now()

	uc.metrics.ObserveRun(string(run.Path), outcome, run.Duration())

	uc.logger.Info("Recommendation run finished",
		zap.String("run_id", run.ID.String()),
		zap.String("path", string(run.Path)),
		zap.String("outcome", outcome),
		zap.Int("candidates", run.CandidateCount),
		zap.Int("survivors", run.SurvivorCount),
		zap.Bool("fell_back", run.FellBack),
		zap.Duration("duration", run.Duration()))

	if uc.runRepo == nil {
		return
	}
	if err := uc.runRepo.SaveRun(ctx, run); err != nil {
		uc.logger.Warn("Failed to save recommendation run",
			zap.String("run_id", run.ID.String()),
			zap.Error(err))
	}
}
