package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/matchroute-service/internal/clock"
	"github.com/matchroute-service/internal/domain"
	"github.com/matchroute-service/internal/domain/repository"
	"github.com/matchroute-service/internal/metrics"
	"github.com/matchroute-service/internal/pkg/utils"
	"go.uber.org/zap"
)

// SnapshotCache - процессный кеш снимков загрузки по источнику
type SnapshotCache interface {
	Get(source string) ([]domain.OccupancySnapshot, bool)
	Set(source string, snapshots []domain.OccupancySnapshot)
	SetFor(source string, snapshots []domain.OccupancySnapshot, ttl time.Duration)
	TTL() time.Duration
}

// OccupancyUseCase - получение живой загрузки парковок с двухуровневым кешем
type OccupancyUseCase struct {
	occupancyRepo repository.OccupancyRepository
	memory        SnapshotCache
	cacheRepo     repository.CacheRepository
	metrics       *metrics.Metrics
	clock         clock.Clock
	logger        *zap.Logger
	matchRadius   float64
}

// NewOccupancyUseCase создает новый OccupancyUseCase. cacheRepo может быть nil.
func NewOccupancyUseCase(
	occupancyRepo repository.OccupancyRepository,
	memory SnapshotCache,
	cacheRepo repository.CacheRepository,
	m *metrics.Metrics,
	clk clock.Clock,
	logger *zap.Logger,
	matchRadius float64,
) *OccupancyUseCase {
	return &OccupancyUseCase{
		occupancyRepo: occupancyRepo,
		memory:        memory,
		cacheRepo:     cacheRepo,
		metrics:       m,
		clock:         clk,
		logger:        logger,
		matchRadius:   matchRadius,
	}
}

// FetchAll returns the full snapshot list: process cache, then Redis, then the feed.
// Concurrent callers past expiry may refetch in parallel; the last writer wins.
func (uc *OccupancyUseCase) FetchAll(ctx context.Context) ([]domain.OccupancySnapshot, error) {
	source := uc.occupancyRepo.Source()

	if snapshots, ok := uc.memory.Get(source); ok {
		uc.metrics.ObserveCacheLookup("memory", true)
		uc.logger.Debug("Occupancy served from memory cache", zap.String("source", source))
		return snapshots, nil
	}
	uc.metrics.ObserveCacheLookup("memory", false)

	if uc.cacheRepo != nil {
		snapshots, remaining, err := uc.cacheRepo.GetOccupancy(ctx, source)
		switch {
		case err != nil:
			uc.logger.Warn("Occupancy redis lookup failed", zap.String("source", source), zap.Error(err))
		case snapshots != nil:
			uc.metrics.ObserveCacheLookup("redis", true)
			uc.logger.Debug("Occupancy served from redis",
				zap.String("source", source),
				zap.Duration("remaining", remaining))
			// only what is left of the original TTL, so the list never outlives it
			uc.memory.SetFor(source, snapshots, remaining)
			return snapshots, nil
		default:
			uc.metrics.ObserveCacheLookup("redis", false)
		}
	}

	snapshots, err := uc.occupancyRepo.FetchAll(ctx)
	if err != nil {
		uc.metrics.ObserveOccupancyFetch(source, occupancyOutcome(err))
		return nil, err
	}
	uc.metrics.ObserveOccupancyFetch(source, "ok")

	uc.memory.Set(source, snapshots)
	if uc.cacheRepo != nil {
		if err := uc.cacheRepo.SetOccupancy(ctx, source, snapshots, uc.memory.TTL()); err != nil {
			uc.logger.Warn("Failed to store occupancy in redis", zap.String("source", source), zap.Error(err))
		}
	}

	uc.logger.Info("Occupancy fetched",
		zap.String("source", source),
		zap.Int("locations", len(snapshots)))

	return snapshots, nil
}

// FindMatch applies the configured match radius.
func (uc *OccupancyUseCase) FindMatch(candidate domain.ParkingCandidate, snapshots []domain.OccupancySnapshot) *domain.OccupancySnapshot {
	return FindMatch(candidate, snapshots, uc.matchRadius)
}

// Overview aggregates capacity and free counts over all live locations.
func (uc *OccupancyUseCase) Overview(ctx context.Context) (*domain.OccupancyOverview, error) {
	snapshots, err := uc.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	overview := &domain.OccupancyOverview{
		TotalLocations: len(snapshots),
		LastUpdated:    uc.clock.Now(),
		Locations:      snapshots,
	}
	for _, s := range snapshots {
		overview.TotalCapacity += s.Capacity
		overview.TotalFree += s.FreeCount
	}
	if overview.TotalCapacity > 0 {
		occupied := overview.TotalCapacity - overview.TotalFree
		overview.AvgOccupancyRate = utils.Round1(float64(occupied) / float64(overview.TotalCapacity) * 100)
	}

	return overview, nil
}

// LiveStatus returns the live record for one candidate, nil when none matches.
func (uc *OccupancyUseCase) LiveStatus(ctx context.Context, candidate domain.ParkingCandidate) (*domain.OccupancySnapshot, error) {
	snapshots, err := uc.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return uc.FindMatch(candidate, snapshots), nil
}

func occupancyOutcome(err error) string {
	var occErr *domain.OccupancyError
	if errors.As(err, &occErr) {
		return string(occErr.Kind)
	}
	return "error"
}
