package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/matchroute-service/internal/domain"
	"github.com/matchroute-service/internal/domain/repository"
	"go.uber.org/zap"
)

type runRepository struct {
	db *DB
}

// NewRunRepository создает репозиторий аудита расчётов
func NewRunRepository(db *DB) repository.RunRepository {
	return &runRepository{db: db}
}

type runRow struct {
	ID              string    `db:"id"`
	Path            string    `db:"path"`
	State           string    `db:"state"`
	StartAddress    string    `db:"start_address"`
	VenueName       string    `db:"venue_name"`
	CandidateCount  int       `db:"candidate_count"`
	SurvivorCount   int       `db:"survivor_count"`
	LiveDataCount   int       `db:"live_data_count"`
	FailedDriving   int       `db:"failed_driving"`
	FailedTransit   int       `db:"failed_transit"`
	FailedWalking   int       `db:"failed_walking"`
	OccupancyFailed bool      `db:"occupancy_failed"`
	FellBack        bool      `db:"fell_back"`
	Outcome         string    `db:"outcome"`
	DurationMS      int64     `db:"duration_ms"`
	StartedAt       time.Time `db:"started_at"`
	FinishedAt      time.Time `db:"finished_at"`
}

const insertRunQuery = `
	INSERT INTO recommendation_runs (
		id, path, state, start_address, venue_name,
		candidate_count, survivor_count, live_data_count,
		failed_driving, failed_transit, failed_walking,
		occupancy_failed, fell_back, outcome, duration_ms,
		started_at, finished_at
	) VALUES (
		:id, :path, :state, :start_address, :venue_name,
		:candidate_count, :survivor_count, :live_data_count,
		:failed_driving, :failed_transit, :failed_walking,
		:occupancy_failed, :fell_back, :outcome, :duration_ms,
		:started_at, :finished_at
	)`

// SaveRun сохраняет сводку одного расчёта
func (r *runRepository) SaveRun(ctx context.Context, run *domain.OrchestrationRun) error {
	row := toRunRow(run)
	if _, err := r.db.NamedExecContext(ctx, insertRunQuery, row); err != nil {
		r.db.logger.Error("Failed to save recommendation run",
			zap.String("run_id", row.ID),
			zap.Error(err))
		return fmt.Errorf("failed to save run: %w", err)
	}

	r.db.logger.Debug("Recommendation run saved", zap.String("run_id", row.ID))
	return nil
}

func toRunRow(run *domain.OrchestrationRun) runRow {
	return runRow{
		ID:              run.ID.String(),
		Path:            string(run.Path),
		State:           string(run.State),
		StartAddress:    run.StartAddress,
		VenueName:       run.VenueName,
		CandidateCount:  run.CandidateCount,
		SurvivorCount:   run.SurvivorCount,
		LiveDataCount:   run.LiveDataCount,
		FailedDriving:   run.FailedLegs[domain.ModeDriving],
		FailedTransit:   run.FailedLegs[domain.ModeTransit],
		FailedWalking:   run.FailedLegs[domain.ModeWalking],
		OccupancyFailed: run.OccupancyFailed,
		FellBack:        run.FellBack,
		Outcome:         run.Outcome,
		DurationMS:      run.Duration().Milliseconds(),
		StartedAt:       run.StartedAt,
		FinishedAt:      run.FinishedAt,
	}
}
