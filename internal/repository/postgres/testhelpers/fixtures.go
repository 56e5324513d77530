package testhelpers

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// StoredRun is the subset of an audit row the tests assert on
type StoredRun struct {
	ID             string `db:"id"`
	Path           string `db:"path"`
	CandidateCount int    `db:"candidate_count"`
	SurvivorCount  int    `db:"survivor_count"`
	FailedDriving  int    `db:"failed_driving"`
	FailedTransit  int    `db:"failed_transit"`
	FailedWalking  int    `db:"failed_walking"`
	Outcome        string `db:"outcome"`
	DurationMS     int64  `db:"duration_ms"`
}

// GetRun loads one audit row by id
func GetRun(ctx context.Context, db *sqlx.DB, id string) (*StoredRun, error) {
	var run StoredRun
	err := db.GetContext(ctx, &run, `
		SELECT id, path, candidate_count, survivor_count,
		       failed_driving, failed_transit, failed_walking, outcome, duration_ms
		FROM recommendation_runs WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
