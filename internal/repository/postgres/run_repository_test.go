package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/matchroute-service/internal/domain"
	"github.com/matchroute-service/internal/repository/postgres"
	"github.com/matchroute-service/internal/repository/postgres/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RunRepositorySuite struct {
	suite.Suite
	tdb *testhelpers.TestDB
}

func (s *RunRepositorySuite) SetupSuite() {
	s.tdb = testhelpers.SetupTestDB(s.T())
	require.NoError(s.T(), testhelpers.ApplyMigrations(s.tdb.DB.DB, "migrations"))
}

func (s *RunRepositorySuite) TearDownSuite() {
	if s.tdb != nil {
		s.tdb.Close()
	}
}

func (s *RunRepositorySuite) SetupTest() {
	require.NoError(s.T(), s.tdb.Cleanup(context.Background()))
}

func (s *RunRepositorySuite) TestSaveRun() {
	ctx := context.Background()
	repo := testhelpers.NewRunRepositoryForTest(s.tdb.DB, s.tdb.Logger)

	started := time.Date(2025, 3, 8, 14, 0, 0, 0, time.UTC)
	run := domain.NewOrchestrationRun("Dortmund Hbf", domain.Venue{Name: "Signal Iduna Park"}, 3, started)
	run.Path = domain.PathConcurrent
	run.State = domain.StateDone
	run.SurvivorCount = 2
	run.FailedLegs[domain.ModeDriving] = 1
	run.Outcome = "ok"
	run.FinishedAt = started.Add(1500 * time.Millisecond)

	require.NoError(s.T(), repo.SaveRun(ctx, run))

	stored, err := testhelpers.GetRun(ctx, s.tdb.DB, run.ID.String())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "concurrent", stored.Path)
	assert.Equal(s.T(), 3, stored.CandidateCount)
	assert.Equal(s.T(), 2, stored.SurvivorCount)
	assert.Equal(s.T(), 1, stored.FailedDriving)
	assert.Equal(s.T(), 0, stored.FailedTransit)
	assert.Equal(s.T(), int64(1500), stored.DurationMS)

	// duplicate id is rejected
	assert.Error(s.T(), repo.SaveRun(ctx, run))
}

func (s *RunRepositorySuite) TestEnsureSchemaIsIdempotent() {
	db := postgres.NewDBForTest(s.tdb.DB, s.tdb.Logger)
	require.NoError(s.T(), db.EnsureSchema(context.Background()))
	require.NoError(s.T(), db.EnsureSchema(context.Background()))
}

func TestRunRepositorySuite(t *testing.T) {
	suite.Run(t, new(RunRepositorySuite))
}
