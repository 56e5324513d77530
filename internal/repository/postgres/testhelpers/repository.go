package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"github.com/matchroute-service/internal/domain/repository"
	"github.com/matchroute-service/internal/repository/postgres"
	"go.uber.org/zap"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewRunRepositoryForTest creates a run audit repository with test database and logger
func NewRunRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.RunRepository {
	return postgres.NewRunRepository(NewDBForTest(db, logger))
}
