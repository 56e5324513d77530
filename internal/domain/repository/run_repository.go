package repository

import (
	"context"

	"github.com/matchroute-service/internal/domain"
)

// RunRepository - аудит выполненных расчётов
type RunRepository interface {
	SaveRun(ctx context.Context, run *domain.OrchestrationRun) error
}
