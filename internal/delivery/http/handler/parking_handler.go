package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/matchroute-service/internal/domain"
	"github.com/matchroute-service/internal/pkg/errors"
	"github.com/matchroute-service/internal/pkg/utils"
	"github.com/matchroute-service/internal/pkg/validator"
	"github.com/matchroute-service/internal/usecase/dto"
	"go.uber.org/zap"
)

// OccupancyService - живая загрузка парковок
type OccupancyService interface {
	Overview(ctx context.Context) (*domain.OccupancyOverview, error)
	LiveStatus(ctx context.Context, candidate domain.ParkingCandidate) (*domain.OccupancySnapshot, error)
}

// ParkingHandler - обработчик живых данных о парковках
type ParkingHandler struct {
	occupancy OccupancyService
	logger    *zap.Logger
}

// NewParkingHandler - создание нового ParkingHandler
func NewParkingHandler(occupancy OccupancyService, logger *zap.Logger) *ParkingHandler {
	return &ParkingHandler{
		occupancy: occupancy,
		logger:    logger,
	}
}

// Overview godoc
// @Summary Сводка живой загрузки парковок
// @Description Все парковки из открытых данных с общей вместимостью, свободными местами и средней загрузкой
// @Tags Parking
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=domain.OccupancyOverview}
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/parking/live [get]
func (h *ParkingHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.occupancy.Overview(c.UserContext())
	if err != nil {
		h.logger.Warn("Occupancy overview failed", zap.Error(err))
		return utils.SendError(c, occupancyError(err))
	}

	return utils.SendSuccess(c, overview, &utils.Meta{
		Total: overview.TotalLocations,
	})
}

// Match godoc
// @Summary Живые данные для одной парковки
// @Description Сопоставляет парковку с записью открытых данных по названию или расстоянию до 200 м
// @Tags Parking
// @Accept json
// @Produce json
// @Param request body dto.CandidateRequest true "Парковка"
// @Success 200 {object} utils.SuccessResponse{data=dto.LiveMatchResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/parking/live/match [post]
func (h *ParkingHandler) Match(c *fiber.Ctx) error {
	var req dto.CandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"body": "invalid JSON",
		}))
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, invalidRequest(err))
	}

	candidate := req.ToDomain()
	match, err := h.occupancy.LiveStatus(c.UserContext(), candidate)
	if err != nil {
		h.logger.Warn("Live status failed", zap.Int64("candidate_id", candidate.ID), zap.Error(err))
		return utils.SendError(c, occupancyError(err))
	}

	return utils.SendSuccess(c, dto.LiveMatchResponse{
		Candidate:   candidate,
		HasLiveData: match != nil,
		Occupancy:   match,
	}, nil)
}
