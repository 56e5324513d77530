package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/matchroute-service/internal/pkg/errors"
	"github.com/matchroute-service/internal/pkg/utils"
	"github.com/matchroute-service/internal/pkg/validator"
	"github.com/matchroute-service/internal/usecase/dto"
	"go.uber.org/zap"
)

// RouteSuggester - расчёт рекомендации для клиента
type RouteSuggester interface {
	Suggest(ctx context.Context, req *dto.RecommendRequest) (*dto.SuggestResponse, error)
}

// RouteHandler - обработчик рекомендаций маршрутов
type RouteHandler struct {
	suggester RouteSuggester
	logger    *zap.Logger
}

// NewRouteHandler - создание нового RouteHandler
func NewRouteHandler(suggester RouteSuggester, logger *zap.Logger) *RouteHandler {
	return &RouteHandler{
		suggester: suggester,
		logger:    logger,
	}
}

// Recommend godoc
// @Summary Рекомендация парковки и маршрута до стадиона
// @Description Для каждого кандидата запрашивает маршрут на машине до парковки, а также на транспорте и пешком от парковки до стадиона. Кандидаты без маршрута отбрасываются, остальные ранжируются по общему времени.
// @Tags Routes
// @Accept json
// @Produce json
// @Param request body dto.RecommendRequest true "Старт, стадион и кандидаты"
// @Success 200 {object} utils.SuccessResponse{data=dto.SuggestResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/routes/recommend [post]
func (h *RouteHandler) Recommend(c *fiber.Ctx) error {
	var req dto.RecommendRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"body": "invalid JSON",
		}))
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, invalidRequest(err))
	}

	result, err := h.suggester.Suggest(c.UserContext(), &req)
	if err != nil {
		h.logger.Info("Recommendation failed",
			zap.String("start_address", req.StartAddress),
			zap.Int("candidates", len(req.Candidates)),
			zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:    result.Meta.TotalOptions,
		RunID:    result.Meta.RunID.String(),
		TimeMSec: float64(result.Meta.DurationMS),
	})
}
