package usecase

import (
	"context"

	"github.com/matchroute-service/internal/domain"
	"github.com/matchroute-service/internal/domain/repository"
	"github.com/matchroute-service/internal/pkg/utils"
	"github.com/matchroute-service/internal/usecase/dto"
	"go.uber.org/zap"
)

// Recommender - ранжирование кандидатов с итогом расчёта
type Recommender interface {
	Run(ctx context.Context, startAddress string, candidates []domain.ParkingCandidate, venue domain.Venue) (*RecommendResult, error)
}

// SuggestUseCase - рекомендация для клиента: лучший вариант, альтернативы и сводка
type SuggestUseCase struct {
	recommender Recommender
	commentary  repository.CommentaryRepository
	sources     map[string]string
	logger      *zap.Logger
}

// NewSuggestUseCase создает SuggestUseCase. commentary может быть nil.
func NewSuggestUseCase(
	recommender Recommender,
	commentary repository.CommentaryRepository,
	occupancySource string,
	logger *zap.Logger,
) *SuggestUseCase {
	sources := map[string]string{
		"routes":  "google_directions",
		"traffic": "google_directions",
	}
	if occupancySource != "" {
		sources["occupancy"] = occupancySource + "_open_data"
	}
	if commentary != nil {
		sources["commentary"] = "openai"
	}

	return &SuggestUseCase{
		recommender: recommender,
		commentary:  commentary,
		sources:     sources,
		logger:      logger,
	}
}

// Suggest runs the recommendation and splits the ranked list into the best entry and alternatives.
func (uc *SuggestUseCase) Suggest(ctx context.Context, req *dto.RecommendRequest) (*dto.SuggestResponse, error) {
	venue := req.Venue.ToDomain()
	result, err := uc.recommender.Run(ctx, req.StartAddress, dto.CandidatesToDomain(req.Candidates), venue)
	if err != nil {
		return nil, err
	}

	recs := result.Recommendations
	resp := &dto.SuggestResponse{
		Alternatives: []domain.RouteRecommendation{},
		Meta:         uc.meta(result),
	}
	if len(recs) == 0 {
		return resp, nil
	}

	best := recs[0]
	uc.enrichComment(ctx, &best, req.Weather, venue)

	resp.Recommended = &best
	resp.Alternatives = append(resp.Alternatives, recs[1:]...)

	return resp, nil
}

// enrichComment replaces the template comment with generated text; failures keep the template.
func (uc *SuggestUseCase) enrichComment(ctx context.Context, best *domain.RouteRecommendation, weather string, venue domain.Venue) {
	if uc.commentary == nil {
		return
	}

	delay := best.DelayMinutes()
	if delay < 0 {
		delay = 0
	}

	place := venue.Name
	if place == "" {
		place = best.Candidate.Name
	}

	text, err := uc.commentary.Summarize(ctx, best.TrafficRating.Score, delay, weather, place)
	if err != nil {
		uc.logger.Warn("Commentary unavailable, keeping template comment",
			zap.Int64("candidate_id", best.Candidate.ID),
			zap.Error(err))
		return
	}
	if text != "" {
		best.TrafficRating.Comment = text
	}
}

func (uc *SuggestUseCase) meta(result *RecommendResult) dto.SuggestMeta {
	run := result.Run
	total := len(result.Recommendations)

	meta := dto.SuggestMeta{
		RunID:             run.ID,
		Path:              run.Path,
		FellBack:          run.FellBack,
		TotalOptions:      total,
		LiveDataAvailable: run.LiveDataCount,
		DataSources:       uc.sources,
		FailedLegs:        run.FailedLegs,
		DurationMS:        run.Duration().Milliseconds(),
	}
	if total > 0 {
		meta.LiveDataPercentage = utils.Round1(float64(run.LiveDataCount) / float64(total) * 100)
	}
	return meta
}
