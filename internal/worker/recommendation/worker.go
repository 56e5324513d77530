package recommendation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/matchroute-service/internal/domain"
	"github.com/matchroute-service/internal/domain/repository"
	"github.com/matchroute-service/internal/pkg/errors"
	"github.com/matchroute-service/internal/pkg/validator"
	"github.com/matchroute-service/internal/usecase/dto"
	"github.com/matchroute-service/internal/worker"
	"go.uber.org/zap"
)

const (
	maxBatchSize    = 10                     // рекомендации тяжёлые, берём немного
	emptyQueueSleep = 200 * time.Millisecond // пауза если очередь пуста
	errorSleep      = time.Second
	publishBackoff  = 100 * time.Millisecond
)

// Suggester - расчёт рекомендации
type Suggester interface {
	Suggest(ctx context.Context, req *dto.RecommendRequest) (*dto.SuggestResponse, error)
}

// Worker читает stream:route:recommend и публикует результаты в stream:route:done
type Worker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	suggester    Suggester
	consumerName string
	maxRetries   int
}

// NewWorker создает новый воркер рекомендаций
func NewWorker(
	streamRepo repository.StreamRepository,
	suggester Suggester,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *Worker {
	// имя стабильно между перезапусками, чтобы свой PEL перечитывался после рестарта
	consumerName, _ := os.Hostname()
	if consumerName == "" {
		consumerName = "route-recommendation"
	}

	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Worker{
		BaseWorker:   worker.NewBaseWorker("route-recommendation", consumerGroup, logger),
		streamRepo:   streamRepo,
		suggester:    suggester,
		consumerName: consumerName,
		maxRetries:   maxRetries,
	}
}

// Start запускает воркер
func (w *Worker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting recommendation worker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Int("max_batch_size", maxBatchSize))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamRouteRecommend, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
			processed, err := w.ProcessBatch(ctx)
			if err != nil {
				logger.Error("Failed to process batch", zap.Error(err))
				w.sleep(ctx, errorSleep)
				continue
			}
			if processed == 0 {
				w.sleep(ctx, emptyQueueSleep)
			}
		}
	}
}

// ProcessBatch answers this consumer's pending events first, then up to maxBatchSize
// in total with new ones, and acks what was published. Returns the number of messages read.
func (w *Worker) ProcessBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	// pending: выданы ранее, но ответ так и не опубликован
	messages, err := w.streamRepo.ConsumePending(
		ctx,
		domain.StreamRouteRecommend,
		w.ConsumerGroup(),
		w.consumerName,
		maxBatchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to read pending messages: %w", err)
	}
	if len(messages) > 0 {
		logger.Info("Retrying pending messages", zap.Int("message_count", len(messages)))
	}

	if remaining := maxBatchSize - len(messages); remaining > 0 {
		fresh, err := w.streamRepo.ConsumeBatch(
			ctx,
			domain.StreamRouteRecommend,
			w.ConsumerGroup(),
			w.consumerName,
			int64(remaining),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to consume batch: %w", err)
		}
		messages = append(messages, fresh...)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	logger.Info("Processing batch", zap.Int("message_count", len(messages)))

	ackIDs := make([]string, 0, len(messages))
	publishFailed := 0
	for _, msg := range messages {
		event, err := parseMessage(msg)
		if err != nil {
			logger.Warn("Failed to parse message, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			w.MarkMalformed()
			// битое сообщение подтверждаем, чтобы не застревало
			ackIDs = append(ackIDs, msg.ID)
			continue
		}

		done := w.handle(ctx, event)
		if err := w.publish(ctx, done); err != nil {
			// не подтверждаем: сообщение остаётся в PEL и перечитывается следующим ProcessBatch
			logger.Error("Failed to publish done event",
				zap.String("request_id", event.RequestID.String()),
				zap.String("message_id", msg.ID),
				zap.Error(err))
			publishFailed++
			continue
		}
		ackIDs = append(ackIDs, msg.ID)
	}

	if len(ackIDs) > 0 {
		if err := w.streamRepo.AckMessages(ctx, domain.StreamRouteRecommend, w.ConsumerGroup(), ackIDs); err != nil {
			logger.Error("Failed to ack messages", zap.Error(err))
		}
	}

	if publishFailed == len(messages) {
		return len(messages), fmt.Errorf("failed to publish %d done events", publishFailed)
	}
	return len(messages), nil
}

// handle computes the answer for one event; failures become error events.
func (w *Worker) handle(ctx context.Context, event *domain.RecommendEvent) *domain.RecommendDoneEvent {
	done := &domain.RecommendDoneEvent{RequestID: event.RequestID}

	req := dto.FromEvent(event)
	if err := validator.Validate(&req); err != nil {
		w.MarkFailed()
		appErr := errors.ErrInvalidRequest.WithDetails(validator.Details(err))
		done.Error = appErr.Message
		done.ErrorCode = appErr.Code
		return done
	}

	resp, err := w.suggester.Suggest(ctx, &req)
	if err != nil {
		w.MarkFailed()
		done.Error = err.Error()
		done.ErrorCode = errors.ErrInternalServer.Code
		if appErr, ok := errors.As(err); ok {
			done.Error = appErr.Message
			done.ErrorCode = appErr.Code
		}
		w.Logger().Info("Recommendation failed",
			zap.String("request_id", event.RequestID.String()),
			zap.String("code", done.ErrorCode))
		return done
	}

	w.MarkProcessed()
	done.RunID = resp.Meta.RunID
	done.Path = resp.Meta.Path
	done.Recommended = resp.Recommended
	done.Alternatives = resp.Alternatives
	return done
}

func (w *Worker) publish(ctx context.Context, done *domain.RecommendDoneEvent) error {
	var err error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		if err = w.streamRepo.PublishToStream(ctx, domain.StreamRouteDone, done); err == nil {
			return nil
		}
		if attempt < w.maxRetries {
			w.sleep(ctx, time.Duration(attempt)*publishBackoff)
		}
	}
	return err
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	case <-w.StopChan():
	}
}

func parseMessage(msg domain.StreamMessage) (*domain.RecommendEvent, error) {
	var event domain.RecommendEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return &event, nil
}
