package worker

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Stats - счётчики обработанных сообщений воркера
type Stats struct {
	Processed int64
	Failed    int64
	Malformed int64
}

// BaseWorker содержит общую логику для всех воркеров
type BaseWorker struct {
	name          string
	logger        *zap.Logger
	stopChan      chan struct{}
	stopped       bool
	mu            sync.Mutex
	consumerGroup string

	processed atomic.Int64
	failed    atomic.Int64
	malformed atomic.Int64
}

// NewBaseWorker создает новый BaseWorker
func NewBaseWorker(name, consumerGroup string, logger *zap.Logger) *BaseWorker {
	return &BaseWorker{
		name:          name,
		logger:        logger.With(zap.String("worker", name)),
		stopChan:      make(chan struct{}),
		consumerGroup: consumerGroup,
	}
}

// Name возвращает имя воркера
func (w *BaseWorker) Name() string {
	return w.name
}

// Stop останавливает воркер; повторный вызов ничего не делает
func (w *BaseWorker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}

	stats := w.Stats()
	w.logger.Info("Stopping worker",
		zap.Int64("processed", stats.Processed),
		zap.Int64("failed", stats.Failed),
		zap.Int64("malformed", stats.Malformed))
	close(w.stopChan)
	w.stopped = true

	return nil
}

// IsStopped проверяет, остановлен ли воркер
func (w *BaseWorker) IsStopped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopped
}

// StopChan возвращает канал остановки
func (w *BaseWorker) StopChan() <-chan struct{} {
	return w.stopChan
}

// ConsumerGroup возвращает имя consumer group
func (w *BaseWorker) ConsumerGroup() string {
	return w.consumerGroup
}

// Logger возвращает логгер
func (w *BaseWorker) Logger() *zap.Logger {
	return w.logger
}

// MarkProcessed counts a message answered with a result event.
func (w *BaseWorker) MarkProcessed() {
	w.processed.Add(1)
}

// MarkFailed counts a message answered with an error event.
func (w *BaseWorker) MarkFailed() {
	w.failed.Add(1)
}

// MarkMalformed counts a message that could not be decoded.
func (w *BaseWorker) MarkMalformed() {
	w.malformed.Add(1)
}

func (w *BaseWorker) Stats() Stats {
	return Stats{
		Processed: w.processed.Load(),
		Failed:    w.failed.Load(),
		Malformed: w.malformed.Load(),
	}
}
