package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/matchroute-service/internal/worker"
)

// blockingWorker runs until stopped or cancelled.
type blockingWorker struct {
	*worker.BaseWorker
	started atomic.Int32
}

func newBlockingWorker(name string) *blockingWorker {
	return &blockingWorker{BaseWorker: worker.NewBaseWorker(name, "test-group", zap.NewNop())}
}

func (w *blockingWorker) Start(ctx context.Context) error {
	w.started.Add(1)
	select {
	case <-w.StopChan():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stuckWorker ignores Stop.
type stuckWorker struct {
	*worker.BaseWorker
	release chan struct{}
}

func (w *stuckWorker) Start(ctx context.Context) error {
	<-w.release
	return nil
}

type panickingWorker struct {
	*worker.BaseWorker
}

func (w *panickingWorker) Start(ctx context.Context) error {
	panic("boom")
}

func TestWorkerManager_StartWithoutWorkers(t *testing.T) {
	m := worker.NewWorkerManager(zap.NewNop(), 0)
	assert.Error(t, m.Start(context.Background()))
}

func TestWorkerManager_StartAndStop(t *testing.T) {
	m := worker.NewWorkerManager(zap.NewNop(), time.Second)
	a := newBlockingWorker("a")
	b := newBlockingWorker("b")
	m.Register(a)
	m.Register(b)

	require.NoError(t, m.Start(context.Background()))
	assert.Eventually(t, func() bool {
		return a.started.Load() == 1 && b.started.Load() == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, m.Stop())
	assert.True(t, a.IsStopped())
	assert.True(t, b.IsStopped())
}

func TestWorkerManager_StopTimesOut(t *testing.T) {
	m := worker.NewWorkerManager(zap.NewNop(), 50*time.Millisecond)
	stuck := &stuckWorker{
		BaseWorker: worker.NewBaseWorker("stuck", "test-group", zap.NewNop()),
		release:    make(chan struct{}),
	}
	defer close(stuck.release)
	m.Register(stuck)

	require.NoError(t, m.Start(context.Background()))
	err := m.Stop()
	assert.Error(t, err)
}

func TestWorkerManager_PanicDoesNotBlockShutdown(t *testing.T) {
	m := worker.NewWorkerManager(zap.NewNop(), time.Second)
	healthy := newBlockingWorker("healthy")
	m.Register(&panickingWorker{BaseWorker: worker.NewBaseWorker("panics", "test-group", zap.NewNop())})
	m.Register(healthy)

	require.NoError(t, m.Start(context.Background()))
	assert.Eventually(t, func() bool { return healthy.started.Load() == 1 }, time.Second, 10*time.Millisecond)

	assert.NoError(t, m.Stop())
}

func TestBaseWorker_Stats(t *testing.T) {
	w := worker.NewBaseWorker("stats", "test-group", zap.NewNop())
	w.MarkProcessed()
	w.MarkProcessed()
	w.MarkFailed()
	w.MarkMalformed()

	assert.Equal(t, worker.Stats{Processed: 2, Failed: 1, Malformed: 1}, w.Stats())
	assert.Equal(t, "test-group", w.ConsumerGroup())
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())

	select {
	case <-w.StopChan():
	default:
		t.Fatal(errors.New("stop channel not closed"))
	}
}
