package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/matchroute-service/internal/domain"
	"github.com/matchroute-service/internal/usecase"
)

// fakeDirections answers legs from a map keyed "origin|destination|mode".
// Unknown keys answer ZERO_RESULTS.
type fakeDirections struct {
	mu     sync.Mutex
	legs   map[string]domain.RouteLeg
	errs   map[string]error
	delays map[string]time.Duration
	panics map[string]bool
	calls  []string
}

func newFakeDirections() *fakeDirections {
	return &fakeDirections{
		legs:   make(map[string]domain.RouteLeg),
		errs:   make(map[string]error),
		delays: make(map[string]time.Duration),
		panics: make(map[string]bool),
	}
}

func legKey(origin, destination string, mode domain.TravelMode) string {
	return origin + "|" + destination + "|" + string(mode)
}

func (f *fakeDirections) setLeg(origin, destination string, mode domain.TravelMode, seconds int, traffic *int) {
	f.legs[legKey(origin, destination, mode)] = domain.RouteLeg{
		Mode:                     mode,
		DurationSeconds:          seconds,
		DurationInTrafficSeconds: traffic,
		DistanceMeters:           seconds * 8,
		PathEncoding:             "_p~iF~ps|U_ulLnnqC_mqNvxq`@",
		PathPoints:               3,
		OriginLabel:              origin,
		DestinationLabel:         destination,
	}
}

func (f *fakeDirections) setErr(origin, destination string, mode domain.TravelMode, err error) {
	f.errs[legKey(origin, destination, mode)] = err
}

func (f *fakeDirections) GetLeg(ctx context.Context, mode domain.TravelMode, origin, destination string, departAt time.Time) (*domain.RouteLeg, error) {
	key := legKey(origin, destination, mode)

	f.mu.Lock()
	f.calls = append(f.calls, key)
	delay := f.delays[key]
	shouldPanic := f.panics[key]
	leg, hasLeg := f.legs[key]
	err := f.errs[key]
	f.mu.Unlock()

	if shouldPanic {
		panic("directions client exploded")
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, &domain.LegError{Kind: domain.LegErrTimeout, Mode: mode, Err: ctx.Err()}
		}
	}

	if err != nil {
		return nil, err
	}
	if !hasLeg {
		return nil, &domain.LegError{Kind: domain.LegErrUpstreamStatus, Mode: mode, Status: "ZERO_RESULTS"}
	}
	return &leg, nil
}

func (f *fakeDirections) recordedCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// MockOccupancyRepository is a mock of OccupancyRepository
type MockOccupancyRepository struct {
	mock.Mock
}

func (m *MockOccupancyRepository) FetchAll(ctx context.Context) ([]domain.OccupancySnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OccupancySnapshot), args.Error(1)
}

func (m *MockOccupancyRepository) Source() string {
	return "dortmund"
}

// MockRunRepository is a mock of RunRepository
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) SaveRun(ctx context.Context, run *domain.OrchestrationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// MockCommentaryRepository is a mock of CommentaryRepository
type MockCommentaryRepository struct {
	mock.Mock
}

func (m *MockCommentaryRepository) Summarize(ctx context.Context, score, delayMinutes int, weather, place string) (string, error) {
	args := m.Called(ctx, score, delayMinutes, weather, place)
	return args.String(0), args.Error(1)
}

// MockRecommender is a mock of Recommender
type MockRecommender struct {
	mock.Mock
}

func (m *MockRecommender) Run(ctx context.Context, startAddress string, candidates []domain.ParkingCandidate, venue domain.Venue) (*usecase.RecommendResult, error) {
	args := m.Called(ctx, startAddress, candidates, venue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.RecommendResult), args.Error(1)
}

func intPtr(v int) *int {
	return &v
}
