package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/matchroute-service/internal/config"
	"github.com/matchroute-service/internal/delivery/http/handler"
	"github.com/matchroute-service/internal/domain"
	"github.com/matchroute-service/internal/metrics"
	"github.com/matchroute-service/internal/usecase/dto"
)

type stubSuggester struct{}

func (stubSuggester) Suggest(ctx context.Context, req *dto.RecommendRequest) (*dto.SuggestResponse, error) {
	return &dto.SuggestResponse{Alternatives: []domain.RouteRecommendation{}}, nil
}

type stubOccupancy struct{}

func (stubOccupancy) Overview(ctx context.Context) (*domain.OccupancyOverview, error) {
	return &domain.OccupancyOverview{TotalLocations: 0}, nil
}

func (stubOccupancy) LiveStatus(ctx context.Context, candidate domain.ParkingCandidate) (*domain.OccupancySnapshot, error) {
	return nil, nil
}

func newTestServer(t *testing.T) (*Server, *metrics.Metrics) {
	t.Helper()
	cfg := &config.Config{
		Server:     config.ServerConfig{CORSOrigins: "http://localhost:3000"},
		Directions: config.DirectionsConfig{TotalTimeout: 30 * time.Second},
	}
	logger := zap.NewNop()
	m := metrics.New(logger)

	s := NewServer(cfg, logger, m,
		handler.NewRouteHandler(stubSuggester{}, logger),
		handler.NewParkingHandler(stubOccupancy{}, logger),
		handler.NewHealthHandler(nil),
	)
	return s, m
}

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(t)

	resp, err := s.App().Test(httptest.NewRequest("GET", "/api/v1/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestServer_KeepsClientRequestID(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/parking/live", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestServer_NotFoundIsJSON(t *testing.T) {
	s, _ := newTestServer(t)

	resp, err := s.App().Test(httptest.NewRequest("GET", "/api/v1/unknown", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 404, resp.StatusCode)
	var body map[string]map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND", body["error"]["code"])
}

func TestServer_MetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/routes/recommend", strings.NewReader(
		`{"start_address": "Dortmund Hbf", "venue": {"lat": 51.49, "lng": 7.45}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = s.App().Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `matchroute_http_requests_total{method="POST",path="/api/v1/routes/recommend",status="200"} 1`)
}
