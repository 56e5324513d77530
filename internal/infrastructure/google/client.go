package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/matchroute-service/internal/config"
	"github.com/matchroute-service/internal/domain"
	"github.com/matchroute-service/internal/domain/repository"
	"github.com/matchroute-service/internal/metrics"
	"github.com/twpayne/go-polyline"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	transitModes             = "bus|subway|train|tram"
	transitRoutingPreference = "fewer_transfers"
	trafficModel             = "best_guess"
	statusOK                 = "OK"
)

type client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	language   string
	region     string
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewDirectionsClient создает клиент Google Directions API.
// Пул соединений и таймауты берутся из конфигурации.
func NewDirectionsClient(cfg *config.DirectionsConfig, m *metrics.Metrics, logger *zap.Logger) repository.DirectionsRepository {
	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          cfg.MaxConcurrentConnections,
		MaxIdleConnsPerHost:   cfg.MaxConcurrentPerHost,
		MaxConnsPerHost:       cfg.MaxConcurrentPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
	}

	limit := rate.Inf
	if cfg.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.RateLimitRPS)
	}
	burst := cfg.MaxConcurrentConnections
	if burst < 1 {
		burst = 1
	}

	return &client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.TotalTimeout,
		},
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		region:   cfg.Region,
		limiter:  rate.NewLimiter(limit, burst),
		metrics:  m,
		logger:   logger,
	}
}

type directionsResponse struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message"`
	Routes       []route `json:"routes"`
}

type route struct {
	Legs             []leg `json:"legs"`
	OverviewPolyline *struct {
		Points string `json:"points"`
	} `json:"overview_polyline"`
}

type leg struct {
	Duration          *valueField `json:"duration"`
	DurationInTraffic *valueField `json:"duration_in_traffic"`
	Distance          *valueField `json:"distance"`
	StartAddress      string      `json:"start_address"`
	EndAddress        string      `json:"end_address"`
}

type valueField struct {
	Value int `json:"value"`
}

// GetLeg запрашивает один участок маршрута
func (c *client) GetLeg(
	ctx context.Context,
	mode domain.TravelMode,
	origin, destination string,
	departAt time.Time,
) (*domain.RouteLeg, error) {
	started := time.Now()
	result, err := c.getLeg(ctx, mode, origin, destination, departAt)

	outcome := "ok"
	if err != nil {
		var legErr *domain.LegError
		if errors.As(err, &legErr) {
			outcome = string(legErr.Kind)
		}
		c.logger.Warn("Directions request failed",
			zap.String("mode", string(mode)),
			zap.String("origin", origin),
			zap.String("destination", destination),
			zap.Error(err))
	}
	c.metrics.ObserveLeg(string(mode), outcome, time.Since(started))

	return result, err
}

func (c *client) getLeg(
	ctx context.Context,
	mode domain.TravelMode,
	origin, destination string,
	departAt time.Time,
) (*domain.RouteLeg, error) {
	if !mode.Valid() {
		return nil, &domain.LegError{Kind: domain.LegErrMalformed, Mode: mode, Err: fmt.Errorf("unsupported mode %q", mode)}
	}

	// limiter errors only come from the context
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &domain.LegError{Kind: domain.LegErrTimeout, Mode: mode, Err: err}
	}

	reqURL := c.baseURL + "/directions/json?" + c.buildQuery(mode, origin, destination, departAt).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &domain.LegError{Kind: domain.LegErrMalformed, Mode: mode, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(mode, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &domain.LegError{
			Kind:       domain.LegErrUpstreamStatus,
			Mode:       mode,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("body: %s", string(body)),
		}
	}

	var payload directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		if isTimeout(err) {
			return nil, &domain.LegError{Kind: domain.LegErrTimeout, Mode: mode, Err: err}
		}
		return nil, &domain.LegError{Kind: domain.LegErrMalformed, Mode: mode, Err: fmt.Errorf("decode response: %w", err)}
	}

	if payload.Status != statusOK {
		var detail error
		if payload.ErrorMessage != "" {
			detail = errors.New(payload.ErrorMessage)
		}
		return nil, &domain.LegError{Kind: domain.LegErrUpstreamStatus, Mode: mode, Status: payload.Status, Err: detail}
	}

	return c.normalize(mode, &payload)
}

func (c *client) buildQuery(mode domain.TravelMode, origin, destination string, departAt time.Time) url.Values {
	params := url.Values{}
	params.Set("origin", origin)
	params.Set("destination", destination)
	params.Set("mode", string(mode))
	params.Set("key", c.apiKey)
	params.Set("language", c.language)
	params.Set("region", c.region)

	switch mode {
	case domain.ModeDriving:
		params.Set("departure_time", departureTime(departAt))
		params.Set("traffic_model", trafficModel)
		params.Set("avoid", "tolls")
	case domain.ModeTransit:
		params.Set("departure_time", departureTime(departAt))
		params.Set("transit_mode", transitModes)
		params.Set("transit_routing_preference", transitRoutingPreference)
	}

	return params
}

// departureTime renders unix seconds; zero time means "now".
func departureTime(t time.Time) string {
	if t.IsZero() {
		return "now"
	}
	return strconv.FormatInt(t.Unix(), 10)
}

func (c *client) normalize(mode domain.TravelMode, payload *directionsResponse) (*domain.RouteLeg, error) {
	malformed := func(msg string) error {
		return &domain.LegError{Kind: domain.LegErrMalformed, Mode: mode, Status: payload.Status, Err: errors.New(msg)}
	}

	if len(payload.Routes) == 0 {
		return nil, malformed("empty route list")
	}
	r := payload.Routes[0]
	if len(r.Legs) == 0 {
		return nil, malformed("route has no legs")
	}
	l := r.Legs[0]
	if l.Duration == nil {
		return nil, malformed("missing duration")
	}
	if l.Distance == nil {
		return nil, malformed("missing distance")
	}
	if r.OverviewPolyline == nil {
		return nil, malformed("missing overview_polyline")
	}

	// геометрия нужна только для отрисовки, время и дистанция валидны без неё
	coords, _, err := polyline.DecodeCoords([]byte(r.OverviewPolyline.Points))
	if err != nil {
		c.logger.Warn("Failed to decode overview polyline",
			zap.String("mode", string(mode)),
			zap.Error(err))
		coords = nil
	}

	result := &domain.RouteLeg{
		Mode:             mode,
		DurationSeconds:  l.Duration.Value,
		DistanceMeters:   l.Distance.Value,
		PathEncoding:     r.OverviewPolyline.Points,
		PathPoints:       len(coords),
		OriginLabel:      l.StartAddress,
		DestinationLabel: l.EndAddress,
	}
	if mode == domain.ModeDriving && l.DurationInTraffic != nil {
		traffic := l.DurationInTraffic.Value
		result.DurationInTrafficSeconds = &traffic
	}

	return result, nil
}

func classifyTransportError(mode domain.TravelMode, err error) error {
	if isTimeout(err) {
		return &domain.LegError{Kind: domain.LegErrTimeout, Mode: mode, Err: err}
	}
	return &domain.LegError{Kind: domain.LegErrNetwork, Mode: mode, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
