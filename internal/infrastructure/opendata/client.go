package opendata

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

	"github.com/matchroute-service/internal/clock"
	"github.com/matchroute-service/internal/config"
	"github.com/matchroute-service/internal/domain"
	"github.com/matchroute-service/internal/domain/repository"
	"go.uber.org/zap"
)

const userAgent = "MatchRoute-Research-App/1.0"

type client struct {
	httpClient *http.Client
	apiURL     string
	limit      int
	timezone   string
	location   *time.Location
	source     string
	clock      clock.Clock
	logger     *zap.Logger
}

// NewOccupancyClient создает клиент открытых данных о загрузке парковок
func NewOccupancyClient(cfg *config.OccupancyConfig, clk clock.Clock, logger *zap.Logger) repository.OccupancyRepository {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("Unknown occupancy timezone, using UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.UTC
	}

	return &client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiURL:     cfg.APIURL,
		limit:      cfg.Limit,
		timezone:   cfg.Timezone,
		location:   loc,
		source:     cfg.SourceName,
		clock:      clk,
		logger:     logger,
	}
}

func (c *client) Source() string {
	return c.source
}

type recordsResponse struct {
	Results *[]json.RawMessage `json:"results"`
}

// FetchAll загружает и нормализует все записи источника
func (c *client) FetchAll(ctx context.Context) ([]domain.OccupancySnapshot, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("timezone", c.timezone)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &domain.OccupancyError{Kind: domain.OccupancyErrNetwork, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &domain.OccupancyError{Kind: domain.OccupancyErrTimeout, Err: err}
		}
		return nil, &domain.OccupancyError{Kind: domain.OccupancyErrNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &domain.OccupancyError{
			Kind: domain.OccupancyErrNetwork,
			Err:  fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var payload recordsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		if isTimeout(err) {
			return nil, &domain.OccupancyError{Kind: domain.OccupancyErrTimeout, Err: err}
		}
		return nil, &domain.OccupancyError{Kind: domain.OccupancyErrSchema, Err: fmt.Errorf("decode response: %w", err)}
	}
	if payload.Results == nil {
		return nil, &domain.OccupancyError{Kind: domain.OccupancyErrSchema, Err: errors.New("missing results array")}
	}

	now := c.clock.Now()
	snapshots := make([]domain.OccupancySnapshot, 0, len(*payload.Results))
	dropped := 0
	for _, raw := range *payload.Results {
		snapshot, ok := ProcessItem(raw, now, c.location)
		if !ok {
			dropped++
			continue
		}
		snapshots = append(snapshots, snapshot)
	}

	c.logger.Info("Occupancy data loaded",
		zap.String("source", c.source),
		zap.Int("locations", len(snapshots)),
		zap.Int("dropped", dropped))

	return snapshots, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
