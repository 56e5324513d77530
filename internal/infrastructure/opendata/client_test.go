package opendata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matchroute-service/internal/clock"
	"github.com/matchroute-service/internal/config"
	"github.com/matchroute-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleRecords = `{
  "total_count": 3,
  "results": [
    {
      "id": "P12",
      "name": "Parkhaus Westfalenhallen",
      "type": "Parkhaus",
      "geo_point_2d": {"lat": 51.4953, "lon": 7.4557},
      "frei": 10,
      "capacity": 100,
      "zeitstempel": "2025-03-08T14:57:00+00:00",
      "parkeinrichtung": "Parkhaus",
      "stand": "08.03.2025 15:57",
      "montag": "06:00-23:00",
      "dienstag": "-",
      "sonntag": "10:00-20:00"
    },
    {
      "id": 7,
      "name": "Parkplatz ohne Koordinaten",
      "frei": 50,
      "capacity": 80
    },
    {
      "name": "Parkplatz Remydamm",
      "geo_point_2d": {"lat": 51.4911, "lon": 7.4488},
      "frei": 0,
      "capacity": 0
    }
  ]
}`

func testConfig(apiURL string) *config.OccupancyConfig {
	return &config.OccupancyConfig{
		APIURL:     apiURL,
		Limit:      100,
		Timezone:   "Europe/Berlin",
		Timeout:    2 * time.Second,
		SourceName: "dortmund",
	}
}

func TestClient_FetchAll(t *testing.T) {
	logger := zap.NewNop()
	now := time.Date(2025, 3, 8, 15, 0, 0, 0, time.UTC)

	t.Run("successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "100", r.URL.Query().Get("limit"))
			assert.Equal(t, "Europe/Berlin", r.URL.Query().Get("timezone"))
			assert.Equal(t, userAgent, r.Header.Get("User-Agent"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(sampleRecords))
		}))
		defer server.Close()

		c := NewOccupancyClient(testConfig(server.URL), clock.NewMockClock(now), logger)
		snapshots, err := c.FetchAll(context.Background())

		require.NoError(t, err)
		require.Len(t, snapshots, 2)
		assert.Equal(t, "dortmund", c.Source())

		first := snapshots[0]
		assert.Equal(t, "P12", first.SourceID)
		assert.Equal(t, "Parkhaus Westfalenhallen", first.Name)
		assert.Equal(t, 10, first.FreeCount)
		assert.Equal(t, 100, first.Capacity)
		assert.Equal(t, 90.0, first.OccupancyRate)
		assert.Equal(t, 2, first.AvailabilityScore)
		assert.Equal(t, "Wenige Plätze frei (10 verfügbar)", first.OccupancyText)
		assert.Equal(t, domain.FreshnessLive, first.Freshness.Class)
		require.NotNil(t, first.Freshness.AgeMinutes)
		assert.Equal(t, 3, *first.Freshness.AgeMinutes)
		assert.Equal(t, map[string]string{"montag": "06:00-23:00", "sonntag": "10:00-20:00"}, first.OpeningHours)

		capacityless := snapshots[1]
		assert.Equal(t, "Parkhaus", capacityless.Type)
		assert.False(t, capacityless.HasCapacity())
		assert.Equal(t, 0.0, capacityless.OccupancyRate)
		assert.Equal(t, 1, capacityless.AvailabilityScore)
		assert.Equal(t, domain.FreshnessUnknown, capacityless.Freshness.Class)
		assert.Nil(t, capacityless.Freshness.AgeMinutes)
	})

	t.Run("missing results is a schema error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"total_count": 0}`))
		}))
		defer server.Close()

		c := NewOccupancyClient(testConfig(server.URL), clock.NewMockClock(now), logger)
		_, err := c.FetchAll(context.Background())

		var occErr *domain.OccupancyError
		require.True(t, errors.As(err, &occErr))
		assert.Equal(t, domain.OccupancyErrSchema, occErr.Kind)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		c := NewOccupancyClient(testConfig(server.URL), clock.NewMockClock(now), logger)
		_, err := c.FetchAll(context.Background())

		var occErr *domain.OccupancyError
		require.True(t, errors.As(err, &occErr))
		assert.Equal(t, domain.OccupancyErrNetwork, occErr.Kind)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			_, _ = w.Write([]byte(sampleRecords))
		}))
		defer server.Close()

		cfg := testConfig(server.URL)
		cfg.Timeout = 50 * time.Millisecond
		c := NewOccupancyClient(cfg, clock.NewMockClock(now), logger)
		_, err := c.FetchAll(context.Background())

		var occErr *domain.OccupancyError
		require.True(t, errors.As(err, &occErr))
		assert.Equal(t, domain.OccupancyErrTimeout, occErr.Kind)
	})
}

func TestAvailabilityScore(t *testing.T) {
	tests := []struct {
		name     string
		free     int
		capacity int
		rate     float64
		score    int
	}{
		{"empty garage", 100, 100, 0, 5},
		{"30 percent boundary", 70, 100, 30, 5},
		{"half full", 50, 100, 50, 4},
		{"85 percent boundary", 15, 100, 85, 3},
		{"90 percent", 10, 100, 90, 2},
		{"almost full", 2, 100, 98, 1},
		{"no capacity", 0, 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate := OccupancyRate(tt.free, tt.capacity)
			assert.Equal(t, tt.rate, rate)
			assert.Equal(t, tt.score, AvailabilityScore(tt.capacity, rate))
		})
	}
}

func TestAssessFreshness(t *testing.T) {
	now := time.Date(2025, 3, 8, 15, 0, 0, 0, time.UTC)
	at := func(minutesAgo int) *time.Time {
		ts := now.Add(-time.Duration(minutesAgo) * time.Minute)
		return &ts
	}

	assert.Equal(t, domain.FreshnessLive, AssessFreshness(at(5), now).Class)
	assert.Equal(t, domain.FreshnessCurrent, AssessFreshness(at(10), now).Class)
	assert.Equal(t, domain.FreshnessModerate, AssessFreshness(at(30), now).Class)
	assert.Equal(t, domain.FreshnessStale, AssessFreshness(at(31), now).Class)
	assert.Equal(t, domain.FreshnessUnknown, AssessFreshness(nil, now).Class)
}

func TestProcessItem_LocalTimestamp(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	now := time.Date(2025, 3, 8, 14, 0, 0, 0, time.UTC)

	snapshot, ok := ProcessItem([]byte(`{"name":"P","geo_point_2d":{"lat":51.5,"lon":7.4},"zeitstempel":"2025-03-08T14:58:00"}`), now, loc)
	require.True(t, ok)
	require.NotNil(t, snapshot.LastUpdate)
	// 14:58 Berlin is 13:58 UTC in March
	assert.Equal(t, 2, *snapshot.Freshness.AgeMinutes)

	_, ok = ProcessItem([]byte(`{"name":"P","geo_point_2d":{"lat":51.5}}`), now, loc)
	assert.False(t, ok)

	_, ok = ProcessItem([]byte(`{"name":"P","geo_point_2d":{"lat":151.5,"lon":7.4}}`), now, loc)
	assert.False(t, ok)

	_, ok = ProcessItem([]byte(`not json`), now, loc)
	assert.False(t, ok)
}
