package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/matchroute-service/internal/clock"
	"github.com/matchroute-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccupancyCache_Expiry(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2025, 3, 8, 15, 0, 0, 0, time.UTC))
	c := NewOccupancyCache(5*time.Minute, clk)

	_, ok := c.Get("dortmund")
	assert.False(t, ok)

	c.Set("dortmund", []domain.OccupancySnapshot{{Name: "P1"}})

	clk.Advance(4*time.Minute + 59*time.Second)
	got, ok := c.Get("dortmund")
	require.True(t, ok)
	assert.Equal(t, "P1", got[0].Name)

	clk.Advance(time.Second)
	_, ok = c.Get("dortmund")
	assert.False(t, ok)
}

func TestOccupancyCache_SetForUsesRemainingLifetime(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2025, 3, 8, 15, 0, 0, 0, time.UTC))
	c := NewOccupancyCache(5*time.Minute, clk)

	c.SetFor("dortmund", []domain.OccupancySnapshot{{Name: "P1"}}, 10*time.Second)
	clk.Advance(9 * time.Second)
	_, ok := c.Get("dortmund")
	assert.True(t, ok)

	clk.Advance(time.Second)
	_, ok = c.Get("dortmund")
	assert.False(t, ok)

	// never longer than the cache TTL
	c.SetFor("dortmund", []domain.OccupancySnapshot{{Name: "P2"}}, time.Hour)
	clk.Advance(5 * time.Minute)
	_, ok = c.Get("dortmund")
	assert.False(t, ok)
}

func TestOccupancyCache_IsolatedPerSource(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2025, 3, 8, 15, 0, 0, 0, time.UTC))
	c := NewOccupancyCache(time.Minute, clk)

	c.Set("dortmund", []domain.OccupancySnapshot{{Name: "P1"}})
	_, ok := c.Get("bochum")
	assert.False(t, ok)
	assert.Equal(t, time.Minute, c.TTL())
}

func TestOccupancyCache_SetReplacesWholeList(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2025, 3, 8, 15, 0, 0, 0, time.UTC))
	c := NewOccupancyCache(time.Minute, clk)

	c.Set("dortmund", []domain.OccupancySnapshot{{Name: "P1"}, {Name: "P2"}})
	clk.Advance(50 * time.Second)
	c.Set("dortmund", []domain.OccupancySnapshot{{Name: "P3"}})
	clk.Advance(50 * time.Second)

	got, ok := c.Get("dortmund")
	require.True(t, ok)
	assert.Len(t, got, 1)
	assert.Equal(t, "P3", got[0].Name)
}

func TestOccupancyCache_ConcurrentAccess(t *testing.T) {
	c := NewOccupancyCache(time.Minute, clock.RealClock{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Set("dortmund", []domain.OccupancySnapshot{{Name: "P"}})
		}()
		go func() {
			defer wg.Done()
			_, _ = c.Get("dortmund")
		}()
	}
	wg.Wait()

	_, ok := c.Get("dortmund")
	assert.True(t, ok)
}
