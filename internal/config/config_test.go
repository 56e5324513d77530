package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Recommend.ConcurrentEnabled)

	assert.Equal(t, 30, cfg.Directions.MaxConcurrentConnections)
	assert.Equal(t, 15, cfg.Directions.MaxConcurrentPerHost)
	assert.Equal(t, 10*time.Second, cfg.Directions.ConnectTimeout)
	assert.Equal(t, 15*time.Second, cfg.Directions.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Directions.TotalTimeout)
	assert.Equal(t, "de", cfg.Directions.Language)
	assert.Equal(t, "DE", cfg.Directions.Region)

	assert.Equal(t, 100, cfg.Occupancy.Limit)
	assert.Equal(t, "Europe/Berlin", cfg.Occupancy.Timezone)
	assert.Equal(t, 5*time.Minute, cfg.Occupancy.CacheTTL)
	assert.Equal(t, 200.0, cfg.Occupancy.MatchRadiusM)

	assert.Equal(t, "route-recommendation-workers", cfg.Worker.ConsumerGroup)
	assert.Equal(t, 3, cfg.Worker.MaxRetries)
	assert.False(t, cfg.CommentaryEnabled())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("API_PORT", "9090")
	t.Setenv("MAX_CONCURRENT_CONNECTIONS", "4")
	t.Setenv("TOTAL_TIMEOUT", "5")
	t.Setenv("RECOMMEND_CONCURRENT_ENABLED", "false")
	t.Setenv("OCCUPANCY_CACHE_TTL", "60")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.GetServerAddr())
	assert.Equal(t, 4, cfg.Directions.MaxConcurrentConnections)
	assert.Equal(t, 5*time.Second, cfg.Directions.TotalTimeout)
	assert.False(t, cfg.Recommend.ConcurrentEnabled)
	assert.Equal(t, time.Minute, cfg.Occupancy.CacheTTL)
	assert.True(t, cfg.CommentaryEnabled())
	assert.Equal(t, "redis:6380", cfg.GetRedisAddr())
}
