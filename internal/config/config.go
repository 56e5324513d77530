package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Log        LogConfig
	Worker     WorkerConfig
	Directions DirectionsConfig
	Occupancy  OccupancyConfig
	Recommend  RecommendConfig
	Commentary CommentaryConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CORSOrigins string
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	MaxRetries        int
}

// DirectionsConfig - настройки клиента Google Directions.
// MaxConcurrentConnections caps in-flight leg requests per batch,
// MaxConcurrentPerHost is applied on the HTTP transport.
type DirectionsConfig struct {
	APIKey                   string
	BaseURL                  string
	Language                 string
	Region                   string
	MaxConcurrentConnections int
	MaxConcurrentPerHost     int
	ConnectTimeout           time.Duration
	ReadTimeout              time.Duration
	TotalTimeout             time.Duration
	RateLimitRPS             float64
}

type OccupancyConfig struct {
	APIURL       string
	Limit        int
	Timezone     string
	Timeout      time.Duration
	CacheTTL     time.Duration
	MatchRadiusM float64
	SourceName   string
}

type RecommendConfig struct {
	// ConcurrentEnabled selects the batch path; false forces the sequential path.
	ConcurrentEnabled bool
	CommentSeed       int64
}

type CommentaryConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

const (
	defaultDirectionsBaseURL = "https://maps.googleapis.com/maps/api"
	defaultOccupancyURL      = "https://open-data.dortmund.de/api/explore/v2.1/catalog/datasets/parkhauser/records"
	defaultOpenAIBaseURL     = "https://api.openai.com/v1"
)

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("RECOMMEND_CONCURRENT_ENABLED", true)

	if err := viper.ReadInConfig(); err != nil {
		// .env is optional when everything comes from the environment
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        viper.GetString("API_HOST"),
			Port:        viper.GetInt("API_PORT"),
			Env:         viper.GetString("API_ENV"),
			CORSOrigins: viper.GetString("CORS_ALLOW_ORIGINS"),
		},
		Database: DatabaseConfig{
			Enabled:         viper.GetBool("AUDIT_ENABLED"),
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     viper.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(viper.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        viper.GetInt("WORKER_MAX_RETRIES"),
		},
		Directions: DirectionsConfig{
			APIKey:                   viper.GetString("GOOGLE_MAPS_API_KEY"),
			BaseURL:                  viper.GetString("GOOGLE_DIRECTIONS_BASE_URL"),
			Language:                 viper.GetString("GOOGLE_LANGUAGE"),
			Region:                   viper.GetString("GOOGLE_REGION"),
			MaxConcurrentConnections: viper.GetInt("MAX_CONCURRENT_CONNECTIONS"),
			MaxConcurrentPerHost:     viper.GetInt("MAX_CONCURRENT_PER_HOST"),
			ConnectTimeout:           time.Duration(viper.GetInt("CONNECT_TIMEOUT")) * time.Second,
			ReadTimeout:              time.Duration(viper.GetInt("READ_TIMEOUT")) * time.Second,
			TotalTimeout:             time.Duration(viper.GetInt("TOTAL_TIMEOUT")) * time.Second,
			RateLimitRPS:             viper.GetFloat64("GOOGLE_RATE_LIMIT_RPS"),
		},
		Occupancy: OccupancyConfig{
			APIURL:       viper.GetString("OCCUPANCY_API_URL"),
			Limit:        viper.GetInt("OCCUPANCY_LIMIT"),
			Timezone:     viper.GetString("OCCUPANCY_TIMEZONE"),
			Timeout:      time.Duration(viper.GetInt("OCCUPANCY_TIMEOUT")) * time.Second,
			CacheTTL:     time.Duration(viper.GetInt("OCCUPANCY_CACHE_TTL")) * time.Second,
			MatchRadiusM: viper.GetFloat64("OCCUPANCY_MATCH_RADIUS_M"),
			SourceName:   viper.GetString("OCCUPANCY_SOURCE"),
		},
		Recommend: RecommendConfig{
			ConcurrentEnabled: viper.GetBool("RECOMMEND_CONCURRENT_ENABLED"),
			CommentSeed:       viper.GetInt64("RECOMMEND_COMMENT_SEED"),
		},
		Commentary: CommentaryConfig{
			APIKey:  viper.GetString("OPENAI_API_KEY"),
			BaseURL: viper.GetString("OPENAI_BASE_URL"),
			Model:   viper.GetString("OPENAI_MODEL"),
			Timeout: time.Duration(viper.GetInt("OPENAI_TIMEOUT")) * time.Second,
		},
	}

	cfg.applyDefaults()

	return cfg, nil
}

// applyDefaults fills everything the environment left empty.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.CORSOrigins == "" {
		c.Server.CORSOrigins = "http://localhost:3000,http://localhost:5173"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Worker.ConsumerGroup == "" {
		c.Worker.ConsumerGroup = "route-recommendation-workers"
	}
	if c.Worker.StreamReadTimeout == 0 {
		c.Worker.StreamReadTimeout = 5000 * time.Millisecond
	}
	if c.Worker.MaxRetries == 0 {
		c.Worker.MaxRetries = 3
	}

	d := &c.Directions
	if d.BaseURL == "" {
		d.BaseURL = defaultDirectionsBaseURL
	}
	if d.Language == "" {
		d.Language = "de"
	}
	if d.Region == "" {
		d.Region = "DE"
	}
	if d.MaxConcurrentConnections == 0 {
		d.MaxConcurrentConnections = 30
	}
	if d.MaxConcurrentPerHost == 0 {
		d.MaxConcurrentPerHost = 15
	}
	if d.ConnectTimeout == 0 {
		d.ConnectTimeout = 10 * time.Second
	}
	if d.ReadTimeout == 0 {
		d.ReadTimeout = 15 * time.Second
	}
	if d.TotalTimeout == 0 {
		d.TotalTimeout = 30 * time.Second
	}

	o := &c.Occupancy
	if o.APIURL == "" {
		o.APIURL = defaultOccupancyURL
	}
	if o.Limit == 0 {
		o.Limit = 100
	}
	if o.Timezone == "" {
		o.Timezone = "Europe/Berlin"
	}
	if o.Timeout == 0 {
		o.Timeout = 10 * time.Second
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if o.MatchRadiusM == 0 {
		o.MatchRadiusM = 200
	}
	if o.SourceName == "" {
		o.SourceName = "dortmund"
	}

	if c.Commentary.BaseURL == "" {
		c.Commentary.BaseURL = defaultOpenAIBaseURL
	}
	if c.Commentary.Model == "" {
		c.Commentary.Model = "gpt-4o-mini"
	}
	if c.Commentary.Timeout == 0 {
		c.Commentary.Timeout = 10 * time.Second
	}
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// CommentaryEnabled reports whether the text-generation collaborator is configured.
func (c *Config) CommentaryEnabled() bool {
	return c.Commentary.APIKey != ""
}
