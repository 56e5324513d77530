package main

// @title MatchRoute Service API
// @version 1.0.0
// @description Подбор парковки перед матчем: маршрут на машине до парковки и дальше пешком или на транспорте до стадиона.
// @description
// @description Основные возможности:
// @description - Ранжирование парковок по общему времени в пути
// @description - Оценка дорожной ситуации с комментарием
// @description - Живая загрузка парковок из открытых данных

// @contact.name API Support
// @contact.email support@matchroute.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/matchroute-service/docs"
	"github.com/matchroute-service/internal/clock"
	"github.com/matchroute-service/internal/config"
	httpDelivery "github.com/matchroute-service/internal/delivery/http"
	"github.com/matchroute-service/internal/delivery/http/handler"
	"github.com/matchroute-service/internal/domain/repository"
	"github.com/matchroute-service/internal/infrastructure/google"
	"github.com/matchroute-service/internal/infrastructure/openai"
	"github.com/matchroute-service/internal/infrastructure/opendata"
	"github.com/matchroute-service/internal/metrics"
	"github.com/matchroute-service/internal/pkg/logger"
	"github.com/matchroute-service/internal/repository/cache"
	"github.com/matchroute-service/internal/repository/postgres"
	"github.com/matchroute-service/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting MatchRoute Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.Bool("concurrent_enabled", cfg.Recommend.ConcurrentEnabled),
		zap.Int("max_concurrent_connections", cfg.Directions.MaxConcurrentConnections),
		zap.Bool("commentary_enabled", cfg.CommentaryEnabled()),
	)

	if cfg.Directions.APIKey == "" {
		log.Fatal("GOOGLE_MAPS_API_KEY is required")
	}

	m := metrics.New(log)
	defer m.Shutdown()

	checkers := make(map[string]handler.HealthChecker)

	// 3. Optional Redis: second-level occupancy cache
	var cacheRepo repository.CacheRepository
	var redisClient *cache.Redis
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		cacheRepo = cache.NewCacheRepository(redisClient)
		checkers["redis"] = redisClient
	}

	// 4. Optional PostgreSQL: run audit
	var runRepo repository.RunRepository
	var db *postgres.DB
	if cfg.Database.Enabled {
		db, err = postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = db.EnsureSchema(ctx)
		cancel()
		if err != nil {
			log.Fatal("Failed to apply audit schema", zap.Error(err))
		}

		runRepo = postgres.NewRunRepository(db)
		m.StartDBStatsCollector(db.DB.DB, 15*time.Second)
		checkers["postgres"] = db
	}

	location, err := time.LoadLocation(cfg.Occupancy.Timezone)
	if err != nil {
		log.Warn("Unknown timezone, falling back to UTC",
			zap.String("timezone", cfg.Occupancy.Timezone),
			zap.Error(err))
		location = time.UTC
	}

	// 5. Initialize external clients
	directions := google.NewDirectionsClient(&cfg.Directions, m, logger.Component(log, "directions"))
	occupancyRepo := opendata.NewOccupancyClient(&cfg.Occupancy, clock.RealClock{}, logger.Component(log, "opendata"))

	var commentary repository.CommentaryRepository
	if cfg.CommentaryEnabled() {
		commentary = openai.NewCommentaryClient(&cfg.Commentary, logger.Component(log, "commentary"))
	}

	log.Info("External clients initialized")

	// 6. Initialize use cases
	occupancyUC := usecase.NewOccupancyUseCase(
		occupancyRepo,
		cache.NewOccupancyCache(cfg.Occupancy.CacheTTL, clock.RealClock{}),
		cacheRepo,
		m,
		clock.RealClock{},
		log,
		cfg.Occupancy.MatchRadiusM,
	)

	recommendationUC := usecase.NewRecommendationUseCase(
		directions,
		occupancyUC,
		usecase.NewTrafficScorer(cfg.Recommend.CommentSeed),
		runRepo,
		m,
		clock.RealClock{},
		logger.Component(log, "orchestrator"),
		usecase.RecommendOptions{
			ConcurrentEnabled: cfg.Recommend.ConcurrentEnabled,
			MaxConcurrent:     cfg.Directions.MaxConcurrentConnections,
			LegTimeout:        cfg.Directions.TotalTimeout,
			Location:          location,
		},
	)

	suggestUC := usecase.NewSuggestUseCase(recommendationUC, commentary, occupancyRepo.Source(), log)

	log.Info("Use cases initialized")

	// 7. Initialize HTTP handlers
	routeHandler := handler.NewRouteHandler(suggestUC, log)
	parkingHandler := handler.NewParkingHandler(occupancyUC, log)
	healthHandler := handler.NewHealthHandler(checkers)

	// 8. Initialize HTTP server
	server := httpDelivery.NewServer(
		cfg,
		log,
		m,
		routeHandler,
		parkingHandler,
		healthHandler,
	)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if db != nil {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL", zap.Error(err))
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis", zap.Error(err))
		}
	}

	log.Info("Server stopped successfully")
}
