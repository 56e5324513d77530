package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matchroute-service/internal/clock"
	"github.com/matchroute-service/internal/config"
	"github.com/matchroute-service/internal/domain/repository"
	"github.com/matchroute-service/internal/infrastructure/google"
	"github.com/matchroute-service/internal/infrastructure/openai"
	"github.com/matchroute-service/internal/infrastructure/opendata"
	"github.com/matchroute-service/internal/metrics"
	"github.com/matchroute-service/internal/pkg/logger"
	"github.com/matchroute-service/internal/repository/cache"
	"github.com/matchroute-service/internal/repository/postgres"
	redisRepo "github.com/matchroute-service/internal/repository/redis"
	"github.com/matchroute-service/internal/usecase"
	"github.com/matchroute-service/internal/worker"
	"github.com/matchroute-service/internal/worker/recommendation"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Route Recommendation Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.String("redis_addr", cfg.GetRedisAddr()),
		zap.Bool("concurrent_enabled", cfg.Recommend.ConcurrentEnabled))

	m := metrics.New(log)
	defer m.Shutdown()

	// 3. Connect to Redis (streams are required, the cache comes with them)
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 4. Optional PostgreSQL audit
	var runRepo repository.RunRepository
	if cfg.Database.Enabled {
		db, err := postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close PostgreSQL connection", zap.Error(err))
			}
		}()

		schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = db.EnsureSchema(schemaCtx)
		schemaCancel()
		if err != nil {
			log.Fatal("Failed to apply audit schema", zap.Error(err))
		}
		runRepo = postgres.NewRunRepository(db)
	}

	location, err := time.LoadLocation(cfg.Occupancy.Timezone)
	if err != nil {
		log.Warn("Unknown timezone, falling back to UTC", zap.Error(err))
		location = time.UTC
	}

	// 5. Initialize repositories and clients
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)
	cacheRepo := cache.NewCacheRepository(redisClient)
	directions := google.NewDirectionsClient(&cfg.Directions, m, logger.Component(log, "directions"))
	occupancyRepo := opendata.NewOccupancyClient(&cfg.Occupancy, clock.RealClock{}, logger.Component(log, "opendata"))

	var commentary repository.CommentaryRepository
	if cfg.CommentaryEnabled() {
		commentary = openai.NewCommentaryClient(&cfg.Commentary, logger.Component(log, "commentary"))
	}

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

	// 7. Initialize workers
	recommendationWorker := recommendation.NewWorker(
		streamRepo,
		suggestUC,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.MaxRetries,
		log,
	)

	// 8. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log, worker.DefaultShutdownTimeout)
	workerManager.Register(recommendationWorker)

	// 9. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	// Stop first so in-flight batches can publish, then cancel
	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}
	cancel()

	log.Info("Worker shutdown complete")
}
