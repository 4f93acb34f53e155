package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"demosim/internal/cache"
	"demosim/internal/config"
	"demosim/internal/repository"
	"demosim/internal/service"
	"demosim/internal/transport/rest"
	"demosim/internal/transport/ws"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	aiConfig := config.DefaultAIConfig()
	if aiConfig.IsEnabled() {
		logger.Info("gemini configured",
			zap.String("interviewer", aiConfig.Models.Interviewer),
			zap.String("participant", aiConfig.Models.Participant))
	} else {
		logger.Info("gemini not configured, runs use the deterministic simulator")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal("mongodb connect failed", zap.Error(err))
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		logger.Fatal("mongodb ping failed", zap.Error(err))
	}
	logger.Info("connected to mongodb", zap.String("database", cfg.Mongo.Database))

	db := mongoClient.Database(cfg.Mongo.Database)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.URI,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Fatal("redis ping failed", zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", cfg.Redis.URI))

	// WebSocket hub
	wsHub := ws.NewHub(logger)

	// Repositories and caches
	demoRepo := repository.NewDemoRepo(db)
	demoCache := cache.NewDemoCache(rdb)
	rateLimitStore := cache.NewRedisRateLimitStore(rdb)

	// Services
	gemini := service.NewGeminiClient(aiConfig, logger)
	agentEval := service.NewAgentEvaluator()
	briefEval := service.NewBriefEvaluator()
	fallback := service.NewFallbackSimulator(agentEval, briefEval, logger)
	sim := service.NewSimulationService(gemini, fallback, agentEval, briefEval,
		cfg.Simulation.MaxTurns, cfg.Simulation.TimeoutMinutes, logger)
	recommender := service.NewRecommendationService()
	limiter := service.NewRateLimiter(rateLimitStore, cfg.RateLimit, time.Now, logger)
	catalog := service.NewPersonaCatalog()
	demoSvc := service.NewDemoService(catalog, sim, recommender, limiter, demoRepo, demoCache, logger)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	demoSvc.SetBroadcaster(wsHub)

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	limiter.StartSweeper(sweepCtx, cfg.RateLimit.SweepInterval)

	router := rest.NewRouter(&rest.Container{
		DemoService: demoSvc,
		WSHub:       wsHub,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen and serve failed", zap.Error(err))
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
