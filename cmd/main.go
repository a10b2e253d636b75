package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hearthlabs/hearth-backend/internal/db"
	"github.com/hearthlabs/hearth-backend/internal/handlers"
	"github.com/hearthlabs/hearth-backend/internal/observability"
	"github.com/hearthlabs/hearth-backend/internal/platform/logger"
	"github.com/hearthlabs/hearth-backend/internal/repos"
	"github.com/hearthlabs/hearth-backend/internal/server"
	"github.com/hearthlabs/hearth-backend/internal/services"
	"github.com/hearthlabs/hearth-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing (no-op unless OTEL_ENABLED)
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "hearth-backend",
		Environment: utils.GetEnv("DEPLOY_ENV", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	if shutdownOTel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOTel(ctx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	childRepo := repos.NewChildRepo(thePG, log)
	promptRepo := repos.NewPromptRepo(thePG, log)
	completionRepo := repos.NewCompletionRepo(thePG, log)
	favoriteRepo := repos.NewFavoriteRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	telemetry := services.NewLogTelemetry(log)
	weights := services.LoadScoreWeights(utils.GetEnv("SCORING_WEIGHTS_PATH", "", log), log)
	recommendationService := services.NewRecommendationService(
		thePG,
		log,
		childRepo,
		promptRepo,
		completionRepo,
		favoriteRepo,
		telemetry,
		weights,
	)
	insightsService := services.NewInsightsService(thePG, log, completionRepo, telemetry)
	tipsService := services.NewTipsService(thePG, log, childRepo, completionRepo, insightsService)

	// Recommendation cache (optional)
	var recommendationCache services.RecommendationCache = services.NoopRecommendationCache{}
	cacheEnabled := utils.GetEnvAsBool("RECOMMENDATION_CACHE_ENABLED", true, log)
	if redisAddr := utils.GetEnv("REDIS_ADDR", "", log); redisAddr != "" && cacheEnabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: utils.GetEnv("REDIS_PASSWORD", "", nil),
			DB:       utils.GetEnvAsInt("REDIS_DB", 0, log),
		})
		ttl := time.Duration(utils.GetEnvAsInt("RECOMMENDATION_CACHE_TTL_SECONDS", 3600, log)) * time.Second
		recommendationCache = services.NewRedisRecommendationCache(redisClient, log, ttl)
		log.Info("Recommendation cache enabled", "addr", redisAddr, "ttl", ttl)
	}

	// Handlers
	log.Info("Setting up handlers from main...")
	healthHandler := handlers.NewHealthHandler()
	recommendationHandler := handlers.NewRecommendationHandler(log, recommendationService, recommendationCache)
	insightsHandler := handlers.NewInsightsHandler(log, insightsService)
	tipsHandler := handlers.NewTipsHandler(log, tipsService)

	// Router
	log.Info("Setting up router from main...")
	var origins []string
	if raw := utils.GetEnv("CORS_ALLOW_ORIGINS", "", log); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	router := server.NewRouter(server.RouterConfig{
		Log:                   log,
		HealthHandler:         healthHandler,
		RecommendationHandler: recommendationHandler,
		InsightsHandler:       insightsHandler,
		TipsHandler:           tipsHandler,
		AllowOrigins:          origins,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
