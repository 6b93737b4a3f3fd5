package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/saadtariq57/richtv-chatbot/internal/api/handlers"
	"github.com/saadtariq57/richtv-chatbot/internal/cache/redis"
	"github.com/saadtariq57/richtv-chatbot/internal/classifier"
	"github.com/saadtariq57/richtv-chatbot/internal/fetch"
	"github.com/saadtariq57/richtv-chatbot/internal/llm"
	"github.com/saadtariq57/richtv-chatbot/internal/metrics"
	"github.com/saadtariq57/richtv-chatbot/internal/middleware/ratelimit"
	"github.com/saadtariq57/richtv-chatbot/internal/middleware/security"
	"github.com/saadtariq57/richtv-chatbot/internal/middleware/validation"
	"github.com/saadtariq57/richtv-chatbot/internal/orchestrator"
	"github.com/saadtariq57/richtv-chatbot/internal/provider/fmp"
	"github.com/saadtariq57/richtv-chatbot/internal/provider/mboum"
	"github.com/saadtariq57/richtv-chatbot/internal/resolver"
	"github.com/saadtariq57/richtv-chatbot/internal/storage/sqlite"
	"github.com/saadtariq57/richtv-chatbot/internal/validate"
	"github.com/saadtariq57/richtv-chatbot/pkg/config"
	appLogger "github.com/saadtariq57/richtv-chatbot/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting RichTV Chatbot API Server")

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	mboumClient := mboum.NewClient(
		cfg.Mboum.BaseURL,
		cfg.Mboum.APIKey,
		time.Duration(cfg.Mboum.TimeoutSec)*time.Second,
	)
	fmpClient := fmp.NewClient(
		cfg.FMP.BaseURL,
		cfg.FMP.APIKey,
		time.Duration(cfg.FMP.TimeoutSec)*time.Second,
	)
	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.TimeoutSec,
	)

	queryClassifier := classifier.New(llmClient)
	entityResolver := resolver.New(mboumClient)
	dispatcher := fetch.NewDispatcher(mboumClient, fmpClient, fmpClient, fmpClient, cfg.Fetch)
	validator := validate.New(cfg.Validation)

	orch := orchestrator.New(queryClassifier, entityResolver, dispatcher, llmClient, validator, cfg.Validation).
		WithStore(sqliteClient)

	if cfg.Redis.Enabled {
		cache, err := redis.NewClient(
			fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSec)*time.Second,
		)
		if err != nil {
			appLogger.Warn("Failed to connect to Redis, continuing without cache", zap.Error(err))
		} else {
			defer cache.Close()
			orch.WithCache(cache)
		}
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(security.Headers(security.HeadersConfig{
		IsDevelopment: cfg.Server.Environment == "development",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	limiter := ratelimit.New(cfg.Server.RateLimitPerMin)
	defer limiter.Stop()
	app.Use(limiter.Middleware())
	app.Use(validation.Middleware(validation.Config{
		MaxQueryLength: cfg.Server.MaxQueryLength,
	}))

	queryHandler := handlers.NewQueryHandler(orch, sqliteClient)

	api := app.Group("/api/v1")
	api.Post("/query", queryHandler.HandleQuery)
	api.Get("/query", queryHandler.HandleQueryGet)
	api.Get("/query/history", queryHandler.GetQueryHistory)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})
	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.Handler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
