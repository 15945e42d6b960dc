// ==============================================================================
// DEVICE SERVICE MAIN - cmd/server/main.go
// ==============================================================================
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"devtrack/internal/device"
	"devtrack/internal/handler"
	"devtrack/internal/middleware"
	"devtrack/internal/repository/postgres"
	"devtrack/internal/server"
	"devtrack/pkg/config"
	"devtrack/pkg/logger"
	"devtrack/pkg/validator"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.NewWithOptions("devtrack", logger.ParseLevel(cfg.Log.Level), os.Stdout)

	if envErr != nil {
		log.Debug("No .env file found, relying on environment variables", nil)
	}

	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Starting device service", map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database connection
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{
			"error":   err.Error(),
			"db_host": cfg.Database.Host,
			"db_name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connected", nil)

	if cfg.Database.AutoCreate {
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Fatal("Failed to prepare devices table", map[string]interface{}{"error": err.Error()})
		}
	}

	deps := server.Dependencies{
		Logger:      log,
		CORSOrigins: cfg.CORS.AllowedOrigins,
	}

	// Redis is optional: it backs rate limiting and idempotent replay only.
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisOpts, err := cfg.Redis.Options()
		if err != nil {
			log.Fatal("Invalid Redis configuration", map[string]interface{}{"error": err.Error()})
		}
		redisClient = redis.NewClient(redisOpts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to Redis", map[string]interface{}{
				"error": err.Error(),
			})
		}
		log.Info("Redis connected", nil)

		deps.RateLimiter = middleware.NewRateLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window, log)
		deps.Idempotency = middleware.NewIdempotencyMiddleware(redisClient, cfg.Idempotency.TTL, log)
	}

	// Repositories, services, handlers
	deviceRepo := postgres.NewDeviceRepository(db)
	deviceService := device.NewService(deviceRepo, log)

	docsHandler, err := handler.NewDocsHandler()
	if err != nil {
		log.Fatal("Failed to load API documentation", map[string]interface{}{"error": err.Error()})
	}

	deps.Devices = handler.NewDeviceHandler(deviceService, validator.New(), log)
	deps.Docs = docsHandler
	deps.System = handler.NewSystemHandler(db, redisClient, log)

	srv := server.New(cfg.Server, server.NewRouter(deps), log)
	if err := srv.Run(ctx); err != nil {
		log.Fatal("Device service failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
