// main.go
package main

import (
	"context"
	"log"

	"civic-report/cmd"
	"civic-report/internal/data/repository"
	"civic-report/internal/wire"
	"civic-report/pkg/database"
	"civic-report/pkg/events"
	"civic-report/pkg/ratelimit"
	"civic-report/pkg/storage"
	"civic-report/pkg/token"
	"civic-report/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("env", config.App.Env),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if config.Database.AutoMigrate {
		if err := database.Migrate(context.Background(), db, logger); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	// Image store
	var store storage.Store
	switch config.Upload.Driver {
	case "s3":
		store = storage.NewS3Store(storage.NewS3Client(config.S3), config.S3.Bucket, config.S3.PublicURL)
		logger.Info("Using S3 image store", zap.String("bucket", config.S3.Bucket))
	default:
		store = storage.NewLocalStore(config.Upload.Dir, config.Upload.PublicPrefix)
		logger.Info("Using local image store", zap.String("dir", config.Upload.Dir))
	}

	// Login rate limiter: shared through Redis when configured
	var limiter ratelimit.Limiter
	if config.Redis.Addr != "" {
		client, err := ratelimit.NewRedisClient(config.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		limiter = ratelimit.NewRedisLimiter(client, "auth", config.RateLimit.LoginLimit, config.RateLimit.LoginWindow)
		logger.Info("Redis rate limiter enabled", zap.String("addr", config.Redis.Addr))
	} else {
		limiter = ratelimit.NewMemoryLimiter(config.RateLimit.LoginLimit, config.RateLimit.LoginWindow)
	}

	// Report events
	var publisher events.Publisher = events.NopPublisher{}
	if config.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(config.NATS.URL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		publisher = natsPublisher
		logger.Info("NATS event publisher enabled", zap.String("url", config.NATS.URL))
	}
	defer publisher.Close()

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(wire.Deps{
		DB:        db,
		Repo:      repos,
		Tokens:    token.NewJWTService(config.JWT.Secret, config.JWT.ExpiresIn),
		Uploader:  storage.NewUploader(store),
		Publisher: publisher,
		Limiter:   limiter,
		Config:    config,
		Logger:    logger,
	})

	// Start server
	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server exited with error", zap.Error(err))
	}
}
