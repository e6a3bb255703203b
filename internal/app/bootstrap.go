package app

import (
	"boards-backend/internal/app/board"
	"boards-backend/internal/app/health"
	"boards-backend/internal/app/image"
	"boards-backend/internal/config"
	"boards-backend/internal/db"
	"boards-backend/internal/db/seeder"
	"boards-backend/internal/metrics"
	"boards-backend/internal/middleware"
	"boards-backend/internal/providers/core"
	"boards-backend/internal/providers/mailer"
	"boards-backend/internal/providers/minio"
	"boards-backend/internal/providers/redis"
	"boards-backend/internal/router"
	"boards-backend/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Application struct {
	Router *router.Router
	DB     *gorm.DB
}

func Bootstrap(cfg *config.Config, logger *zap.Logger) (*Application, error) {
	dbConn, err := db.Connect(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(dbConn, logger); err != nil {
		return nil, err
	}

	if cfg.Env == "dev" {
		seed := seeder.NewSeeder(dbConn, logger)
		if err := seed.Seed(); err != nil {
			logger.Warn("Failed to run seeders", zap.Error(err))
		}
	}

	redisProvider := redis.NewRedisProvider(cfg.RedisURL, logger, cfg.RedisTTL)
	minioProvider, err := minio.NewMinioProvider(cfg, logger)
	if err != nil {
		logger.Warn("Failed to initialize MinIO provider", zap.Error(err))
		minioProvider = nil
	}

	coreClient := core.NewClient(cfg, logger)
	mailerClient := mailer.NewClient(cfg, logger)

	boardRepo := board.NewRepository(dbConn)
	imageRepo := image.NewRepository(dbConn)

	boardService := board.NewService(boardRepo, coreClient, mailerClient, redisProvider, cfg.NotificationEmails, logger)
	imageService := image.NewService(imageRepo, minioProvider, logger)

	boardHandler := board.NewHandler(boardService, logger)
	imageHandler := image.NewHandler(imageService, logger)
	healthHandler := health.NewHandler(&utils.HealthChecker{
		DB:    dbConn,
		Redis: redisProvider.Client,
		Core:  coreClient,
	})

	m := metrics.New(boardRepo, logger)
	authMiddleware := middleware.Authenticate(coreClient, logger)

	r := router.NewRouter(logger, m)
	r.RegisterHealthRoutes(healthHandler)
	r.RegisterMetricsRoutes(m)
	r.RegisterBoardRoutes(boardHandler, authMiddleware)
	r.RegisterImageRoutes(imageHandler, authMiddleware)

	return &Application{
		Router: r,
		DB:     dbConn,
	}, nil
}
