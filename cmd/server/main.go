package main

import (
	"log/slog"
	"os"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/edupulse/exam-service/internal/cache"
	"github.com/edupulse/exam-service/internal/config"
	"github.com/edupulse/exam-service/internal/handlers"
	"github.com/edupulse/exam-service/internal/repositories/postgres"
	"github.com/edupulse/exam-service/internal/services"
	"github.com/edupulse/exam-service/internal/utils"
	"github.com/edupulse/exam-service/internal/validator"
	"github.com/edupulse/exam-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	cacheService := cache.NewRedisCache(redisClient, slogger)

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	v := validator.New()

	examService := services.NewExamService(repo, slogger, v, publisher)
	questionService := services.NewQuestionService(repo, slogger, v, cacheService)
	importExportService := services.NewImportExportService(repo, slogger, v, cacheService, publisher)
	userService := services.NewUserService(repo, slogger, v)

	authClient := casdoorsdk.NewClient(
		cfg.CasdoorEndpoint,
		cfg.CasdoorClientID,
		cfg.CasdoorClientSecret,
		cfg.CasdoorCertificate,
		cfg.CasdoorOrganization,
		cfg.CasdoorApplication,
	)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(
		examService,
		questionService,
		importExportService,
		userService,
		repo,
		authClient,
		logger,
	)
	handlerManager.SetupRoutes(router)

	logger.Info("Starting exam service",
		"port", cfg.Port,
		"environment", cfg.Environment)

	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
