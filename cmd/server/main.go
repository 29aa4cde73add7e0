package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"timekeep/internal/config"
	"timekeep/internal/handler"
	"timekeep/internal/httpserver"
	"timekeep/internal/migrate"
	"timekeep/internal/mq"
	"timekeep/internal/repository"
	"timekeep/internal/service"
	"timekeep/internal/workspace"
	"timekeep/pkg/db"
	"timekeep/pkg/logger"
	"timekeep/pkg/redis"
)

func main() {
	// Load config
	cfg := config.Load()

	logger := logger.NewLogger()
	defer logger.Sync()

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	if err := migrate.Run(context.Background(), dbConn, logger); err != nil {
		logger.Fatal("DB migration failed", zap.Error(err))
	}

	// Init Redis
	redisClient := redis.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	// Init RabbitMQ Producer
	producer, err := mq.NewProducer(cfg.MQ.URL)
	if err != nil {
		log.Fatalf("failed to init producer: %v", err)
	}
	defer producer.Close()

	// Init Repositories
	userRepo := repository.NewUserRepository(dbConn)
	pendingRepo := repository.NewPendingRegistrationRepository(dbConn)
	teamRepo := repository.NewTeamMemberRepository(dbConn, logger)
	customerRepo := repository.NewCustomerRepository(dbConn, logger)
	projectRepo := repository.NewProjectRepository(dbConn, logger)
	timerRepo := repository.NewTimerRepository(dbConn, logger)
	assignmentRepo := repository.NewProjectTimerRepository(dbConn, logger)
	deliverableRepo := repository.NewDeliverableRepository(dbConn, logger)
	colorRepo := repository.NewCustomColorRepository(dbConn)
	sessionRepo := repository.NewSessionRepository(dbConn, logger)
	statsRepo := repository.NewStatsRepository(dbConn)

	// Workspace resolver with Redis-backed member cache
	resolver := workspace.NewResolver(teamRepo, redisClient, logger)

	// Init Services
	authService := service.NewAuthService(userRepo, pendingRepo, producer, cfg.JWT.Secret, logger)
	teamService := service.NewTeamService(teamRepo, userRepo, resolver, logger)
	catalogService := service.NewCatalogService(customerRepo, projectRepo, resolver, logger)
	timerService := service.NewTimerService(timerRepo, assignmentRepo, deliverableRepo, colorRepo, projectRepo, resolver, logger)
	sessionService := service.NewSessionService(sessionRepo, assignmentRepo, deliverableRepo, resolver, logger)
	reportService := service.NewReportService(sessionRepo, userRepo, customerRepo, projectRepo, assignmentRepo, deliverableRepo, resolver, logger)

	// Init Handlers
	authHandler := handler.NewAuthHandler(authService, logger)
	adminHandler := handler.NewAdminHandler(authService, teamService, statsRepo, logger)
	customerHandler := handler.NewCustomerHandler(catalogService, logger)
	projectHandler := handler.NewProjectHandler(catalogService, timerService, logger)
	timerHandler := handler.NewTimerHandler(timerService, logger)
	sessionHandler := handler.NewSessionHandler(sessionService, logger)
	analyticsHandler := handler.NewAnalyticsHandler(reportService, logger)

	// Router
	router := httpserver.NewRouter(
		authHandler,
		adminHandler,
		customerHandler,
		projectHandler,
		timerHandler,
		sessionHandler,
		analyticsHandler,
		resolver,
		cfg.JWT.Secret,
	)

	// Start server
	logger.Info("Starting timekeep server", zap.String("port", cfg.Server.Port))
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatalf("server start failed: %v", err)
	}
}
