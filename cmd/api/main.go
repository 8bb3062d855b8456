package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/trackora/trackora-api/internal/config"
	"github.com/trackora/trackora-api/internal/database"
	"github.com/trackora/trackora-api/internal/handler"
	"github.com/trackora/trackora-api/internal/middleware"
	"github.com/trackora/trackora-api/internal/repository"
	"github.com/trackora/trackora-api/internal/router"
	"github.com/trackora/trackora-api/internal/service"
	"github.com/trackora/trackora-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	var mentor ai.Mentor
	if cfg.OpenAIAPIKey != "" {
		openAIMentor, err := ai.NewOpenAIMentor(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create openai mentor: %v", err)
		}
		mentor = openAIMentor
	} else {
		logger.Warn().Msg("openai api key not set, mentor runs in fallback mode")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	activityRepo := repository.NewActivityRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	completedRepo := repository.NewCompletedProblemRepository(db)
	mockRepo := repository.NewMockInterviewRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	subject := fmt.Sprintf("%s.goal.assignment.completed", cfg.NATSSubjectPrefix)
	propagationService := service.NewPropagationService(assignmentRepo, natsConn, subject, logger)
	activityService := service.NewActivityService(activityRepo, propagationService, validate, logger)
	enrollmentService := service.NewEnrollmentService(goalRepo, assignmentRepo, studentRepo, logger)
	progressService := service.NewProgressService(activityRepo, logger)
	practiceService := service.NewPracticeService(completedRepo, activityService, validate, logger)
	auditService := service.NewAuditService(auditRepo, logger)
	goalService := service.NewGoalService(goalRepo, assignmentRepo, enrollmentService, propagationService, auditService, validate, logger)
	insightsService := service.NewAdminInsightsService(studentRepo, activityRepo, redisClient, cfg.AnalyticsCacheTTL, logger)
	mockService := service.NewMockInterviewService(mockRepo, activityRepo, validate, logger)
	mentorService := service.NewMentorService(mentor, studentRepo, activityRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		ActivityHandler:      handler.NewActivityHandler(activityService, logger),
		ProgressHandler:      handler.NewProgressHandler(progressService, logger),
		PracticeHandler:      handler.NewPracticeHandler(practiceService, logger),
		GoalHandler:          handler.NewGoalHandler(goalService, logger),
		AdminInsightsHandler: handler.NewAdminInsightsHandler(insightsService, validate, logger),
		AuditHandler:         handler.NewAuditHandler(auditService, validate, logger),
		MockInterviewHandler: handler.NewMockInterviewHandler(mockService, logger),
		MentorHandler:        handler.NewMentorHandler(mentorService, logger),
		JWTMiddleware:        middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
