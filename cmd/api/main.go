package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ujian-go-api/internal/config"
	"github.com/noah-isme/ujian-go-api/internal/database"
	"github.com/noah-isme/ujian-go-api/internal/handler"
	"github.com/noah-isme/ujian-go-api/internal/middleware"
	"github.com/noah-isme/ujian-go-api/internal/models"
	"github.com/noah-isme/ujian-go-api/internal/repository"
	"github.com/noah-isme/ujian-go-api/internal/router"
	"github.com/noah-isme/ujian-go-api/internal/service"
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

	if err := db.AutoMigrate(
		&models.Token{},
		&models.Student{},
		&models.RoomRoster{},
		&models.Teacher{},
		&models.Session{},
		&models.Violation{},
		&models.Ban{},
		&models.Appeal{},
		&models.ExamForm{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	tokenRepo := repository.NewTokenRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	violationRepo := repository.NewViolationRepository(db)
	appealRepo := repository.NewAppealRepository(db)
	examFormRepo := repository.NewExamFormRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)

	tokenService := service.NewTokenService(tokenRepo, cfg.TokenTTL, validate, logger)
	catalogService := service.NewExamCatalogService(examFormRepo, logger)
	sessionService := service.NewSessionService(sessionRepo, studentRepo, tokenService, catalogService, validate, logger)
	realtimeService := service.NewRealtimeService(redisClient, cfg.ChannelBase, natsConn, logger)
	violationService := service.NewViolationService(violationRepo, sessionService, tokenService, realtimeService, cfg.BanThreshold, validate, logger)
	appealService := service.NewAppealService(appealRepo, realtimeService, validate, logger)
	teacherService := service.NewTeacherService(teacherRepo, tokenService, cfg.JWTSecret, validate, logger)
	seedService := service.NewSeedService(studentRepo, examFormRepo, cfg.SeedEnabled, cfg.SeedToken, validate, logger)

	realtimeService.Attach(violationService, appealService)

	tokenHandler := handler.NewTokenHandler(tokenService, logger)
	sessionHandler := handler.NewSessionHandler(sessionService, logger)
	adminHandler := handler.NewAdminHandler(violationService, appealService, logger)
	teacherHandler := handler.NewTeacherHandler(teacherService, logger)
	realtimeHandler := handler.NewRealtimeHandler(realtimeService, sessionService, tokenService, cfg.JWTSecret, logger)
	seedHandler := handler.NewSeedHandler(seedService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		TokenHandler:    tokenHandler,
		SessionHandler:  sessionHandler,
		AdminHandler:    adminHandler,
		TeacherHandler:  teacherHandler,
		RealtimeHandler: realtimeHandler,
		SeedHandler:     seedHandler,
		JWTMiddleware:   middleware.JWTProtected(cfg.JWTSecret),
	})

	busCtx, busCancel := context.WithCancel(context.Background())
	defer busCancel()
	realtimeService.Start(busCtx)

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
