package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/prajjwal-ghimire/sms-go-api/internal/config"
	"github.com/prajjwal-ghimire/sms-go-api/internal/database"
	"github.com/prajjwal-ghimire/sms-go-api/internal/dto"
	"github.com/prajjwal-ghimire/sms-go-api/internal/handler"
	"github.com/prajjwal-ghimire/sms-go-api/internal/middleware"
	"github.com/prajjwal-ghimire/sms-go-api/internal/models"
	"github.com/prajjwal-ghimire/sms-go-api/internal/repository"
	"github.com/prajjwal-ghimire/sms-go-api/internal/router"
	"github.com/prajjwal-ghimire/sms-go-api/internal/seed"
	"github.com/prajjwal-ghimire/sms-go-api/internal/service"
	"github.com/prajjwal-ghimire/sms-go-api/internal/storage"
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

	if err := db.AutoMigrate(&models.Role{}, &models.User{}, &models.Course{}, &models.Student{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	if cfg.SeedEnabled {
		if err := seed.Run(context.Background(), db, cfg, logger); err != nil {
			log.Fatalf("failed to seed database: %v", err)
		}
	}

	images, err := storage.NewImageStore(cfg.UploadDir, logger)
	if err != nil {
		log.Fatalf("failed to create image store: %v", err)
	}

	validate := dto.NewValidator()

	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	userRepo := repository.NewUserRepository(db)

	courseService := service.NewCourseService(courseRepo, validate, logger)
	studentService := service.NewStudentService(studentRepo, courseRepo, images, validate, logger)
	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.JWTTokenTTL, logger)

	courseHandler := handler.NewCourseHandler(courseService, logger)
	studentHandler := handler.NewStudentHandler(studentService, logger)
	authHandler := handler.NewAuthHandler(authService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	app.Static("/images", filepath.Join(cfg.UploadDir, "images"))

	router.Register(app, cfg, router.Dependencies{
		AuthHandler:    authHandler,
		CourseHandler:  courseHandler,
		StudentHandler: studentHandler,
		JWTMiddleware:  middleware.JWTProtected(cfg.JWTSecret),
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
