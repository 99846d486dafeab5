package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ratery_backend/database"
	"ratery_backend/internal/auth"
	"ratery_backend/internal/config"
	"ratery_backend/internal/email"
	"ratery_backend/internal/handlers"
	"ratery_backend/internal/logger"
	"ratery_backend/internal/middleware"
	"ratery_backend/internal/models"
	"ratery_backend/internal/routes"
	"ratery_backend/internal/services"
	"ratery_backend/internal/storage"
	"ratery_backend/internal/validator"
	"ratery_backend/internal/workers"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := database.ConnectGorm()
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	if err := seedFirstAdmin(gormDB); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	serviceContainer, ginRouter := SetupRouter(cfg, gormDB)

	// Фоновые задачи живут, пока живет сервер
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	statsWorker := workers.NewStatsWorker(gormDB, serviceContainer.StatsService)
	statsWorker.Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*services.ServiceContainer, *gin.Engine) {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		PublicRead: cfg.Storage.PublicRead,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	serviceContainer := initializeServices(cfg, storageInstance)
	appHandlers := initializeHandlers(serviceContainer, storageInstance)
	ginRouter := initializeGinRouter(cfg, gormDB)

	routes.RegisterRoutes(ginRouter, appHandlers)

	return serviceContainer, ginRouter
}

func initializeServices(cfg *config.Config, storageInstance storage.Storage) *services.ServiceContainer {
	renderer := email.NewTemplateManager()

	var emailProvider email.Provider
	if cfg.Email.SMTPHost != "" {
		emailProvider = email.NewSMTPProvider(&email.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		}, renderer)
		logger.Info("Email provider initialized", "host", cfg.Email.SMTPHost)
	} else {
		emailProvider = email.NewLogProvider(renderer)
		logger.Warn("SMTP is not configured, emails go to log only")
	}

	return services.NewServiceContainer(storageInstance, emailProvider)
}

func initializeHandlers(serviceContainer *services.ServiceContainer, storageInstance storage.Storage) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:   handlers.NewAuthHandler(baseHandler, serviceContainer.AuthService),
		UserHandler:   handlers.NewUserHandler(baseHandler, serviceContainer.UserService),
		PhotoHandler:  handlers.NewPhotoHandler(baseHandler, serviceContainer.PhotoService),
		RatingHandler: handlers.NewRatingHandler(baseHandler, serviceContainer.RatingService),
		StatsHandler:  handlers.NewStatsHandler(baseHandler, serviceContainer.StatsService),
		FileHandler:   handlers.NewFileHandler(baseHandler, storageInstance),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.TimeoutMiddleware(time.Duration(cfg.Rating.RequestTimeout) * time.Second))
	router.Use(middleware.DBMiddleware(db))
	return router
}

func seedFirstAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("FIRST_ADMIN_EMAIL")
	adminPassword := os.Getenv("FIRST_ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var adminUser models.User
		result := tx.Where("email = ?", adminEmail).First(&adminUser)

		if result.Error == nil {
			logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
			return nil
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check for admin user: %w", result.Error)
		}

		logger.Warn("No admin user found with specified email. Creating first admin...", "email", adminEmail)

		hash, err := auth.HashPassword(adminPassword)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}

		newAdmin := &models.User{
			Email:        adminEmail,
			PasswordHash: hash,
			Role:         models.UserRoleAdmin,
			Status:       models.UserStatusActive,
			IsVerified:   true,
		}
		if err := tx.Create(newAdmin).Error; err != nil {
			return fmt.Errorf("failed to create admin user in database: %w", err)
		}

		// Строка агрегатов нужна и админу: без нее оценивание упадет
		adminStats := &models.RatingStats{
			UserID:      newAdmin.ID,
			RatingPower: 1.0,
		}
		if err := tx.Create(adminStats).Error; err != nil {
			return fmt.Errorf("failed to create admin stats row: %w", err)
		}

		logger.Info("Successfully created first admin user", "email", adminEmail)
		return nil
	})
}
