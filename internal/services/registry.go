package services

import (
	"ratery_backend/internal/email"
	"ratery_backend/internal/repositories"
	"ratery_backend/internal/storage"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService   AuthService
	UserService   UserService
	PhotoService  PhotoService
	RatingService RatingService
	StatsService  StatsService
	EmailService  email.Provider
	Storage       storage.Storage
}

// NewServiceContainer собирает сервисы поверх репозиториев
func NewServiceContainer(store storage.Storage, emailProvider email.Provider) *ServiceContainer {
	userRepo := repositories.NewUserRepository()
	refreshTokenRepo := repositories.NewRefreshTokenRepository()
	photoRepo := repositories.NewPhotoRepository()
	ratingRepo := repositories.NewRatingRepository()
	queueRepo := repositories.NewQueueRepository()
	statsRepo := repositories.NewStatsRepository()

	statsService := NewStatsService(statsRepo, ratingRepo)

	return &ServiceContainer{
		AuthService:   NewAuthService(userRepo, statsRepo, refreshTokenRepo, emailProvider),
		UserService:   NewUserService(userRepo, photoRepo),
		PhotoService:  NewPhotoService(photoRepo, userRepo, store, emailProvider),
		RatingService: NewRatingService(queueRepo, ratingRepo, statsRepo, statsService),
		StatsService:  statsService,
		EmailService:  emailProvider,
		Storage:       store,
	}
}
