package helpers

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ratery_backend/internal/auth"
	"ratery_backend/internal/config"
	"ratery_backend/internal/models"
)

// InitTestConfig подкладывает конфиг для тестов напрямую,
// без чтения yaml и переменных окружения
func InitTestConfig(t *testing.T) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.JWT.Secret = "test-secret-key-for-unit-tests"
	cfg.JWT.TTL = 60
	cfg.Storage.Type = "local"
	cfg.Storage.BaseURL = "/api/v1/files"
	cfg.Upload.MaxSize = 10 * 1024 * 1024
	cfg.Upload.AllowedTypes = []string{"image/jpeg", "image/png", "image/webp"}
	cfg.Upload.AutoApprove = true
	cfg.Rating.QueueSize = 10
	cfg.Rating.RequestTimeout = 10

	config.AppConfig = cfg
}

// NewTestDB поднимает чистую in-memory БД с полной схемой.
// Каждый тест получает свою базу, изоляция между тестами полная.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=private"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Не удалось открыть тестовую БД: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Photo{},
		&models.Rating{},
		&models.RatingStats{},
		&models.QueueItem{},
	)
	if err != nil {
		t.Fatalf("Миграция тестовой БД упала: %v", err)
	}

	return db
}

// CreateUser создает активного верифицированного пользователя
// вместе со строкой агрегатов
func CreateUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("Не удалось хешировать пароль: %v", err)
	}

	birthYear := time.Now().Year() - 25
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         models.UserRoleUser,
		Status:       models.UserStatusActive,
		BirthYear:    &birthYear,
		IsVerified:   true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Не удалось создать пользователя %s: %v", email, err)
	}

	stats := &models.RatingStats{
		UserID:      user.ID,
		RatingPower: 1.0,
	}
	if err := db.Create(stats).Error; err != nil {
		t.Fatalf("Не удалось создать строку агрегатов для %s: %v", email, err)
	}

	return user
}

// CreateUserWithPower создает пользователя с заданной силой голоса
func CreateUserWithPower(t *testing.T, db *gorm.DB, email string, power float64) *models.User {
	t.Helper()

	user := CreateUser(t, db, email)
	if err := db.Model(&models.RatingStats{}).
		Where("user_id = ?", user.ID).
		Update("rating_power", power).Error; err != nil {
		t.Fatalf("Не удалось обновить силу голоса: %v", err)
	}
	return user
}

// CreateActivePhoto создает одобренное активное фото пользователя
func CreateActivePhoto(t *testing.T, db *gorm.DB, userID string) *models.Photo {
	t.Helper()

	photo := &models.Photo{
		UserID:   userID,
		URL:      fmt.Sprintf("/api/v1/files/photos/%s/test.jpg", userID),
		Status:   models.PhotoStatusApproved,
		IsActive: true,
	}
	if err := db.Create(photo).Error; err != nil {
		t.Fatalf("Не удалось создать фото: %v", err)
	}
	return photo
}
