package repositories

import (
	"errors"

	"gorm.io/gorm"

	"ratery_backend/internal/models"
)

var (
	ErrPhotoNotFound   = errors.New("photo not found")
	ErrPhotoNotPending = errors.New("photo is not pending moderation")
)

type PhotoRepository interface {
	Create(db *gorm.DB, photo *models.Photo) error
	FindByID(db *gorm.DB, id string) (*models.Photo, error)
	FindActiveByUser(db *gorm.DB, userID string) (*models.Photo, error)
	FindByUser(db *gorm.DB, userID string) ([]models.Photo, error)
	DeactivateAllForUser(db *gorm.DB, userID string) error
	Approve(db *gorm.DB, id string) error
	Reject(db *gorm.DB, id string, reason string) error
	FindPendingModeration(db *gorm.DB, limit, offset int) ([]models.Photo, int64, error)
	Delete(db *gorm.DB, id string) error
}

type PhotoRepositoryImpl struct{}

func NewPhotoRepository() PhotoRepository {
	return &PhotoRepositoryImpl{}
}

func (r *PhotoRepositoryImpl) Create(db *gorm.DB, photo *models.Photo) error {
	return db.Create(photo).Error
}

func (r *PhotoRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Photo, error) {
	var photo models.Photo
	err := db.First(&photo, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return &photo, nil
}

// FindActiveByUser возвращает активное фото пользователя.
// Активным может быть не более одного фото.
func (r *PhotoRepositoryImpl) FindActiveByUser(db *gorm.DB, userID string) (*models.Photo, error) {
	var photo models.Photo
	err := db.Where("user_id = ? AND is_active = ?", userID, true).First(&photo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return &photo, nil
}

func (r *PhotoRepositoryImpl) FindByUser(db *gorm.DB, userID string) ([]models.Photo, error) {
	var photos []models.Photo
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&photos).Error
	return photos, err
}

// DeactivateAllForUser снимает флаг is_active со всех фото пользователя.
// Вызывается перед активацией нового фото.
func (r *PhotoRepositoryImpl) DeactivateAllForUser(db *gorm.DB, userID string) error {
	return db.Model(&models.Photo{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error
}

// Approve переводит фото из pending в approved.
// Решение модератора по уже решенному фото отклоняется.
func (r *PhotoRepositoryImpl) Approve(db *gorm.DB, id string) error {
	result := db.Model(&models.Photo{}).
		Where("id = ? AND status = ?", id, models.PhotoStatusPending).
		Update("status", models.PhotoStatusApproved)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.classifyModerationMiss(db, id)
	}
	return nil
}

func (r *PhotoRepositoryImpl) Reject(db *gorm.DB, id string, reason string) error {
	result := db.Model(&models.Photo{}).
		Where("id = ? AND status = ?", id, models.PhotoStatusPending).
		Updates(map[string]interface{}{
			"status":           models.PhotoStatusRejected,
			"rejection_reason": reason,
			"is_active":        false,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.classifyModerationMiss(db, id)
	}
	return nil
}

// classifyModerationMiss различает "фото нет" и "фото уже решено"
func (r *PhotoRepositoryImpl) classifyModerationMiss(db *gorm.DB, id string) error {
	var photo models.Photo
	if err := db.First(&photo, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPhotoNotFound
		}
		return err
	}
	return ErrPhotoNotPending
}

func (r *PhotoRepositoryImpl) FindPendingModeration(db *gorm.DB, limit, offset int) ([]models.Photo, int64, error) {
	var total int64
	if err := db.Model(&models.Photo{}).
		Where("status = ?", models.PhotoStatusPending).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var photos []models.Photo
	err := db.Preload("User").
		Where("status = ?", models.PhotoStatusPending).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&photos).Error

	return photos, total, err
}

func (r *PhotoRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Photo{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPhotoNotFound
	}
	return nil
}
