package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ratery_backend/internal/config"
	"ratery_backend/internal/email"
	"ratery_backend/internal/logger"
	"ratery_backend/internal/models"
	"ratery_backend/internal/repositories"
	"ratery_backend/internal/services/dto"
	"ratery_backend/internal/storage"
	"ratery_backend/pkg/apperrors"
)

type PhotoService interface {
	Upload(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader) (*dto.PhotoResponse, error)
	GetMyPhotos(db *gorm.DB, userID string) ([]*dto.PhotoResponse, error)
	GetPendingModeration(db *gorm.DB, page, pageSize int) (*dto.PhotoListResponse, error)
	Approve(db *gorm.DB, photoID string) error
	Reject(db *gorm.DB, photoID, reason string) error
}

type PhotoServiceImpl struct {
	photoRepo     repositories.PhotoRepository
	userRepo      repositories.UserRepository
	storage       storage.Storage
	emailProvider email.Provider
}

func NewPhotoService(
	photoRepo repositories.PhotoRepository,
	userRepo repositories.UserRepository,
	store storage.Storage,
	emailProvider email.Provider,
) PhotoService {
	return &PhotoServiceImpl{
		photoRepo:     photoRepo,
		userRepo:      userRepo,
		storage:       store,
		emailProvider: emailProvider,
	}
}

// Upload принимает новое фото пользователя. Файл уходит в хранилище,
// запись создается в транзакции: старые фото деактивируются, новое
// становится активным. При включенном auto_approve фото сразу
// проходит модерацию и попадает в очереди оценивания.
func (s *PhotoServiceImpl) Upload(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader) (*dto.PhotoResponse, error) {
	cfg := config.GetConfig()

	if file.Size > cfg.Upload.MaxSize {
		return nil, apperrors.ErrFileTooLarge
	}

	contentType := file.Header.Get("Content-Type")
	if !isAllowedType(contentType, cfg.Upload.AllowedTypes) {
		return nil, apperrors.ErrInvalidFileType
	}

	src, err := file.Open()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	defer src.Close()

	ext := filepath.Ext(file.Filename)
	path := fmt.Sprintf("photos/%s/%s%s", userID, uuid.NewString(), ext)

	if err := s.storage.Save(ctx, path, src, contentType); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExternalServiceError, "photo", "Failed to store file", 502)
	}

	url, err := s.storage.GetURL(ctx, path)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	status := models.PhotoStatusPending
	active := false
	if cfg.Upload.AutoApprove {
		status = models.PhotoStatusApproved
		active = true
	}

	photo := &models.Photo{
		UserID:   userID,
		URL:      url,
		Status:   status,
		IsActive: active,
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if active {
			if err := s.photoRepo.DeactivateAllForUser(tx, userID); err != nil {
				return apperrors.DatabaseError(err)
			}
		}
		if err := s.photoRepo.Create(tx, photo); err != nil {
			return apperrors.DatabaseError(err)
		}
		return nil
	})
	if txErr != nil {
		// Запись не создана, подчищаем файл
		if delErr := s.storage.Delete(ctx, path); delErr != nil {
			logger.WithError(delErr).Warn("failed to clean up stored file", "path", path)
		}
		return nil, txErr
	}

	return buildPhotoResponse(photo), nil
}

func (s *PhotoServiceImpl) GetMyPhotos(db *gorm.DB, userID string) ([]*dto.PhotoResponse, error) {
	photos, err := s.photoRepo.FindByUser(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	result := make([]*dto.PhotoResponse, 0, len(photos))
	for i := range photos {
		result = append(result, buildPhotoResponse(&photos[i]))
	}
	return result, nil
}

func (s *PhotoServiceImpl) GetPendingModeration(db *gorm.DB, page, pageSize int) (*dto.PhotoListResponse, error) {
	offset := (page - 1) * pageSize
	photos, total, err := s.photoRepo.FindPendingModeration(db, pageSize, offset)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	items := make([]*dto.PhotoResponse, 0, len(photos))
	for i := range photos {
		items = append(items, buildPhotoResponse(&photos[i]))
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &dto.PhotoListResponse{
		Photos:     items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Approve одобряет фото и делает его активным, если у владельца
// нет другого активного фото
func (s *PhotoServiceImpl) Approve(db *gorm.DB, photoID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		photo, err := s.photoRepo.FindByID(tx, photoID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrPhotoNotFound) {
				return apperrors.ErrNotFound(err)
			}
			return apperrors.DatabaseError(err)
		}

		if err := s.photoRepo.Approve(tx, photoID); err != nil {
			return classifyModerationError(err)
		}

		// У пользователя без активного фото одобренное становится активным
		if _, err := s.photoRepo.FindActiveByUser(tx, photo.UserID); err != nil {
			if !apperrors.Is(err, repositories.ErrPhotoNotFound) {
				return apperrors.DatabaseError(err)
			}
			if err := tx.Model(&models.Photo{}).
				Where("id = ?", photoID).
				Update("is_active", true).Error; err != nil {
				return apperrors.DatabaseError(err)
			}
		}

		return nil
	})
}

func (s *PhotoServiceImpl) Reject(db *gorm.DB, photoID, reason string) error {
	photo, err := s.photoRepo.FindByID(db, photoID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPhotoNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.DatabaseError(err)
	}

	if err := s.photoRepo.Reject(db, photoID, reason); err != nil {
		return classifyModerationError(err)
	}

	s.notifyRejection(db, photo.UserID, reason)
	return nil
}

func (s *PhotoServiceImpl) notifyRejection(db *gorm.DB, userID, reason string) {
	if s.emailProvider == nil {
		return
	}

	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return
	}

	go func() {
		err := s.emailProvider.SendTemplate(
			[]string{user.Email},
			"Фото не прошло модерацию",
			"photo_rejected",
			email.TemplateData{"Reason": reason},
		)
		if err != nil {
			logger.WithError(err).Warn("failed to send rejection email", "user_id", userID)
		}
	}()
}

func classifyModerationError(err error) error {
	switch {
	case apperrors.Is(err, repositories.ErrPhotoNotFound):
		return apperrors.ErrNotFound(err)
	case apperrors.Is(err, repositories.ErrPhotoNotPending):
		return apperrors.ErrPhotoNotPending
	default:
		return apperrors.DatabaseError(err)
	}
}

func isAllowedType(contentType string, allowed []string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	for _, t := range allowed {
		if contentType == t {
			return true
		}
	}
	return false
}

func buildPhotoResponse(photo *models.Photo) *dto.PhotoResponse {
	return &dto.PhotoResponse{
		ID:              photo.ID,
		URL:             photo.URL,
		ThumbnailURL:    photo.ThumbnailURL,
		Status:          photo.Status,
		RejectionReason: photo.RejectionReason,
		IsActive:        photo.IsActive,
		CreatedAt:       photo.CreatedAt,
	}
}
