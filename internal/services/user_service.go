package services

import (
	"gorm.io/gorm"

	"ratery_backend/internal/models"
	"ratery_backend/internal/repositories"
	"ratery_backend/internal/services/dto"
	"ratery_backend/pkg/apperrors"
)

type UserService interface {
	GetMe(db *gorm.DB, userID string) (*dto.UserResponse, error)
	UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
}

type UserServiceImpl struct {
	userRepo  repositories.UserRepository
	photoRepo repositories.PhotoRepository
}

func NewUserService(userRepo repositories.UserRepository, photoRepo repositories.PhotoRepository) UserService {
	return &UserServiceImpl{
		userRepo:  userRepo,
		photoRepo: photoRepo,
	}
}

// GetMe возвращает профиль текущего пользователя с активным фото
func (s *UserServiceImpl) GetMe(db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.DatabaseError(err)
	}

	resp := buildUserResponse(user)

	photo, err := s.photoRepo.FindActiveByUser(db, userID)
	if err == nil {
		resp.ActivePhoto = buildPhotoResponse(photo)
	} else if !apperrors.Is(err, repositories.ErrPhotoNotFound) {
		return nil, apperrors.DatabaseError(err)
	}

	return resp, nil
}

// UpdateProfile обновляет только явно переданные поля
func (s *UserServiceImpl) UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	updates := make(map[string]interface{})

	if req.BirthYear != nil {
		updates["birth_year"] = *req.BirthYear
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.Language != nil {
		updates["language"] = *req.Language
	}
	if req.IsOnboarded != nil {
		updates["is_onboarded"] = *req.IsOnboarded
	}

	if len(updates) > 0 {
		if err := s.userRepo.UpdateProfile(db, userID, updates); err != nil {
			if apperrors.Is(err, repositories.ErrUserNotFound) {
				return nil, apperrors.ErrNotFound(err)
			}
			return nil, apperrors.DatabaseError(err)
		}
	}

	return s.GetMe(db, userID)
}

func buildUserResponse(user *models.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Role:        user.Role,
		Status:      user.Status,
		BirthYear:   user.BirthYear,
		Gender:      user.Gender,
		Country:     user.Country,
		Language:    user.Language,
		IsVerified:  user.IsVerified,
		IsOnboarded: user.IsOnboarded,
		CreatedAt:   user.CreatedAt,
	}
}
