package dto

import (
	"time"

	"ratery_backend/internal/models"
)

// UpdateProfileRequest - частичное обновление профиля, nil-поля не трогаются
type UpdateProfileRequest struct {
	BirthYear   *int    `json:"birth_year,omitempty" validate:"omitempty,min=1900,max=2100"`
	Gender      *string `json:"gender,omitempty" validate:"omitempty,is-gender"`
	Country     *string `json:"country,omitempty" validate:"omitempty,max=64"`
	Language    *string `json:"language,omitempty" validate:"omitempty,max=8"`
	IsOnboarded *bool   `json:"is_onboarded,omitempty"`
}

// UserResponse - профиль пользователя
type UserResponse struct {
	ID          string            `json:"id"`
	Email       string            `json:"email"`
	Role        models.UserRole   `json:"role"`
	Status      models.UserStatus `json:"status"`
	BirthYear   *int              `json:"birth_year,omitempty"`
	Gender      *models.Gender    `json:"gender,omitempty"`
	Country     *string           `json:"country,omitempty"`
	Language    string            `json:"language"`
	IsVerified  bool              `json:"is_verified"`
	IsOnboarded bool              `json:"is_onboarded"`
	CreatedAt   time.Time         `json:"created_at"`

	ActivePhoto *PhotoResponse `json:"active_photo,omitempty"`
}
