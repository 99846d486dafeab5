package dto

import (
	"time"

	"ratery_backend/internal/models"
)

// RegisterRequest - запрос регистрации
type RegisterRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	BirthYear *int    `json:"birth_year,omitempty" validate:"omitempty,min=1900,max=2100"`
	Gender    *string `json:"gender,omitempty" validate:"omitempty,is-gender"`
	Country   *string `json:"country,omitempty" validate:"omitempty,max=64"`
	Language  string  `json:"language,omitempty" validate:"omitempty,max=8"`
}

// LoginRequest - запрос входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest - запрос обновления токена
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest - запрос выхода
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// VerifyEmailRequest - запрос подтверждения email
type VerifyEmailRequest struct {
	Code string `json:"code" validate:"required"`
}

// AuthResponse - ответ с токенами
type AuthResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	User         UserDTO `json:"user"`
}

// UserDTO - базовая информация о пользователе
type UserDTO struct {
	ID          string            `json:"id"`
	Email       string            `json:"email"`
	Role        models.UserRole   `json:"role"`
	Status      models.UserStatus `json:"status"`
	IsVerified  bool              `json:"is_verified"`
	IsOnboarded bool              `json:"is_onboarded"`
	CreatedAt   time.Time         `json:"created_at"`
}
