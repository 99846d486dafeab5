package services

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"gorm.io/gorm"

	"ratery_backend/internal/auth"
	"ratery_backend/internal/email"
	"ratery_backend/internal/logger"
	"ratery_backend/internal/models"
	"ratery_backend/internal/repositories"
	"ratery_backend/internal/services/dto"
	"ratery_backend/pkg/apperrors"
)

const refreshTokenTTL = 7 * 24 * time.Hour

type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(db *gorm.DB, refreshToken string) (*dto.AuthResponse, error)
	Logout(db *gorm.DB, refreshToken string) error
	VerifyEmail(db *gorm.DB, code string) error
}

type AuthServiceImpl struct {
	userRepo         repositories.UserRepository
	statsRepo        repositories.StatsRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	emailProvider    email.Provider
}

func NewAuthService(
	userRepo repositories.UserRepository,
	statsRepo repositories.StatsRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	emailProvider email.Provider,
) AuthService {
	return &AuthServiceImpl{
		userRepo:         userRepo,
		statsRepo:        statsRepo,
		refreshTokenRepo: refreshTokenRepo,
		emailProvider:    emailProvider,
	}
}

// Register - регистрация нового пользователя.
// Вместе с пользователем создается пустая строка агрегатов:
// сила голоса 1.0, индекс скрыт до набора оценок.
func (s *AuthServiceImpl) Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	verificationCode := generateRandomToken()

	user := &models.User{
		Email:            req.Email,
		PasswordHash:     hash,
		Role:             models.UserRoleUser,
		Status:           models.UserStatusActive,
		BirthYear:        req.BirthYear,
		Country:          req.Country,
		IsVerified:       false,
		VerificationCode: verificationCode,
	}
	if req.Gender != nil {
		g := models.Gender(*req.Gender)
		user.Gender = &g
	}
	if req.Language != "" {
		user.Language = req.Language
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.Create(tx, user); err != nil {
			if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
				return apperrors.ErrEmailAlreadyExists
			}
			return apperrors.DatabaseError(err)
		}

		stats := &models.RatingStats{
			UserID:          user.ID,
			RatingPower:     1.0,
			IsRatingVisible: false,
		}
		if err := s.statsRepo.Create(tx, stats); err != nil {
			return apperrors.DatabaseError(err)
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.sendVerificationEmail(user.Email, verificationCode)

	return s.issueTokens(db, user)
}

// Login - аутентификация пользователя
func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.DatabaseError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.checkUserStatus(user); err != nil {
		return nil, err
	}

	return s.issueTokens(db, user)
}

// RefreshToken - обновление access token по refresh token с ротацией
func (s *AuthServiceImpl) RefreshToken(db *gorm.DB, refreshToken string) (*dto.AuthResponse, error) {
	token, err := s.refreshTokenRepo.FindByToken(db, refreshToken)
	if err != nil {
		// Неважно, какая ошибка - токен невалиден
		return nil, apperrors.ErrInvalidToken
	}

	if time.Now().After(token.ExpiresAt) {
		_ = s.refreshTokenRepo.DeleteByToken(db, refreshToken)
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(db, token.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	if err := s.checkUserStatus(user); err != nil {
		return nil, err
	}

	if err := s.refreshTokenRepo.DeleteByToken(db, refreshToken); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	return s.issueTokens(db, user)
}

// Logout - выход (удаление refresh token)
func (s *AuthServiceImpl) Logout(db *gorm.DB, refreshToken string) error {
	return s.refreshTokenRepo.DeleteByToken(db, refreshToken)
}

// VerifyEmail - подтверждение email по коду из письма
func (s *AuthServiceImpl) VerifyEmail(db *gorm.DB, code string) error {
	user, err := s.userRepo.FindByVerificationCode(db, code)
	if err != nil {
		return apperrors.ErrInvalidToken
	}

	return s.userRepo.VerifyUser(db, user.ID)
}

// --- Helper functions ---

func (s *AuthServiceImpl) issueTokens(db *gorm.DB, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refreshToken := generateRandomToken()
	rt := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.refreshTokenRepo.Create(db, rt); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserDTO{
			ID:          user.ID,
			Email:       user.Email,
			Role:        user.Role,
			Status:      user.Status,
			IsVerified:  user.IsVerified,
			IsOnboarded: user.IsOnboarded,
			CreatedAt:   user.CreatedAt,
		},
	}, nil
}

func (s *AuthServiceImpl) checkUserStatus(user *models.User) error {
	switch user.Status {
	case models.UserStatusSuspended, models.UserStatusBanned:
		return apperrors.NewForbiddenError("Account is not active")
	}
	return nil
}

func (s *AuthServiceImpl) sendVerificationEmail(to, code string) {
	if s.emailProvider == nil {
		return
	}

	go func() {
		if err := s.emailProvider.SendVerification(to, code); err != nil {
			logger.WithError(err).Warn("failed to send verification email", "to", to)
		}
	}()
}

// generateRandomToken генерирует случайный токен
func generateRandomToken() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
