package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratery_backend/internal/models"
	"ratery_backend/internal/repositories"
	"ratery_backend/internal/services/dto"
	"ratery_backend/pkg/apperrors"
	"ratery_backend/test/helpers"
)

func newAuthService() AuthService {
	return NewAuthService(
		repositories.NewUserRepository(),
		repositories.NewStatsRepository(),
		repositories.NewRefreshTokenRepository(),
		nil,
	)
}

func registerReq(email string) *dto.RegisterRequest {
	birthYear := 1998
	return &dto.RegisterRequest{
		Email:     email,
		Password:  "password123",
		BirthYear: &birthYear,
	}
}

func TestRegister_CreatesUserWithStats(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newAuthService()

	resp, err := svc.Register(db, registerReq("new@example.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.Equal(t, models.UserRoleUser, resp.User.Role)

	// Строка агрегатов создается вместе с пользователем
	var stats models.RatingStats
	require.NoError(t, db.First(&stats, "user_id = ?", resp.User.ID).Error)
	assert.Equal(t, 1.0, stats.RatingPower)
	assert.False(t, stats.IsRatingVisible)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newAuthService()

	_, err := svc.Register(db, registerReq("dup@example.com"))
	require.NoError(t, err)

	_, err = svc.Register(db, registerReq("dup@example.com"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrEmailAlreadyExists))
}

func TestRegister_WeakPassword(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newAuthService()

	req := registerReq("weak@example.com")
	req.Password = "short"
	_, err := svc.Register(db, req)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrWeakPassword))
}

func TestLogin(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newAuthService()

	_, err := svc.Register(db, registerReq("login@example.com"))
	require.NoError(t, err)

	resp, err := svc.Login(db, &dto.LoginRequest{
		Email:    "login@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(db, &dto.LoginRequest{
		Email:    "login@example.com",
		Password: "wrong-password",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidCredentials))

	// Несуществующий email дает ту же ошибку, без утечки информации
	_, err = svc.Login(db, &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidCredentials))
}

func TestLogin_BannedUser(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newAuthService()

	resp, err := svc.Register(db, registerReq("banned@example.com"))
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", resp.User.ID).
		Update("status", models.UserStatusBanned).Error)

	_, err = svc.Login(db, &dto.LoginRequest{
		Email:    "banned@example.com",
		Password: "password123",
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, 403, appErr.HTTPCode)
}

func TestRefreshToken_Rotation(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newAuthService()

	first, err := svc.Register(db, registerReq("refresh@example.com"))
	require.NoError(t, err)

	second, err := svc.RefreshToken(db, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// Старый refresh token отозван ротацией
	_, err = svc.RefreshToken(db, first.RefreshToken)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidToken))
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newAuthService()

	resp, err := svc.Register(db, registerReq("logout@example.com"))
	require.NoError(t, err)

	require.NoError(t, svc.Logout(db, resp.RefreshToken))

	_, err = svc.RefreshToken(db, resp.RefreshToken)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidToken))
}

func TestVerifyEmail(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newAuthService()

	resp, err := svc.Register(db, registerReq("verify@example.com"))
	require.NoError(t, err)
	assert.False(t, resp.User.IsVerified)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", resp.User.ID).Error)
	require.NotEmpty(t, user.VerificationCode)

	require.NoError(t, svc.VerifyEmail(db, user.VerificationCode))

	require.NoError(t, db.First(&user, "id = ?", resp.User.ID).Error)
	assert.True(t, user.IsVerified)
	assert.Empty(t, user.VerificationCode)

	// Использованный код второй раз не принимается
	err = svc.VerifyEmail(db, "no-such-code")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidToken))
}
