package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratery_backend/internal/config"
	"ratery_backend/internal/models"
)

func setJWTConfig(t *testing.T, ttlMinutes int) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-key-for-unit-tests"
	cfg.JWT.TTL = ttlMinutes
	config.AppConfig = cfg
}

func TestGenerateAndParseToken(t *testing.T) {
	setJWTConfig(t, 60)

	token, err := GenerateToken("user-123", string(models.UserRoleAdmin))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "user-123", claims.Subject)
}

func TestParseToken_WrongSecret(t *testing.T) {
	setJWTConfig(t, 60)

	token, err := GenerateToken("user-123", "user")
	require.NoError(t, err)

	config.AppConfig.JWT.Secret = "another-secret"
	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseToken_Expired(t *testing.T) {
	setJWTConfig(t, 60)

	now := time.Now()
	claims := &Claims{
		UserID: "user-123",
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(config.AppConfig.JWT.Secret))
	require.NoError(t, err)

	_, err = ParseToken(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseToken_WrongSigningMethod(t *testing.T) {
	setJWTConfig(t, 60)

	// alg=none отклоняется независимо от содержимого
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-123"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(unsigned)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "secret-password", hash)

	assert.True(t, CheckPasswordHash("secret-password", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("short"))
	assert.NoError(t, ValidatePassword("long-enough-password"))
}
