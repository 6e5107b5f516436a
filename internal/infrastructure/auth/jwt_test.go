package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zambezimeats/backend/internal/infrastructure/config"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "zambezi-test",
	})
}

func newSubject() Subject {
	return Subject{
		UserID: uuid.New(),
		Email:  "jo@example.com",
		Role:   "customer",
	}
}

func TestNewJWTService_UsesSecretForRefreshIfNotProvided(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret"})
	assert.Equal(t, []byte("test-secret"), svc.refresh.secret)
}

func TestIssuePair(t *testing.T) {
	svc := newTestJWTService()

	pair, err := svc.IssuePair(newSubject())

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))
}

func TestValidateAccessToken_Success(t *testing.T) {
	svc := newTestJWTService()
	input := newSubject()
	pair, err := svc.IssuePair(input)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)

	require.NoError(t, err)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, input.Email, claims.Email)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID)

	id, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, input.UserID, id)
}

func TestValidateAccessToken_ExpiredToken(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	pair, err := svc.IssuePair(newSubject())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(pair.AccessToken)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	svc := newTestJWTService()
	_, err := svc.ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_RejectsRefreshToken(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:                 "same-secret-for-both-token-kinds!",
		AccessTokenExpiration:  time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "zambezi-test",
	})
	pair, err := svc.IssuePair(newSubject())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)

	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestValidateRefreshToken_CarriesNoRole(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.IssuePair(newSubject())
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(pair.RefreshToken)

	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.Empty(t, claims.Role)
}

func TestValidateAccessToken_DifferentSecret(t *testing.T) {
	pair, err := newTestJWTService().IssuePair(newSubject())
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:                "another-secret-key-of-32-characters",
		AccessTokenExpiration: time.Minute,
		Issuer:                "zambezi-test",
	})
	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_WrongIssuer(t *testing.T) {
	pair, err := newTestJWTService().IssuePair(newSubject())
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: time.Minute,
		Issuer:                "someone-else",
	})
	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_RejectsOtherAlgorithms(t *testing.T) {
	svc := newTestJWTService()
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "zambezi-test",
			Audience:  jwt.ClaimStrings{"zambezi-test"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
		UserID:    uuid.NewString(),
		Role:      "admin",
		TokenType: TokenTypeAccess,
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret-key-at-least-32-chars"))
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaims_RemainingTTL(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.IssuePair(newSubject())
	require.NoError(t, err)
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	ttl := claims.RemainingTTL()
	assert.Greater(t, ttl, 14*time.Minute)
	assert.LessOrEqual(t, ttl, 15*time.Minute)
	assert.Zero(t, (&Claims{}).RemainingTTL())
}
