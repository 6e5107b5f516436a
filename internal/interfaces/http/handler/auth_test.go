package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	identityapp "github.com/zambezimeats/backend/internal/application/identity"
	"github.com/zambezimeats/backend/internal/infrastructure/auth"
	"github.com/zambezimeats/backend/internal/infrastructure/event"
	"github.com/zambezimeats/backend/internal/infrastructure/persistence"
	"github.com/zambezimeats/backend/internal/interfaces/http/dto"
)

func authServer(t *testing.T) *testServer {
	s := newTestServer(t)
	svc := identityapp.NewAuthService(
		persistence.NewGormUserRepository(s.db),
		s.jwt,
		s.blacklist,
		event.NewInMemoryEventBus(s.log),
		identityapp.AuthServiceConfig{MaxLoginAttempts: 3, LockDuration: time.Minute},
		s.log,
	)
	h := NewAuthHandler(svc)

	public := s.engine.Group("/auth")
	public.POST("/register", h.Register)
	public.POST("/login", h.Login)
	public.POST("/refresh", h.Refresh)

	session := s.group("/auth")
	session.POST("/logout", h.Logout)
	session.GET("/me", h.Me)
	session.PUT("/me", h.UpdateProfile)
	session.PUT("/password", h.ChangePassword)
	return s
}

func register(t *testing.T, s *testServer, email string) identityapp.AuthResponse {
	t.Helper()
	w := s.do(http.MethodPost, "/auth/register", identityapp.RegisterRequest{
		Name:     "Thandi Moyo",
		Email:    email,
		Password: "biltong-2024",
		Phone:    "0400 000 000",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[identityapp.AuthResponse](t, w).Data
}

func TestAuthHandler_Register(t *testing.T) {
	s := authServer(t)

	resp := register(t, s, "Thandi@Example.com")
	assert.Equal(t, "thandi@example.com", resp.User.Email)
	assert.Equal(t, "customer", resp.User.Role)
	require.NotNil(t, resp.Token)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.NotEmpty(t, resp.Token.RefreshToken)

	t.Run("duplicate email", func(t *testing.T) {
		w := s.do(http.MethodPost, "/auth/register", identityapp.RegisterRequest{
			Name: "Someone", Email: "thandi@example.com", Password: "another-pass",
		}, "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeAlreadyExists, errorCode(t, w))
	})

	t.Run("short password", func(t *testing.T) {
		w := s.do(http.MethodPost, "/auth/register", identityapp.RegisterRequest{
			Name: "Someone", Email: "someone@example.com", Password: "short",
		}, "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, errorCode(t, w))
	})
}

func TestAuthHandler_Login(t *testing.T) {
	s := authServer(t)
	register(t, s, "sipho@example.com")

	t.Run("valid credentials", func(t *testing.T) {
		w := s.do(http.MethodPost, "/auth/login", identityapp.LoginRequest{Email: "SIPHO@example.com", Password: "biltong-2024"}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[identityapp.AuthResponse](t, w).Data
		assert.NotEmpty(t, resp.Token.AccessToken)
		assert.NotNil(t, resp.User.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := s.do(http.MethodPost, "/auth/login", identityapp.LoginRequest{Email: "sipho@example.com", Password: "wrong-pass"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidCredentials, errorCode(t, w))
	})

	t.Run("unknown email looks the same", func(t *testing.T) {
		w := s.do(http.MethodPost, "/auth/login", identityapp.LoginRequest{Email: "nobody@example.com", Password: "whatever"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidCredentials, errorCode(t, w))
	})

	t.Run("locks after repeated failures", func(t *testing.T) {
		var w = s.do(http.MethodPost, "/auth/login", identityapp.LoginRequest{Email: "sipho@example.com", Password: "wrong-again"}, "")
		for range 3 {
			w = s.do(http.MethodPost, "/auth/login", identityapp.LoginRequest{Email: "sipho@example.com", Password: "wrong-again"}, "")
		}
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrCodeAccountLocked, errorCode(t, w))

		w = s.do(http.MethodPost, "/auth/login", identityapp.LoginRequest{Email: "sipho@example.com", Password: "biltong-2024"}, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestAuthHandler_Session(t *testing.T) {
	s := authServer(t)
	reg := register(t, s, "nomsa@example.com")
	token := reg.Token.AccessToken

	t.Run("me", func(t *testing.T) {
		w := s.do(http.MethodGet, "/auth/me", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, reg.User.ID, decode[identityapp.UserResponse](t, w).Data.ID)
	})

	t.Run("me without token", func(t *testing.T) {
		w := s.do(http.MethodGet, "/auth/me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("update profile", func(t *testing.T) {
		w := s.do(http.MethodPut, "/auth/me", identityapp.UpdateProfileRequest{Name: "Nomsa Dube", Phone: "0411 111 111"}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		user := decode[identityapp.UserResponse](t, w).Data
		assert.Equal(t, "Nomsa Dube", user.Name)
		assert.Equal(t, "0411 111 111", user.Phone)
	})

	t.Run("refresh rotates the pair", func(t *testing.T) {
		w := s.do(http.MethodPost, "/auth/refresh", identityapp.RefreshRequest{RefreshToken: reg.Token.RefreshToken}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		pair := decode[map[string]auth.TokenPair](t, w).Data["token"]
		assert.NotEmpty(t, pair.AccessToken)

		w = s.do(http.MethodPost, "/auth/refresh", identityapp.RefreshRequest{RefreshToken: reg.Token.RefreshToken}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("logout revokes the access token", func(t *testing.T) {
		w := s.do(http.MethodPost, "/auth/logout", nil, token)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = s.do(http.MethodGet, "/auth/me", nil, token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenRevoked, errorCode(t, w))
	})
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	s := authServer(t)
	reg := register(t, s, "farai@example.com")

	w := s.do(http.MethodPut, "/auth/password", identityapp.ChangePasswordRequest{
		CurrentPassword: "not-my-password", NewPassword: "boerewors-99",
	}, reg.Token.AccessToken)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "ERR_INVALID_PASSWORD", errorCode(t, w))

	w = s.do(http.MethodPut, "/auth/password", identityapp.ChangePasswordRequest{
		CurrentPassword: "biltong-2024", NewPassword: "boerewors-99",
	}, reg.Token.AccessToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	fresh := decode[identityapp.AuthResponse](t, w).Data.Token.AccessToken

	w = s.do(http.MethodPost, "/auth/login", identityapp.LoginRequest{Email: "farai@example.com", Password: "boerewors-99"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/auth/me", nil, fresh)
	assert.Equal(t, http.StatusOK, w.Code)
}
