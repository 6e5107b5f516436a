package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zambezimeats/backend/internal/domain/identity"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"github.com/zambezimeats/backend/internal/infrastructure/auth"
	"github.com/zambezimeats/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const testPassword = "Password123"

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "zambezi-test",
	})
}

// Helper function to create a test user
func createTestUser(t *testing.T, role identity.Role) *identity.User {
	t.Helper()
	user, err := identity.NewUser("Jane Citizen", "jane@example.com", testPassword, role)
	require.NoError(t, err)
	user.ClearDomainEvents()
	return user
}

// Helper function to create auth service
func createAuthService(userRepo *MockUserRepository, blacklist auth.TokenBlacklist) *AuthService {
	return NewAuthService(userRepo, newTestJWT(), blacklist, nil, DefaultAuthServiceConfig(), zap.NewNop())
}

func TestAuthService_Register_Success(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	userRepo.On("ExistsByEmail", ctx, "jane@example.com").Return(false, nil)
	userRepo.On("Create", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

	svc := createAuthService(userRepo, auth.NewInMemoryTokenBlacklist())
	result, err := svc.Register(ctx, RegisterRequest{
		Name:     "Jane Citizen",
		Email:    "  Jane@Example.com ",
		Password: testPassword,
		Phone:    "0400 000 000",
	})

	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", result.User.Email)
	assert.Equal(t, "customer", result.User.Role)
	assert.Equal(t, "0400 000 000", result.User.Phone)
	assert.NotEmpty(t, result.Token.AccessToken)
	assert.NotEmpty(t, result.Token.RefreshToken)
	userRepo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	userRepo.On("ExistsByEmail", ctx, "jane@example.com").Return(true, nil)

	svc := createAuthService(userRepo, auth.NewInMemoryTokenBlacklist())
	_, err := svc.Register(ctx, RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: testPassword})

	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t, identity.RoleStaff)
	userRepo.On("FindByEmail", ctx, "jane@example.com").Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)

	svc := createAuthService(userRepo, auth.NewInMemoryTokenBlacklist())
	result, err := svc.Login(ctx, LoginRequest{Email: "JANE@example.com", Password: testPassword}, "10.0.0.1")

	require.NoError(t, err)
	assert.Equal(t, "staff", result.User.Role)
	assert.Equal(t, "Bearer", result.Token.TokenType)
	assert.Equal(t, "10.0.0.1", user.LastLoginIP)
	assert.NotNil(t, user.LastLoginAt)

	claims, err := newTestJWT().ValidateAccessToken(result.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "staff", claims.Role)
	userRepo.AssertExpectations(t)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t, identity.RoleCustomer)
	userRepo.On("FindByEmail", ctx, "jane@example.com").Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)

	svc := createAuthService(userRepo, auth.NewInMemoryTokenBlacklist())
	_, err := svc.Login(ctx, LoginRequest{Email: "jane@example.com", Password: "WrongPassword1"}, "")

	assert.True(t, shared.HasCode(err, "INVALID_CREDENTIALS"))
	assert.Equal(t, 1, user.FailedAttempts)
	userRepo.AssertExpectations(t)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	userRepo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, shared.NotFound("User"))

	svc := createAuthService(userRepo, auth.NewInMemoryTokenBlacklist())
	_, err := svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: testPassword}, "")

	assert.True(t, shared.HasCode(err, "INVALID_CREDENTIALS"))
}

func TestAuthService_Login_AccountLocksAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t, identity.RoleCustomer)
	userRepo.On("FindByEmail", ctx, "jane@example.com").Return(user, nil)
	userRepo.On("Update", ctx, mock.Anything).Return(nil)

	svc := createAuthService(userRepo, auth.NewInMemoryTokenBlacklist())
	var err error
	for range 5 {
		_, err = svc.Login(ctx, LoginRequest{Email: "jane@example.com", Password: "WrongPassword1"}, "")
	}
	assert.True(t, shared.HasCode(err, "ACCOUNT_LOCKED"))
	assert.True(t, user.IsLocked(time.Now()))

	// even the right password is refused while locked
	_, err = svc.Login(ctx, LoginRequest{Email: "jane@example.com", Password: testPassword}, "")
	assert.True(t, shared.HasCode(err, "ACCOUNT_LOCKED"))
}

func TestAuthService_Login_Suspended(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t, identity.RoleCustomer)
	require.NoError(t, user.Suspend())
	userRepo.On("FindByEmail", ctx, "jane@example.com").Return(user, nil)

	svc := createAuthService(userRepo, auth.NewInMemoryTokenBlacklist())
	_, err := svc.Login(ctx, LoginRequest{Email: "jane@example.com", Password: testPassword}, "")

	assert.True(t, shared.HasCode(err, "ACCOUNT_SUSPENDED"))
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t, identity.RoleCustomer)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

	jwtSvc := newTestJWT()
	pair, err := jwtSvc.IssuePair(subjectOf(user))
	require.NoError(t, err)

	svc := createAuthService(userRepo, auth.NewInMemoryTokenBlacklist())
	next, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.True(t, shared.HasCode(err, "TOKEN_REVOKED"))
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	svc := createAuthService(new(MockUserRepository), auth.NewInMemoryTokenBlacklist())

	_, err := svc.Refresh(context.Background(), RefreshRequest{RefreshToken: "not-a-token"})
	assert.True(t, shared.HasCode(err, "TOKEN_INVALID"))
}

func TestAuthService_Refresh_AccessTokenRejected(t *testing.T) {
	user := createTestUser(t, identity.RoleCustomer)
	pair, err := newTestJWT().IssuePair(subjectOf(user))
	require.NoError(t, err)

	svc := createAuthService(new(MockUserRepository), auth.NewInMemoryTokenBlacklist())
	_, err = svc.Refresh(context.Background(), RefreshRequest{RefreshToken: pair.AccessToken})
	assert.True(t, shared.HasCode(err, "TOKEN_INVALID"))
}

func TestAuthService_Logout_BlacklistsToken(t *testing.T) {
	ctx := context.Background()
	user := createTestUser(t, identity.RoleCustomer)
	jwtSvc := newTestJWT()
	pair, err := jwtSvc.IssuePair(subjectOf(user))
	require.NoError(t, err)
	claims, err := jwtSvc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	blacklist := auth.NewInMemoryTokenBlacklist()
	svc := createAuthService(new(MockUserRepository), blacklist)
	require.NoError(t, svc.Logout(ctx, claims))

	revoked, err := blacklist.IsBlacklisted(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t, identity.RoleCustomer)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)

	blacklist := auth.NewInMemoryTokenBlacklist()
	svc := createAuthService(userRepo, blacklist)
	result, err := svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{
		CurrentPassword: testPassword,
		NewPassword:     "NewPassword456",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.Token.AccessToken)
	assert.True(t, user.VerifyPassword("NewPassword456"))

	revoked, err := blacklist.IsUserRevoked(ctx, user.ID.String(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, revoked, "tokens issued before the change are revoked")
}

func TestAuthService_ChangePassword_WrongCurrent(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t, identity.RoleCustomer)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

	svc := createAuthService(userRepo, auth.NewInMemoryTokenBlacklist())
	_, err := svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{
		CurrentPassword: "NotMyPassword1",
		NewPassword:     "NewPassword456",
	})

	assert.True(t, shared.HasCode(err, "INVALID_PASSWORD"))
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	user := createTestUser(t, identity.RoleCustomer)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	userRepo.On("Update", ctx, user).Return(nil)

	svc := createAuthService(userRepo, auth.NewInMemoryTokenBlacklist())
	resp, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Name: "Jane Q Citizen", Phone: "0411 111 111"})

	require.NoError(t, err)
	assert.Equal(t, "Jane Q Citizen", resp.Name)
	assert.Equal(t, "0411 111 111", resp.Phone)
}

func TestAuthService_Me_NotFound(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	id := uuid.New()
	userRepo.On("FindByID", ctx, id).Return(nil, shared.NotFound("User"))

	svc := createAuthService(userRepo, auth.NewInMemoryTokenBlacklist())
	_, err := svc.Me(ctx, id)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
