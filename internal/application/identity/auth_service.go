package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/identity"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"github.com/zambezimeats/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // Maximum failed login attempts before lock
	LockDuration     time.Duration // How long to lock account after max attempts
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

var errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	events     shared.EventPublisher
	config     AuthServiceConfig
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	events shared.EventPublisher,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		events:     events,
		config:     config,
		logger:     logger,
	}
}

// Register creates a customer account and signs it in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, identity.NormalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "Email is already registered")
	}

	user, err := identity.NewUser(req.Name, req.Email, req.Password, identity.RoleCustomer)
	if err != nil {
		return nil, err
	}
	user.Phone = strings.TrimSpace(req.Phone)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, user)

	s.logger.Info("Customer registered", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, req LoginRequest, ip string) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, identity.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login attempt for unknown email")
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := user.CheckCanLogin(time.Now()); err != nil {
		s.logger.Warn("Login refused", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, err
	}

	if !user.VerifyPassword(req.Password) {
		locked := user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.userRepo.Update(ctx, user); err != nil {
			s.logger.Error("Failed to update user after login failure", zap.Error(err))
		}
		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("user_id", user.ID.String()),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Try again in a few minutes")
		}
		return nil, errInvalidCredentials
	}

	user.RecordLoginSuccess(ip)
	if err := s.userRepo.Update(ctx, user); err != nil {
		// the login itself still succeeds
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return s.issue(user)
}

// Refresh exchanges a refresh token for a new pair. The old refresh token is
// revoked so each one can be used once.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*auth.TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
		}
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}

	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	userID, err := claims.UserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TOKEN_INVALID", "Account no longer exists")
		}
		return nil, err
	}
	if err := user.CheckCanLogin(time.Now()); err != nil {
		return nil, err
	}

	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		return nil, err
	}
	return s.jwtService.IssuePair(subjectOf(user))
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return err
	}
	if !revoked && claims.IssuedAt != nil {
		revoked, err = s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.IssuedAt.Time)
		if err != nil {
			return err
		}
	}
	if revoked {
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	}
	return nil
}

// Logout revokes the presented access token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		return err
	}
	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}

// Me returns the caller's profile.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile changes the caller's name and phone.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(req.Name, req.Phone); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangePassword replaces the password, revokes every earlier session and
// returns a fresh token pair for the caller.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) (*AuthResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.ChangePassword(req.CurrentPassword, req.NewPassword); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := s.blacklist.RevokeUser(ctx, user.ID.String(), s.jwtService.RefreshTTL()); err != nil {
		s.logger.Error("Failed to revoke sessions after password change", zap.Error(err))
	}

	s.logger.Info("User password changed", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

func (s *AuthService) issue(user *identity.User) (*AuthResponse, error) {
	pair, err := s.jwtService.IssuePair(subjectOf(user))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, err
	}
	return &AuthResponse{User: ToUserResponse(user), Token: pair}, nil
}

func (s *AuthService) publish(ctx context.Context, user *identity.User) {
	events := user.GetDomainEvents()
	user.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}
}

func subjectOf(u *identity.User) auth.Subject {
	return auth.Subject{UserID: u.ID, Email: u.Email, Role: string(u.Role)}
}
