package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/identity"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"github.com/zambezimeats/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

const deliveryStaffListSize = 100

// UserService handles user management operations for admins.
type UserService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, q UserListQuery) (shared.Paginated[UserResponse], error) {
	filter := identity.UserFilter{
		Keyword:  strings.TrimSpace(q.Search),
		Page:     q.Page,
		PageSize: q.PerPage,
		SortBy:   q.SortBy,
		SortDir:  q.SortDir,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if q.Role != "" {
		role := identity.Role(q.Role)
		filter.Role = &role
	}
	if q.Status != "" {
		status := identity.UserStatus(q.Status)
		filter.Status = &status
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[UserResponse]{}, err
	}
	items := make([]UserResponse, len(users))
	for i, u := range users {
		items[i] = ToUserResponse(u)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ListDeliveryStaff returns active delivery users for order assignment.
func (s *UserService) ListDeliveryStaff(ctx context.Context) ([]UserResponse, error) {
	role := identity.RoleDelivery
	status := identity.UserStatusActive
	users, _, err := s.userRepo.FindAll(ctx, identity.UserFilter{
		Role:     &role,
		Status:   &status,
		Page:     1,
		PageSize: deliveryStaffListSize,
		SortBy:   "name",
		SortDir:  "asc",
	})
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = ToUserResponse(u)
	}
	return out, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Create adds an account with any role.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, identity.NormalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "Email is already registered")
	}

	user, err := identity.NewUser(req.Name, req.Email, req.Password, identity.Role(req.Role))
	if err != nil {
		return nil, err
	}
	user.Phone = strings.TrimSpace(req.Phone)
	user.ClearDomainEvents()

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created by admin",
		zap.String("user_id", user.ID.String()),
		zap.String("role", req.Role))
	resp := ToUserResponse(user)
	return &resp, nil
}

// Update edits another account. Admins cannot demote themselves.
func (s *UserService) Update(ctx context.Context, actorID, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	role := identity.Role(req.Role)
	if actorID == id && role != user.Role {
		return nil, shared.NewDomainError("SELF_MODIFICATION", "You cannot change your own role")
	}

	if err := user.UpdateProfile(req.Name, req.Phone); err != nil {
		return nil, err
	}
	roleChanged := user.Role != role
	if err := user.ChangeRole(role); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if roleChanged {
		// tokens carry the role, so earlier ones must not outlive the change
		s.revokeSessions(ctx, user.ID)
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateStatus suspends or reactivates an account. Suspension ends every
// session of the user.
func (s *UserService) UpdateStatus(ctx context.Context, actorID, id uuid.UUID, req UpdateUserStatusRequest) (*UserResponse, error) {
	if actorID == id && req.Status == string(identity.UserStatusSuspended) {
		return nil, shared.NewDomainError("SELF_MODIFICATION", "You cannot suspend your own account")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch identity.UserStatus(req.Status) {
	case identity.UserStatusSuspended:
		err = user.Suspend()
	default:
		err = user.Activate()
	}
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if user.Status == identity.UserStatusSuspended {
		s.revokeSessions(ctx, user.ID)
	}

	s.logger.Info("User status changed",
		zap.String("user_id", user.ID.String()),
		zap.String("status", string(user.Status)),
		zap.String("actor_id", actorID.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

func (s *UserService) revokeSessions(ctx context.Context, userID uuid.UUID) {
	if err := s.blacklist.RevokeUser(ctx, userID.String(), s.jwtService.RefreshTTL()); err != nil {
		s.logger.Error("Failed to revoke user sessions", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
