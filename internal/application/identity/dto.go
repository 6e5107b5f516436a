package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/identity"
	"github.com/zambezimeats/backend/internal/infrastructure/auth"
)

// RegisterRequest is the public sign-up payload. Accounts created here are
// always customers.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Phone    string `json:"phone" binding:"omitempty,max=30"`
}

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=128"`
}

// RefreshRequest represents the request body for token refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest changes the caller's own profile.
type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required,max=120"`
	Phone string `json:"phone" binding:"omitempty,max=30"`
}

// ChangePasswordRequest represents the request body for password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

// AddressRequest creates or replaces a saved address.
type AddressRequest struct {
	Label        string `json:"label" binding:"omitempty,max=50"`
	Recipient    string `json:"recipient" binding:"required,max=150"`
	Phone        string `json:"phone" binding:"omitempty,max=30"`
	Line1        string `json:"line1" binding:"required,max=200"`
	Line2        string `json:"line2" binding:"omitempty,max=200"`
	Suburb       string `json:"suburb" binding:"required,max=100"`
	State        string `json:"state" binding:"required,max=10"`
	Postcode     string `json:"postcode" binding:"required,postcode"`
	Instructions string `json:"instructions" binding:"omitempty,max=500"`
	IsDefault    bool   `json:"is_default"`
}

func (r AddressRequest) fields() identity.AddressFields {
	return identity.AddressFields{
		Label:        r.Label,
		Recipient:    r.Recipient,
		Phone:        r.Phone,
		Line1:        r.Line1,
		Line2:        r.Line2,
		Suburb:       r.Suburb,
		State:        r.State,
		Postcode:     r.Postcode,
		Instructions: r.Instructions,
	}
}

// CreateUserRequest is used by admins to create staff, delivery or admin accounts.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Phone    string `json:"phone" binding:"omitempty,max=30"`
	Role     string `json:"role" binding:"required,oneof=customer staff delivery admin"`
}

// UpdateUserRequest is the admin edit of another account.
type UpdateUserRequest struct {
	Name  string `json:"name" binding:"required,max=120"`
	Phone string `json:"phone" binding:"omitempty,max=30"`
	Role  string `json:"role" binding:"required,oneof=customer staff delivery admin"`
}

// UpdateUserStatusRequest suspends or reactivates an account.
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active suspended"`
}

// UserListQuery holds the admin user list query string.
type UserListQuery struct {
	Search  string `form:"search" binding:"omitempty,max=100"`
	Role    string `form:"role" binding:"omitempty,oneof=customer staff delivery admin"`
	Status  string `form:"status" binding:"omitempty,oneof=active suspended"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1,max=100"`
	SortBy  string `form:"sort_by" binding:"omitempty,oneof=name email created_at last_login_at"`
	SortDir string `form:"sort_dir" binding:"omitempty,oneof=asc desc"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToUserResponse converts a domain user to its API form.
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        string(u.Role),
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// AuthResponse is returned by register, login and password change.
type AuthResponse struct {
	User  UserResponse    `json:"user"`
	Token *auth.TokenPair `json:"token"`
}

// AddressResponse represents a saved address in API responses
type AddressResponse struct {
	ID           uuid.UUID `json:"id"`
	Label        string    `json:"label"`
	Recipient    string    `json:"recipient"`
	Phone        string    `json:"phone"`
	Line1        string    `json:"line1"`
	Line2        string    `json:"line2"`
	Suburb       string    `json:"suburb"`
	State        string    `json:"state"`
	Postcode     string    `json:"postcode"`
	Instructions string    `json:"instructions"`
	IsDefault    bool      `json:"is_default"`
}

// ToAddressResponse converts a domain address to its API form.
func ToAddressResponse(a *identity.Address) AddressResponse {
	return AddressResponse{
		ID:           a.ID,
		Label:        a.Label,
		Recipient:    a.Recipient,
		Phone:        a.Phone,
		Line1:        a.Line1,
		Line2:        a.Line2,
		Suburb:       a.Suburb,
		State:        a.State,
		Postcode:     a.Postcode,
		Instructions: a.Instructions,
		IsDefault:    a.IsDefault,
	}
}
