package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/zambezimeats/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is the single role a user account holds.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleDelivery Role = "delivery"
	RoleAdmin    Role = "admin"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleDelivery, RoleAdmin:
		return true
	}
	return false
}

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

const bcryptCost = 12

var (
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	letterPattern = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
)

// User is the account aggregate for customers and store personnel alike.
type User struct {
	shared.BaseAggregateRoot
	Name           string
	Email          string
	Phone          string
	PasswordHash   string
	Role           Role
	Status         UserStatus
	FailedAttempts int
	LockedUntil    *time.Time
	LastLoginAt    *time.Time
	LastLoginIP    string
}

// NewUser creates an active user with a hashed password.
func NewUser(name, email, password string, role Role) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 120 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot exceed 120 characters")
	}
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		PasswordHash:      hash,
		Role:              role,
		Status:            UserStatusActive,
	}
	user.AddDomainEvent(NewUserRegisteredEvent(user))
	return user, nil
}

// NormalizeEmail trims and lower-cases an e-mail address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UpdateProfile changes the display name and phone number.
func (u *User) UpdateProfile(name, phone string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(phone) > 30 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 30 characters")
	}
	u.Name = name
	u.Phone = strings.TrimSpace(phone)
	u.MarkModified()
	return nil
}

// ChangePassword replaces the password after verifying the current one.
func (u *User) ChangePassword(current, next string) error {
	if !u.VerifyPassword(current) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return u.SetPassword(next)
}

// SetPassword replaces the password without verification (admin reset).
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.MarkModified()
	return nil
}

func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangeRole assigns a new role.
func (u *User) ChangeRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}
	if u.Role == role {
		return nil
	}
	u.Role = role
	u.MarkModified()
	return nil
}

// Suspend blocks the account from logging in.
func (u *User) Suspend() error {
	if u.Status == UserStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "User is already suspended")
	}
	u.Status = UserStatusSuspended
	u.MarkModified()
	return nil
}

// Activate lifts a suspension and any login lock.
func (u *User) Activate() error {
	if u.Status == UserStatusActive && u.LockedUntil == nil {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}
	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.MarkModified()
	return nil
}

// IsLocked reports whether a temporary login lock is in force at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// CheckCanLogin returns the reason the user may not log in, if any.
func (u *User) CheckCanLogin(now time.Time) error {
	if u.Status == UserStatusSuspended {
		return shared.NewDomainError("ACCOUNT_SUSPENDED", "Account has been suspended")
	}
	if u.IsLocked(now) {
		return shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later")
	}
	return nil
}

// RecordLoginFailure counts a failed attempt and locks the account once
// maxAttempts is reached. It returns true when the lock was applied.
func (u *User) RecordLoginFailure(maxAttempts int, lockFor time.Duration) bool {
	u.FailedAttempts++
	locked := false
	if maxAttempts > 0 && u.FailedAttempts >= maxAttempts {
		until := time.Now().UTC().Add(lockFor)
		u.LockedUntil = &until
		u.FailedAttempts = 0
		locked = true
	}
	u.MarkModified()
	return locked
}

// RecordLoginSuccess clears failures and stamps the login.
func (u *User) RecordLoginSuccess(ip string) {
	now := time.Now().UTC()
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.MarkModified()
}

// HasAnyRole reports whether the user holds one of roles. Admins hold every role.
func (u *User) HasAnyRole(roles ...Role) bool {
	return RoleSatisfies(u.Role, roles...)
}

// RoleSatisfies reports whether held grants any of required.
func RoleSatisfies(held Role, required ...Role) bool {
	if held == RoleAdmin {
		return true
	}
	for _, r := range required {
		if held == r {
			return true
		}
	}
	return false
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !letterPattern.MatchString(password) || !digitPattern.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
