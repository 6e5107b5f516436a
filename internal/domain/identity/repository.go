package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindAll(ctx context.Context, filter UserFilter) ([]*User, int64, error)
	CountByRole(ctx context.Context, role Role) (int64, error)
}

// UserFilter contains filter options for querying users
type UserFilter struct {
	Keyword  string
	Role     *Role
	Status   *UserStatus
	Page     int
	PageSize int
	SortBy   string
	SortDir  string
}

// AddressRepository persists saved delivery addresses.
type AddressRepository interface {
	Create(ctx context.Context, address *Address) error
	Update(ctx context.Context, address *Address) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Address, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Address, error)
	// SetDefault makes id the only default address of userID.
	SetDefault(ctx context.Context, userID, id uuid.UUID) error
}
