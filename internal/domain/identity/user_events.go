package identity

import (
	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

const (
	AggregateTypeUser       = "User"
	EventTypeUserRegistered = "UserRegistered"
)

// UserRegisteredEvent is raised when an account is created.
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
}

func NewUserRegisteredEvent(u *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, u.ID),
		UserID:          u.ID,
		Email:           u.Email,
		Role:            u.Role,
	}
}
