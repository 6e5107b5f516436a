package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	VersionedRecord
	Name           string              `gorm:"type:varchar(120);not null"`
	Email          string              `gorm:"type:varchar(200);not null;uniqueIndex"`
	Phone          string              `gorm:"type:varchar(30)"`
	PasswordHash   string              `gorm:"type:varchar(255);not null"`
	Role           identity.Role       `gorm:"type:varchar(20);not null;default:'customer';index"`
	Status         identity.UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	FailedAttempts int                 `gorm:"not null;default:0"`
	LockedUntil    *time.Time
	LastLoginAt    *time.Time `gorm:"index"`
	LastLoginIP    string     `gorm:"type:varchar(45)"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.root(),
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		PasswordHash:      m.PasswordHash,
		Role:              m.Role,
		Status:            m.Status,
		FailedAttempts:    m.FailedAttempts,
		LockedUntil:       m.LockedUntil,
		LastLoginAt:       m.LastLoginAt,
		LastLoginIP:       m.LastLoginIP,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.VersionedRecord = versionedOf(u.BaseAggregateRoot)
	m.Name = u.Name
	m.Email = u.Email
	m.Phone = u.Phone
	m.PasswordHash = u.PasswordHash
	m.Role = u.Role
	m.Status = u.Status
	m.FailedAttempts = u.FailedAttempts
	m.LockedUntil = u.LockedUntil
	m.LastLoginAt = u.LastLoginAt
	m.LastLoginIP = u.LastLoginIP
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// AddressModel is the persistence model for a saved delivery address.
type AddressModel struct {
	Record
	UserID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Label        string    `gorm:"type:varchar(50);not null"`
	Recipient    string    `gorm:"type:varchar(150);not null"`
	Phone        string    `gorm:"type:varchar(30)"`
	Line1        string    `gorm:"type:varchar(200);not null"`
	Line2        string    `gorm:"type:varchar(200)"`
	Suburb       string    `gorm:"type:varchar(100);not null"`
	State        string    `gorm:"type:varchar(10);not null"`
	Postcode     string    `gorm:"type:varchar(4);not null"`
	Instructions string    `gorm:"type:text"`
	IsDefault    bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (AddressModel) TableName() string {
	return "addresses"
}

// ToDomain converts the persistence model to a domain Address.
func (m *AddressModel) ToDomain() *identity.Address {
	return &identity.Address{
		BaseEntity: m.entity(),
		UserID:     m.UserID,
		AddressFields: identity.AddressFields{
			Label:        m.Label,
			Recipient:    m.Recipient,
			Phone:        m.Phone,
			Line1:        m.Line1,
			Line2:        m.Line2,
			Suburb:       m.Suburb,
			State:        m.State,
			Postcode:     m.Postcode,
			Instructions: m.Instructions,
		},
		IsDefault: m.IsDefault,
	}
}

// AddressModelFromDomain creates a persistence model from a domain Address.
func AddressModelFromDomain(a *identity.Address) *AddressModel {
	m := &AddressModel{
		Record:       recordOf(a.BaseEntity),
		UserID:       a.UserID,
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
	return m
}
