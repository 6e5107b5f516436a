package delivery

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

// ProofOfDelivery is captured by the driver at the door.
type ProofOfDelivery struct {
	shared.BaseEntity
	OrderID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	RecipientName string    `gorm:"type:varchar(150);not null"`
	SignatureKey  string    `gorm:"type:varchar(500)"`
	PhotoKey      string    `gorm:"type:varchar(500)"`
	Notes         string    `gorm:"type:text"`
	DeliveredBy   uuid.UUID `gorm:"type:uuid;not null;index"`
	DeliveredAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProofOfDelivery) TableName() string {
	return "proofs_of_delivery"
}

// NewProofOfDelivery requires a recipient name and at least one of a
// signature or a photo.
func NewProofOfDelivery(orderID, driverID uuid.UUID, recipient, signatureKey, photoKey, notes string) (*ProofOfDelivery, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return nil, shared.NewDomainError("INVALID_POD", "Recipient name is required")
	}
	signatureKey = strings.TrimSpace(signatureKey)
	photoKey = strings.TrimSpace(photoKey)
	if signatureKey == "" && photoKey == "" {
		return nil, shared.NewDomainError("INVALID_POD", "A signature or a photo is required")
	}
	return &ProofOfDelivery{
		BaseEntity:    shared.NewBaseEntity(),
		OrderID:       orderID,
		RecipientName: recipient,
		SignatureKey:  signatureKey,
		PhotoKey:      photoKey,
		Notes:         strings.TrimSpace(notes),
		DeliveredBy:   driverID,
		DeliveredAt:   time.Now().UTC(),
	}, nil
}
