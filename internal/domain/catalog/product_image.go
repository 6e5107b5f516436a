package catalog

import (
	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

// ProductImage is one picture in a product gallery, stored in object storage.
type ProductImage struct {
	shared.BaseEntity
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index"`
	StorageKey string    `gorm:"type:varchar(500);not null"`
	URL        string    `gorm:"type:varchar(1000);not null"`
	AltText    string    `gorm:"type:varchar(200)"`
	SortOrder  int       `gorm:"not null;default:0"`
	IsPrimary  bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ProductImage) TableName() string {
	return "product_images"
}
