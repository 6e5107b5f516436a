package persistence

import (
	"github.com/zambezimeats/backend/internal/domain/cart"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/delivery"
	"github.com/zambezimeats/backend/internal/domain/inventory"
	"github.com/zambezimeats/backend/internal/domain/order"
	"github.com/zambezimeats/backend/internal/domain/promotion"
	"github.com/zambezimeats/backend/internal/domain/settings"
	"github.com/zambezimeats/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// Models lists every persisted type in dependency order. Production schemas
// come from the SQL migrations; this list backs AutoMigrate for sqlite.
func Models() []any {
	return []any{
		&models.UserModel{},
		&models.AddressModel{},
		&catalog.Category{},
		&catalog.Product{},
		&catalog.ProductImage{},
		&cart.Cart{},
		&cart.CartItem{},
		&promotion.Promotion{},
		&promotion.Usage{},
		&delivery.Zone{},
		&order.Order{},
		&order.Item{},
		&order.StatusHistory{},
		&order.Payment{},
		&delivery.ProofOfDelivery{},
		&inventory.StockMovement{},
		&settings.Setting{},
	}
}

// AutoMigrate creates or updates tables for Models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
