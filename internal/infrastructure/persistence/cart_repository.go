package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/cart"
	"gorm.io/gorm"
)

// GormCartRepository implements CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByUser loads a user's cart with lines in the order they were added.
func (r *GormCartRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	var c cart.Cart
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("user_id = ?", userID).
		First(&c).Error; err != nil {
		return nil, notFound(err, "Cart")
	}
	return &c, nil
}

// Save writes the cart row guarded by its version and replaces its lines.
func (r *GormCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(tx, c, &c.BaseAggregateRoot); err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", c.ID).Delete(&cart.CartItem{}).Error; err != nil {
			return err
		}
		if len(c.Items) == 0 {
			return nil
		}
		for i := range c.Items {
			c.Items[i].CartID = c.ID
		}
		return tx.Create(&c.Items).Error
	})
}

// DeleteIdleSince deletes abandoned carts. Lines go first so the purge does
// not depend on the foreign key cascade.
func (r *GormCartRepository) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		idle := tx.Model(&cart.Cart{}).Select("id").Where("updated_at < ?", cutoff)
		if err := tx.Where("cart_id IN (?)", idle).Delete(&cart.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("updated_at < ?", cutoff).Delete(&cart.Cart{})
		removed = res.RowsAffected
		return res.Error
	})
	return removed, err
}

var _ cart.CartRepository = (*GormCartRepository)(nil)
