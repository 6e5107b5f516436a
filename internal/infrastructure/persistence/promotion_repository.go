package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/promotion"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPromotionRepository implements PromotionRepository using GORM
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewGormPromotionRepository creates a new GormPromotionRepository
func NewGormPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

func (r *GormPromotionRepository) FindByID(ctx context.Context, id uuid.UUID) (*promotion.Promotion, error) {
	var p promotion.Promotion
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Promotion")
	}
	return &p, nil
}

// FindByCode looks a promotion up by its normalized code.
func (r *GormPromotionRepository) FindByCode(ctx context.Context, code string) (*promotion.Promotion, error) {
	var p promotion.Promotion
	if err := r.db.WithContext(ctx).Where("code = ?", promotion.NormalizeCode(code)).First(&p).Error; err != nil {
		return nil, notFound(err, "Promotion")
	}
	return &p, nil
}

func (r *GormPromotionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]promotion.Promotion, int64, error) {
	var promotions []promotion.Promotion
	var total int64

	query := r.db.WithContext(ctx).Model(&promotion.Promotion{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(code) LIKE ? OR LOWER(name) LIKE ?)", pattern, pattern)
	}
	if active, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", active)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(promotionSorts.clause(filter.OrderBy, filter.OrderDir, "created_at"))
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if err := query.Find(&promotions).Error; err != nil {
		return nil, 0, err
	}
	return promotions, total, nil
}

// Save writes admin edits. usage_count is owned by Consume and Release and
// is never overwritten here.
func (r *GormPromotionRepository) Save(ctx context.Context, p *promotion.Promotion) error {
	return saveVersioned(r.db.WithContext(ctx), p, &p.BaseAggregateRoot, "usage_count")
}

// Delete removes a promotion. Redeemed promotions are kept for order history.
func (r *GormPromotionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var used int64
	if err := r.db.WithContext(ctx).Model(&promotion.Usage{}).Where("promotion_id = ?", id).Count(&used).Error; err != nil {
		return err
	}
	if used > 0 {
		return shared.NewDomainError("PROMO_IN_USE", "Promotion has been redeemed and cannot be deleted; deactivate it instead")
	}
	result := r.db.WithContext(ctx).Delete(&promotion.Promotion{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFound("Promotion")
	}
	return nil
}

func (r *GormPromotionRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&promotion.Promotion{}).
		Where("code = ?", promotion.NormalizeCode(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Consume bumps usage_count with a guarded update and records the usage.
func (r *GormPromotionRepository) Consume(ctx context.Context, usage *promotion.Usage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&promotion.Promotion{}).
			Where("id = ? AND (usage_limit IS NULL OR usage_count < usage_limit)", usage.PromotionID).
			UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("PROMO_USAGE_LIMIT", "This promo code has reached its usage limit")
		}
		return tx.Create(usage).Error
	})
}

// Release deletes the order's usage and gives the slot back.
func (r *GormPromotionRepository) Release(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var usage promotion.Usage
		err := tx.Where("order_id = ?", orderID).First(&usage).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Delete(&usage).Error; err != nil {
			return err
		}
		return tx.Model(&promotion.Promotion{}).
			Where("id = ? AND usage_count > 0", usage.PromotionID).
			UpdateColumn("usage_count", gorm.Expr("usage_count - 1")).Error
	})
}

func (r *GormPromotionRepository) CountUsageByUser(ctx context.Context, promotionID, userID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&promotion.Usage{}).
		Where("promotion_id = ? AND user_id = ?", promotionID, userID).
		Count(&count).Error
	return int(count), err
}

var _ promotion.PromotionRepository = (*GormPromotionRepository)(nil)
