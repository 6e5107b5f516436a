package promotion

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/promotion"
)

// ValidateCodeRequest checks a code against the caller's cart.
type ValidateCodeRequest struct {
	Code string `json:"code" binding:"required,promo_code"`
}

// ValidateCodeResponse is the discount the code would give right now.
type ValidateCodeResponse struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Value    decimal.Decimal `json:"value"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
}

// PromotionRequest creates or replaces a promotion. The code is fixed once
// created; an update may repeat it or leave it out.
type PromotionRequest struct {
	Code           string           `json:"code" binding:"omitempty,promo_code"`
	Name           string           `json:"name" binding:"required,max=150"`
	Description    string           `json:"description" binding:"omitempty,max=2000"`
	Type           string           `json:"type" binding:"required,oneof=percentage fixed"`
	Value          decimal.Decimal  `json:"value" binding:"required"`
	MinOrderAmount decimal.Decimal  `json:"min_order_amount"`
	MaxDiscount    *decimal.Decimal `json:"max_discount"`
	UsageLimit     *int             `json:"usage_limit" binding:"omitempty,min=1"`
	PerUserLimit   *int             `json:"per_user_limit" binding:"omitempty,min=1"`
	StartsAt       *time.Time       `json:"starts_at"`
	EndsAt         *time.Time       `json:"ends_at"`
	IsActive       *bool            `json:"is_active"`
}

func (r PromotionRequest) terms() promotion.Terms {
	return promotion.Terms{
		Name:           r.Name,
		Description:    r.Description,
		Type:           promotion.DiscountType(r.Type),
		Value:          r.Value,
		MinOrderAmount: r.MinOrderAmount,
		MaxDiscount:    r.MaxDiscount,
		UsageLimit:     r.UsageLimit,
		PerUserLimit:   r.PerUserLimit,
		StartsAt:       r.StartsAt,
		EndsAt:         r.EndsAt,
	}
}

// PromotionListQuery holds the admin list parameters.
type PromotionListQuery struct {
	Search  string `form:"search" binding:"omitempty,max=100"`
	Active  *bool  `form:"active"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1,max=100"`
	SortBy  string `form:"sort_by"`
	SortDir string `form:"sort_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// PromotionResponse represents a promotion in API responses
type PromotionResponse struct {
	ID             uuid.UUID        `json:"id"`
	Code           string           `json:"code"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Type           string           `json:"type"`
	Value          decimal.Decimal  `json:"value"`
	MinOrderAmount decimal.Decimal  `json:"min_order_amount"`
	MaxDiscount    *decimal.Decimal `json:"max_discount"`
	UsageLimit     *int             `json:"usage_limit"`
	UsageCount     int              `json:"usage_count"`
	Remaining      *int             `json:"remaining"`
	PerUserLimit   *int             `json:"per_user_limit"`
	StartsAt       *time.Time       `json:"starts_at"`
	EndsAt         *time.Time       `json:"ends_at"`
	IsActive       bool             `json:"is_active"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ToPromotionResponse converts a domain Promotion to PromotionResponse
func ToPromotionResponse(p *promotion.Promotion) PromotionResponse {
	return PromotionResponse{
		ID:             p.ID,
		Code:           p.Code,
		Name:           p.Name,
		Description:    p.Description,
		Type:           string(p.Type),
		Value:          p.Value,
		MinOrderAmount: p.MinOrderAmount,
		MaxDiscount:    p.MaxDiscount,
		UsageLimit:     p.UsageLimit,
		UsageCount:     p.UsageCount,
		Remaining:      p.Remaining(),
		PerUserLimit:   p.PerUserLimit,
		StartsAt:       p.StartsAt,
		EndsAt:         p.EndsAt,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
