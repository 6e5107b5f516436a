package promotion

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

// DiscountType selects how Value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// IsValid reports whether t is a known discount type.
func (t DiscountType) IsValid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// Error codes returned when a code cannot be applied.
const (
	CodeInvalid    = "PROMO_INVALID"
	CodeNotStarted = "PROMO_NOT_STARTED"
	CodeExpired    = "PROMO_EXPIRED"
	CodeUsageLimit = "PROMO_USAGE_LIMIT"
	CodeMinOrder   = "PROMO_MIN_ORDER"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)

var hundred = decimal.NewFromInt(100)

// Promotion is a discount code.
type Promotion struct {
	shared.BaseAggregateRoot
	Code           string           `gorm:"type:varchar(32);not null;uniqueIndex"`
	Name           string           `gorm:"type:varchar(150);not null"`
	Description    string           `gorm:"type:text"`
	Type           DiscountType     `gorm:"type:varchar(20);not null"`
	Value          decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	MinOrderAmount decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	MaxDiscount    *decimal.Decimal `gorm:"type:decimal(18,2)"`
	UsageLimit     *int
	UsageCount     int `gorm:"not null;default:0"`
	PerUserLimit   *int
	StartsAt       *time.Time
	EndsAt         *time.Time
	IsActive       bool `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Promotion) TableName() string {
	return "promotions"
}

// Terms are the editable rules of a promotion.
type Terms struct {
	Name           string
	Description    string
	Type           DiscountType
	Value          decimal.Decimal
	MinOrderAmount decimal.Decimal
	MaxDiscount    *decimal.Decimal
	UsageLimit     *int
	PerUserLimit   *int
	StartsAt       *time.Time
	EndsAt         *time.Time
}

// NormalizeCode upper-cases and trims a code as typed by a customer.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether code, once normalized, is a well-formed code.
func ValidCode(code string) bool {
	return codePattern.MatchString(NormalizeCode(code))
}

// NewPromotion creates an active promotion.
func NewPromotion(code string, terms Terms) (*Promotion, error) {
	code = NormalizeCode(code)
	if !codePattern.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_CODE", "Code must be 3-32 letters, digits, hyphens or underscores")
	}
	p := &Promotion{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		IsActive:          true,
	}
	if err := p.applyTerms(terms); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the rules. The code itself is immutable.
func (p *Promotion) Update(terms Terms) error {
	if terms.UsageLimit != nil && *terms.UsageLimit < p.UsageCount {
		return shared.NewDomainError("INVALID_USAGE_LIMIT", "Usage limit cannot be below the current usage count")
	}
	if err := p.applyTerms(terms); err != nil {
		return err
	}
	p.MarkModified()
	return nil
}

func (p *Promotion) applyTerms(t Terms) error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Promotion name cannot be empty")
	}
	if !t.Type.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Type must be percentage or fixed")
	}
	if !t.Value.IsPositive() {
		return shared.NewDomainError("INVALID_VALUE", "Value must be greater than zero")
	}
	if t.Type == DiscountPercentage && t.Value.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_VALUE", "Percentage cannot exceed 100")
	}
	if t.MinOrderAmount.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_ORDER", "Minimum order amount cannot be negative")
	}
	if t.MaxDiscount != nil && !t.MaxDiscount.IsPositive() {
		return shared.NewDomainError("INVALID_MAX_DISCOUNT", "Maximum discount must be greater than zero")
	}
	if t.UsageLimit != nil && *t.UsageLimit < 1 {
		return shared.NewDomainError("INVALID_USAGE_LIMIT", "Usage limit must be at least 1")
	}
	if t.PerUserLimit != nil && *t.PerUserLimit < 1 {
		return shared.NewDomainError("INVALID_USAGE_LIMIT", "Per-user limit must be at least 1")
	}
	if t.StartsAt != nil && t.EndsAt != nil && !t.EndsAt.After(*t.StartsAt) {
		return shared.NewDomainError("INVALID_PERIOD", "End date must be after start date")
	}

	p.Name = name
	p.Description = strings.TrimSpace(t.Description)
	p.Type = t.Type
	p.Value = shared.RoundMoney(t.Value)
	p.MinOrderAmount = shared.RoundMoney(t.MinOrderAmount)
	p.MaxDiscount = t.MaxDiscount
	p.UsageLimit = t.UsageLimit
	p.PerUserLimit = t.PerUserLimit
	p.StartsAt = t.StartsAt
	p.EndsAt = t.EndsAt
	return nil
}

// SetActive enables or disables the code.
func (p *Promotion) SetActive(active bool) {
	if p.IsActive == active {
		return
	}
	p.IsActive = active
	p.MarkModified()
}

// Discount computes the discount for subtotal. The result is rounded to cents,
// capped by MaxDiscount for percentage codes and never exceeds subtotal.
func (p *Promotion) Discount(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	var d decimal.Decimal
	switch p.Type {
	case DiscountPercentage:
		d = shared.Percent(subtotal, p.Value)
		if p.MaxDiscount != nil {
			d = shared.MinDecimal(d, *p.MaxDiscount)
		}
	case DiscountFixed:
		d = p.Value
	default:
		return decimal.Zero
	}
	return shared.RoundMoney(shared.MinDecimal(d, subtotal))
}

// CheckApplicable verifies that the code can be used now for subtotal by a
// customer who has already used it userUsage times. The first failing rule
// wins, in the order: active, started, not ended, global usage, per-user
// usage, minimum order.
func (p *Promotion) CheckApplicable(now time.Time, subtotal decimal.Decimal, userUsage int) error {
	if !p.IsActive {
		return shared.NewDomainError(CodeInvalid, "This promo code is not valid")
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return shared.NewDomainError(CodeNotStarted, "This promo code is not active yet")
	}
	if p.EndsAt != nil && !now.Before(*p.EndsAt) {
		return shared.NewDomainError(CodeExpired, "This promo code has expired")
	}
	if p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit {
		return shared.NewDomainError(CodeUsageLimit, "This promo code has reached its usage limit")
	}
	if p.PerUserLimit != nil && userUsage >= *p.PerUserLimit {
		return shared.NewDomainError(CodeUsageLimit, "You have already used this promo code")
	}
	if subtotal.LessThan(p.MinOrderAmount) {
		return shared.NewDomainError(CodeMinOrder, "A minimum order of $"+p.MinOrderAmount.StringFixed(2)+" is required for this promo code")
	}
	return nil
}

// Remaining returns how many uses are left, or nil when unlimited.
func (p *Promotion) Remaining() *int {
	if p.UsageLimit == nil {
		return nil
	}
	left := *p.UsageLimit - p.UsageCount
	if left < 0 {
		left = 0
	}
	return &left
}

// Usage records one redemption by a user on an order.
type Usage struct {
	shared.BaseEntity
	PromotionID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (Usage) TableName() string {
	return "promotion_usages"
}

// NewUsage creates a usage record.
func NewUsage(promotionID, userID, orderID uuid.UUID) *Usage {
	return &Usage{
		BaseEntity:  shared.NewBaseEntity(),
		PromotionID: promotionID,
		UserID:      userID,
		OrderID:     orderID,
	}
}
