package delivery

import (
	"regexp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

var postcodePattern = regexp.MustCompile(`^\d{4}$`)

// ValidPostcode reports whether s is a four digit Australian postcode.
func ValidPostcode(s string) bool {
	return postcodePattern.MatchString(s)
}

// Zone is a delivery area defined by a list of postcodes.
type Zone struct {
	shared.BaseAggregateRoot
	Name                  string           `gorm:"type:varchar(100);not null"`
	Postcodes             []string         `gorm:"type:text;serializer:json;not null"`
	DeliveryFee           decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	FreeDeliveryThreshold *decimal.Decimal `gorm:"type:decimal(18,2)"`
	MinOrderAmount        decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	EstimatedDays         string           `gorm:"type:varchar(30)"`
	SortOrder             int              `gorm:"not null;default:0"`
	IsActive              bool             `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Zone) TableName() string {
	return "delivery_zones"
}

// ZoneTerms are the editable fields of a zone.
type ZoneTerms struct {
	Name                  string
	Postcodes             []string
	DeliveryFee           decimal.Decimal
	FreeDeliveryThreshold *decimal.Decimal
	MinOrderAmount        decimal.Decimal
	EstimatedDays         string
	SortOrder             int
}

// NewZone creates an active zone.
func NewZone(terms ZoneTerms) (*Zone, error) {
	z := &Zone{BaseAggregateRoot: shared.NewBaseAggregateRoot(), IsActive: true}
	if err := z.apply(terms); err != nil {
		return nil, err
	}
	return z, nil
}

// Update replaces the zone terms.
func (z *Zone) Update(terms ZoneTerms) error {
	if err := z.apply(terms); err != nil {
		return err
	}
	z.MarkModified()
	return nil
}

func (z *Zone) apply(t ZoneTerms) error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Zone name cannot be empty")
	}
	postcodes, err := NormalizePostcodes(t.Postcodes)
	if err != nil {
		return err
	}
	if t.DeliveryFee.IsNegative() {
		return shared.NewDomainError("INVALID_FEE", "Delivery fee cannot be negative")
	}
	if t.FreeDeliveryThreshold != nil && t.FreeDeliveryThreshold.IsNegative() {
		return shared.NewDomainError("INVALID_THRESHOLD", "Free delivery threshold cannot be negative")
	}
	if t.MinOrderAmount.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_ORDER", "Minimum order amount cannot be negative")
	}
	z.Name = name
	z.Postcodes = postcodes
	z.DeliveryFee = shared.RoundMoney(t.DeliveryFee)
	z.FreeDeliveryThreshold = t.FreeDeliveryThreshold
	z.MinOrderAmount = shared.RoundMoney(t.MinOrderAmount)
	z.EstimatedDays = strings.TrimSpace(t.EstimatedDays)
	z.SortOrder = t.SortOrder
	return nil
}

// SetActive enables or disables delivery to the zone.
func (z *Zone) SetActive(active bool) {
	if z.IsActive == active {
		return
	}
	z.IsActive = active
	z.MarkModified()
}

// Covers reports whether the zone delivers to postcode.
func (z *Zone) Covers(postcode string) bool {
	return slices.Contains(z.Postcodes, strings.TrimSpace(postcode))
}

// Overlaps returns the postcodes that both zones serve.
func (z *Zone) Overlaps(other *Zone) []string {
	var common []string
	for _, pc := range z.Postcodes {
		if other.Covers(pc) {
			common = append(common, pc)
		}
	}
	return common
}

// FeeFor returns the delivery fee for an order whose discounted subtotal is
// basis. Delivery is free once the threshold is reached.
func (z *Zone) FeeFor(basis decimal.Decimal) decimal.Decimal {
	if z.FreeDeliveryThreshold != nil && basis.GreaterThanOrEqual(*z.FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return z.DeliveryFee
}

// FreeDeliveryRemaining returns how much more the customer must spend for free
// delivery, zero once qualified, or nil when the zone has no threshold.
func (z *Zone) FreeDeliveryRemaining(basis decimal.Decimal) *decimal.Decimal {
	if z.FreeDeliveryThreshold == nil {
		return nil
	}
	left := z.FreeDeliveryThreshold.Sub(basis)
	if left.IsNegative() {
		left = decimal.Zero
	}
	left = shared.RoundMoney(left)
	return &left
}

// MeetsMinimum reports whether basis satisfies the zone minimum order.
func (z *Zone) MeetsMinimum(basis decimal.Decimal) bool {
	return basis.GreaterThanOrEqual(z.MinOrderAmount)
}

// NormalizePostcodes trims, validates, de-duplicates and sorts postcodes.
func NormalizePostcodes(in []string) ([]string, error) {
	if len(in) == 0 {
		return nil, shared.NewDomainError("INVALID_POSTCODES", "At least one postcode is required")
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		pc := strings.TrimSpace(raw)
		if !postcodePattern.MatchString(pc) {
			return nil, shared.NewDomainError("INVALID_POSTCODES", "Invalid postcode: "+raw)
		}
		if seen[pc] {
			continue
		}
		seen[pc] = true
		out = append(out, pc)
	}
	slices.Sort(out)
	return out, nil
}
