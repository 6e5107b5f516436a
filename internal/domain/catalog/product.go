package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

// ProductUnit is how a product is sold.
type ProductUnit string

const (
	UnitKilogram ProductUnit = "kg"
	UnitEach     ProductUnit = "each"
	UnitPack     ProductUnit = "pack"
)

// IsValid reports whether u is a known unit.
func (u ProductUnit) IsValid() bool {
	return u == UnitKilogram || u == UnitEach || u == UnitPack
}

// Whole reports whether quantities in this unit must be integral.
func (u ProductUnit) Whole() bool {
	return u != UnitKilogram
}

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	// ProductStatusArchived hides a deleted product that order history still references.
	ProductStatusArchived ProductStatus = "archived"
)

// MaxProductImages caps the gallery size per product.
const MaxProductImages = 8

// Product is a sellable cut or pack with its own stock level.
type Product struct {
	shared.BaseAggregateRoot
	CategoryID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name              string           `gorm:"type:varchar(200);not null"`
	Slug              string           `gorm:"type:varchar(220);not null;uniqueIndex"`
	SKU               string           `gorm:"column:sku;type:varchar(50);not null;uniqueIndex"`
	Description       string           `gorm:"type:text"`
	ShortDescription  string           `gorm:"type:varchar(500)"`
	Unit              ProductUnit      `gorm:"type:varchar(10);not null;default:'kg'"`
	Price             decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	SalePrice         *decimal.Decimal `gorm:"type:decimal(18,2)"`
	StockQuantity     decimal.Decimal  `gorm:"type:decimal(12,3);not null;default:0"`
	LowStockThreshold decimal.Decimal  `gorm:"type:decimal(12,3);not null;default:0"`
	MinQuantity       decimal.Decimal  `gorm:"type:decimal(12,3);not null;default:1"`
	IsFeatured        bool             `gorm:"not null;default:false"`
	Status            ProductStatus    `gorm:"type:varchar(20);not null;default:'active';index"`
	Images            []ProductImage   `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates an active product with no stock.
func NewProduct(categoryID uuid.UUID, name, slug, sku string, unit ProductUnit, price decimal.Decimal) (*Product, error) {
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if !ValidSlug(slug) {
		return nil, shared.NewDomainError("INVALID_SLUG", "Slug must contain lower-case letters, digits and hyphens")
	}
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" || len(sku) > 50 {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU must be 1-50 characters")
	}
	if !unit.IsValid() {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit must be kg, each or pack")
	}

	var err error
	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CategoryID:        categoryID,
		Name:              strings.TrimSpace(name),
		Slug:              slug,
		SKU:               sku,
		Unit:              unit,
		StockQuantity:     decimal.Zero,
		LowStockThreshold: decimal.Zero,
		MinQuantity:       defaultMinQuantity(unit),
		Status:            ProductStatusActive,
	}
	if p.Price, p.SalePrice, err = checkPricing(price, nil); err != nil {
		return nil, err
	}
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

func defaultMinQuantity(unit ProductUnit) decimal.Decimal {
	if unit == UnitKilogram {
		return decimal.RequireFromString("0.5")
	}
	return decimal.NewFromInt(1)
}

// Update replaces name, category, unit and descriptions. The description is
// expected to be sanitized by the caller.
func (p *Product) Update(categoryID uuid.UUID, name string, unit ProductUnit, description, shortDescription string) error {
	if categoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}
	if err := validateProductName(name); err != nil {
		return err
	}
	if !unit.IsValid() {
		return shared.NewDomainError("INVALID_UNIT", "Unit must be kg, each or pack")
	}
	if len(shortDescription) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Short description cannot exceed 500 characters")
	}
	p.CategoryID = categoryID
	p.Name = strings.TrimSpace(name)
	p.Unit = unit
	p.Description = description
	p.ShortDescription = strings.TrimSpace(shortDescription)
	p.MarkModified()
	return nil
}

// ChangeSlug replaces the slug.
func (p *Product) ChangeSlug(slug string) error {
	if !ValidSlug(slug) {
		return shared.NewDomainError("INVALID_SLUG", "Slug must contain lower-case letters, digits and hyphens")
	}
	p.Slug = slug
	p.MarkModified()
	return nil
}

// ChangeSKU replaces the stock keeping unit code.
func (p *Product) ChangeSKU(sku string) error {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" || len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU must be 1-50 characters")
	}
	p.SKU = sku
	p.MarkModified()
	return nil
}

// SetPricing sets the regular price and an optional sale price below it.
func (p *Product) SetPricing(price decimal.Decimal, salePrice *decimal.Decimal) error {
	newPrice, newSale, err := checkPricing(price, salePrice)
	if err != nil {
		return err
	}
	p.Price = newPrice
	p.SalePrice = newSale
	p.MarkModified()
	return nil
}

func checkPricing(price decimal.Decimal, salePrice *decimal.Decimal) (decimal.Decimal, *decimal.Decimal, error) {
	price = shared.RoundMoney(price)
	if !price.IsPositive() {
		return price, nil, shared.NewDomainError("INVALID_PRICE", "Price must be at least 0.01")
	}
	if salePrice == nil {
		return price, nil, nil
	}
	sp := shared.RoundMoney(*salePrice)
	if !sp.IsPositive() {
		return price, nil, shared.NewDomainError("INVALID_PRICE", "Sale price must be at least 0.01")
	}
	if !sp.LessThan(price) {
		return price, nil, shared.NewDomainError("INVALID_PRICE", "Sale price must be lower than the regular price")
	}
	return price, &sp, nil
}

// SetStockRules sets the low-stock alert threshold and minimum order quantity.
func (p *Product) SetStockRules(lowStockThreshold, minQuantity decimal.Decimal) error {
	if lowStockThreshold.IsNegative() {
		return shared.NewDomainError("INVALID_THRESHOLD", "Low stock threshold cannot be negative")
	}
	if !minQuantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Minimum quantity must be greater than zero")
	}
	if p.Unit.Whole() && !minQuantity.Equal(minQuantity.Truncate(0)) {
		return shared.NewDomainError("INVALID_QUANTITY", "Minimum quantity must be a whole number for this unit")
	}
	p.LowStockThreshold = shared.RoundQuantity(lowStockThreshold)
	p.MinQuantity = shared.RoundQuantity(minQuantity)
	p.MarkModified()
	return nil
}

// SetFeatured toggles the featured flag.
func (p *Product) SetFeatured(featured bool) {
	if p.IsFeatured == featured {
		return
	}
	p.IsFeatured = featured
	p.MarkModified()
}

// Activate makes the product purchasable.
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	p.Status = ProductStatusActive
	p.MarkModified()
	return nil
}

// Deactivate hides the product from the storefront.
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	if p.Status == ProductStatusArchived {
		return shared.InvalidState("Archived products cannot change status")
	}
	p.Status = ProductStatusInactive
	p.MarkModified()
	return nil
}

// Archive retires the product while keeping it for order history.
func (p *Product) Archive() {
	p.Status = ProductStatusArchived
	p.IsFeatured = false
	p.MarkModified()
}

// IsActive reports whether customers can buy the product.
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// EffectivePrice is the sale price when set, otherwise the regular price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil && p.SalePrice.IsPositive() {
		return *p.SalePrice
	}
	return p.Price
}

// IsOnSale reports whether a sale price is in effect.
func (p *Product) IsOnSale() bool {
	return p.SalePrice != nil && p.SalePrice.IsPositive() && p.SalePrice.LessThan(p.Price)
}

// IsLowStock reports whether stock is at or below the alert threshold.
func (p *Product) IsLowStock() bool {
	return p.StockQuantity.LessThanOrEqual(p.LowStockThreshold)
}

// InStock reports whether at least the minimum quantity can be sold.
func (p *Product) InStock() bool {
	return p.StockQuantity.GreaterThanOrEqual(p.MinQuantity)
}

// ValidateQuantity checks a requested purchase quantity against unit and
// minimum rules. Stock is not considered.
func (p *Product) ValidateQuantity(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	if p.Unit.Whole() && !qty.Equal(qty.Truncate(0)) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be a whole number for "+p.Name)
	}
	if !p.Unit.Whole() && !qty.Equal(shared.RoundQuantity(qty)) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity supports at most three decimal places")
	}
	if qty.LessThan(p.MinQuantity) {
		return shared.NewDomainError("INVALID_QUANTITY", "Minimum quantity for "+p.Name+" is "+p.MinQuantity.String()+" "+string(p.Unit))
	}
	return nil
}

// CanFulfil reports whether stock covers qty.
func (p *Product) CanFulfil(qty decimal.Decimal) bool {
	return p.StockQuantity.GreaterThanOrEqual(qty)
}

// ChangeStock applies a signed delta to the stock level and returns the level
// before and after. Stock never goes negative.
func (p *Product) ChangeStock(delta decimal.Decimal) (before, after decimal.Decimal, err error) {
	before = p.StockQuantity
	after = shared.RoundQuantity(before.Add(delta))
	if after.IsNegative() {
		return before, before, shared.NewDomainError(shared.ErrInsufficientStock.Code, "Insufficient stock for "+p.Name)
	}
	wasLow := p.IsLowStock()
	p.StockQuantity = after
	p.MarkModified()
	if !wasLow && p.IsLowStock() {
		p.AddDomainEvent(NewStockLowEvent(p))
	}
	return before, after, nil
}

// AddImage attaches an image. The first image, or one flagged primary,
// becomes the primary image.
func (p *Product) AddImage(storageKey, url, altText string, primary bool) (*ProductImage, error) {
	if len(p.Images) >= MaxProductImages {
		return nil, shared.NewDomainError("TOO_MANY_IMAGES", "A product can have at most 8 images")
	}
	if strings.TrimSpace(storageKey) == "" {
		return nil, shared.NewDomainError("INVALID_IMAGE", "Storage key is required")
	}
	img := ProductImage{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  p.ID,
		StorageKey: storageKey,
		URL:        url,
		AltText:    strings.TrimSpace(altText),
		SortOrder:  len(p.Images),
		IsPrimary:  primary || len(p.Images) == 0,
	}
	if img.IsPrimary {
		for i := range p.Images {
			p.Images[i].IsPrimary = false
		}
	}
	p.Images = append(p.Images, img)
	p.MarkModified()
	return &p.Images[len(p.Images)-1], nil
}

// RemoveImage detaches an image and promotes the next one when the primary
// image was removed.
func (p *Product) RemoveImage(imageID uuid.UUID) (*ProductImage, error) {
	for i, img := range p.Images {
		if img.ID != imageID {
			continue
		}
		removed := img
		p.Images = append(p.Images[:i], p.Images[i+1:]...)
		for j := range p.Images {
			p.Images[j].SortOrder = j
		}
		if removed.IsPrimary && len(p.Images) > 0 {
			p.Images[0].IsPrimary = true
		}
		p.MarkModified()
		return &removed, nil
	}
	return nil, shared.NotFound("Image")
}

// PrimaryImage returns the primary image, or nil.
func (p *Product) PrimaryImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	return nil
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
