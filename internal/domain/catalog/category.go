package catalog

import (
	"strings"

	"github.com/zambezimeats/backend/internal/domain/shared"
)

// Category groups products on the storefront (Beef, Lamb, Chicken, Boerewors...).
type Category struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(100);not null"`
	Slug        string `gorm:"type:varchar(120);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	ImageURL    string `gorm:"type:varchar(500)"`
	SortOrder   int    `gorm:"not null;default:0"`
	IsActive    bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates an active category. The slug must already be unique.
func NewCategory(name, slug string) (*Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	if !ValidSlug(slug) {
		return nil, shared.NewDomainError("INVALID_SLUG", "Slug must contain lower-case letters, digits and hyphens")
	}
	c := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Slug:              slug,
		IsActive:          true,
	}
	c.AddDomainEvent(NewCategoryCreatedEvent(c))
	return c, nil
}

// Update replaces the descriptive fields.
func (c *Category) Update(name, description, imageURL string, sortOrder int) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.Description = strings.TrimSpace(description)
	c.ImageURL = strings.TrimSpace(imageURL)
	c.SortOrder = sortOrder
	c.MarkModified()
	return nil
}

// ChangeSlug replaces the slug.
func (c *Category) ChangeSlug(slug string) error {
	if !ValidSlug(slug) {
		return shared.NewDomainError("INVALID_SLUG", "Slug must contain lower-case letters, digits and hyphens")
	}
	c.Slug = slug
	c.MarkModified()
	return nil
}

// SetActive shows or hides the category on the storefront.
func (c *Category) SetActive(active bool) {
	if c.IsActive == active {
		return
	}
	c.IsActive = active
	c.MarkModified()
}

func validateCategoryName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}
