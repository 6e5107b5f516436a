package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/catalog"
)

// CategoryRequest creates or replaces a category. An empty slug is derived
// from the name.
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Slug        string `json:"slug" binding:"omitempty,slug,max=120"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	ImageURL    string `json:"image_url" binding:"omitempty,url,max=500"`
	SortOrder   int    `json:"sort_order" binding:"gte=0"`
	IsActive    *bool  `json:"is_active"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"image_url"`
	SortOrder    int       `json:"sort_order"`
	IsActive     bool      `json:"is_active"`
	ProductCount int64     `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category, productCount int64) CategoryResponse {
	return CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		Description:  c.Description,
		ImageURL:     c.ImageURL,
		SortOrder:    c.SortOrder,
		IsActive:     c.IsActive,
		ProductCount: productCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ProductRequest creates or replaces a product. Stock is not set here; it
// only moves through inventory adjustments.
type ProductRequest struct {
	CategoryID        uuid.UUID        `json:"category_id" binding:"required"`
	Name              string           `json:"name" binding:"required,max=200"`
	Slug              string           `json:"slug" binding:"omitempty,slug,max=220"`
	SKU               string           `json:"sku" binding:"required,max=50"`
	Description       string           `json:"description" binding:"omitempty,max=20000"`
	ShortDescription  string           `json:"short_description" binding:"omitempty,max=500"`
	Unit              string           `json:"unit" binding:"required,oneof=kg each pack"`
	Price             decimal.Decimal  `json:"price" binding:"required"`
	SalePrice         *decimal.Decimal `json:"sale_price"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold"`
	MinQuantity       *decimal.Decimal `json:"min_quantity"`
	IsFeatured        bool             `json:"is_featured"`
}

// UpdateProductStatusRequest activates or deactivates a product.
type UpdateProductStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

// UpdateFeaturedRequest toggles the featured flag.
type UpdateFeaturedRequest struct {
	IsFeatured *bool `json:"is_featured" binding:"required"`
}

// ProductListQuery holds the storefront list parameters.
type ProductListQuery struct {
	Category string `form:"category"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	MinPrice string `form:"min_price"`
	MaxPrice string `form:"max_price"`
	Featured *bool  `form:"featured"`
	InStock  *bool  `form:"in_stock"`
	OnSale   *bool  `form:"on_sale"`
	Sort     string `form:"sort" binding:"omitempty,oneof=price_asc price_desc name newest"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PerPage  int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// AdminProductListQuery holds the back-office list parameters.
type AdminProductListQuery struct {
	Search     string `form:"search" binding:"omitempty,max=100"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=active inactive archived"`
	LowStock   *bool  `form:"low_stock"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PerPage    int    `form:"per_page" binding:"omitempty,min=1,max=100"`
	SortBy     string `form:"sort_by"`
	SortDir    string `form:"sort_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// ImageUploadRequest asks for a presigned upload URL.
type ImageUploadRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required,oneof=image/jpeg image/png image/webp"`
}

// ImageUploadResponse tells the client where to PUT the file.
type ImageUploadResponse struct {
	UploadURL  string            `json:"upload_url"`
	Method     string            `json:"method"`
	Headers    map[string]string `json:"headers,omitempty"`
	StorageKey string            `json:"storage_key"`
	ExpiresAt  time.Time         `json:"expires_at"`
}

// AttachImageRequest attaches an uploaded object to the gallery.
type AttachImageRequest struct {
	StorageKey string `json:"storage_key" binding:"required,max=500"`
	AltText    string `json:"alt_text" binding:"omitempty,max=200"`
	IsPrimary  bool   `json:"is_primary"`
}

// ProductImageResponse represents a gallery image
type ProductImageResponse struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	AltText   string    `json:"alt_text"`
	SortOrder int       `json:"sort_order"`
	IsPrimary bool      `json:"is_primary"`
}

// CategorySummary is the category embedded in product responses.
type CategorySummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                uuid.UUID              `json:"id"`
	CategoryID        uuid.UUID              `json:"category_id"`
	Category          *CategorySummary       `json:"category,omitempty"`
	Name              string                 `json:"name"`
	Slug              string                 `json:"slug"`
	SKU               string                 `json:"sku"`
	Description       string                 `json:"description"`
	ShortDescription  string                 `json:"short_description"`
	Unit              string                 `json:"unit"`
	Price             decimal.Decimal        `json:"price"`
	SalePrice         *decimal.Decimal       `json:"sale_price"`
	EffectivePrice    decimal.Decimal        `json:"effective_price"`
	IsOnSale          bool                   `json:"is_on_sale"`
	StockQuantity     decimal.Decimal        `json:"stock_quantity"`
	LowStockThreshold decimal.Decimal        `json:"low_stock_threshold"`
	MinQuantity       decimal.Decimal        `json:"min_quantity"`
	InStock           bool                   `json:"in_stock"`
	LowStock          bool                   `json:"low_stock"`
	IsFeatured        bool                   `json:"is_featured"`
	Status            string                 `json:"status"`
	PrimaryImage      string                 `json:"primary_image,omitempty"`
	Images            []ProductImageResponse `json:"images"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// ProductDetailResponse is the storefront product page.
type ProductDetailResponse struct {
	ProductResponse
	Related []ProductResponse `json:"related"`
}

// DeleteProductResponse reports whether the product was removed or archived.
type DeleteProductResponse struct {
	Archived bool `json:"archived"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product, category *catalog.Category) ProductResponse {
	resp := ProductResponse{
		ID:                p.ID,
		CategoryID:        p.CategoryID,
		Name:              p.Name,
		Slug:              p.Slug,
		SKU:               p.SKU,
		Description:       p.Description,
		ShortDescription:  p.ShortDescription,
		Unit:              string(p.Unit),
		Price:             p.Price,
		SalePrice:         p.SalePrice,
		EffectivePrice:    p.EffectivePrice(),
		IsOnSale:          p.IsOnSale(),
		StockQuantity:     p.StockQuantity,
		LowStockThreshold: p.LowStockThreshold,
		MinQuantity:       p.MinQuantity,
		InStock:           p.InStock(),
		LowStock:          p.IsLowStock(),
		IsFeatured:        p.IsFeatured,
		Status:            string(p.Status),
		Images:            make([]ProductImageResponse, len(p.Images)),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if category != nil {
		resp.Category = &CategorySummary{ID: category.ID, Name: category.Name, Slug: category.Slug}
	}
	for i, img := range p.Images {
		resp.Images[i] = ToProductImageResponse(img)
	}
	if primary := p.PrimaryImage(); primary != nil {
		resp.PrimaryImage = primary.URL
	}
	return resp
}

// ToProductImageResponse converts a ProductImage to ProductImageResponse
func ToProductImageResponse(img catalog.ProductImage) ProductImageResponse {
	return ProductImageResponse{
		ID:        img.ID,
		URL:       img.URL,
		AltText:   img.AltText,
		SortOrder: img.SortOrder,
		IsPrimary: img.IsPrimary,
	}
}
