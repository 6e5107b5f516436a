package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	defaultFeaturedLimit = 8
	maxFeaturedLimit     = 24
	relatedProductLimit  = 4
)

// TextSanitizer cleans user supplied text before it is stored.
type TextSanitizer interface {
	RichText(in string) string
	PlainText(in string) string
}

// ProductService handles product operations for the storefront and admins.
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	storage      ObjectStorage
	sanitizer    TextSanitizer
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	storage ObjectStorage,
	sanitizer TextSanitizer,
	events shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		storage:      storage,
		sanitizer:    sanitizer,
		events:       events,
		logger:       logger,
	}
}

// ListStorefront returns purchasable products of active categories.
func (s *ProductService) ListStorefront(ctx context.Context, q ProductListQuery) (shared.Paginated[ProductResponse], error) {
	filter := shared.Filter{
		Page:     q.Page,
		PageSize: q.PerPage,
		Search:   strings.TrimSpace(q.Search),
		Filters:  map[string]any{"storefront": true},
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	filter.OrderBy, filter.OrderDir = storefrontSort(q.Sort)

	if q.Category != "" {
		category, err := s.categoryRepo.FindBySlug(ctx, q.Category)
		if err != nil && !isNotFound(err) {
			return shared.Paginated[ProductResponse]{}, err
		}
		if category == nil || !category.IsActive {
			return shared.NewPaginated([]ProductResponse{}, 0, filter.Page, filter.PageSize), nil
		}
		filter.Filters["category_id"] = category.ID
	}
	for key, raw := range map[string]string{"min_price": q.MinPrice, "max_price": q.MaxPrice} {
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			return shared.Paginated[ProductResponse]{}, shared.NewDomainError("INVALID_FILTER", key+" must be a non-negative amount")
		}
		filter.Filters[key] = d
	}
	if q.Featured != nil {
		filter.Filters["featured"] = *q.Featured
	}
	if q.InStock != nil && *q.InStock {
		filter.Filters["in_stock"] = true
	}
	if q.OnSale != nil && *q.OnSale {
		filter.Filters["on_sale"] = true
	}

	products, total, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	items, err := s.toResponses(ctx, products)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

func storefrontSort(sort string) (string, string) {
	switch sort {
	case "price_asc":
		return "price", "asc"
	case "price_desc":
		return "price", "desc"
	case "name":
		return "name", "asc"
	default:
		return "created_at", "desc"
	}
}

// ListFeatured returns up to limit featured storefront products.
func (s *ProductService) ListFeatured(ctx context.Context, limit int) ([]ProductResponse, error) {
	if limit < 1 {
		limit = defaultFeaturedLimit
	}
	if limit > maxFeaturedLimit {
		limit = maxFeaturedLimit
	}
	filter := shared.Filter{Page: 1, PageSize: limit, OrderBy: "created_at", OrderDir: "desc"}.
		With("storefront", true).
		With("featured", true)
	products, _, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, products)
}

// GetBySlug returns a storefront product with up to four related products
// from the same category.
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*ProductDetailResponse, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, shared.NotFound("Product")
	}
	category, err := s.categoryRepo.FindByID(ctx, product.CategoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, shared.NotFound("Product")
	}

	filter := shared.Filter{Page: 1, PageSize: relatedProductLimit, OrderBy: "created_at", OrderDir: "desc"}.
		With("storefront", true).
		With("category_id", product.CategoryID).
		With("exclude_id", product.ID)
	related, _, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &ProductDetailResponse{
		ProductResponse: ToProductResponse(product, category),
		Related:         make([]ProductResponse, len(related)),
	}
	for i := range related {
		resp.Related[i] = ToProductResponse(&related[i], category)
	}
	return resp, nil
}

// ListAdmin returns products of every status for the back office. Archived
// products are only listed when asked for explicitly.
func (s *ProductService) ListAdmin(ctx context.Context, q AdminProductListQuery) (shared.Paginated[ProductResponse], error) {
	filter := shared.Filter{
		Page:     q.Page,
		PageSize: q.PerPage,
		Search:   strings.TrimSpace(q.Search),
		OrderBy:  q.SortBy,
		OrderDir: q.SortDir,
		Filters:  map[string]any{},
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if q.Status != "" {
		filter.Filters["status"] = q.Status
	} else {
		filter.Filters["archived"] = false
	}
	if q.CategoryID != "" {
		id, err := uuid.Parse(q.CategoryID)
		if err != nil {
			return shared.Paginated[ProductResponse]{}, shared.NewDomainError("INVALID_FILTER", "category_id must be a UUID")
		}
		filter.Filters["category_id"] = id
	}
	if q.LowStock != nil && *q.LowStock {
		filter.Filters["low_stock"] = true
	}

	products, total, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	items, err := s.toResponses(ctx, products)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns a product by id regardless of its status.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, product)
}

// Create adds a product to the catalog with no stock.
func (s *ProductService) Create(ctx context.Context, req ProductRequest) (*ProductResponse, error) {
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	if err := s.checkSKU(ctx, req.SKU, ""); err != nil {
		return nil, err
	}
	name := s.sanitizer.PlainText(req.Name)
	slug, err := s.resolveSlug(ctx, req.Slug, name, "")
	if err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(req.CategoryID, name, slug, req.SKU, catalog.ProductUnit(req.Unit), req.Price)
	if err != nil {
		return nil, err
	}
	if err := s.apply(product, req, name); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, &product.BaseAggregateRoot)

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU))
	return s.toResponse(ctx, product)
}

// Update replaces a product's descriptive, pricing and stock rule fields.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req ProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.CategoryID != req.CategoryID {
		if err := s.requireCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
	}
	if err := s.checkSKU(ctx, req.SKU, product.SKU); err != nil {
		return nil, err
	}
	if err := product.ChangeSKU(req.SKU); err != nil {
		return nil, err
	}
	name := s.sanitizer.PlainText(req.Name)
	if req.Slug != "" && req.Slug != product.Slug {
		slug, err := s.resolveSlug(ctx, req.Slug, name, product.Slug)
		if err != nil {
			return nil, err
		}
		if err := product.ChangeSlug(slug); err != nil {
			return nil, err
		}
	}
	if err := s.apply(product, req, name); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, &product.BaseAggregateRoot)
	return s.toResponse(ctx, product)
}

func (s *ProductService) apply(product *catalog.Product, req ProductRequest, name string) error {
	err := product.Update(req.CategoryID, name, catalog.ProductUnit(req.Unit),
		s.sanitizer.RichText(req.Description), s.sanitizer.PlainText(req.ShortDescription))
	if err != nil {
		return err
	}
	if err := product.SetPricing(req.Price, req.SalePrice); err != nil {
		return err
	}
	threshold := product.LowStockThreshold
	if req.LowStockThreshold != nil {
		threshold = *req.LowStockThreshold
	}
	minQuantity := product.MinQuantity
	if req.MinQuantity != nil {
		minQuantity = *req.MinQuantity
	}
	if err := product.SetStockRules(threshold, minQuantity); err != nil {
		return err
	}
	product.SetFeatured(req.IsFeatured)
	return nil
}

// UpdateStatus activates or deactivates a product.
func (s *ProductService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateProductStatusRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if catalog.ProductStatus(req.Status) == catalog.ProductStatusActive {
		err = product.Activate()
	} else {
		err = product.Deactivate()
	}
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("Product status changed",
		zap.String("product_id", product.ID.String()),
		zap.String("status", string(product.Status)))
	return s.toResponse(ctx, product)
}

// SetFeatured toggles whether the product is featured on the home page.
func (s *ProductService) SetFeatured(ctx context.Context, id uuid.UUID, req UpdateFeaturedRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if *req.IsFeatured && product.Status == catalog.ProductStatusArchived {
		return nil, shared.InvalidState("Archived products cannot be featured")
	}
	product.SetFeatured(*req.IsFeatured)
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, product)
}

// Delete removes a product and its images. A product that orders or stock
// movements still reference is archived instead.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) (*DeleteProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	referenced, err := s.productRepo.IsReferenced(ctx, id)
	if err != nil {
		return nil, err
	}
	if referenced {
		product.Archive()
		if err := s.productRepo.Save(ctx, product); err != nil {
			return nil, err
		}
		s.logger.Info("Product archived", zap.String("product_id", id.String()))
		return &DeleteProductResponse{Archived: true}, nil
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	for _, img := range product.Images {
		if err := s.storage.Delete(ctx, img.StorageKey); err != nil {
			s.logger.Warn("Failed to delete product image object",
				zap.String("product_id", id.String()),
				zap.String("storage_key", img.StorageKey),
				zap.Error(err))
		}
	}
	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return &DeleteProductResponse{Archived: false}, nil
}

func (s *ProductService) requireCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		if isNotFound(err) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return err
	}
	return nil
}

func (s *ProductService) checkSKU(ctx context.Context, sku, current string) error {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == current {
		return nil
	}
	exists, err := s.productRepo.ExistsBySKU(ctx, sku)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError(shared.ErrAlreadyExists.Code, "Product with this SKU already exists")
	}
	return nil
}

func (s *ProductService) resolveSlug(ctx context.Context, explicit, name, current string) (string, error) {
	if explicit == "" {
		return catalog.UniqueSlug(ctx, catalog.Slugify(name), s.productRepo.ExistsBySlug)
	}
	if explicit == current {
		return explicit, nil
	}
	taken, err := s.productRepo.ExistsBySlug(ctx, explicit)
	if err != nil {
		return "", err
	}
	if taken {
		return "", shared.NewDomainError(shared.ErrAlreadyExists.Code, "Slug is already in use")
	}
	return explicit, nil
}

func (s *ProductService) toResponse(ctx context.Context, product *catalog.Product) (*ProductResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, product.CategoryID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	resp := ToProductResponse(product, category)
	return &resp, nil
}

// toResponses attaches category summaries, loading each category once.
func (s *ProductService) toResponses(ctx context.Context, products []catalog.Product) ([]ProductResponse, error) {
	categories := make(map[uuid.UUID]*catalog.Category)
	out := make([]ProductResponse, len(products))
	for i := range products {
		p := &products[i]
		category, seen := categories[p.CategoryID]
		if !seen {
			found, err := s.categoryRepo.FindByID(ctx, p.CategoryID)
			if err != nil && !isNotFound(err) {
				return nil, err
			}
			category = found
			categories[p.CategoryID] = found
		}
		out[i] = ToProductResponse(p, category)
	}
	return out, nil
}
