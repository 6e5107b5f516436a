package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CategoryService handles category operations for the storefront and admins.
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	events shared.EventPublisher,
	logger *zap.Logger,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		events:       events,
		logger:       logger,
	}
}

// ListActive returns storefront categories ordered by sort order, each with
// the number of products a customer can see.
func (s *CategoryService) ListActive(ctx context.Context) ([]CategoryResponse, error) {
	filter := shared.Filter{OrderBy: "sort_order", OrderDir: "asc"}.With("is_active", true)
	return s.list(ctx, filter)
}

// ListAll returns every category for the back office.
func (s *CategoryService) ListAll(ctx context.Context) ([]CategoryResponse, error) {
	return s.list(ctx, shared.Filter{OrderBy: "sort_order", OrderDir: "asc"})
}

func (s *CategoryService) list(ctx context.Context, filter shared.Filter) ([]CategoryResponse, error) {
	categories, _, err := s.categoryRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	counts, err := s.productRepo.CountStorefrontByCategory(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i], counts[categories[i].ID])
	}
	return out, nil
}

// GetBySlug returns an active category.
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, shared.NotFound("Category")
	}
	counts, err := s.productRepo.CountStorefrontByCategory(ctx)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category, counts[category.ID])
	return &resp, nil
}

// Get returns a category by id regardless of its status.
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category, count)
	return &resp, nil
}

// Create adds a category, deriving a unique slug when none is given.
func (s *CategoryService) Create(ctx context.Context, req CategoryRequest) (*CategoryResponse, error) {
	slug, err := s.resolveSlug(ctx, req.Slug, req.Name, "")
	if err != nil {
		return nil, err
	}
	category, err := catalog.NewCategory(req.Name, slug)
	if err != nil {
		return nil, err
	}
	if err := category.Update(req.Name, req.Description, req.ImageURL, req.SortOrder); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		category.SetActive(*req.IsActive)
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, &category.BaseAggregateRoot)

	s.logger.Info("Category created", zap.String("category_id", category.ID.String()), zap.String("slug", category.Slug))
	resp := ToCategoryResponse(category, 0)
	return &resp, nil
}

// Update replaces a category's fields.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req CategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Slug != "" && req.Slug != category.Slug {
		slug, err := s.resolveSlug(ctx, req.Slug, req.Name, category.Slug)
		if err != nil {
			return nil, err
		}
		if err := category.ChangeSlug(slug); err != nil {
			return nil, err
		}
	}
	if err := category.Update(req.Name, req.Description, req.ImageURL, req.SortOrder); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		category.SetActive(*req.IsActive)
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes an empty category.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return err
	}
	count, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("CATEGORY_HAS_PRODUCTS", "Category still has products; move or delete them first")
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Category deleted", zap.String("category_id", id.String()))
	return nil
}

// resolveSlug validates an explicit slug or derives one from the name. An
// explicit slug already used by another category is a conflict, while a
// derived one gets a numeric suffix.
func (s *CategoryService) resolveSlug(ctx context.Context, explicit, name, current string) (string, error) {
	if explicit == "" {
		return catalog.UniqueSlug(ctx, catalog.Slugify(name), s.categoryRepo.ExistsBySlug)
	}
	if explicit == current {
		return explicit, nil
	}
	taken, err := s.categoryRepo.ExistsBySlug(ctx, explicit)
	if err != nil {
		return "", err
	}
	if taken {
		return "", shared.NewDomainError(shared.ErrAlreadyExists.Code, "Slug is already in use")
	}
	return explicit, nil
}

// publish drains an aggregate's pending events onto the bus.
func publish(ctx context.Context, events shared.EventPublisher, logger *zap.Logger, root *shared.BaseAggregateRoot) {
	pending := root.GetDomainEvents()
	root.ClearDomainEvents()
	if events == nil || len(pending) == 0 {
		return
	}
	if err := events.Publish(ctx, pending...); err != nil {
		logger.Warn("Failed to publish catalog events", zap.Error(err))
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
