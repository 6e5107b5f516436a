package promotion

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appcart "github.com/zambezimeats/backend/internal/application/cart"
	"github.com/zambezimeats/backend/internal/domain/promotion"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CartReader prices the caller's cart.
type CartReader interface {
	Get(ctx context.Context, userID uuid.UUID) (*appcart.CartResponse, error)
}

// PromotionService validates codes for customers and manages them for admins.
type PromotionService struct {
	repo   promotion.PromotionRepository
	carts  CartReader
	now    func() time.Time
	logger *zap.Logger
}

// NewPromotionService creates a new PromotionService
func NewPromotionService(repo promotion.PromotionRepository, carts CartReader, logger *zap.Logger) *PromotionService {
	return &PromotionService{
		repo:   repo,
		carts:  carts,
		now:    time.Now,
		logger: logger,
	}
}

// Validate checks a code against the caller's current cart subtotal and
// returns the discount it would give. Nothing is consumed.
func (s *PromotionService) Validate(ctx context.Context, userID uuid.UUID, req ValidateCodeRequest) (*ValidateCodeResponse, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, shared.NewDomainError("CART_EMPTY", "Your cart is empty")
	}

	p, err := FindApplicable(ctx, s.repo, req.Code, userID, cart.Subtotal, s.now())
	if err != nil {
		return nil, err
	}
	return &ValidateCodeResponse{
		Code:     p.Code,
		Name:     p.Name,
		Type:     string(p.Type),
		Value:    p.Value,
		Subtotal: cart.Subtotal,
		Discount: p.Discount(cart.Subtotal),
	}, nil
}

// FindApplicable loads a code and runs every applicability rule for userID.
// An unknown code reports PROMO_INVALID like an inactive one.
func FindApplicable(ctx context.Context, repo promotion.PromotionRepository, code string, userID uuid.UUID, subtotal decimal.Decimal, now time.Time) (*promotion.Promotion, error) {
	p, err := repo.FindByCode(ctx, promotion.NormalizeCode(code))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(promotion.CodeInvalid, "This promo code is not valid")
		}
		return nil, err
	}
	usage := 0
	if p.PerUserLimit != nil {
		if usage, err = repo.CountUsageByUser(ctx, p.ID, userID); err != nil {
			return nil, err
		}
	}
	if err := p.CheckApplicable(now, subtotal, usage); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns a page of promotions.
func (s *PromotionService) List(ctx context.Context, q PromotionListQuery) (shared.Paginated[PromotionResponse], error) {
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
	if q.Active != nil {
		filter.Filters["is_active"] = *q.Active
	}
	promotions, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[PromotionResponse]{}, err
	}
	items := make([]PromotionResponse, len(promotions))
	for i := range promotions {
		items[i] = ToPromotionResponse(&promotions[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns a promotion by id.
func (s *PromotionService) Get(ctx context.Context, id uuid.UUID) (*PromotionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPromotionResponse(p)
	return &resp, nil
}

// Create adds a promotion with a unique code.
func (s *PromotionService) Create(ctx context.Context, req PromotionRequest) (*PromotionResponse, error) {
	exists, err := s.repo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "Promotion with this code already exists")
	}
	p, err := promotion.NewPromotion(req.Code, req.terms())
	if err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		p.SetActive(*req.IsActive)
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Promotion created", zap.String("promotion_id", p.ID.String()), zap.String("code", p.Code))
	resp := ToPromotionResponse(p)
	return &resp, nil
}

// Update replaces a promotion's terms. The code cannot change.
func (s *PromotionService) Update(ctx context.Context, id uuid.UUID, req PromotionRequest) (*PromotionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Code != "" && promotion.NormalizeCode(req.Code) != p.Code {
		return nil, shared.NewDomainError("CODE_IMMUTABLE", "Promotion code cannot be changed")
	}
	if err := p.Update(req.terms()); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		p.SetActive(*req.IsActive)
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	resp := ToPromotionResponse(p)
	return &resp, nil
}

// Delete removes a promotion that was never redeemed.
func (s *PromotionService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Promotion deleted", zap.String("promotion_id", id.String()))
	return nil
}
