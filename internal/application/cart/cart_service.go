package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/cart"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CartService manages the authenticated customer's cart. Lines are priced
// from the catalog on every read, so the cart never holds stale prices.
type CartService struct {
	cartRepo    cart.CartRepository
	productRepo catalog.ProductRepository
	maxLines    int
	logger      *zap.Logger
}

// NewCartService creates a new CartService. A non-positive maxLines falls
// back to cart.DefaultMaxLines.
func NewCartService(cartRepo cart.CartRepository, productRepo catalog.ProductRepository, maxLines int, logger *zap.Logger) *CartService {
	if maxLines <= 0 {
		maxLines = cart.DefaultMaxLines
	}
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		maxLines:    maxLines,
		logger:      logger,
	}
}

// Get returns the priced cart. A user without a cart gets an empty one.
func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	c, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// AddItem adds a product or merges into its existing line.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartResponse, error) {
	product, err := s.purchasable(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	c, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := req.Quantity
	if existing := c.ItemForProduct(product.ID); existing != nil {
		merged = existing.Quantity.Add(req.Quantity)
	}
	if !req.Quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	if err := product.ValidateQuantity(merged); err != nil {
		return nil, err
	}
	if err := checkStock(product, merged); err != nil {
		return nil, err
	}
	if _, err := c.AddItem(product.ID, req.Quantity, s.maxLines); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Debug("Cart item added",
		zap.String("user_id", userID.String()),
		zap.String("product_id", product.ID.String()),
		zap.String("quantity", merged.String()))
	return s.view(ctx, c)
}

// UpdateItem sets a line quantity; zero removes the line.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, req UpdateItemRequest) (*CartResponse, error) {
	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Cart item")
		}
		return nil, err
	}
	item := c.Item(itemID)
	if item == nil {
		return nil, shared.NotFound("Cart item")
	}

	if req.Quantity.IsPositive() {
		product, err := s.purchasable(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if err := product.ValidateQuantity(req.Quantity); err != nil {
			return nil, err
		}
		if err := checkStock(product, req.Quantity); err != nil {
			return nil, err
		}
	}
	if err := c.SetQuantity(itemID, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// RemoveItem deletes a line.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartResponse, error) {
	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Cart item")
		}
		return nil, err
	}
	if err := c.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if c.IsEmpty() {
		return nil
	}
	c.Clear()
	return s.cartRepo.Save(ctx, c)
}

// PurgeIdle deletes carts nobody has touched within retention.
func (s *CartService) PurgeIdle(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	removed, err := s.cartRepo.DeleteIdleSince(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("Purged idle carts",
			zap.Int64("count", removed),
			zap.Time("cutoff", cutoff),
		)
	}
	return removed, nil
}

func (s *CartService) find(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	c, err := s.cartRepo.FindByUser(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return cart.NewCart(userID), nil
	}
	return c, err
}

func (s *CartService) purchasable(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", product.Name+" is no longer available")
	}
	return product, nil
}

func checkStock(product *catalog.Product, qty decimal.Decimal) error {
	if product.CanFulfil(qty) {
		return nil
	}
	return shared.NewDomainError(shared.ErrInsufficientStock.Code,
		"Only "+product.StockQuantity.String()+" "+string(product.Unit)+" of "+product.Name+" available")
}

func (s *CartService) view(ctx context.Context, c *cart.Cart) (*CartResponse, error) {
	var products []catalog.Product
	if !c.IsEmpty() {
		var err error
		if products, err = s.productRepo.FindByIDs(ctx, c.ProductIDs()); err != nil {
			return nil, err
		}
	}
	return Price(c, products), nil
}

// Price builds the cart response from the given catalog snapshot. Lines for
// unavailable products are listed but excluded from the subtotal.
func Price(c *cart.Cart, products []catalog.Product) *CartResponse {
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	resp := &CartResponse{
		ID:       c.ID,
		Items:    make([]CartItemResponse, 0, len(c.Items)),
		Subtotal: decimal.Zero,
		Issues:   make([]CartIssue, 0),
	}
	for _, item := range c.Items {
		line := CartItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: decimal.Zero,
			LineTotal: decimal.Zero,
		}
		product, ok := byID[item.ProductID]
		if !ok || !product.IsActive() {
			if ok {
				line.Name, line.Slug, line.SKU, line.Unit = product.Name, product.Slug, product.SKU, string(product.Unit)
			}
			resp.Items = append(resp.Items, line)
			resp.Issues = append(resp.Issues, CartIssue{
				ItemID:    item.ID,
				ProductID: item.ProductID,
				Code:      IssueProductUnavailable,
				Message:   "This product is no longer available",
			})
			continue
		}

		line.Name = product.Name
		line.Slug = product.Slug
		line.SKU = product.SKU
		line.Unit = string(product.Unit)
		line.MinQuantity = product.MinQuantity
		line.UnitPrice = product.EffectivePrice()
		line.LineTotal = shared.RoundMoney(line.UnitPrice.Mul(item.Quantity))
		line.Available = true
		line.StockQuantity = product.StockQuantity
		if img := product.PrimaryImage(); img != nil {
			line.ImageURL = img.URL
		}
		resp.Items = append(resp.Items, line)
		resp.Subtotal = resp.Subtotal.Add(line.LineTotal)

		if !product.CanFulfil(item.Quantity) {
			available := product.StockQuantity
			resp.Issues = append(resp.Issues, CartIssue{
				ItemID:    item.ID,
				ProductID: item.ProductID,
				Code:      IssueInsufficientStock,
				Message:   "Only " + available.String() + " " + string(product.Unit) + " available",
				Available: &available,
			})
		}
	}
	resp.ItemCount = len(resp.Items)
	resp.Subtotal = shared.RoundMoney(resp.Subtotal)
	return resp
}
