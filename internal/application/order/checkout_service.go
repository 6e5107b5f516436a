package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appcart "github.com/zambezimeats/backend/internal/application/cart"
	apppromotion "github.com/zambezimeats/backend/internal/application/promotion"
	"github.com/zambezimeats/backend/internal/application/transaction"
	"github.com/zambezimeats/backend/internal/domain/cart"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/delivery"
	"github.com/zambezimeats/backend/internal/domain/identity"
	"github.com/zambezimeats/backend/internal/domain/inventory"
	"github.com/zambezimeats/backend/internal/domain/order"
	"github.com/zambezimeats/backend/internal/domain/promotion"
	"github.com/zambezimeats/backend/internal/domain/settings"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"github.com/zambezimeats/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Checkout error codes.
const (
	CodeUndeliverable       = "UNDELIVERABLE"
	CodeMinOrder            = "MIN_ORDER"
	CodeCartEmpty           = "CART_EMPTY"
	CodeProductUnavailable  = "PRODUCT_UNAVAILABLE"
	CodeInvalidDeliveryDate = "INVALID_DELIVERY_DATE"
	CodePaymentUnavailable  = "PAYMENT_METHOD_UNAVAILABLE"
)

const orderNumberAttempts = 5

// SettingsReader exposes the admin-managed settings.
type SettingsReader interface {
	Values(ctx context.Context) (settings.Values, error)
}

// CheckoutDeps are the collaborators of CheckoutService. Gateway may be nil
// when card payments are not configured.
type CheckoutDeps struct {
	Carts      cart.CartRepository
	Products   catalog.ProductRepository
	Addresses  identity.AddressRepository
	Users      identity.UserRepository
	Zones      delivery.ZoneRepository
	Promotions promotion.PromotionRepository
	Settings   SettingsReader
	Tx         transaction.Scope
	Gateway    order.PaymentGateway
	Events     shared.EventPublisher
}

// CheckoutOptions are deployment-level checkout rules.
type CheckoutOptions struct {
	OrderNumberPrefix string
	// Location is the store time zone used for order numbers and delivery days.
	Location *time.Location
}

// CheckoutService turns a cart into an order.
type CheckoutService struct {
	deps   CheckoutDeps
	opts   CheckoutOptions
	now    func() time.Time
	logger *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(deps CheckoutDeps, opts CheckoutOptions, logger *zap.Logger) *CheckoutService {
	if opts.OrderNumberPrefix == "" {
		opts.OrderNumberPrefix = "ZM"
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &CheckoutService{deps: deps, opts: opts, now: time.Now, logger: logger}
}

// Quote prices the cart without placing anything. Problems that would stop
// checkout are listed as issues rather than returned as errors.
func (s *CheckoutService) Quote(ctx context.Context, userID uuid.UUID, req QuoteRequest) (*QuoteResponse, error) {
	c, err := s.findCart(ctx, s.deps.Carts, userID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, shared.NewDomainError(CodeCartEmpty, "Your cart is empty")
	}
	products, err := s.deps.Products.FindByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, err
	}
	priced := appcart.Price(c, products)
	values, err := s.deps.Settings.Values(ctx)
	if err != nil {
		return nil, err
	}

	resp := &QuoteResponse{Cart: priced, Issues: make([]QuoteIssue, 0)}
	for _, issue := range priced.Issues {
		resp.Issues = append(resp.Issues, QuoteIssue{Code: issue.Code, Message: issue.Message})
	}

	discount := decimal.Zero
	if req.PromoCode != "" {
		p, err := apppromotion.FindApplicable(ctx, s.deps.Promotions, req.PromoCode, userID, priced.Subtotal, s.now())
		var de *shared.DomainError
		switch {
		case err == nil:
			discount = p.Discount(priced.Subtotal)
			resp.PromoCode = p.Code
		case errors.As(err, &de):
			resp.Issues = append(resp.Issues, QuoteIssue{Code: de.Code, Message: de.Message})
		default:
			return nil, err
		}
	}

	postcode, err := s.quotePostcode(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	fee := decimal.Zero
	if postcode != "" {
		zone, err := s.deps.Zones.FindByPostcode(ctx, postcode)
		switch {
		case err == nil:
			basis := priced.Subtotal.Sub(discount)
			fee = zone.FeeFor(basis)
			resp.Deliverable = true
			resp.Zone = &ZoneSummary{ID: zone.ID, Name: zone.Name, EstimatedDays: zone.EstimatedDays}
			resp.FreeDeliveryRemaining = zone.FreeDeliveryRemaining(basis)
			if !zone.MeetsMinimum(priced.Subtotal) {
				resp.Issues = append(resp.Issues, minOrderIssue(zone.MinOrderAmount))
			}
		case errors.Is(err, shared.ErrNotFound):
			resp.Issues = append(resp.Issues, QuoteIssue{Code: CodeUndeliverable, Message: "We do not deliver to " + postcode + " yet"})
		default:
			return nil, err
		}
	}
	if storeMin := values.Decimal(settings.KeyMinOrderAmount, decimal.Zero); priced.Subtotal.LessThan(storeMin) {
		resp.Issues = append(resp.Issues, minOrderIssue(storeMin))
	}

	totals := order.ComputeTotals(priced.Subtotal, discount, fee, values.Decimal(settings.KeyTaxRate, decimal.Zero))
	resp.Subtotal = totals.Subtotal
	resp.Discount = totals.Discount
	resp.DeliveryFee = totals.DeliveryFee
	resp.Tax = totals.Tax
	resp.Total = totals.Total
	resp.CanCheckout = resp.Deliverable && len(resp.Issues) == 0
	return resp, nil
}

func (s *CheckoutService) quotePostcode(ctx context.Context, userID uuid.UUID, req QuoteRequest) (string, error) {
	if req.AddressID != nil {
		addr, err := s.ownedAddress(ctx, userID, *req.AddressID)
		if err != nil {
			return "", err
		}
		return addr.Postcode, nil
	}
	return req.Postcode, nil
}

// Place creates the order in one transaction: stock is deducted, the promo
// redeemed, the card intent created and the cart emptied. Any failure
// leaves everything as it was.
func (s *CheckoutService) Place(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (resp *CheckoutResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "place_order",
		attribute.String("payment_method", req.PaymentMethod))
	defer func() { telemetry.EndSpan(span, err) }()
	return s.place(ctx, userID, req)
}

func (s *CheckoutService) place(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutResponse, error) {
	method := order.PaymentMethod(req.PaymentMethod)
	current, err := s.findCart(ctx, s.deps.Carts, userID)
	if err != nil {
		return nil, err
	}
	if current.IsEmpty() {
		return nil, shared.NewDomainError(CodeCartEmpty, "Your cart is empty")
	}
	values, err := s.deps.Settings.Values(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.checkMethod(method, values); err != nil {
		return nil, err
	}
	deliveryDate, err := s.parseDeliveryDate(req.DeliveryDate)
	if err != nil {
		return nil, err
	}
	addr, err := s.ownedAddress(ctx, userID, req.AddressID)
	if err != nil {
		return nil, err
	}
	user, err := s.deps.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	zone, err := s.deps.Zones.FindByPostcode(ctx, addr.Postcode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(CodeUndeliverable, "We do not deliver to "+addr.Postcode+" yet")
		}
		return nil, err
	}

	var (
		placed       *order.Order
		intent       *order.Intent
		stockEvents  []shared.DomainEvent
		customer     = order.Customer{UserID: userID, Name: user.Name, Email: user.Email}
		taxRate      = values.Decimal(settings.KeyTaxRate, decimal.Zero)
		storeMinimum = values.Decimal(settings.KeyMinOrderAmount, decimal.Zero)
	)
	err = s.deps.Tx.Execute(ctx, func(repos transaction.Repositories) error {
		c, err := s.findCart(ctx, repos.Carts(), userID)
		if err != nil {
			return err
		}
		if c.IsEmpty() {
			return shared.NewDomainError(CodeCartEmpty, "Your cart is empty")
		}
		products, err := repos.Products().FindByIDsForUpdate(ctx, c.ProductIDs())
		if err != nil {
			return err
		}
		lines, subtotal, err := buildLines(c, products)
		if err != nil {
			return err
		}

		var promo *promotion.Promotion
		discount := decimal.Zero
		if req.PromoCode != "" {
			promo, err = apppromotion.FindApplicable(ctx, repos.Promotions(), req.PromoCode, userID, subtotal, s.now())
			if err != nil {
				return err
			}
			discount = promo.Discount(subtotal)
		}
		if subtotal.LessThan(storeMinimum) {
			return minOrderError(storeMinimum)
		}
		if !zone.MeetsMinimum(subtotal) {
			return minOrderError(zone.MinOrderAmount)
		}
		totals := order.ComputeTotals(subtotal, discount, zone.FeeFor(subtotal.Sub(discount)), taxRate)

		number, err := s.newOrderNumber(ctx, repos.Orders())
		if err != nil {
			return err
		}
		items := make([]order.Item, len(lines))
		for i, l := range lines {
			items[i] = order.NewItem(l.product.ID, l.product.Name, l.product.SKU, string(l.product.Unit), l.product.EffectivePrice(), l.qty)
		}
		o, err := order.NewOrder(number, customer, method, items, totals, shippingAddress(addr))
		if err != nil {
			return err
		}
		o.SetDelivery(zone.ID, req.Notes, deliveryDate)
		if promo != nil {
			o.ApplyPromotion(promo.ID, promo.Code)
		}
		if err := repos.Orders().Create(ctx, o); err != nil {
			return err
		}

		movements := make([]inventory.StockMovement, 0, len(lines))
		for _, l := range lines {
			m, err := inventory.Apply(l.product, inventory.Adjustment{
				Type:      inventory.MovementSale,
				Quantity:  l.qty,
				Reason:    "Order " + number,
				Reference: number,
				Actor:     &userID,
			})
			if err != nil {
				return err
			}
			if err := repos.Products().Save(ctx, l.product); err != nil {
				return err
			}
			movements = append(movements, *m)
			stockEvents = append(stockEvents, l.product.GetDomainEvents()...)
			l.product.ClearDomainEvents()
		}
		if err := repos.Movements().CreateBatch(ctx, movements); err != nil {
			return err
		}

		if promo != nil {
			if err := repos.Promotions().Consume(ctx, promotion.NewUsage(promo.ID, userID, o.ID)); err != nil {
				return err
			}
		}

		providerRef := ""
		if method == order.PaymentMethodStripe {
			intent, err = s.deps.Gateway.CreateIntent(ctx, order.IntentRequest{
				OrderID:       o.ID,
				OrderNumber:   o.OrderNumber,
				Amount:        o.Total,
				Currency:      values.String(settings.KeyCurrency, shared.Currency),
				CustomerEmail: o.CustomerEmail,
			})
			if err != nil {
				s.logger.Error("Payment intent failed, rolling back checkout",
					zap.String("order_number", o.OrderNumber), zap.Error(err))
				return order.ErrPaymentProvider
			}
			providerRef = intent.ProviderRef
		}
		if err := repos.Payments().Create(ctx, order.NewPayment(o, providerRef)); err != nil {
			return err
		}

		c.Clear()
		if err := repos.Carts().Save(ctx, c); err != nil {
			return err
		}
		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, append(placed.GetDomainEvents(), stockEvents...))
	placed.ClearDomainEvents()
	s.logger.Info("Order placed",
		zap.String("order_number", placed.OrderNumber),
		zap.String("user_id", userID.String()),
		zap.String("payment_method", string(method)),
		zap.String("total", placed.Total.StringFixed(2)))

	resp := &CheckoutResponse{Order: ToOrderResponse(placed)}
	if intent != nil {
		resp.ClientSecret = intent.ClientSecret
		resp.PaymentIntentID = intent.ProviderRef
	}
	return resp, nil
}

type line struct {
	product *catalog.Product
	qty     decimal.Decimal
}

// buildLines re-prices the cart against locked products and rejects lines
// that can no longer be sold.
func buildLines(c *cart.Cart, products []catalog.Product) ([]line, decimal.Decimal, error) {
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	lines := make([]line, 0, len(c.Items))
	subtotal := decimal.Zero
	for _, item := range c.Items {
		p, ok := byID[item.ProductID]
		if !ok || !p.IsActive() {
			return nil, decimal.Zero, shared.NewDomainError(CodeProductUnavailable, "A product in your cart is no longer available")
		}
		if err := p.ValidateQuantity(item.Quantity); err != nil {
			return nil, decimal.Zero, err
		}
		if !p.CanFulfil(item.Quantity) {
			return nil, decimal.Zero, shared.NewDomainError(shared.ErrInsufficientStock.Code,
				"Only "+p.StockQuantity.String()+" "+string(p.Unit)+" of "+p.Name+" available")
		}
		lines = append(lines, line{product: p, qty: item.Quantity})
		subtotal = subtotal.Add(order.LineTotal(p.EffectivePrice(), item.Quantity))
	}
	return lines, subtotal, nil
}

func (s *CheckoutService) checkMethod(method order.PaymentMethod, values settings.Values) error {
	switch method {
	case order.PaymentMethodStripe:
		if s.deps.Gateway == nil {
			return shared.NewDomainError(CodePaymentUnavailable, "Card payments are not available")
		}
	case order.PaymentMethodCOD:
		if !values.Bool(settings.KeyCODEnabled, true) {
			return shared.NewDomainError(CodePaymentUnavailable, "Cash on delivery is not available")
		}
	default:
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unsupported payment method")
	}
	return nil
}

// parseDeliveryDate accepts a store-local day from tomorrow on.
func (s *CheckoutService) parseDeliveryDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	day, err := time.ParseInLocation("2006-01-02", raw, s.opts.Location)
	if err != nil {
		return nil, shared.NewDomainError(CodeInvalidDeliveryDate, "Delivery date must be YYYY-MM-DD")
	}
	now := s.now().In(s.opts.Location)
	tomorrow := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, s.opts.Location)
	if day.Before(tomorrow) {
		return nil, shared.NewDomainError(CodeInvalidDeliveryDate, "Delivery date must be tomorrow or later")
	}
	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return &date, nil
}

func (s *CheckoutService) ownedAddress(ctx context.Context, userID, addressID uuid.UUID) (*identity.Address, error) {
	addr, err := s.deps.Addresses.FindByID(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if !addr.BelongsTo(userID) {
		return nil, shared.NotFound("Address")
	}
	return addr, nil
}

func (s *CheckoutService) findCart(ctx context.Context, repo cart.CartRepository, userID uuid.UUID) (*cart.Cart, error) {
	c, err := repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return cart.NewCart(userID), nil
		}
		return nil, err
	}
	return c, nil
}

// newOrderNumber draws random numbers until one is free.
func (s *CheckoutService) newOrderNumber(ctx context.Context, orders order.OrderRepository) (string, error) {
	now := s.now().In(s.opts.Location)
	for range orderNumberAttempts {
		number, err := order.NewOrderNumber(s.opts.OrderNumberPrefix, now)
		if err != nil {
			return "", err
		}
		taken, err := orders.ExistsByNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
	}
	return "", errors.New("checkout: could not allocate a unique order number")
}

func (s *CheckoutService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.deps.Events == nil || len(events) == 0 {
		return
	}
	if err := s.deps.Events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish checkout events", zap.Error(err))
	}
}

func shippingAddress(a *identity.Address) order.ShippingAddress {
	return order.ShippingAddress{
		Recipient:    a.Recipient,
		Phone:        a.Phone,
		Line1:        a.Line1,
		Line2:        a.Line2,
		Suburb:       a.Suburb,
		State:        a.State,
		Postcode:     a.Postcode,
		Instructions: a.Instructions,
	}
}

func minOrderIssue(minimum decimal.Decimal) QuoteIssue {
	return QuoteIssue{Code: CodeMinOrder, Message: "Minimum order is $" + minimum.StringFixed(2)}
}

func minOrderError(minimum decimal.Decimal) error {
	issue := minOrderIssue(minimum)
	return shared.NewDomainError(issue.Code, issue.Message)
}
