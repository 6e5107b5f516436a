package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
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
	"go.uber.org/zap"
)

// memOrders keeps orders by pointer so every service sees the same state.
type memOrders struct {
	byID       map[uuid.UUID]*order.Order
	taken      map[string]bool
	lastFilter shared.Filter
}

func newMemOrders() *memOrders {
	return &memOrders{byID: make(map[uuid.UUID]*order.Order), taken: make(map[string]bool)}
}

func (m *memOrders) Create(_ context.Context, o *order.Order) error {
	m.byID[o.ID] = o
	return nil
}

func (m *memOrders) Save(_ context.Context, o *order.Order) error {
	m.byID[o.ID] = o
	return nil
}

func (m *memOrders) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	if o, ok := m.byID[id]; ok {
		return o, nil
	}
	return nil, shared.NotFound("Order")
}

func (m *memOrders) FindByNumber(_ context.Context, number string) (*order.Order, error) {
	for _, o := range m.byID {
		if o.OrderNumber == number {
			return o, nil
		}
	}
	return nil, shared.NotFound("Order")
}

func (m *memOrders) FindAll(_ context.Context, filter shared.Filter) ([]order.Order, int64, error) {
	m.lastFilter = filter
	out := make([]order.Order, 0, len(m.byID))
	for _, o := range m.byID {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (m *memOrders) ExistsByNumber(_ context.Context, number string) (bool, error) {
	if m.taken[number] {
		return true, nil
	}
	_, err := m.FindByNumber(context.Background(), number)
	return err == nil, nil
}

type memPayments struct {
	byID map[uuid.UUID]*order.Payment
}

func newMemPayments() *memPayments {
	return &memPayments{byID: make(map[uuid.UUID]*order.Payment)}
}

func (m *memPayments) Create(_ context.Context, p *order.Payment) error {
	m.byID[p.ID] = p
	return nil
}

func (m *memPayments) Save(_ context.Context, p *order.Payment) error {
	m.byID[p.ID] = p
	return nil
}

func (m *memPayments) FindByOrder(_ context.Context, orderID uuid.UUID) (*order.Payment, error) {
	for _, p := range m.byID {
		if p.OrderID == orderID {
			return p, nil
		}
	}
	return nil, shared.NotFound("Payment")
}

func (m *memPayments) FindByProviderRef(_ context.Context, ref string) (*order.Payment, error) {
	for _, p := range m.byID {
		if ref != "" && p.ProviderRef == ref {
			return p, nil
		}
	}
	return nil, shared.NotFound("Payment")
}

// memProducts serves copies, as a database would, and keeps what is saved.
type memProducts struct {
	catalog.ProductRepository
	byID map[uuid.UUID]catalog.Product
}

func newMemProducts(products ...*catalog.Product) *memProducts {
	m := &memProducts{byID: make(map[uuid.UUID]catalog.Product)}
	for _, p := range products {
		m.byID[p.ID] = *p
	}
	return m
}

func (m *memProducts) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	return m.FindByIDs(ctx, ids)
}

func (m *memProducts) Save(_ context.Context, p *catalog.Product) error {
	m.byID[p.ID] = *p
	return nil
}

func (m *memProducts) stock(id uuid.UUID) string {
	p := m.byID[id]
	return p.StockQuantity.String()
}

type memMovements struct {
	inventory.MovementRepository
	saved []inventory.StockMovement
}

func (m *memMovements) CreateBatch(_ context.Context, movements []inventory.StockMovement) error {
	m.saved = append(m.saved, movements...)
	return nil
}

type memCarts struct {
	byUser map[uuid.UUID]*cart.Cart
}

func (m *memCarts) FindByUser(_ context.Context, userID uuid.UUID) (*cart.Cart, error) {
	if c, ok := m.byUser[userID]; ok {
		return c, nil
	}
	return nil, shared.NotFound("Cart")
}

func (m *memCarts) Save(_ context.Context, c *cart.Cart) error {
	m.byUser[c.UserID] = c
	return nil
}

func (m *memCarts) DeleteIdleSince(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for user, c := range m.byUser {
		if c.UpdatedAt.Before(cutoff) {
			delete(m.byUser, user)
			n++
		}
	}
	return n, nil
}

type memPromotions struct {
	promotion.PromotionRepository
	byCode map[string]*promotion.Promotion
	usages []*promotion.Usage
}

func (m *memPromotions) FindByCode(_ context.Context, code string) (*promotion.Promotion, error) {
	if p, ok := m.byCode[code]; ok {
		return p, nil
	}
	return nil, shared.NotFound("Promotion")
}

func (m *memPromotions) CountUsageByUser(_ context.Context, promotionID, userID uuid.UUID) (int, error) {
	n := 0
	for _, u := range m.usages {
		if u.PromotionID == promotionID && u.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memPromotions) Consume(_ context.Context, usage *promotion.Usage) error {
	m.usages = append(m.usages, usage)
	for _, p := range m.byCode {
		if p.ID == usage.PromotionID {
			p.UsageCount++
		}
	}
	return nil
}

func (m *memPromotions) Release(_ context.Context, orderID uuid.UUID) error {
	kept := m.usages[:0]
	for _, u := range m.usages {
		if u.OrderID == orderID {
			for _, p := range m.byCode {
				if p.ID == u.PromotionID {
					p.UsageCount--
				}
			}
			continue
		}
		kept = append(kept, u)
	}
	m.usages = kept
	return nil
}

type stubAddresses struct {
	identity.AddressRepository
	byID map[uuid.UUID]*identity.Address
}

func (s *stubAddresses) FindByID(_ context.Context, id uuid.UUID) (*identity.Address, error) {
	if a, ok := s.byID[id]; ok {
		return a, nil
	}
	return nil, shared.NotFound("Address")
}

type stubUsers struct {
	identity.UserRepository
	byID map[uuid.UUID]*identity.User
}

func (s *stubUsers) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, shared.NotFound("User")
}

type stubZones struct {
	delivery.ZoneRepository
	zones []*delivery.Zone
}

func (s *stubZones) FindByPostcode(_ context.Context, postcode string) (*delivery.Zone, error) {
	for _, z := range s.zones {
		if z.IsActive && z.Covers(postcode) {
			return z, nil
		}
	}
	return nil, shared.NotFound("Zone")
}

type staticSettings struct {
	values settings.Values
}

func (s *staticSettings) Values(context.Context) (settings.Values, error) {
	return s.values, nil
}

func (s *staticSettings) set(key, value string) {
	s.values[key] = settings.Setting{Key: key, Value: value}
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateIntent(ctx context.Context, req order.IntentRequest) (*order.Intent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Intent), args.Error(1)
}

func (m *MockGateway) Refund(ctx context.Context, req order.RefundRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) ParseWebhook(payload []byte, signature string) (*order.GatewayEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.GatewayEvent), args.Error(1)
}

type memIdempotency struct {
	seen map[string]bool
}

func (m *memIdempotency) MarkProcessed(_ context.Context, id string, _ time.Duration) (bool, error) {
	if m.seen[id] {
		return false, nil
	}
	m.seen[id] = true
	return true, nil
}

func (m *memIdempotency) IsProcessed(_ context.Context, id string) (bool, error) {
	return m.seen[id], nil
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

// shop is a small store: one customer, one address in a served zone and a
// stocked product.
type shop struct {
	orders     *memOrders
	payments   *memPayments
	products   *memProducts
	movements  *memMovements
	carts      *memCarts
	promotions *memPromotions
	addresses  *stubAddresses
	users      *stubUsers
	zones      *stubZones
	settings   *staticSettings
	gateway    *MockGateway
	events     *recordingPublisher
	tx         *transaction.NoOpScope

	customer *identity.User
	address  *identity.Address
	zone     *delivery.Zone
	steak    *catalog.Product
}

func newShop(t *testing.T) *shop {
	t.Helper()
	s := &shop{
		orders:     newMemOrders(),
		payments:   newMemPayments(),
		movements:  &memMovements{},
		carts:      &memCarts{byUser: make(map[uuid.UUID]*cart.Cart)},
		promotions: &memPromotions{byCode: make(map[string]*promotion.Promotion)},
		settings:   &staticSettings{values: settings.Values{}},
		gateway:    new(MockGateway),
		events:     &recordingPublisher{},
	}
	s.settings.set(settings.KeyTaxRate, "10")

	s.customer = &identity.User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              "Thandi Nkosi",
		Email:             "thandi@example.com",
		Role:              identity.RoleCustomer,
		Status:            identity.UserStatusActive,
	}
	s.users = &stubUsers{byID: map[uuid.UUID]*identity.User{s.customer.ID: s.customer}}
	s.address = &identity.Address{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     s.customer.ID,
		AddressFields: identity.AddressFields{
			Recipient: "Thandi Nkosi",
			Phone:     "0400000000",
			Line1:     "1 Church St",
			Suburb:    "Parramatta",
			State:     "NSW",
			Postcode:  "2150",
		},
	}
	s.addresses = &stubAddresses{byID: map[uuid.UUID]*identity.Address{s.address.ID: s.address}}

	threshold := decimal.NewFromInt(100)
	zone, err := delivery.NewZone(delivery.ZoneTerms{
		Name:                  "Western Sydney",
		Postcodes:             []string{"2150", "2145"},
		DeliveryFee:           decimal.NewFromInt(10),
		FreeDeliveryThreshold: &threshold,
		EstimatedDays:         "1-2 days",
	})
	require.NoError(t, err)
	s.zone = zone
	s.zones = &stubZones{zones: []*delivery.Zone{zone}}

	steak, err := catalog.NewProduct(uuid.New(), "Rump Steak", "rump-steak", "RS-001", catalog.UnitKilogram, decimal.NewFromInt(20))
	require.NoError(t, err)
	_, _, err = steak.ChangeStock(decimal.NewFromInt(10))
	require.NoError(t, err)
	steak.ClearDomainEvents()
	s.steak = steak
	s.products = newMemProducts(steak)

	s.tx = transaction.NewNoOpScope(&transaction.StaticRepositories{
		ProductRepo:   s.products,
		MovementRepo:  s.movements,
		OrderRepo:     s.orders,
		PaymentRepo:   s.payments,
		PromotionRepo: s.promotions,
		CartRepo:      s.carts,
	})
	return s
}

// fill puts qty kg of steak in the customer's cart.
func (s *shop) fill(t *testing.T, qty string) {
	t.Helper()
	c := cart.NewCart(s.customer.ID)
	_, err := c.AddItem(s.steak.ID, decimal.RequireFromString(qty), 50)
	require.NoError(t, err)
	s.carts.byUser[s.customer.ID] = c
}

func (s *shop) addPromo(t *testing.T, code string, percent int64) *promotion.Promotion {
	t.Helper()
	p, err := promotion.NewPromotion(code, promotion.Terms{
		Name:  code,
		Type:  promotion.DiscountPercentage,
		Value: decimal.NewFromInt(percent),
	})
	require.NoError(t, err)
	s.promotions.byCode[p.Code] = p
	return p
}

func (s *shop) checkout(gateway order.PaymentGateway) *CheckoutService {
	svc := NewCheckoutService(CheckoutDeps{
		Carts:      s.carts,
		Products:   s.products,
		Addresses:  s.addresses,
		Users:      s.users,
		Zones:      s.zones,
		Promotions: s.promotions,
		Settings:   s.settings,
		Tx:         s.tx,
		Gateway:    gateway,
		Events:     s.events,
	}, CheckoutOptions{OrderNumberPrefix: "ZM"}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	return svc
}

func (s *shop) orderService(gateway order.PaymentGateway) *OrderService {
	svc := NewOrderService(OrderDeps{
		Orders:   s.orders,
		Payments: s.payments,
		Users:    s.users,
		Settings: s.settings,
		Tx:       s.tx,
		Gateway:  gateway,
		Events:   s.events,
	}, zap.NewNop())
	return svc
}

// place checks out 2kg of steak and returns the stored order.
func (s *shop) place(t *testing.T, method string, gateway order.PaymentGateway) *order.Order {
	t.Helper()
	s.fill(t, "2")
	resp, err := s.checkout(gateway).Place(context.Background(), s.customer.ID, CheckoutRequest{
		AddressID:     s.address.ID,
		PaymentMethod: method,
	})
	require.NoError(t, err)
	o, err := s.orders.FindByID(context.Background(), resp.Order.ID)
	require.NoError(t, err)
	s.events.events = nil
	return o
}
