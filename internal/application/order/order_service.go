package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	appdelivery "github.com/zambezimeats/backend/internal/application/delivery"
	"github.com/zambezimeats/backend/internal/application/transaction"
	"github.com/zambezimeats/backend/internal/domain/identity"
	"github.com/zambezimeats/backend/internal/domain/inventory"
	"github.com/zambezimeats/backend/internal/domain/order"
	"github.com/zambezimeats/backend/internal/domain/settings"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProofViewer loads the proof of delivery for an order.
type ProofViewer interface {
	Proof(ctx context.Context, orderID uuid.UUID) (*appdelivery.ProofResponse, error)
}

// OrderDeps are the collaborators of OrderService. Gateway may be nil.
type OrderDeps struct {
	Orders   order.OrderRepository
	Payments order.PaymentRepository
	Users    identity.UserRepository
	Proofs   ProofViewer
	Settings SettingsReader
	Tx       transaction.Scope
	Gateway  order.PaymentGateway
	Events   shared.EventPublisher
	// Location is the store time zone for date filters.
	Location *time.Location
}

// OrderService serves customers their order history and lets staff run
// fulfilment: status changes, driver assignment, cancellations and refunds.
type OrderService struct {
	deps   OrderDeps
	now    func() time.Time
	logger *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(deps OrderDeps, logger *zap.Logger) *OrderService {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	return &OrderService{deps: deps, now: time.Now, logger: logger}
}

// ListMine returns the caller's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, userID uuid.UUID, q OrderListQuery) (shared.Paginated[OrderResponse], error) {
	filter := pageFilter(q.Page, q.PerPage, "placed_at", "desc").With("user_id", userID)
	if q.Status != "" {
		filter = filter.With("status", q.Status)
	}
	return s.list(ctx, filter)
}

// GetMine returns one of the caller's orders by number. Other users'
// orders are reported as missing.
func (s *OrderService) GetMine(ctx context.Context, userID uuid.UUID, number string) (*OrderResponse, error) {
	o, err := s.ownedOrder(ctx, userID, number)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// CancelMine cancels the caller's order while it is pending or confirmed
// and within the cancellation window.
func (s *OrderService) CancelMine(ctx context.Context, userID uuid.UUID, number string, req CancelOrderRequest) (*OrderResponse, error) {
	o, err := s.ownedOrder(ctx, userID, number)
	if err != nil {
		return nil, err
	}
	if !o.CustomerCancellable() {
		return nil, shared.InvalidState("This order can no longer be cancelled")
	}
	values, err := s.deps.Settings.Values(ctx)
	if err != nil {
		return nil, err
	}
	if hours := values.Int(settings.KeyCancellationWindowHours, 0); hours > 0 {
		if s.now().Sub(o.PlacedAt) > time.Duration(hours)*time.Hour {
			return nil, shared.NewDomainError("CANCELLATION_WINDOW_CLOSED", "The cancellation window for this order has passed")
		}
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "Cancelled by customer"
	}
	cancelled, err := s.cancel(ctx, o.ID, &userID, reason)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(cancelled)
	return &resp, nil
}

// List returns orders for staff.
func (s *OrderService) List(ctx context.Context, q AdminOrderListQuery) (shared.Paginated[OrderResponse], error) {
	filter := pageFilter(q.Page, q.PerPage, q.SortBy, q.SortDir)
	filter.Search = strings.ToLower(strings.TrimSpace(q.Search))
	if q.Status != "" {
		filter = filter.With("status", q.Status)
	}
	if q.PaymentStatus != "" {
		filter = filter.With("payment_status", q.PaymentStatus)
	}
	if q.AssignedTo != "" {
		id, err := uuid.Parse(q.AssignedTo)
		if err != nil {
			return shared.Paginated[OrderResponse]{}, shared.NewDomainError("INVALID_FILTER", "assigned_to must be a UUID")
		}
		filter = filter.With("assigned_to", id)
	}
	if q.From != "" {
		from, err := time.ParseInLocation("2006-01-02", q.From, s.deps.Location)
		if err != nil {
			return shared.Paginated[OrderResponse]{}, shared.NewDomainError("INVALID_FILTER", "from must be YYYY-MM-DD")
		}
		filter = filter.With("from", from)
	}
	if q.To != "" {
		to, err := time.ParseInLocation("2006-01-02", q.To, s.deps.Location)
		if err != nil {
			return shared.Paginated[OrderResponse]{}, shared.NewDomainError("INVALID_FILTER", "to must be YYYY-MM-DD")
		}
		filter = filter.With("to", to.AddDate(0, 0, 1))
	}
	return s.list(ctx, filter)
}

// Get returns an order with its payment, proof of delivery and the
// statuses it may move to.
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*AdminOrderResponse, error) {
	o, err := s.deps.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &AdminOrderResponse{
		OrderResponse: ToOrderResponse(o),
		Refundable:    o.Refundable(),
		NextStatuses:  make([]string, 0),
	}
	for _, st := range o.Status.NextStatuses() {
		if st != order.StatusRefunded {
			resp.NextStatuses = append(resp.NextStatuses, string(st))
		}
	}

	payment, err := s.deps.Payments.FindByOrder(ctx, o.ID)
	switch {
	case err == nil:
		p := ToPaymentResponse(payment)
		resp.Payment = &p
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}
	if s.deps.Proofs != nil && (o.Status == order.StatusDelivered || o.Status == order.StatusRefunded) {
		pod, err := s.deps.Proofs.Proof(ctx, o.ID)
		switch {
		case err == nil:
			resp.ProofOfDelivery = pod
		case !errors.Is(err, shared.ErrNotFound):
			return nil, err
		}
	}
	return resp, nil
}

// UpdateStatus moves an order along the fulfilment flow. Cancelling
// restocks the items; refunds go through Refund.
func (s *OrderService) UpdateStatus(ctx context.Context, actor, id uuid.UUID, req UpdateStatusRequest) (*AdminOrderResponse, error) {
	target := order.Status(req.Status)
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	switch target {
	case order.StatusRefunded:
		return nil, shared.InvalidState("Use the refund action to refund an order")
	case order.StatusCancelled:
		reason := strings.TrimSpace(req.Note)
		if reason == "" {
			reason = "Cancelled by store"
		}
		if _, err := s.cancel(ctx, id, &actor, reason); err != nil {
			return nil, err
		}
		return s.Get(ctx, id)
	}

	var updated *order.Order
	err := s.deps.Tx.Execute(ctx, func(repos transaction.Repositories) error {
		o, err := repos.Orders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := o.TransitionTo(target, &actor, strings.TrimSpace(req.Note)); err != nil {
			return err
		}
		if target == order.StatusDelivered && o.PaymentMethod == order.PaymentMethodCOD {
			if err := appdelivery.SettleCash(ctx, repos, o, s.now()); err != nil {
				return err
			}
		}
		if err := repos.Orders().Save(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, updated)
	s.logger.Info("Order status changed",
		zap.String("order_number", updated.OrderNumber),
		zap.String("status", string(updated.Status)),
		zap.String("actor", actor.String()))
	return s.Get(ctx, id)
}

// AssignDriver hands the order to an active delivery staff member.
func (s *OrderService) AssignDriver(ctx context.Context, actor, id uuid.UUID, req AssignDriverRequest) (*AdminOrderResponse, error) {
	driver, err := s.deps.Users.FindByID(ctx, req.DeliveryUserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_DRIVER", "Delivery staff member not found")
		}
		return nil, err
	}
	if driver.Role != identity.RoleDelivery || driver.Status != identity.UserStatusActive {
		return nil, shared.NewDomainError("INVALID_DRIVER", "User is not active delivery staff")
	}
	o, err := s.deps.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.AssignDriver(driver.ID, &actor); err != nil {
		return nil, err
	}
	if err := s.deps.Orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.logger.Info("Driver assigned",
		zap.String("order_number", o.OrderNumber),
		zap.String("driver_id", driver.ID.String()))
	return s.Get(ctx, id)
}

// Refund returns the money for a delivered order or a paid cancelled one.
// Card payments are refunded through the provider; cash refunds are only
// recorded.
func (s *OrderService) Refund(ctx context.Context, actor, id uuid.UUID, req RefundOrderRequest) (*AdminOrderResponse, error) {
	note := strings.TrimSpace(req.Reason)
	if note == "" {
		note = "Refunded"
	}
	var refunded *order.Order
	err := s.deps.Tx.Execute(ctx, func(repos transaction.Repositories) error {
		o, err := repos.Orders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !o.Refundable() {
			return shared.InvalidState("Only delivered or cancelled paid orders can be refunded")
		}
		if err := s.refundPayment(ctx, repos, o, &actor, note); err != nil {
			return err
		}
		if err := repos.Orders().Save(ctx, o); err != nil {
			return err
		}
		refunded = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, refunded)
	s.logger.Info("Order refunded",
		zap.String("order_number", refunded.OrderNumber),
		zap.String("amount", refunded.Total.StringFixed(2)),
		zap.String("actor", actor.String()))
	return s.Get(ctx, id)
}

// cancel restocks, releases the promotion and, for paid card orders,
// refunds. The provider refund happens last so a failure rolls back the
// whole cancellation.
func (s *OrderService) cancel(ctx context.Context, id uuid.UUID, actor *uuid.UUID, reason string) (*order.Order, error) {
	var (
		cancelled   *order.Order
		stockEvents []shared.DomainEvent
	)
	err := s.deps.Tx.Execute(ctx, func(repos transaction.Repositories) error {
		o, err := repos.Orders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := o.Cancel(actor, reason); err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(o.Items))
		for _, item := range o.Items {
			ids = append(ids, item.ProductID)
		}
		products, err := repos.Products().FindByIDsForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]int, len(products))
		for i := range products {
			byID[products[i].ID] = i
		}
		movements := make([]inventory.StockMovement, 0, len(o.Items))
		for _, item := range o.Items {
			idx, ok := byID[item.ProductID]
			if !ok {
				s.logger.Warn("Cannot restock deleted product",
					zap.String("order_number", o.OrderNumber),
					zap.String("product_id", item.ProductID.String()))
				continue
			}
			p := &products[idx]
			m, err := inventory.Apply(p, inventory.Adjustment{
				Type:      inventory.MovementCancellation,
				Quantity:  item.Quantity,
				Reason:    "Order " + o.OrderNumber + " cancelled",
				Reference: o.OrderNumber,
				Actor:     actor,
			})
			if err != nil {
				return err
			}
			if err := repos.Products().Save(ctx, p); err != nil {
				return err
			}
			movements = append(movements, *m)
			stockEvents = append(stockEvents, p.GetDomainEvents()...)
			p.ClearDomainEvents()
		}
		if err := repos.Movements().CreateBatch(ctx, movements); err != nil {
			return err
		}

		if o.PromotionID != nil {
			if err := repos.Promotions().Release(ctx, o.ID); err != nil {
				return err
			}
		}
		if o.PaymentStatus == order.PaymentStatusPaid {
			if err := s.refundPayment(ctx, repos, o, actor, "Refunded on cancellation"); err != nil {
				return err
			}
		}
		if err := repos.Orders().Save(ctx, o); err != nil {
			return err
		}
		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishAll(ctx, append(cancelled.GetDomainEvents(), stockEvents...))
	cancelled.ClearDomainEvents()
	s.logger.Info("Order cancelled",
		zap.String("order_number", cancelled.OrderNumber),
		zap.String("reason", reason))
	return cancelled, nil
}

func (s *OrderService) refundPayment(ctx context.Context, repos transaction.Repositories, o *order.Order, actor *uuid.UUID, note string) error {
	payment, err := repos.Payments().FindByOrder(ctx, o.ID)
	if err != nil {
		return err
	}
	if payment.Method == order.PaymentMethodStripe {
		if s.deps.Gateway == nil {
			return shared.NewDomainError(CodePaymentUnavailable, "Card payments are not available")
		}
		if _, err := s.deps.Gateway.Refund(ctx, order.RefundRequest{
			ProviderRef: payment.ProviderRef,
			Amount:      payment.Amount,
			OrderNumber: o.OrderNumber,
		}); err != nil {
			s.logger.Error("Provider refund failed",
				zap.String("order_number", o.OrderNumber), zap.Error(err))
			return order.ErrPaymentProvider
		}
	}
	now := s.now()
	if err := payment.Refund(now); err != nil {
		return err
	}
	if err := repos.Payments().Save(ctx, payment); err != nil {
		return err
	}
	return o.MarkRefunded(actor, note)
}

func (s *OrderService) ownedOrder(ctx context.Context, userID uuid.UUID, number string) (*order.Order, error) {
	o, err := s.deps.Orders.FindByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, shared.NotFound("Order")
	}
	return o, nil
}

func (s *OrderService) list(ctx context.Context, filter shared.Filter) (shared.Paginated[OrderResponse], error) {
	orders, total, err := s.deps.Orders.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	items := make([]OrderResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderResponse(&orders[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

func (s *OrderService) publish(ctx context.Context, o *order.Order) {
	s.publishAll(ctx, o.GetDomainEvents())
	o.ClearDomainEvents()
}

func (s *OrderService) publishAll(ctx context.Context, events []shared.DomainEvent) {
	if s.deps.Events == nil || len(events) == 0 {
		return
	}
	if err := s.deps.Events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish order events", zap.Error(err))
	}
}

func pageFilter(page, perPage int, orderBy, orderDir string) shared.Filter {
	f := shared.Filter{Page: page, PageSize: perPage, OrderBy: orderBy, OrderDir: orderDir}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	return f
}
