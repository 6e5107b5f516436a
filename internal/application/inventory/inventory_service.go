package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/application/transaction"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/inventory"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// lowStockLimit caps the low-stock list; the catalogue is small enough that
// this is every product.
const lowStockLimit = 500

// InventoryService handles stock overview and manual adjustments. Sales and
// cancellations move stock through checkout and order cancellation.
type InventoryService struct {
	products  catalog.ProductRepository
	movements inventory.MovementRepository
	tx        transaction.Scope
	events    shared.EventPublisher
	location  *time.Location
	logger    *zap.Logger
}

// NewInventoryService creates a new InventoryService. location is the store
// time zone used for movement date filters.
func NewInventoryService(
	products catalog.ProductRepository,
	movements inventory.MovementRepository,
	tx transaction.Scope,
	events shared.EventPublisher,
	location *time.Location,
	logger *zap.Logger,
) *InventoryService {
	if location == nil {
		location = time.UTC
	}
	return &InventoryService{
		products:  products,
		movements: movements,
		tx:        tx,
		events:    events,
		location:  location,
		logger:    logger,
	}
}

// List returns non-archived products with their stock position.
func (s *InventoryService) List(ctx context.Context, q StockListQuery) (shared.Paginated[StockItemResponse], error) {
	filter := shared.Filter{
		Page:     q.Page,
		PageSize: q.PerPage,
		Search:   strings.ToLower(strings.TrimSpace(q.Search)),
		OrderBy:  q.SortBy,
		OrderDir: q.SortDir,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy, filter.OrderDir = "name", "asc"
	}
	filter = filter.With("archived", false)
	if q.LowStock {
		filter = filter.With("low_stock", true)
	}
	if q.CategoryID != "" {
		id, err := uuid.Parse(q.CategoryID)
		if err != nil {
			return shared.Paginated[StockItemResponse]{}, shared.NewDomainError("INVALID_FILTER", "category_id must be a UUID")
		}
		filter = filter.With("category_id", id)
	}

	products, total, err := s.products.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[StockItemResponse]{}, err
	}
	items := make([]StockItemResponse, len(products))
	for i := range products {
		items[i] = ToStockItemResponse(&products[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// LowStock returns every non-archived product at or below its threshold,
// emptiest first.
func (s *InventoryService) LowStock(ctx context.Context) ([]StockItemResponse, error) {
	filter := shared.Filter{Page: 1, PageSize: lowStockLimit, OrderBy: "stock_quantity", OrderDir: "asc"}.
		With("archived", false).
		With("low_stock", true)
	products, _, err := s.products.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]StockItemResponse, len(products))
	for i := range products {
		items[i] = ToStockItemResponse(&products[i])
	}
	return items, nil
}

// Adjust records a manual stock change and its movement atomically.
func (s *InventoryService) Adjust(ctx context.Context, actor uuid.UUID, req AdjustStockRequest) (*AdjustmentResponse, error) {
	movementType := inventory.MovementType(req.Type)
	if !movementType.IsManual() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Sales and cancellations are recorded by orders")
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "A reason is required for stock adjustments")
	}

	var (
		product  catalog.Product
		movement *inventory.StockMovement
		events   []shared.DomainEvent
	)
	err := s.tx.Execute(ctx, func(repos transaction.Repositories) error {
		locked, err := repos.Products().FindByIDsForUpdate(ctx, []uuid.UUID{req.ProductID})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return shared.NotFound("Product")
		}
		p := &locked[0]
		if p.Status == catalog.ProductStatusArchived {
			return shared.InvalidState("Archived products cannot be adjusted")
		}
		m, err := inventory.Apply(p, inventory.Adjustment{
			Type:     movementType,
			Quantity: req.Quantity,
			Reason:   reason,
			Actor:    &actor,
		})
		if err != nil {
			return err
		}
		if err := repos.Products().Save(ctx, p); err != nil {
			return err
		}
		if err := repos.Movements().Create(ctx, m); err != nil {
			return err
		}
		events = p.GetDomainEvents()
		p.ClearDomainEvents()
		product, movement = *p, m
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(events) > 0 && s.events != nil {
		if err := s.events.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish stock events", zap.Error(err))
		}
	}
	s.logger.Info("Stock adjusted",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
		zap.String("type", string(movement.Type)),
		zap.String("change", movement.QuantityChange.String()),
		zap.String("after", movement.QuantityAfter.String()),
		zap.String("actor", actor.String()))

	return &AdjustmentResponse{
		Movement: ToMovementResponse(movement),
		Product:  ToStockItemResponse(&product),
	}, nil
}

// Movements returns the ledger, newest first.
func (s *InventoryService) Movements(ctx context.Context, q MovementQuery) (shared.Paginated[MovementResponse], error) {
	filter := inventory.MovementFilter{Page: q.Page, PageSize: q.PerPage}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if q.ProductID != "" {
		id, err := uuid.Parse(q.ProductID)
		if err != nil {
			return shared.Paginated[MovementResponse]{}, shared.NewDomainError("INVALID_FILTER", "product_id must be a UUID")
		}
		filter.ProductID = &id
	}
	if q.Type != "" {
		t := inventory.MovementType(q.Type)
		if !t.IsValid() {
			return shared.Paginated[MovementResponse]{}, shared.NewDomainError("INVALID_FILTER", "Unknown movement type")
		}
		filter.Type = &t
	}
	if q.From != "" {
		from, err := time.ParseInLocation("2006-01-02", q.From, s.location)
		if err != nil {
			return shared.Paginated[MovementResponse]{}, shared.NewDomainError("INVALID_FILTER", "from must be YYYY-MM-DD")
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := time.ParseInLocation("2006-01-02", q.To, s.location)
		if err != nil {
			return shared.Paginated[MovementResponse]{}, shared.NewDomainError("INVALID_FILTER", "to must be YYYY-MM-DD")
		}
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return shared.Paginated[MovementResponse]{}, shared.NewDomainError("INVALID_DATE_RANGE", "from must not be after to")
	}

	movements, total, err := s.movements.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[MovementResponse]{}, err
	}
	items := make([]MovementResponse, len(movements))
	for i := range movements {
		items[i] = ToMovementResponse(&movements[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
