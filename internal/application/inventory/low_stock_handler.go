package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/settings"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultAlertInterval is the minimum gap between alerts for one product.
const DefaultAlertInterval = time.Hour

// StockAlertNotifier delivers stock alerts to staff.
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// SettingsReader exposes the admin-managed settings.
type SettingsReader interface {
	Values(ctx context.Context) (settings.Values, error)
}

// StockAlert describes a product that needs restocking.
type StockAlert struct {
	ProductID     string `json:"product_id"`
	SKU           string `json:"sku"`
	Name          string `json:"name"`
	StockQuantity string `json:"stock_quantity"`
	Threshold     string `json:"threshold"`
	// AlertType is "low_stock" or "out_of_stock".
	AlertType string `json:"alert_type"`
}

// LowStockHandler reacts to StockLow events. Alerts are sent only when the
// low_stock_notifications setting is on, at most once per interval per
// product.
type LowStockHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
	settings SettingsReader
	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	lastSent map[string]time.Time
}

// NewLowStockHandler creates a handler that logs alerts.
func NewLowStockHandler(logger *zap.Logger) *LowStockHandler {
	return &LowStockHandler{
		logger:   logger,
		notifier: NewLoggingStockAlertNotifier(logger),
		interval: DefaultAlertInterval,
		now:      time.Now,
		lastSent: make(map[string]time.Time),
	}
}

// WithNotifier replaces the notifier.
func (h *LowStockHandler) WithNotifier(notifier StockAlertNotifier) *LowStockHandler {
	h.notifier = notifier
	return h
}

// WithSettings gates alerts on the low_stock_notifications setting.
func (h *LowStockHandler) WithSettings(reader SettingsReader) *LowStockHandler {
	h.settings = reader
	return h
}

// WithInterval sets the per-product alert interval.
func (h *LowStockHandler) WithInterval(d time.Duration) *LowStockHandler {
	h.interval = d
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{catalog.EventTypeStockLow}
}

// Handle processes a StockLowEvent
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	low, ok := event.(*catalog.StockLowEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeStockLow, event.EventType())
	}

	h.logger.Warn("stock below threshold detected",
		zap.String("product_id", low.ProductID.String()),
		zap.String("sku", low.SKU),
		zap.String("stock_quantity", low.StockQuantity.String()),
		zap.String("threshold", low.Threshold.String()),
	)

	if h.settings != nil {
		values, err := h.settings.Values(ctx)
		if err != nil {
			h.logger.Debug("failed to read settings, sending alert anyway", zap.Error(err))
		} else if !values.Bool(settings.KeyLowStockNotifications, true) {
			return nil
		}
	}

	alertType := "low_stock"
	if !low.StockQuantity.IsPositive() {
		alertType = "out_of_stock"
	}
	alert := StockAlert{
		ProductID:     low.ProductID.String(),
		SKU:           low.SKU,
		Name:          low.Name,
		StockQuantity: low.StockQuantity.String(),
		Threshold:     low.Threshold.String(),
		AlertType:     alertType,
	}
	if !h.due(alert.ProductID) {
		h.logger.Debug("stock alert suppressed", zap.String("product_id", alert.ProductID))
		return nil
	}

	// A failed notification must not fail the publisher.
	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		h.logger.Error("failed to send stock alert notification",
			zap.String("product_id", alert.ProductID),
			zap.Error(err),
		)
	}
	return nil
}

func (h *LowStockHandler) due(productID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	if last, ok := h.lastSent[productID]; ok && now.Sub(last) < h.interval {
		return false
	}
	h.lastSent[productID] = now
	return true
}

var _ shared.EventHandler = (*LowStockHandler)(nil)

// LoggingStockAlertNotifier writes alerts to the log.
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("product_id", alert.ProductID),
		zap.String("sku", alert.SKU),
		zap.String("name", alert.Name),
		zap.String("stock_quantity", alert.StockQuantity),
		zap.String("threshold", alert.Threshold),
	)
	return nil
}

var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
