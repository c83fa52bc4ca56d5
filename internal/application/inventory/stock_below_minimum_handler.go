package inventory

import (
	"context"
	"fmt"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"go.uber.org/zap"
)

// Alert types
const (
	AlertTypeLowStock   = "low_stock"
	AlertTypeOutOfStock = "out_of_stock"
)

// StockBelowMinimumHandler handles StockBelowMinimum events
// and sends alerts when stock falls to or below a threshold
type StockBelowMinimumHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// StockAlertNotifier is the interface for sending stock alerts
// Implementations can support different channels (in-app, email, SMS, etc.)
type StockAlertNotifier interface {
	// SendAlert sends a stock alert notification
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert represents a stock level alert
type StockAlert struct {
	InventoryItemID string `json:"inventory_item_id"`
	PartNumber      string `json:"part_number"`
	CurrentStock    int64  `json:"current_stock"`
	Threshold       int64  `json:"threshold"`
	AlertType       string `json:"alert_type"`
}

// NewStockBelowMinimumHandler creates a new handler for stock below minimum events
func NewStockBelowMinimumHandler(logger *zap.Logger) *StockBelowMinimumHandler {
	return &StockBelowMinimumHandler{
		logger: logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *StockBelowMinimumHandler) WithNotifier(notifier StockAlertNotifier) *StockBelowMinimumHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *StockBelowMinimumHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowMinimum}
}

// Handle processes a StockBelowMinimumEvent
func (h *StockBelowMinimumHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	belowEvent, ok := event.(*inventory.StockBelowMinimumEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeStockBelowMinimum),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockBelowMinimum, event.EventType())
	}

	h.logger.Warn("stock below threshold detected",
		zap.String("inventory_item_id", belowEvent.InventoryItemID.String()),
		zap.String("part_number", belowEvent.PartNumber),
		zap.Int64("current_stock", belowEvent.CurrentStock),
		zap.Int64("threshold", belowEvent.Threshold),
	)

	alertType := AlertTypeLowStock
	if belowEvent.CurrentStock == 0 {
		alertType = AlertTypeOutOfStock
	}
	alert := StockAlert{
		InventoryItemID: belowEvent.InventoryItemID.String(),
		PartNumber:      belowEvent.PartNumber,
		CurrentStock:    belowEvent.CurrentStock,
		Threshold:       belowEvent.Threshold,
		AlertType:       alertType,
	}

	if h.notifier != nil {
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			h.logger.Error("failed to send stock alert notification",
				zap.String("inventory_item_id", alert.InventoryItemID),
				zap.Error(err),
			)
			// notification failure shouldn't fail the event handling
		}
	}
	return nil
}

// Ensure StockBelowMinimumHandler implements shared.EventHandler
var _ shared.EventHandler = (*StockBelowMinimumHandler)(nil)

// LoggingStockAlertNotifier is a simple notifier that logs alerts
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{
		logger: logger,
	}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("part_number", alert.PartNumber),
		zap.Int64("current_stock", alert.CurrentStock),
		zap.Int64("threshold", alert.Threshold),
	)
	return nil
}

var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
