package event

import (
	"context"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LoggingHandler writes every published event to the log as an audit line.
// The payload is the serialized event so the line can be replayed by a log shipper.
type LoggingHandler struct {
	serializer *EventSerializer
	fallback   *zap.Logger
}

// NewLoggingHandler creates a LoggingHandler; events are logged through the
// request logger in ctx when present and through fallback otherwise
func NewLoggingHandler(serializer *EventSerializer, fallback *zap.Logger) *LoggingHandler {
	if fallback == nil {
		fallback = zap.NewNop()
	}
	return &LoggingHandler{serializer: serializer, fallback: fallback}
}

// EventTypes returns nil: the handler subscribes to everything
func (h *LoggingHandler) EventTypes() []string {
	return nil
}

// Handle logs the event
func (h *LoggingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	log := logger.FromContextOr(ctx, h.fallback)

	payload, err := h.serializer.Serialize(event)
	if err != nil {
		return err
	}
	log.Info("Domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
		zap.ByteString("payload", payload),
	)
	return nil
}

var _ shared.EventHandler = (*LoggingHandler)(nil)
