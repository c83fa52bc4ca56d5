package event

import (
	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
)

// RegisterInventoryEvents registers every inventory event type with the serializer
func RegisterInventoryEvents(serializer *EventSerializer) {
	for _, eventType := range []string{
		inventory.EventTypeTransactionRecorded,
		inventory.EventTypeTransactionApproved,
		inventory.EventTypeTransactionCompleted,
		inventory.EventTypeTransactionCancelled,
		inventory.EventTypeTransactionFailed,
	} {
		serializer.Register(eventType, func() shared.DomainEvent { return &inventory.TransactionEvent{} })
	}
	serializer.Register(inventory.EventTypeStockBelowMinimum, func() shared.DomainEvent { return &inventory.StockBelowMinimumEvent{} })
}
