package inventory

import (
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeInventoryItem        = "InventoryItem"
	AggregateTypeInventoryTransaction = "InventoryTransaction"
)

// Event type constants
const (
	EventTypeTransactionRecorded  = "TransactionRecorded"
	EventTypeTransactionApproved  = "TransactionApproved"
	EventTypeTransactionCompleted = "TransactionCompleted"
	EventTypeTransactionCancelled = "TransactionCancelled"
	EventTypeTransactionFailed    = "TransactionFailed"
	EventTypeStockBelowMinimum    = "StockBelowMinimum"
)

// TransactionEvent is raised whenever a transaction is recorded or changes status
type TransactionEvent struct {
	shared.BaseDomainEvent
	TransactionNumber string            `json:"transaction_number"`
	TransactionType   TransactionType   `json:"transaction_type"`
	Status            TransactionStatus `json:"status"`
	InventoryItemID   uuid.UUID         `json:"inventory_item_id"`
	Quantity          int64             `json:"quantity"`
}

// NewTransactionEvent creates a TransactionEvent of the given type
func NewTransactionEvent(eventType string, tx *InventoryTransaction, at time.Time) *TransactionEvent {
	return &TransactionEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(eventType, AggregateTypeInventoryTransaction, tx.ID, at),
		TransactionNumber: tx.TransactionNumber,
		TransactionType:   tx.Type,
		Status:            tx.Status,
		InventoryItemID:   tx.InventoryItemID,
		Quantity:          tx.Quantity,
	}
}

// StockBelowMinimumEvent is raised when an outbound movement leaves stock under the minimum,
// or when a reorder scan finds stock at or below the reorder point
type StockBelowMinimumEvent struct {
	shared.BaseDomainEvent
	InventoryItemID uuid.UUID `json:"inventory_item_id"`
	PartNumber      string    `json:"part_number"`
	CurrentStock    int64     `json:"current_stock"`
	Threshold       int64     `json:"threshold"`
}

// NewStockBelowMinimumEvent creates a StockBelowMinimumEvent against the item's minimum stock
func NewStockBelowMinimumEvent(item *InventoryItem, at time.Time) *StockBelowMinimumEvent {
	return NewStockBelowThresholdEvent(item, item.MinimumStock, at)
}

// NewStockBelowThresholdEvent creates a StockBelowMinimumEvent against an arbitrary threshold
func NewStockBelowThresholdEvent(item *InventoryItem, threshold int64, at time.Time) *StockBelowMinimumEvent {
	return &StockBelowMinimumEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowMinimum, AggregateTypeInventoryItem, item.ID, at),
		InventoryItemID: item.ID,
		PartNumber:      item.PartNumber,
		CurrentStock:    item.CurrentStock,
		Threshold:       threshold,
	}
}
