package partner

import (
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant for Supplier
const AggregateTypeSupplier = "Supplier"

// Event type constants for Supplier
const (
	EventTypeSupplierCreated = "SupplierCreated"
	EventTypeSupplierUpdated = "SupplierUpdated"
)

// SupplierCreatedEvent is published when a new supplier is created
type SupplierCreatedEvent struct {
	shared.BaseDomainEvent
	SupplierID   uuid.UUID `json:"supplier_id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	LeadTimeDays int       `json:"lead_time_days"`
}

// NewSupplierCreatedEvent creates a new SupplierCreatedEvent
func NewSupplierCreatedEvent(supplier *Supplier) *SupplierCreatedEvent {
	return &SupplierCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierCreated, AggregateTypeSupplier, supplier.ID, time.Now()),
		SupplierID:      supplier.ID,
		Code:            supplier.Code,
		Name:            supplier.Name,
		LeadTimeDays:    supplier.LeadTimeDays,
	}
}

// SupplierUpdatedEvent is published when a supplier's details or lead time change
type SupplierUpdatedEvent struct {
	shared.BaseDomainEvent
	SupplierID   uuid.UUID `json:"supplier_id"`
	Name         string    `json:"name"`
	LeadTimeDays int       `json:"lead_time_days"`
}

// NewSupplierUpdatedEvent creates a new SupplierUpdatedEvent
func NewSupplierUpdatedEvent(supplier *Supplier) *SupplierUpdatedEvent {
	return &SupplierUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierUpdated, AggregateTypeSupplier, supplier.ID, time.Now()),
		SupplierID:      supplier.ID,
		Name:            supplier.Name,
		LeadTimeDays:    supplier.LeadTimeDays,
	}
}
