package inventory

import (
	"time"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Actor identifies who performs an operation and with which approval role
type Actor struct {
	ID   uuid.UUID
	Role inventory.ApprovalRole
}

// RecordMode selects how RecordTransaction enters the lifecycle
type RecordMode string

const (
	// RecordModeDirect applies the stock change immediately and stores the transaction as Completed
	RecordModeDirect RecordMode = "direct"
	// RecordModeWorkflow stores the transaction as Pending; stock moves when it is processed
	RecordModeWorkflow RecordMode = "workflow"
)

// IsValid checks if the mode is known
func (m RecordMode) IsValid() bool {
	return m == RecordModeDirect || m == RecordModeWorkflow
}

// TransactionRequest represents a proposed stock movement
type TransactionRequest struct {
	Type                  string           `json:"type" binding:"required"`
	InventoryItemID       uuid.UUID        `json:"inventory_item_id" binding:"required"`
	SourceLocationID      *uuid.UUID       `json:"source_location_id"`
	DestinationLocationID *uuid.UUID       `json:"destination_location_id"`
	Quantity              int64            `json:"quantity"`
	UnitCost              *decimal.Decimal `json:"unit_cost"`
	Reason                string           `json:"reason" binding:"max=500"`
	ReferenceNumber       string           `json:"reference_number" binding:"max=100"`
	Notes                 string           `json:"notes" binding:"max=2000"`
}

// ToDomain converts the request into the rules input
func (r TransactionRequest) ToDomain() inventory.TransactionRequest {
	return inventory.TransactionRequest{
		Type:                  inventory.TransactionType(r.Type),
		InventoryItemID:       r.InventoryItemID,
		SourceLocationID:      r.SourceLocationID,
		DestinationLocationID: r.DestinationLocationID,
		Quantity:              r.Quantity,
		UnitCost:              r.UnitCost,
		Reason:                r.Reason,
		ReferenceNumber:       r.ReferenceNumber,
		Notes:                 r.Notes,
	}
}

// RecordTransactionRequest records a transaction in the given mode.
// IfMatch optionally pins the item version for direct recording.
type RecordTransactionRequest struct {
	TransactionRequest
	Mode    RecordMode `json:"mode" binding:"omitempty,oneof=direct workflow"`
	IfMatch string     `json:"-"`
}

// ModifyTransactionRequest edits a transaction that is not locked
type ModifyTransactionRequest struct {
	Quantity        *int64           `json:"quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost"`
	Reason          *string          `json:"reason"`
	ReferenceNumber *string          `json:"reference_number"`
	Notes           *string          `json:"notes"`
}

// BulkProcessRequest submits several transactions to be applied directly, in order
type BulkProcessRequest struct {
	Transactions   []TransactionRequest `json:"transactions" binding:"required,min=1,dive"`
	IdempotencyKey string               `json:"-"`
}

// BulkResult reports how far a bulk submission got.
// Transactions before FailedIndex are committed; nothing after it was attempted.
type BulkResult struct {
	Submitted   int                   `json:"submitted"`
	Processed   []TransactionResponse `json:"processed"`
	FailedIndex *int                  `json:"failed_index,omitempty"`
	ErrorCode   string                `json:"error_code,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// TransactionListFilter represents filter options for transaction lists
type TransactionListFilter struct {
	InventoryItemID string `form:"inventory_item_id" binding:"omitempty,uuid"`
	Type            string `form:"type"`
	Status          string `form:"status"`
	Page            int    `form:"page" binding:"omitempty,min=1"`
	PageSize        int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy         string `form:"order_by"`
	OrderDir        string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID                    uuid.UUID        `json:"id"`
	TransactionNumber     string           `json:"transaction_number"`
	Type                  string           `json:"type"`
	Status                string           `json:"status"`
	InventoryItemID       uuid.UUID        `json:"inventory_item_id"`
	SourceLocationID      *uuid.UUID       `json:"source_location_id,omitempty"`
	DestinationLocationID *uuid.UUID       `json:"destination_location_id,omitempty"`
	Quantity              int64            `json:"quantity"`
	UnitCost              *decimal.Decimal `json:"unit_cost,omitempty"`
	Value                 decimal.Decimal  `json:"value"`
	Reason                string           `json:"reason,omitempty"`
	ReferenceNumber       string           `json:"reference_number,omitempty"`
	Notes                 string           `json:"notes,omitempty"`
	InitiatedAt           time.Time        `json:"initiated_at"`
	InitiatedBy           uuid.UUID        `json:"initiated_by"`
	ApprovedAt            *time.Time       `json:"approved_at,omitempty"`
	ApprovedBy            *uuid.UUID       `json:"approved_by,omitempty"`
	ProcessedAt           *time.Time       `json:"processed_at,omitempty"`
	ProcessedBy           *uuid.UUID       `json:"processed_by,omitempty"`
	Version               int              `json:"version"`
}

// ToTransactionResponse converts a domain transaction to a response DTO
func ToTransactionResponse(tx *inventory.InventoryTransaction) TransactionResponse {
	return TransactionResponse{
		ID:                    tx.ID,
		TransactionNumber:     tx.TransactionNumber,
		Type:                  string(tx.Type),
		Status:                string(tx.Status),
		InventoryItemID:       tx.InventoryItemID,
		SourceLocationID:      tx.SourceLocationID,
		DestinationLocationID: tx.DestinationLocationID,
		Quantity:              tx.Quantity,
		UnitCost:              tx.UnitCost,
		Value:                 tx.Value(),
		Reason:                tx.Reason,
		ReferenceNumber:       tx.ReferenceNumber,
		Notes:                 tx.Notes,
		InitiatedAt:           tx.InitiatedAt,
		InitiatedBy:           tx.InitiatedBy,
		ApprovedAt:            tx.ApprovedAt,
		ApprovedBy:            tx.ApprovedBy,
		ProcessedAt:           tx.ProcessedAt,
		ProcessedBy:           tx.ProcessedBy,
		Version:               tx.Version,
	}
}

// ToTransactionResponses converts a slice of transactions
func ToTransactionResponses(txs []inventory.InventoryTransaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txs))
	for i := range txs {
		responses[i] = ToTransactionResponse(&txs[i])
	}
	return responses
}

// CreateItemRequest represents a request to create an inventory item
type CreateItemRequest struct {
	PartNumber   string          `json:"part_number" binding:"required,max=100"`
	Barcode      string          `json:"barcode" binding:"max=2048"`
	Name         string          `json:"name" binding:"required,max=200"`
	Description  string          `json:"description" binding:"max=2000"`
	MinimumStock int64           `json:"minimum_stock" binding:"min=0"`
	MaximumStock int64           `json:"maximum_stock" binding:"min=0"`
	StandardCost decimal.Decimal `json:"standard_cost"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	LocationID   uuid.UUID       `json:"location_id" binding:"required"`
	SupplierID   *uuid.UUID      `json:"supplier_id"`
}

// UpdateItemRequest edits an item; nil fields are left untouched
type UpdateItemRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Barcode      *string          `json:"barcode"`
	MinimumStock *int64           `json:"minimum_stock"`
	MaximumStock *int64           `json:"maximum_stock"`
	StandardCost *decimal.Decimal `json:"standard_cost"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
	SupplierID   *uuid.UUID       `json:"supplier_id"`
}

// AdjustStockRequest applies a signed correction to an item's stock
type AdjustStockRequest struct {
	Delta  int64  `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"required,max=500"`
}

// ReserveStockRequest reserves or releases stock
type ReserveStockRequest struct {
	Quantity int64 `json:"quantity" binding:"required,min=1"`
}

// ItemResponse represents an inventory item in API responses.
// ETag is the version tag clients echo back in If-Match.
type ItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	PartNumber     string          `json:"part_number"`
	Barcode        string          `json:"barcode,omitempty"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	CurrentStock   int64           `json:"current_stock"`
	ReservedStock  int64           `json:"reserved_stock"`
	AvailableStock int64           `json:"available_stock"`
	MinimumStock   int64           `json:"minimum_stock"`
	MaximumStock   int64           `json:"maximum_stock"`
	StandardCost   decimal.Decimal `json:"standard_cost"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	LocationID     uuid.UUID       `json:"location_id"`
	SupplierID     *uuid.UUID      `json:"supplier_id,omitempty"`
	IsActive       bool            `json:"is_active"`
	IsBelowMinimum bool            `json:"is_below_minimum"`
	IsAboveMaximum bool            `json:"is_above_maximum"`
	LastMovement   *time.Time      `json:"last_movement,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
	ETag           string          `json:"-"`
}

// ToItemResponse converts a domain item to a response DTO
func ToItemResponse(item *inventory.InventoryItem) ItemResponse {
	return ItemResponse{
		ID:             item.ID,
		PartNumber:     item.PartNumber,
		Barcode:        item.Barcode,
		Name:           item.Name,
		Description:    item.Description,
		CurrentStock:   item.CurrentStock,
		ReservedStock:  item.ReservedStock,
		AvailableStock: inventory.AvailableStock(item),
		MinimumStock:   item.MinimumStock,
		MaximumStock:   item.MaximumStock,
		StandardCost:   item.StandardCost,
		SellingPrice:   item.SellingPrice,
		LocationID:     item.LocationID,
		SupplierID:     item.SupplierID,
		IsActive:       item.IsActive,
		IsBelowMinimum: item.IsBelowMinimum(),
		IsAboveMaximum: item.IsAboveMaximum(),
		LastMovement:   item.LastMovement,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
		Version:        item.Version,
		ETag:           inventory.Tag(item),
	}
}

// ReorderPointResponse explains how a reorder point was derived
type ReorderPointResponse struct {
	InventoryItemID   uuid.UUID       `json:"inventory_item_id"`
	WindowDays        int             `json:"window_days"`
	IssuedInWindow    int64           `json:"issued_in_window"`
	AverageDailyUsage decimal.Decimal `json:"average_daily_usage"`
	LeadTimeDays      int             `json:"lead_time_days"`
	SafetyFactor      decimal.Decimal `json:"safety_factor"`
	ReorderPoint      int64           `json:"reorder_point"`
	CurrentStock      int64           `json:"current_stock"`
	NeedsReorder      bool            `json:"needs_reorder"`
}

// BarcodeValidationResponse reports the format a barcode was accepted as
type BarcodeValidationResponse struct {
	Barcode string `json:"barcode"`
	Format  string `json:"format"`
}

// BarcodeSuggestionResponse carries a generated barcode
type BarcodeSuggestionResponse struct {
	PartNumber string `json:"part_number"`
	Format     string `json:"format"`
	Barcode    string `json:"barcode"`
}
