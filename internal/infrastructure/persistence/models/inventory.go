package models

import (
	"time"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItemModel is the persistence model for the InventoryItem aggregate root.
// RowTag holds the version tag computed at the last write; conditional updates
// compare against it so the check and the write are one statement.
type InventoryItemModel struct {
	AggregateModel
	PartNumber    string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_inventory_items_part_number"`
	Barcode       *string         `gorm:"type:varchar(2048);uniqueIndex:idx_inventory_items_barcode"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Description   string          `gorm:"type:text"`
	CurrentStock  int64           `gorm:"not null;default:0"`
	ReservedStock int64           `gorm:"not null;default:0"`
	MinimumStock  int64           `gorm:"not null;default:0"`
	MaximumStock  int64           `gorm:"not null;default:0"`
	StandardCost  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LocationID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_inventory_items_location"`
	SupplierID    *uuid.UUID      `gorm:"type:uuid;index"`
	IsActive      bool            `gorm:"not null;default:true;index"`
	LastMovement  *time.Time
	RowTag        string `gorm:"type:varchar(64);not null"`
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// ToDomain converts the persistence model to a domain InventoryItem entity.
func (m *InventoryItemModel) ToDomain() *inventory.InventoryItem {
	item := &inventory.InventoryItem{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		PartNumber:        m.PartNumber,
		Name:              m.Name,
		Description:       m.Description,
		CurrentStock:      m.CurrentStock,
		ReservedStock:     m.ReservedStock,
		MinimumStock:      m.MinimumStock,
		MaximumStock:      m.MaximumStock,
		StandardCost:      m.StandardCost,
		SellingPrice:      m.SellingPrice,
		LocationID:        m.LocationID,
		SupplierID:        m.SupplierID,
		IsActive:          m.IsActive,
		LastMovement:      utcPtr(m.LastMovement),
	}
	if m.Barcode != nil {
		item.Barcode = *m.Barcode
	}
	return item
}

// FromDomain populates the persistence model from a domain InventoryItem entity.
// Empty barcodes are stored as NULL so the unique index ignores them.
func (m *InventoryItemModel) FromDomain(i *inventory.InventoryItem) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.PartNumber = i.PartNumber
	m.Barcode = nil
	if i.Barcode != "" {
		barcode := i.Barcode
		m.Barcode = &barcode
	}
	m.Name = i.Name
	m.Description = i.Description
	m.CurrentStock = i.CurrentStock
	m.ReservedStock = i.ReservedStock
	m.MinimumStock = i.MinimumStock
	m.MaximumStock = i.MaximumStock
	m.StandardCost = i.StandardCost
	m.SellingPrice = i.SellingPrice
	m.LocationID = i.LocationID
	m.SupplierID = i.SupplierID
	m.IsActive = i.IsActive
	m.LastMovement = i.LastMovement
	m.RowTag = inventory.Tag(i)
}

// InventoryItemModelFromDomain creates a new persistence model from a domain InventoryItem entity.
func InventoryItemModelFromDomain(i *inventory.InventoryItem) *InventoryItemModel {
	m := &InventoryItemModel{}
	m.FromDomain(i)
	return m
}

// InventoryTransactionModel is the persistence model for the InventoryTransaction aggregate.
type InventoryTransactionModel struct {
	AggregateModel
	TransactionNumber     string                      `gorm:"type:varchar(50);not null;uniqueIndex:idx_inventory_transactions_number"`
	TransactionType       inventory.TransactionType   `gorm:"type:varchar(30);not null;index:idx_inventory_transactions_type"`
	Status                inventory.TransactionStatus `gorm:"type:varchar(20);not null;index:idx_inventory_transactions_status"`
	InventoryItemID       uuid.UUID                   `gorm:"type:uuid;not null;index:idx_inventory_transactions_item"`
	SourceLocationID      *uuid.UUID                  `gorm:"type:uuid"`
	DestinationLocationID *uuid.UUID                  `gorm:"type:uuid"`
	Quantity              int64                       `gorm:"not null"`
	UnitCost              *decimal.Decimal            `gorm:"type:decimal(18,4)"`
	Reason                string                      `gorm:"type:varchar(500)"`
	ReferenceNumber       string                      `gorm:"type:varchar(100)"`
	Notes                 string                      `gorm:"type:text"`
	InitiatedAt           time.Time                   `gorm:"not null;index:idx_inventory_transactions_initiated"`
	InitiatedBy           uuid.UUID                   `gorm:"type:uuid;not null"`
	ApprovedAt            *time.Time
	ApprovedBy            *uuid.UUID `gorm:"type:uuid"`
	ProcessedAt           *time.Time `gorm:"index:idx_inventory_transactions_processed"`
	ProcessedBy           *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (InventoryTransactionModel) TableName() string {
	return "inventory_transactions"
}

// ToDomain converts the persistence model to a domain InventoryTransaction.
func (m *InventoryTransactionModel) ToDomain() *inventory.InventoryTransaction {
	return &inventory.InventoryTransaction{
		BaseAggregateRoot:     m.ToDomainAggregateRoot(),
		TransactionNumber:     m.TransactionNumber,
		Type:                  m.TransactionType,
		Status:                m.Status,
		InventoryItemID:       m.InventoryItemID,
		SourceLocationID:      m.SourceLocationID,
		DestinationLocationID: m.DestinationLocationID,
		Quantity:              m.Quantity,
		UnitCost:              m.UnitCost,
		Reason:                m.Reason,
		ReferenceNumber:       m.ReferenceNumber,
		Notes:                 m.Notes,
		InitiatedAt:           m.InitiatedAt.UTC(),
		InitiatedBy:           m.InitiatedBy,
		ApprovedAt:            utcPtr(m.ApprovedAt),
		ApprovedBy:            m.ApprovedBy,
		ProcessedAt:           utcPtr(m.ProcessedAt),
		ProcessedBy:           m.ProcessedBy,
	}
}

// FromDomain populates the persistence model from a domain InventoryTransaction.
func (m *InventoryTransactionModel) FromDomain(t *inventory.InventoryTransaction) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.TransactionNumber = t.TransactionNumber
	m.TransactionType = t.Type
	m.Status = t.Status
	m.InventoryItemID = t.InventoryItemID
	m.SourceLocationID = t.SourceLocationID
	m.DestinationLocationID = t.DestinationLocationID
	m.Quantity = t.Quantity
	m.UnitCost = t.UnitCost
	m.Reason = t.Reason
	m.ReferenceNumber = t.ReferenceNumber
	m.Notes = t.Notes
	m.InitiatedAt = t.InitiatedAt
	m.InitiatedBy = t.InitiatedBy
	m.ApprovedAt = t.ApprovedAt
	m.ApprovedBy = t.ApprovedBy
	m.ProcessedAt = t.ProcessedAt
	m.ProcessedBy = t.ProcessedBy
}

// InventoryTransactionModelFromDomain creates a new persistence model from a domain InventoryTransaction.
func InventoryTransactionModelFromDomain(t *inventory.InventoryTransaction) *InventoryTransactionModel {
	m := &InventoryTransactionModel{}
	m.FromDomain(t)
	return m
}
