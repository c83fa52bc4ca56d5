package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItem is a stocked part held at exactly one location.
// Stock is kept as live counters that every completed transaction mutates.
type InventoryItem struct {
	shared.BaseAggregateRoot
	PartNumber    string
	Barcode       string
	Name          string
	Description   string
	CurrentStock  int64
	ReservedStock int64
	MinimumStock  int64
	MaximumStock  int64
	StandardCost  decimal.Decimal
	SellingPrice  decimal.Decimal
	LocationID    uuid.UUID
	SupplierID    *uuid.UUID
	IsActive      bool
	LastMovement  *time.Time
}

// NewItemInput carries the fields required to create an item
type NewItemInput struct {
	PartNumber   string
	Barcode      string
	Name         string
	Description  string
	MinimumStock int64
	MaximumStock int64
	StandardCost decimal.Decimal
	SellingPrice decimal.Decimal
	LocationID   uuid.UUID
	SupplierID   *uuid.UUID
}

// NewInventoryItem creates an active item with zero stock
func NewInventoryItem(input NewItemInput, now time.Time) (*InventoryItem, error) {
	partNumber := strings.TrimSpace(input.PartNumber)
	if partNumber == "" {
		return nil, shared.NewDomainError("INVALID_PART_NUMBER", "Part number is required")
	}
	if len(partNumber) > 100 {
		return nil, shared.NewDomainError("INVALID_PART_NUMBER", "Part number cannot exceed 100 characters")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name is required")
	}
	if input.LocationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location ID cannot be empty")
	}
	if err := validateStockBounds(input.MinimumStock, input.MaximumStock); err != nil {
		return nil, err
	}
	if err := validatePrices(input.StandardCost, input.SellingPrice); err != nil {
		return nil, err
	}

	item := &InventoryItem{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.NewBaseEntityAt(now),
			Version:    1,
		},
		PartNumber:   partNumber,
		Barcode:      strings.TrimSpace(input.Barcode),
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		MinimumStock: input.MinimumStock,
		MaximumStock: input.MaximumStock,
		StandardCost: input.StandardCost,
		SellingPrice: input.SellingPrice,
		LocationID:   input.LocationID,
		SupplierID:   input.SupplierID,
		IsActive:     true,
	}
	return item, nil
}

// ItemChanges lists editable item fields; nil fields are left untouched
type ItemChanges struct {
	Name         *string
	Description  *string
	Barcode      *string
	MinimumStock *int64
	MaximumStock *int64
	StandardCost *decimal.Decimal
	SellingPrice *decimal.Decimal
	SupplierID   *uuid.UUID
}

// Update applies changes after validating the resulting item
func (i *InventoryItem) Update(changes ItemChanges, at time.Time) error {
	name, description, barcode := i.Name, i.Description, i.Barcode
	minStock, maxStock := i.MinimumStock, i.MaximumStock
	cost, price := i.StandardCost, i.SellingPrice

	if changes.Name != nil {
		name = strings.TrimSpace(*changes.Name)
		if name == "" {
			return shared.NewDomainError("INVALID_NAME", "Item name is required")
		}
	}
	if changes.Description != nil {
		description = *changes.Description
	}
	if changes.Barcode != nil {
		barcode = strings.TrimSpace(*changes.Barcode)
	}
	if changes.MinimumStock != nil {
		minStock = *changes.MinimumStock
	}
	if changes.MaximumStock != nil {
		maxStock = *changes.MaximumStock
	}
	if changes.StandardCost != nil {
		cost = *changes.StandardCost
	}
	if changes.SellingPrice != nil {
		price = *changes.SellingPrice
	}
	if err := validateStockBounds(minStock, maxStock); err != nil {
		return err
	}
	if err := validatePrices(cost, price); err != nil {
		return err
	}

	i.Name, i.Description, i.Barcode = name, description, barcode
	i.MinimumStock, i.MaximumStock = minStock, maxStock
	i.StandardCost, i.SellingPrice = cost, price
	if changes.SupplierID != nil {
		supplierID := *changes.SupplierID
		i.SupplierID = &supplierID
	}
	i.touch(at)
	return nil
}

// ApplyStockDelta adds delta to the current stock and stamps the movement.
// The engine never stores a negative count.
func (i *InventoryItem) ApplyStockDelta(delta int64, at time.Time) error {
	next := i.CurrentStock + delta
	if next < 0 {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Stock of %s cannot go below zero (current %d, change %d)", i.PartNumber, i.CurrentStock, delta))
	}
	i.CurrentStock = next
	movedAt := shared.StorageTime(at)
	i.LastMovement = &movedAt
	i.touch(at)

	if delta < 0 && i.IsBelowMinimum() {
		i.AddDomainEvent(NewStockBelowMinimumEvent(i, at))
	}
	return nil
}

// Relocate moves the item to another location
func (i *InventoryItem) Relocate(locationID uuid.UUID, at time.Time) {
	if i.LocationID == locationID {
		return
	}
	i.LocationID = locationID
	i.touch(at)
}

// Reserve sets aside quantity for a pending outbound movement
func (i *InventoryItem) Reserve(quantity int64, at time.Time) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity to reserve must be positive")
	}
	if AvailableStock(i) < quantity {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Insufficient available stock: requested %d, available %d", quantity, AvailableStock(i)))
	}
	i.ReservedStock += quantity
	i.touch(at)
	return nil
}

// Release returns reserved quantity to available stock
func (i *InventoryItem) Release(quantity int64, at time.Time) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity to release must be positive")
	}
	if quantity > i.ReservedStock {
		return shared.NewDomainError("INVALID_QUANTITY",
			fmt.Sprintf("Cannot release %d, only %d reserved", quantity, i.ReservedStock))
	}
	i.ReservedStock -= quantity
	i.touch(at)
	return nil
}

// Deactivate soft-deletes the item
func (i *InventoryItem) Deactivate(at time.Time) {
	if !i.IsActive {
		return
	}
	i.IsActive = false
	i.touch(at)
}

// IsBelowMinimum reports whether current stock is under the configured minimum
func (i *InventoryItem) IsBelowMinimum() bool {
	return i.MinimumStock > 0 && i.CurrentStock < i.MinimumStock
}

// IsAboveMaximum reports whether current stock exceeds the configured maximum
func (i *InventoryItem) IsAboveMaximum() bool {
	return i.MaximumStock > 0 && i.CurrentStock > i.MaximumStock
}

func (i *InventoryItem) touch(at time.Time) {
	i.Touch(at)
	i.IncrementVersion()
}

func validateStockBounds(minStock, maxStock int64) error {
	if minStock < 0 || maxStock < 0 {
		return shared.NewDomainError("INVALID_STOCK_LEVEL", "Minimum and maximum stock cannot be negative")
	}
	if minStock > maxStock {
		return shared.NewDomainError("INVALID_STOCK_LEVEL", "Minimum stock cannot exceed maximum stock")
	}
	return nil
}

func validatePrices(cost, price decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Standard cost cannot be negative")
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}
	return nil
}
