package inventory

import (
	"context"
	"time"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReorderPoint computes the item's reorder threshold:
// average daily issued quantity over the window x supplier lead time x safety factor,
// rounded up to a whole unit
func (s *InventoryService) ReorderPoint(ctx context.Context, itemID uuid.UUID) (*ReorderPointResponse, error) {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.ReorderPointForItem(ctx, item)
}

// ReorderPointForItem computes the reorder point of an already loaded item
func (s *InventoryService) ReorderPointForItem(ctx context.Context, item *inventory.InventoryItem) (*ReorderPointResponse, error) {
	window := s.config.ReorderWindowDays
	since := s.clock.Now().UTC().Add(-time.Duration(window) * 24 * time.Hour)

	issued, err := s.transactions.SumCompletedQuantity(ctx, item.ID, inventory.TransactionTypeIssue, since)
	if err != nil {
		return nil, err
	}
	leadTime, err := s.leadTimeDays(ctx, item)
	if err != nil {
		return nil, err
	}

	averageDaily := decimal.NewFromInt(issued).Div(decimal.NewFromInt(int64(window)))
	point := averageDaily.
		Mul(decimal.NewFromInt(int64(leadTime))).
		Mul(s.config.ReorderSafetyFactor).
		Ceil().
		IntPart()

	return &ReorderPointResponse{
		InventoryItemID:   item.ID,
		WindowDays:        window,
		IssuedInWindow:    issued,
		AverageDailyUsage: averageDaily.Round(4),
		LeadTimeDays:      leadTime,
		SafetyFactor:      s.config.ReorderSafetyFactor,
		ReorderPoint:      point,
		CurrentStock:      item.CurrentStock,
		NeedsReorder:      point > 0 && item.CurrentStock <= point,
	}, nil
}

// leadTimeDays is 0 for items without a (still existing) supplier
func (s *InventoryService) leadTimeDays(ctx context.Context, item *inventory.InventoryItem) (int, error) {
	if item.SupplierID == nil || s.suppliers == nil {
		return 0, nil
	}
	supplier, err := s.suppliers.FindByID(ctx, *item.SupplierID)
	if err != nil {
		if shared.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return supplier.LeadTimeDays, nil
}
