package inventory

import (
	"context"
	"time"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"go.uber.org/zap"
)

// ReorderPointCalculator computes the reorder point of an item
type ReorderPointCalculator interface {
	ReorderPointForItem(ctx context.Context, item *inventory.InventoryItem) (*ReorderPointResponse, error)
}

// ReorderScanService periodically checks active items against their reorder point
// and publishes StockBelowMinimum for those at or below it
type ReorderScanService struct {
	items      inventory.InventoryItemRepository
	calculator ReorderPointCalculator
	eventBus   shared.EventPublisher
	clock      shared.Clock
	logger     *zap.Logger
}

// NewReorderScanService creates a new ReorderScanService
func NewReorderScanService(
	items inventory.InventoryItemRepository,
	calculator ReorderPointCalculator,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *ReorderScanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReorderScanService{
		items:      items,
		calculator: calculator,
		eventBus:   eventBus,
		clock:      shared.SystemClock{},
		logger:     logger,
	}
}

// ReorderScanStats contains statistics about one scan
type ReorderScanStats struct {
	Scanned      int       `json:"scanned"`
	BelowReorder int       `json:"below_reorder"`
	Failed       int       `json:"failed"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// Scan computes the reorder point of every active item
func (s *ReorderScanService) Scan(ctx context.Context) (*ReorderScanStats, error) {
	stats := &ReorderScanStats{
		ProcessedAt: s.clock.Now(),
	}

	items, err := s.items.FindActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list active items", zap.Error(err))
		return nil, err
	}
	stats.Scanned = len(items)
	if stats.Scanned == 0 {
		s.logger.Debug("No active items to scan")
		return stats, nil
	}

	for i := range items {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		item := &items[i]
		below, err := s.checkItem(ctx, item)
		if err != nil {
			s.logger.Error("Failed to compute reorder point",
				zap.String("item_id", item.ID.String()),
				zap.String("part_number", item.PartNumber),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}
		if below {
			stats.BelowReorder++
		}
	}

	s.logger.Info("Completed reorder point scan",
		zap.Int("scanned", stats.Scanned),
		zap.Int("below_reorder", stats.BelowReorder),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

func (s *ReorderScanService) checkItem(ctx context.Context, item *inventory.InventoryItem) (bool, error) {
	point, err := s.calculator.ReorderPointForItem(ctx, item)
	if err != nil {
		return false, err
	}
	if !point.NeedsReorder {
		return false, nil
	}

	if s.eventBus != nil {
		event := inventory.NewStockBelowThresholdEvent(item, point.ReorderPoint, s.clock.Now())
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish StockBelowMinimum event",
				zap.String("item_id", item.ID.String()),
				zap.Error(err),
			)
			// the scan result stands even if the alert was not delivered
		}
	}
	return true, nil
}
