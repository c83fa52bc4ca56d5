package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockHealthProvider implements StockHealthProvider with aggregate queries over inventory_items.
type GormStockHealthProvider struct {
	db *gorm.DB
}

// NewGormStockHealthProvider creates a GormStockHealthProvider.
func NewGormStockHealthProvider(db *gorm.DB) *GormStockHealthProvider {
	return &GormStockHealthProvider{db: db}
}

// LowStockCount counts active items under their minimum stock.
func (p *GormStockHealthProvider) LowStockCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("inventory_items").
		Where("is_active = ? AND minimum_stock > 0 AND current_stock < minimum_stock", true).
		Count(&count).Error
	return count, err
}

// ReservedByLocation sums reserved stock per location, omitting locations with none.
func (p *GormStockHealthProvider) ReservedByLocation(ctx context.Context) (map[uuid.UUID]int64, error) {
	type row struct {
		LocationID uuid.UUID `gorm:"column:location_id"`
		Reserved   int64     `gorm:"column:reserved"`
	}

	var rows []row
	err := p.db.WithContext(ctx).
		Table("inventory_items").
		Select("location_id, COALESCE(SUM(reserved_stock), 0) AS reserved").
		Where("is_active = ?", true).
		Group("location_id").
		Having("SUM(reserved_stock) > 0").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		out[r.LocationID] = r.Reserved
	}
	return out, nil
}
