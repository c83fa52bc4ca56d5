package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInventoryItemRepository implements InventoryItemRepository using GORM
type GormInventoryItemRepository struct {
	db *gorm.DB
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

// FindByID finds an inventory item by its ID
func (r *GormInventoryItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByBarcode finds an inventory item by its barcode
func (r *GormInventoryItemRepository) FindByBarcode(ctx context.Context, barcode string) (*inventory.InventoryItem, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, shared.NotFound("Inventory item not found")
	}
	return r.findOne(ctx, "barcode = ?", barcode)
}

// FindByPartNumber finds an inventory item by its part number
func (r *GormInventoryItemRepository) FindByPartNumber(ctx context.Context, partNumber string) (*inventory.InventoryItem, error) {
	return r.findOne(ctx, "part_number = ?", strings.TrimSpace(partNumber))
}

func (r *GormInventoryItemRepository) findOne(ctx context.Context, query string, args ...any) (*inventory.InventoryItem, error) {
	var model models.InventoryItemModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Inventory item not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLocation finds all items stored at a location
func (r *GormInventoryItemRepository) FindByLocation(ctx context.Context, locationID uuid.UUID) ([]inventory.InventoryItem, error) {
	return r.findMany(r.db.WithContext(ctx).Where("location_id = ?", locationID))
}

// FindActive returns every active item ordered by part number
func (r *GormInventoryItemRepository) FindActive(ctx context.Context) ([]inventory.InventoryItem, error) {
	return r.findMany(r.db.WithContext(ctx).Where("is_active = ?", true))
}

func (r *GormInventoryItemRepository) findMany(query *gorm.DB) ([]inventory.InventoryItem, error) {
	var rows []models.InventoryItemModel
	if err := query.Order("part_number ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]inventory.InventoryItem, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, nil
}

// CountByLocation counts items stored at a location
func (r *GormInventoryItemRepository) CountByLocation(ctx context.Context, locationID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InventoryItemModel{}).
		Where("location_id = ?", locationID).
		Count(&count).Error
	return count, err
}

type locationCount struct {
	LocationID uuid.UUID
	Count      int64
}

// CountsByLocation returns item counts keyed by location in one grouped query
func (r *GormInventoryItemRepository) CountsByLocation(ctx context.Context) (map[uuid.UUID]int64, error) {
	var rows []locationCount
	if err := r.db.WithContext(ctx).Model(&models.InventoryItemModel{}).
		Select("location_id, COUNT(*) AS count").
		Group("location_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.LocationID] = row.Count
	}
	return counts, nil
}

// ExistsByPartNumber checks if a part number is taken
func (r *GormInventoryItemRepository) ExistsByPartNumber(ctx context.Context, partNumber string) (bool, error) {
	return r.exists(ctx, "part_number = ?", strings.TrimSpace(partNumber))
}

// ExistsByBarcode checks if a barcode is taken
func (r *GormInventoryItemRepository) ExistsByBarcode(ctx context.Context, barcode string) (bool, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return false, nil
	}
	return r.exists(ctx, "barcode = ?", barcode)
}

func (r *GormInventoryItemRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.InventoryItemModel{}).
		Where(query, args...).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new item
func (r *GormInventoryItemRepository) Create(ctx context.Context, item *inventory.InventoryItem) error {
	model := models.InventoryItemModelFromDomain(item)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "An item with this part number or barcode already exists")
		}
		return err
	}
	return nil
}

// SaveIfTagMatches writes every mutable column of item in one
// UPDATE ... WHERE id = ? AND row_tag = ? statement. Zero affected rows means
// the stored tag moved on (or the row is gone) and nothing was written.
func (r *GormInventoryItemRepository) SaveIfTagMatches(ctx context.Context, item *inventory.InventoryItem, expectedTag string) error {
	model := models.InventoryItemModelFromDomain(item)
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Where("id = ? AND row_tag = ?", item.ID, expectedTag).
		Updates(map[string]any{
			"barcode":        model.Barcode,
			"name":           model.Name,
			"description":    model.Description,
			"current_stock":  model.CurrentStock,
			"reserved_stock": model.ReservedStock,
			"minimum_stock":  model.MinimumStock,
			"maximum_stock":  model.MaximumStock,
			"standard_cost":  model.StandardCost,
			"selling_price":  model.SellingPrice,
			"location_id":    model.LocationID,
			"supplier_id":    model.SupplierID,
			"is_active":      model.IsActive,
			"last_movement":  model.LastMovement,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
			"row_tag":        model.RowTag,
		})

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "An item with this barcode already exists")
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict,
			"Inventory item was modified by another transaction")
	}
	return nil
}

// Ensure GormInventoryItemRepository implements InventoryItemRepository
var _ inventory.InventoryItemRepository = (*GormInventoryItemRepository)(nil)
