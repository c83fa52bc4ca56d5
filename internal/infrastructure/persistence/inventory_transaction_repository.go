package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInventoryTransactionRepository implements InventoryTransactionRepository using GORM
type GormInventoryTransactionRepository struct {
	db *gorm.DB
}

// NewGormInventoryTransactionRepository creates a new GormInventoryTransactionRepository
func NewGormInventoryTransactionRepository(db *gorm.DB) *GormInventoryTransactionRepository {
	return &GormInventoryTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID
func (r *GormInventoryTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryTransaction, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByNumber finds a transaction by its number
func (r *GormInventoryTransactionRepository) FindByNumber(ctx context.Context, number string) (*inventory.InventoryTransaction, error) {
	return r.findOne(ctx, "transaction_number = ?", number)
}

func (r *GormInventoryTransactionRepository) findOne(ctx context.Context, query string, args ...any) (*inventory.InventoryTransaction, error) {
	var model models.InventoryTransactionModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Transaction not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns a page of transactions matching filter and the total match count
func (r *GormInventoryTransactionRepository) List(ctx context.Context, filter shared.Filter) ([]inventory.InventoryTransaction, int64, error) {
	base := func() *gorm.DB {
		return r.applyFilters(r.db.WithContext(ctx).Model(&models.InventoryTransactionModel{}), filter)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.InventoryTransactionModel
	paged := applyPagination(
		applyOrdering(base(), filter.OrderBy, filter.OrderDir, InventoryTransactionSortFields),
		filter.Page, filter.PageSize,
	)
	if err := paged.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	txs := make([]inventory.InventoryTransaction, len(rows))
	for i := range rows {
		txs[i] = *rows[i].ToDomain()
	}
	return txs, total, nil
}

func (r *GormInventoryTransactionRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "inventory_item_id":
			query = query.Where("inventory_item_id = ?", value)
		case "transaction_type":
			query = query.Where("transaction_type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "from":
			query = query.Where("initiated_at >= ?", value)
		case "to":
			query = query.Where("initiated_at < ?", value)
		}
	}
	return query
}

// Create inserts a new transaction. A taken transaction number is reported
// as a concurrency conflict: another writer claimed the same sequence.
func (r *GormInventoryTransactionRepository) Create(ctx context.Context, tx *inventory.InventoryTransaction) error {
	if err := r.db.WithContext(ctx).Create(models.InventoryTransactionModelFromDomain(tx)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError(shared.CodeConcurrencyConflict,
				"Transaction number "+tx.TransactionNumber+" is already taken")
		}
		return err
	}
	return nil
}

// Update saves the mutable columns of tx guarded by expectedVersion
func (r *GormInventoryTransactionRepository) Update(ctx context.Context, tx *inventory.InventoryTransaction, expectedVersion int) error {
	model := models.InventoryTransactionModelFromDomain(tx)
	result := r.db.WithContext(ctx).
		Model(&models.InventoryTransactionModel{}).
		Where("id = ? AND version = ?", tx.ID, expectedVersion).
		Updates(map[string]any{
			"status":                  model.Status,
			"source_location_id":      model.SourceLocationID,
			"destination_location_id": model.DestinationLocationID,
			"quantity":                model.Quantity,
			"unit_cost":               model.UnitCost,
			"reason":                  model.Reason,
			"reference_number":        model.ReferenceNumber,
			"notes":                   model.Notes,
			"approved_at":             model.ApprovedAt,
			"approved_by":             model.ApprovedBy,
			"processed_at":            model.ProcessedAt,
			"processed_by":            model.ProcessedBy,
			"version":                 model.Version,
			"updated_at":              model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict,
			"Transaction was modified by another process")
	}
	return nil
}

// LatestNumber returns the highest number for prefix on day. Longer numbers
// sort first so sequences past 9999 still win over four-digit ones.
func (r *GormInventoryTransactionRepository) LatestNumber(ctx context.Context, prefix string, day time.Time) (string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).Model(&models.InventoryTransactionModel{}).
		Where("transaction_number LIKE ?", prefix+"-"+inventory.NumberDate(day)+"-%").
		Order("LENGTH(transaction_number) DESC").
		Order("transaction_number DESC").
		Limit(1).
		Pluck("transaction_number", &numbers).Error
	if err != nil {
		return "", err
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

// CountActiveByItem counts transactions on the item that may still move stock
func (r *GormInventoryTransactionRepository) CountActiveByItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InventoryTransactionModel{}).
		Where("inventory_item_id = ? AND status IN ?", itemID, []inventory.TransactionStatus{
			inventory.TransactionStatusPending,
			inventory.TransactionStatusApproved,
			inventory.TransactionStatusProcessing,
		}).
		Count(&count).Error
	return count, err
}

// SumCompletedQuantity sums completed quantities of txType for itemID processed since the given instant
func (r *GormInventoryTransactionRepository) SumCompletedQuantity(ctx context.Context, itemID uuid.UUID, txType inventory.TransactionType, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.InventoryTransactionModel{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("inventory_item_id = ? AND transaction_type = ? AND status = ? AND processed_at >= ?",
			itemID, txType, inventory.TransactionStatusCompleted, since.UTC()).
		Row().Scan(&total)
	return total, err
}

// Ensure GormInventoryTransactionRepository implements InventoryTransactionRepository
var _ inventory.InventoryTransactionRepository = (*GormInventoryTransactionRepository)(nil)
