package inventory

import (
	"context"
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
)

// InventoryItemRepository defines persistence operations for inventory items
type InventoryItemRepository interface {
	// FindByID finds an item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)

	// FindByBarcode finds an item by its unique barcode
	FindByBarcode(ctx context.Context, barcode string) (*InventoryItem, error)

	// FindByPartNumber finds an item by its unique part number
	FindByPartNumber(ctx context.Context, partNumber string) (*InventoryItem, error)

	// FindByLocation finds items stored at a location
	FindByLocation(ctx context.Context, locationID uuid.UUID) ([]InventoryItem, error)

	// FindActive returns all active items
	FindActive(ctx context.Context) ([]InventoryItem, error)

	// CountByLocation counts items stored at a location
	CountByLocation(ctx context.Context, locationID uuid.UUID) (int64, error)

	// CountsByLocation returns item counts keyed by location
	CountsByLocation(ctx context.Context) (map[uuid.UUID]int64, error)

	// ExistsByPartNumber checks if a part number is taken
	ExistsByPartNumber(ctx context.Context, partNumber string) (bool, error)

	// ExistsByBarcode checks if a barcode is taken
	ExistsByBarcode(ctx context.Context, barcode string) (bool, error)

	// Create inserts a new item
	Create(ctx context.Context, item *InventoryItem) error

	// SaveIfTagMatches writes item only if the stored version tag still equals
	// expectedTag. The compare and the write are a single atomic statement;
	// a mismatch yields a CONCURRENCY_CONFLICT error and writes nothing.
	SaveIfTagMatches(ctx context.Context, item *InventoryItem, expectedTag string) error
}

// InventoryTransactionRepository defines persistence operations for transactions
type InventoryTransactionRepository interface {
	// FindByID finds a transaction by ID
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryTransaction, error)

	// FindByNumber finds a transaction by its unique number
	FindByNumber(ctx context.Context, number string) (*InventoryTransaction, error)

	// List returns a page of transactions matching filter
	List(ctx context.Context, filter shared.Filter) ([]InventoryTransaction, int64, error)

	// Create inserts a new transaction
	Create(ctx context.Context, tx *InventoryTransaction) error

	// Update saves a transaction only if the stored version still equals
	// expectedVersion (the version it was loaded with); otherwise it yields
	// a CONCURRENCY_CONFLICT error
	Update(ctx context.Context, tx *InventoryTransaction, expectedVersion int) error

	// LatestNumber returns the highest transaction number starting with prefix
	// on the given UTC day, or "" if there is none
	LatestNumber(ctx context.Context, prefix string, day time.Time) (string, error)

	// CountActiveByItem counts Pending, Approved and Processing transactions for an item
	CountActiveByItem(ctx context.Context, itemID uuid.UUID) (int64, error)

	// SumCompletedQuantity sums quantities of completed transactions of a type
	// for an item processed at or after since
	SumCompletedQuantity(ctx context.Context, itemID uuid.UUID, txType TransactionType, since time.Time) (int64, error)
}
