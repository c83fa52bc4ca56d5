package persistence

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/location"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

// newTestDatabase opens a migrated SQLite database in a file of its own.
// A file database lets a scope's transaction and plain reads use separate connections.
func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "inventory.db") + "?_busy_timeout=5000&_foreign_keys=off"
	db, err := NewDatabaseFromDialector(sqlite.Open(dsn), nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newMockDatabase opens GORM on sqlmock with the postgres dialect
func newMockDatabase(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(postgresDialectorFor(mockDB), gormConfig(nil))
	require.NoError(t, err)
	return gormDB, mock, mockDB
}

func seedLocation(t *testing.T, db *gorm.DB, code string, parent *uuid.UUID) *location.Location {
	t.Helper()
	loc, err := location.NewLocation(code, code+" area", location.LocationTypeWarehouse)
	require.NoError(t, err)
	loc.AssignParent(parent)
	require.NoError(t, NewGormLocationRepository(db).Save(t.Context(), loc))
	return loc
}

func newItem(t *testing.T, partNumber, barcode string, locationID uuid.UUID) *inventory.InventoryItem {
	t.Helper()
	item, err := inventory.NewInventoryItem(inventory.NewItemInput{
		PartNumber:   partNumber,
		Barcode:      barcode,
		Name:         partNumber + " part",
		MinimumStock: 5,
		MaximumStock: 500,
		StandardCost: decimal.NewFromFloat(2.5),
		SellingPrice: decimal.NewFromInt(4),
		LocationID:   locationID,
	}, testNow)
	require.NoError(t, err)
	return item
}

func seedItem(t *testing.T, db *gorm.DB, partNumber, barcode string, locationID uuid.UUID) *inventory.InventoryItem {
	t.Helper()
	item := newItem(t, partNumber, barcode, locationID)
	require.NoError(t, NewGormInventoryItemRepository(db).Create(t.Context(), item))
	return item
}

func newTransaction(t *testing.T, number string, itemID uuid.UUID, txType inventory.TransactionType, quantity int64) *inventory.InventoryTransaction {
	t.Helper()
	tx, err := inventory.NewPendingTransaction(inventory.TransactionRequest{
		Type:            txType,
		InventoryItemID: itemID,
		Quantity:        quantity,
		Reason:          "cycle",
	}, number, uuid.New(), testNow)
	require.NoError(t, err)
	return tx
}

func postgresDialectorFor(conn *sql.DB) gorm.Dialector {
	return postgres.New(postgres.Config{
		Conn:       conn,
		DriverName: "postgres",
	})
}
