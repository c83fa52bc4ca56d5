package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	inventoryapp "github.com/erp/inventory/internal/application/inventory"
	locationapp "github.com/erp/inventory/internal/application/location"
	partnerapp "github.com/erp/inventory/internal/application/partner"
	"github.com/erp/inventory/internal/domain/location"
	"github.com/erp/inventory/internal/infrastructure/cache"
	"github.com/erp/inventory/internal/infrastructure/persistence"
	"github.com/erp/inventory/internal/interfaces/http/dto"
	"github.com/erp/inventory/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// testRoleHeader lets a test act as a different approval role
const testRoleHeader = "X-Test-Role"

// apiFixture serves the handlers over real services on a SQLite database
type apiFixture struct {
	t       *testing.T
	engine  *gin.Engine
	db      *persistence.Database
	actorID uuid.UUID
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "inventory.db") + "?_busy_timeout=5000&_foreign_keys=off"
	db, err := persistence.NewDatabaseFromDialector(sqlite.Open(dsn), nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	itemRepo := persistence.NewGormInventoryItemRepository(db.DB)
	txRepo := persistence.NewGormInventoryTransactionRepository(db.DB)
	locationRepo := persistence.NewGormLocationRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)

	inventoryService := inventoryapp.NewInventoryService(itemRepo, txRepo, locationRepo, supplierRepo,
		persistence.NewGormTransactionScope(db.DB), inventoryapp.DefaultServiceConfig())
	inventoryService.SetIdempotencyStore(cache.NewInMemoryIdempotencyStore())
	locationService := locationapp.NewLocationService(locationRepo, itemRepo, location.DefaultHierarchyConfig())
	supplierService := partnerapp.NewSupplierService(supplierRepo)

	f := &apiFixture{t: t, db: db, actorID: uuid.New()}
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.GET("/health", NewHealthHandler(db, "test").Health)

	api := engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		role := c.GetHeader(testRoleHeader)
		if role == "" {
			role = "MANAGER"
		}
		c.Set(middleware.JWTActorIDKey, f.actorID.String())
		c.Set(middleware.JWTActorRoleKey, role)
		c.Next()
	})

	items := NewItemHandler(inventoryService)
	api.POST("/items", items.Create)
	api.GET("/items", items.ListByLocation)
	api.GET("/items/by-barcode/:code", items.GetByBarcode)
	api.GET("/items/:id", items.GetByID)
	api.PUT("/items/:id", items.Update)
	api.POST("/items/:id/adjust", items.Adjust)
	api.POST("/items/:id/deactivate", items.Deactivate)
	api.POST("/items/:id/reserve", items.Reserve)
	api.POST("/items/:id/release", items.Release)
	api.GET("/items/:id/reorder-point", items.ReorderPoint)

	txs := NewTransactionHandler(inventoryService)
	api.POST("/transactions", txs.Record)
	api.GET("/transactions", txs.List)
	api.POST("/transactions/validate", txs.Validate)
	api.POST("/transactions/bulk", txs.Bulk)
	api.GET("/transactions/by-number/:number", txs.GetByNumber)
	api.GET("/transactions/:id", txs.GetByID)
	api.PUT("/transactions/:id", txs.Modify)
	api.POST("/transactions/:id/approve", txs.Approve)
	api.POST("/transactions/:id/process", txs.Process)
	api.POST("/transactions/:id/cancel", txs.Cancel)
	api.POST("/transactions/:id/retry", txs.Retry)

	locations := NewLocationHandler(locationService, inventoryService)
	api.POST("/locations", locations.Create)
	api.GET("/locations/tree", locations.Tree)
	api.POST("/locations/validate-parent", locations.ValidateParent)
	api.GET("/locations/:id", locations.GetByID)
	api.PUT("/locations/:id", locations.Update)
	api.DELETE("/locations/:id", locations.Delete)
	api.PUT("/locations/:id/parent", locations.Move)
	api.GET("/locations/:id/ancestors", locations.Ancestors)
	api.GET("/locations/:id/descendants", locations.Descendants)
	api.GET("/locations/:id/capacity", locations.Capacity)
	api.GET("/locations/:id/items", locations.Items)

	suppliers := NewSupplierHandler(supplierService)
	api.POST("/suppliers", suppliers.Create)
	api.GET("/suppliers/by-code/:code", suppliers.GetByCode)
	api.GET("/suppliers/:id", suppliers.GetByID)
	api.PUT("/suppliers/:id", suppliers.Update)
	api.POST("/suppliers/:id/deactivate", suppliers.Deactivate)

	barcodes := NewBarcodeHandler(inventoryapp.NewBarcodeService(nil))
	api.GET("/barcodes/formats", barcodes.Formats)
	api.POST("/barcodes/validate", barcodes.Validate)
	api.POST("/barcodes/suggest", barcodes.Suggest)
	api.POST("/barcodes/scan-quality", barcodes.ScanQuality)

	f.engine = engine
	return f
}

// do sends a request; headers are given as name, value pairs
func (f *apiFixture) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

// decode unmarshals the response envelope, putting Data into out when given
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var envelope struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	if out != nil && len(envelope.Data) > 0 {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return envelope.Response
}

func (f *apiFixture) createLocation(code, locationType string, parent *uuid.UUID) locationapp.LocationResponse {
	f.t.Helper()
	w := f.do(http.MethodPost, "/api/v1/locations", locationapp.CreateLocationRequest{
		Code:             code,
		Name:             code + " area",
		Type:             locationType,
		ParentLocationID: parent,
	})
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	var loc locationapp.LocationResponse
	decode(f.t, w, &loc)
	return loc
}

func (f *apiFixture) createItem(partNumber, barcode string, locationID uuid.UUID) (inventoryapp.ItemResponse, string) {
	f.t.Helper()
	w := f.do(http.MethodPost, "/api/v1/items", map[string]any{
		"part_number":   partNumber,
		"barcode":       barcode,
		"name":          partNumber + " part",
		"minimum_stock": 5,
		"maximum_stock": 500,
		"standard_cost": "2.50",
		"selling_price": "4.00",
		"location_id":   locationID,
	})
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	var item inventoryapp.ItemResponse
	decode(f.t, w, &item)
	return item, w.Header().Get(HeaderETag)
}

// receive records a direct receipt into the item's location
func (f *apiFixture) receive(item inventoryapp.ItemResponse, quantity int64) inventoryapp.TransactionResponse {
	f.t.Helper()
	w := f.do(http.MethodPost, "/api/v1/transactions", map[string]any{
		"type":                    "RECEIPT",
		"inventory_item_id":       item.ID,
		"destination_location_id": item.LocationID,
		"quantity":                quantity,
	})
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	var tx inventoryapp.TransactionResponse
	decode(f.t, w, &tx)
	return tx
}
