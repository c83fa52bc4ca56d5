package inventory

import (
	"context"
	"testing"

	"github.com/erp/inventory/internal/domain/location"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rulesFixture struct {
	items     map[uuid.UUID]*InventoryItem
	locations map[uuid.UUID]*location.Location
}

func (f *rulesFixture) FindByID(_ context.Context, id uuid.UUID) (*InventoryItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

type fixtureLocations struct{ f *rulesFixture }

func (l fixtureLocations) FindByID(_ context.Context, id uuid.UUID) (*location.Location, error) {
	loc, ok := l.f.locations[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *loc
	return &cp, nil
}

func newRulesFixture(t *testing.T) (*rulesFixture, *TransactionRules) {
	t.Helper()
	f := &rulesFixture{
		items:     make(map[uuid.UUID]*InventoryItem),
		locations: make(map[uuid.UUID]*location.Location),
	}
	return f, NewTransactionRules(f, fixtureLocations{f}, DefaultRulesConfig())
}

func (f *rulesFixture) addLocation(t *testing.T, code string, typ location.LocationType) uuid.UUID {
	t.Helper()
	loc, err := location.NewLocation(code, code, typ)
	require.NoError(t, err)
	f.locations[loc.ID] = loc
	return loc.ID
}

func (f *rulesFixture) addItem(t *testing.T, at uuid.UUID, current, reserved int64) uuid.UUID {
	t.Helper()
	item, err := NewInventoryItem(NewItemInput{
		PartNumber: "PN-" + uuid.NewString()[:8],
		Name:       "Widget",
		LocationID: at,
	}, testNow)
	require.NoError(t, err)
	item.CurrentStock = current
	item.ReservedStock = reserved
	f.items[item.ID] = item
	return item.ID
}

func TestTransactionRules_Receipt(t *testing.T) {
	ctx := context.Background()
	f, rules := newRulesFixture(t)
	wh := f.addLocation(t, "WH", location.LocationTypeWarehouse)
	transit := f.addLocation(t, "TR", location.LocationTypeTransit)
	item := f.addItem(t, wh, 0, 0)

	tests := []struct {
		name    string
		req     TransactionRequest
		wantErr string
	}{
		{"valid", TransactionRequest{InventoryItemID: item, DestinationLocationID: &wh, Quantity: 10}, ""},
		{"upper bound inclusive", TransactionRequest{InventoryItemID: item, DestinationLocationID: &wh, Quantity: 1_000_000}, ""},
		{"zero quantity", TransactionRequest{InventoryItemID: item, DestinationLocationID: &wh, Quantity: 0}, CodeInvalidQuantity},
		{"over limit", TransactionRequest{InventoryItemID: item, DestinationLocationID: &wh, Quantity: 1_000_001}, CodeQuantityExceedsLimit},
		{"missing item", TransactionRequest{InventoryItemID: uuid.New(), DestinationLocationID: &wh, Quantity: 1}, shared.CodeNotFound},
		{"missing destination", TransactionRequest{InventoryItemID: item, Quantity: 1}, CodeLocationRequired},
		{"unknown destination", TransactionRequest{InventoryItemID: item, DestinationLocationID: ptr(uuid.New()), Quantity: 1}, shared.CodeNotFound},
		{"transit cannot receive", TransactionRequest{InventoryItemID: item, DestinationLocationID: &transit, Quantity: 1}, CodeLocationCannotReceive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Type = TransactionTypeReceipt
			err := rules.ValidateReceipt(ctx, tt.req)
			assertCode(t, tt.wantErr, err)
		})
	}
}

func TestTransactionRules_IssueAndTransfer(t *testing.T) {
	ctx := context.Background()
	f, rules := newRulesFixture(t)
	wh := f.addLocation(t, "WH", location.LocationTypeWarehouse)
	floor := f.addLocation(t, "FL", location.LocationTypeProductionFloor)
	quarantine := f.addLocation(t, "QA", location.LocationTypeQuarantine)
	item := f.addItem(t, wh, 10, 4) // available 6

	t.Run("issue within available stock", func(t *testing.T) {
		err := rules.ValidateIssue(ctx, TransactionRequest{Type: TransactionTypeIssue, InventoryItemID: item, SourceLocationID: &wh, Quantity: 6})
		assert.NoError(t, err)
	})

	t.Run("issue above available stock", func(t *testing.T) {
		err := rules.ValidateIssue(ctx, TransactionRequest{Type: TransactionTypeIssue, InventoryItemID: item, SourceLocationID: &wh, Quantity: 7})
		assertCode(t, shared.CodeInsufficientStock, err)
	})

	t.Run("issue needs a source", func(t *testing.T) {
		err := rules.ValidateIssue(ctx, TransactionRequest{Type: TransactionTypeIssue, InventoryItemID: item, Quantity: 1})
		assertCode(t, CodeLocationRequired, err)
	})

	t.Run("transfer to same location", func(t *testing.T) {
		err := rules.ValidateTransfer(ctx, TransactionRequest{Type: TransactionTypeTransfer, InventoryItemID: item, SourceLocationID: &wh, DestinationLocationID: &wh, Quantity: 1})
		assertCode(t, CodeSameLocation, err)
	})

	t.Run("transfer above available stock", func(t *testing.T) {
		err := rules.ValidateTransfer(ctx, TransactionRequest{Type: TransactionTypeTransfer, InventoryItemID: item, SourceLocationID: &wh, DestinationLocationID: &floor, Quantity: 7})
		assertCode(t, shared.CodeInsufficientStock, err)
	})

	t.Run("transfer into quarantine", func(t *testing.T) {
		err := rules.ValidateTransfer(ctx, TransactionRequest{Type: TransactionTypeTransfer, InventoryItemID: item, SourceLocationID: &wh, DestinationLocationID: &quarantine, Quantity: 1})
		assertCode(t, CodeLocationCannotReceive, err)
	})

	t.Run("valid transfer", func(t *testing.T) {
		err := rules.ValidateTransfer(ctx, TransactionRequest{Type: TransactionTypeTransfer, InventoryItemID: item, SourceLocationID: &wh, DestinationLocationID: &floor, Quantity: 6})
		assert.NoError(t, err)
	})

	t.Run("inactive items are rejected", func(t *testing.T) {
		f.items[item].IsActive = false
		defer func() { f.items[item].IsActive = true }()
		err := rules.ValidateIssue(ctx, TransactionRequest{Type: TransactionTypeIssue, InventoryItemID: item, SourceLocationID: &wh, Quantity: 1})
		assertCode(t, CodeItemInactive, err)
	})
}

func TestTransactionRules_Adjustment(t *testing.T) {
	ctx := context.Background()
	f, rules := newRulesFixture(t)
	wh := f.addLocation(t, "WH", location.LocationTypeWarehouse)
	item := f.addItem(t, wh, 10, 0)

	adjust := func(qty int64) TransactionRequest {
		return TransactionRequest{Type: TransactionTypeAdjustment, InventoryItemID: item, SourceLocationID: &wh, Quantity: qty, Reason: "recount"}
	}

	assert.NoError(t, rules.ValidateAdjustment(ctx, adjust(-5)))
	assertCode(t, CodeWouldGoNegative, rules.ValidateAdjustment(ctx, adjust(-11)))
	assert.NoError(t, rules.ValidateAdjustment(ctx, adjust(25)), "positive adjustments use the positive ceiling")
	assert.NoError(t, rules.ValidateAdjustment(ctx, adjust(10_000)))
	assertCode(t, CodeUnreasonableAdjustment, rules.ValidateAdjustment(ctx, adjust(10_001)))

	t.Run("bulk path has its own ceiling", func(t *testing.T) {
		_, err := rules.EvaluateBulk(ctx, adjust(10_001))
		assert.NoError(t, err)
		_, err = rules.EvaluateBulk(ctx, adjust(1_000_001))
		assertCode(t, CodeUnreasonableAdjustment, err)
	})

	t.Run("reason is required", func(t *testing.T) {
		req := adjust(1)
		req.Reason = "  "
		assertCode(t, CodeReasonRequired, rules.ValidateAdjustment(ctx, req))
	})

	t.Run("falls back to the item location", func(t *testing.T) {
		req := adjust(1)
		req.SourceLocationID = nil
		assert.NoError(t, rules.ValidateAdjustment(ctx, req))
	})

	t.Run("negative adjustment is checked against available stock", func(t *testing.T) {
		reserved := f.addItem(t, wh, 10, 8)
		req := adjust(-3)
		req.InventoryItemID = reserved
		assertCode(t, CodeWouldGoNegative, rules.ValidateAdjustment(ctx, req))
	})
}

func TestTransactionRules_Evaluate(t *testing.T) {
	ctx := context.Background()
	f, rules := newRulesFixture(t)
	wh := f.addLocation(t, "WH", location.LocationTypeWarehouse)
	item := f.addItem(t, wh, 10, 0)

	snapshot, err := rules.Evaluate(ctx, TransactionRequest{Type: TransactionTypeCycleCount, InventoryItemID: item, Quantity: 8})
	require.NoError(t, err)
	assert.Equal(t, int64(10), snapshot.CurrentStock)

	_, err = rules.Evaluate(ctx, TransactionRequest{Type: TransactionTypeCycleCount, InventoryItemID: item, Quantity: -1})
	assertCode(t, CodeInvalidQuantity, err)

	_, err = rules.Evaluate(ctx, TransactionRequest{Type: TransactionTypeReturn, InventoryItemID: item, Quantity: 2})
	assert.NoError(t, err)

	_, err = rules.Evaluate(ctx, TransactionRequest{Type: "SCRAP", InventoryItemID: item, Quantity: 2})
	assertCode(t, CodeInvalidTransactionType, err)
}

func TestTransactionRules_ValidateBatch(t *testing.T) {
	_, rules := newRulesFixture(t)
	src, dst := uuid.New(), uuid.New()

	t.Run("101 entries are rejected outright", func(t *testing.T) {
		batch := make([]TransactionRequest, 101)
		for i := range batch {
			batch[i] = TransactionRequest{InventoryItemID: uuid.New(), Quantity: 1}
		}
		assertCode(t, CodeBatchTooLarge, rules.ValidateBatch(batch))
	})

	t.Run("100 distinct entries pass", func(t *testing.T) {
		batch := make([]TransactionRequest, 100)
		for i := range batch {
			batch[i] = TransactionRequest{InventoryItemID: uuid.New(), Quantity: 1}
		}
		assert.NoError(t, rules.ValidateBatch(batch))
	})

	t.Run("duplicate triple", func(t *testing.T) {
		item := uuid.New()
		batch := []TransactionRequest{
			{InventoryItemID: item, SourceLocationID: &src, DestinationLocationID: &dst, Quantity: 1},
			{InventoryItemID: item, SourceLocationID: &src, Quantity: 1},
			{InventoryItemID: item, SourceLocationID: ptr(src), DestinationLocationID: ptr(dst), Quantity: 2},
		}
		err := rules.ValidateBatch(batch)
		assertCode(t, CodeDuplicateInBatch, err)
		assert.Contains(t, err.Error(), "1 and 3")
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		batch := []TransactionRequest{{InventoryItemID: uuid.New(), Quantity: 1}, {InventoryItemID: uuid.New(), Quantity: 0}}
		assertCode(t, CodeInvalidQuantity, rules.ValidateBatch(batch))
	})
}

func TestTransactionRules_CheckApprovalLimit(t *testing.T) {
	_, rules := newRulesFixture(t)
	cost := decimal.RequireFromString("12.50")

	assert.NoError(t, rules.CheckApprovalLimit(RoleClerk, cost, 80)) // 1000.00
	assertCode(t, CodeExceedsApprovalLimit, rules.CheckApprovalLimit(RoleClerk, cost, 81))
	assert.NoError(t, rules.CheckApprovalLimit(RoleManager, cost, 800)) // 10000.00
	assertCode(t, CodeExceedsApprovalLimit, rules.CheckApprovalLimit(RoleManager, cost, 801))
	assert.NoError(t, rules.CheckApprovalLimit(RoleAdmin, cost, 8000))
	assert.NoError(t, rules.CheckApprovalLimit("admin", cost, -8000), "negative adjustments use their magnitude")
	assertCode(t, CodeUnknownRole, rules.CheckApprovalLimit("AUDITOR", cost, 1))
}

func assertCode(t *testing.T, want string, err error) {
	t.Helper()
	if want == "" {
		assert.NoError(t, err)
		return
	}
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, want), "want %s, got %v", want, err)
}

func ptr[T any](v T) *T {
	return &v
}
