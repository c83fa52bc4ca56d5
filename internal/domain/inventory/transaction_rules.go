package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/inventory/internal/domain/location"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Rule violation codes
const (
	CodeInvalidQuantity        = "INVALID_QUANTITY"
	CodeQuantityExceedsLimit   = "QUANTITY_EXCEEDS_LIMIT"
	CodeInvalidTransactionType = "INVALID_TRANSACTION_TYPE"
	CodeLocationRequired       = "LOCATION_REQUIRED"
	CodeLocationCannotReceive  = "LOCATION_CANNOT_RECEIVE"
	CodeSameLocation           = "SAME_LOCATION"
	CodeReasonRequired         = "REASON_REQUIRED"
	CodeWouldGoNegative        = "WOULD_GO_NEGATIVE"
	CodeUnreasonableAdjustment = "UNREASONABLE_ADJUSTMENT"
	CodeItemInactive           = "ITEM_INACTIVE"
	CodeBatchTooLarge          = "BATCH_TOO_LARGE"
	CodeDuplicateInBatch       = "DUPLICATE_IN_BATCH"
	CodeExceedsApprovalLimit   = "EXCEEDS_APPROVAL_LIMIT"
	CodeUnknownRole            = "UNKNOWN_ROLE"
)

// ApprovalRole is the acting user's role for approval ceilings
type ApprovalRole string

const (
	RoleClerk   ApprovalRole = "CLERK"
	RoleManager ApprovalRole = "MANAGER"
	RoleAdmin   ApprovalRole = "ADMIN"
)

// RulesConfig holds the limits TransactionRules enforces
type RulesConfig struct {
	// MaxReceiptQuantity caps a single receipt
	MaxReceiptQuantity int64
	// AdjustmentCeiling caps a positive adjustment recorded one at a time
	AdjustmentCeiling int64
	// BulkAdjustmentCeiling caps a positive adjustment inside a bulk submission
	BulkAdjustmentCeiling int64
	// MaxBatchSize caps a bulk submission
	MaxBatchSize int
	// ApprovalLimits is the monetary ceiling per role
	ApprovalLimits map[ApprovalRole]decimal.Decimal
}

// DefaultRulesConfig returns the standard limits
func DefaultRulesConfig() RulesConfig {
	return RulesConfig{
		MaxReceiptQuantity:    1_000_000,
		AdjustmentCeiling:     10_000,
		BulkAdjustmentCeiling: 1_000_000,
		MaxBatchSize:          100,
		ApprovalLimits: map[ApprovalRole]decimal.Decimal{
			RoleClerk:   decimal.NewFromInt(1_000),
			RoleManager: decimal.NewFromInt(10_000),
			RoleAdmin:   decimal.NewFromInt(100_000),
		},
	}
}

// TransactionRequest is a proposed stock movement
type TransactionRequest struct {
	Type                  TransactionType
	InventoryItemID       uuid.UUID
	SourceLocationID      *uuid.UUID
	DestinationLocationID *uuid.UUID
	Quantity              int64
	UnitCost              *decimal.Decimal
	Reason                string
	ReferenceNumber       string
	Notes                 string
}

// ItemReader looks items up by ID; missing items yield shared.ErrNotFound
type ItemReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)
}

// LocationFinder looks locations up by ID; missing locations yield shared.ErrNotFound
type LocationFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*location.Location, error)
}

// TransactionRules validates proposed transactions against current item and location state.
// Validation only reads; it never writes.
type TransactionRules struct {
	items     ItemReader
	locations LocationFinder
	config    RulesConfig
}

// NewTransactionRules creates TransactionRules. The approval table is copied.
func NewTransactionRules(items ItemReader, locations LocationFinder, config RulesConfig) *TransactionRules {
	limits := make(map[ApprovalRole]decimal.Decimal, len(config.ApprovalLimits))
	for role, limit := range config.ApprovalLimits {
		limits[role] = limit
	}
	config.ApprovalLimits = limits
	return &TransactionRules{
		items:     items,
		locations: locations,
		config:    config,
	}
}

// Config returns the configured limits
func (r *TransactionRules) Config() RulesConfig {
	return r.config
}

// ValidateReceipt validates a receipt
func (r *TransactionRules) ValidateReceipt(ctx context.Context, req TransactionRequest) error {
	_, err := r.receipt(ctx, req)
	return err
}

// ValidateIssue validates an issue
func (r *TransactionRules) ValidateIssue(ctx context.Context, req TransactionRequest) error {
	_, err := r.issue(ctx, req)
	return err
}

// ValidateTransfer validates a transfer
func (r *TransactionRules) ValidateTransfer(ctx context.Context, req TransactionRequest) error {
	_, err := r.transfer(ctx, req)
	return err
}

// ValidateAdjustment validates an adjustment against the single-entry ceiling
func (r *TransactionRules) ValidateAdjustment(ctx context.Context, req TransactionRequest) error {
	_, err := r.adjustment(ctx, req, r.config.AdjustmentCeiling)
	return err
}

// Evaluate validates req according to its type and returns the item snapshot it was checked against
func (r *TransactionRules) Evaluate(ctx context.Context, req TransactionRequest) (*InventoryItem, error) {
	return r.evaluate(ctx, req, r.config.AdjustmentCeiling)
}

// EvaluateBulk is Evaluate with the bulk adjustment ceiling
func (r *TransactionRules) EvaluateBulk(ctx context.Context, req TransactionRequest) (*InventoryItem, error) {
	return r.evaluate(ctx, req, r.config.BulkAdjustmentCeiling)
}

func (r *TransactionRules) evaluate(ctx context.Context, req TransactionRequest, adjustmentCeiling int64) (*InventoryItem, error) {
	switch req.Type {
	case TransactionTypeReceipt:
		return r.receipt(ctx, req)
	case TransactionTypeIssue:
		return r.issue(ctx, req)
	case TransactionTypeTransfer:
		return r.transfer(ctx, req)
	case TransactionTypeAdjustment:
		return r.adjustment(ctx, req, adjustmentCeiling)
	case TransactionTypeCycleCount:
		return r.cycleCount(ctx, req)
	case TransactionTypeReturn:
		return r.returned(ctx, req)
	default:
		return nil, invalidTransactionType(req.Type)
	}
}

func invalidTransactionType(t TransactionType) error {
	valid := AllTransactionTypes()
	names := make([]string, len(valid))
	for i, v := range valid {
		names[i] = string(v)
	}
	return shared.NewDomainError(CodeInvalidTransactionType,
		fmt.Sprintf("Invalid transaction type %q, expected one of %s", t, strings.Join(names, ", ")))
}

func (r *TransactionRules) receipt(ctx context.Context, req TransactionRequest) (*InventoryItem, error) {
	if err := requirePositive(req.Quantity); err != nil {
		return nil, err
	}
	if req.Quantity > r.config.MaxReceiptQuantity {
		return nil, shared.NewDomainError(CodeQuantityExceedsLimit,
			fmt.Sprintf("Receipt quantity cannot exceed %d", r.config.MaxReceiptQuantity))
	}
	item, err := r.loadItem(ctx, req.InventoryItemID)
	if err != nil {
		return nil, err
	}
	if _, err := r.receivingLocation(ctx, req.DestinationLocationID, "Destination"); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *TransactionRules) issue(ctx context.Context, req TransactionRequest) (*InventoryItem, error) {
	if err := requirePositive(req.Quantity); err != nil {
		return nil, err
	}
	item, err := r.loadItem(ctx, req.InventoryItemID)
	if err != nil {
		return nil, err
	}
	if _, err := r.loadLocation(ctx, req.SourceLocationID, "Source"); err != nil {
		return nil, err
	}
	if err := requireAvailable(item, req.Quantity); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *TransactionRules) transfer(ctx context.Context, req TransactionRequest) (*InventoryItem, error) {
	if err := requirePositive(req.Quantity); err != nil {
		return nil, err
	}
	if req.SourceLocationID != nil && req.DestinationLocationID != nil &&
		*req.SourceLocationID == *req.DestinationLocationID {
		return nil, shared.NewDomainError(CodeSameLocation, "Source and destination locations must differ")
	}
	item, err := r.loadItem(ctx, req.InventoryItemID)
	if err != nil {
		return nil, err
	}
	if _, err := r.loadLocation(ctx, req.SourceLocationID, "Source"); err != nil {
		return nil, err
	}
	destination, err := r.loadLocation(ctx, req.DestinationLocationID, "Destination")
	if err != nil {
		return nil, err
	}
	if err := requireAvailable(item, req.Quantity); err != nil {
		return nil, err
	}
	if !destination.Type.CanReceive() {
		return nil, cannotReceive(destination)
	}
	return item, nil
}

func (r *TransactionRules) adjustment(ctx context.Context, req TransactionRequest, ceiling int64) (*InventoryItem, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, shared.NewDomainError(CodeReasonRequired, "A reason is required for stock adjustments")
	}
	if req.Quantity == 0 {
		return nil, shared.NewDomainError(CodeInvalidQuantity, "Adjustment quantity cannot be zero")
	}
	item, err := r.loadItem(ctx, req.InventoryItemID)
	if err != nil {
		return nil, err
	}
	if _, err := r.loadLocation(ctx, firstID(req.SourceLocationID, req.DestinationLocationID, &item.LocationID), "Adjustment"); err != nil {
		return nil, err
	}

	if req.Quantity < 0 {
		magnitude := -req.Quantity
		if AvailableStock(item) < magnitude {
			return nil, shared.NewDomainError(CodeWouldGoNegative,
				fmt.Sprintf("Adjustment of %d would take available stock (%d) below zero", req.Quantity, AvailableStock(item)))
		}
		if item.CurrentStock > 0 && magnitude > item.CurrentStock*2 {
			return nil, shared.NewDomainError(CodeUnreasonableAdjustment,
				fmt.Sprintf("Adjustment of %d is more than twice the current stock of %d", req.Quantity, item.CurrentStock))
		}
		return item, nil
	}

	if req.Quantity > ceiling {
		return nil, shared.NewDomainError(CodeUnreasonableAdjustment,
			fmt.Sprintf("Positive adjustment cannot exceed %d units", ceiling))
	}
	return item, nil
}

func (r *TransactionRules) cycleCount(ctx context.Context, req TransactionRequest) (*InventoryItem, error) {
	if req.Quantity < 0 {
		return nil, shared.NewDomainError(CodeInvalidQuantity, "Counted quantity cannot be negative")
	}
	item, err := r.loadItem(ctx, req.InventoryItemID)
	if err != nil {
		return nil, err
	}
	if _, err := r.loadLocation(ctx, firstID(req.SourceLocationID, req.DestinationLocationID, &item.LocationID), "Count"); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *TransactionRules) returned(ctx context.Context, req TransactionRequest) (*InventoryItem, error) {
	if err := requirePositive(req.Quantity); err != nil {
		return nil, err
	}
	item, err := r.loadItem(ctx, req.InventoryItemID)
	if err != nil {
		return nil, err
	}
	if _, err := r.receivingLocation(ctx, firstID(req.DestinationLocationID, &item.LocationID), "Destination"); err != nil {
		return nil, err
	}
	return item, nil
}

// ValidateBatch checks the shape of a bulk submission: its size, positive
// quantities, and that no two entries move the same item between the same locations.
func (r *TransactionRules) ValidateBatch(reqs []TransactionRequest) error {
	if len(reqs) > r.config.MaxBatchSize {
		return shared.NewDomainError(CodeBatchTooLarge,
			fmt.Sprintf("A batch may contain at most %d transactions, got %d", r.config.MaxBatchSize, len(reqs)))
	}

	seen := make(map[string]int, len(reqs))
	for i, req := range reqs {
		if req.Quantity <= 0 {
			return shared.NewDomainError(CodeInvalidQuantity,
				fmt.Sprintf("Transaction %d: quantity must be positive", i+1))
		}
		key := batchKey(req)
		if first, dup := seen[key]; dup {
			return shared.NewDomainError(CodeDuplicateInBatch,
				fmt.Sprintf("Transactions %d and %d move the same item between the same locations", first+1, i+1))
		}
		seen[key] = i
	}
	return nil
}

// CheckApprovalLimit compares unitCost * |quantity| against the role's ceiling
func (r *TransactionRules) CheckApprovalLimit(role ApprovalRole, unitCost decimal.Decimal, quantity int64) error {
	limit, ok := r.config.ApprovalLimits[ApprovalRole(strings.ToUpper(string(role)))]
	if !ok {
		return shared.NewDomainError(CodeUnknownRole, fmt.Sprintf("No approval limit configured for role %q", role))
	}
	value := unitCost.Mul(decimal.NewFromInt(abs(quantity)))
	if value.GreaterThan(limit) {
		return shared.NewDomainError(CodeExceedsApprovalLimit,
			fmt.Sprintf("Transaction value %s exceeds the %s approval limit of %s", value.StringFixed(2), role, limit.StringFixed(2)))
	}
	return nil
}

func (r *TransactionRules) loadItem(ctx context.Context, id uuid.UUID) (*InventoryItem, error) {
	item, err := r.items.FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NotFound("Inventory item not found")
		}
		return nil, err
	}
	if !item.IsActive {
		return nil, shared.NewDomainError(CodeItemInactive, fmt.Sprintf("Inventory item %s is inactive", item.PartNumber))
	}
	return item, nil
}

func (r *TransactionRules) loadLocation(ctx context.Context, id *uuid.UUID, role string) (*location.Location, error) {
	if id == nil || *id == uuid.Nil {
		return nil, shared.NewDomainError(CodeLocationRequired, role+" location is required")
	}
	loc, err := r.locations.FindByID(ctx, *id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NotFound(role + " location not found")
		}
		return nil, err
	}
	return loc, nil
}

func (r *TransactionRules) receivingLocation(ctx context.Context, id *uuid.UUID, role string) (*location.Location, error) {
	loc, err := r.loadLocation(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if !loc.Type.CanReceive() {
		return nil, cannotReceive(loc)
	}
	return loc, nil
}

func cannotReceive(loc *location.Location) error {
	return shared.NewDomainError(CodeLocationCannotReceive,
		fmt.Sprintf("Location %s of type %s cannot receive stock", loc.Code, loc.Type))
}

func requirePositive(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError(CodeInvalidQuantity, "Quantity must be positive")
	}
	return nil
}

func requireAvailable(item *InventoryItem, quantity int64) error {
	if available := AvailableStock(item); available < quantity {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Insufficient stock for %s: requested %d, available %d", item.PartNumber, quantity, available))
	}
	return nil
}

func firstID(ids ...*uuid.UUID) *uuid.UUID {
	for _, id := range ids {
		if id != nil && *id != uuid.Nil {
			return id
		}
	}
	return nil
}

func batchKey(req TransactionRequest) string {
	src, dst := "-", "-"
	if req.SourceLocationID != nil {
		src = req.SourceLocationID.String()
	}
	if req.DestinationLocationID != nil {
		dst = req.DestinationLocationID.String()
	}
	return req.InventoryItemID.String() + "|" + src + "|" + dst
}
