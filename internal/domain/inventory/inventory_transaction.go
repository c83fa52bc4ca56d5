package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Error codes raised by the transaction state machine
const (
	CodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	CodeTransactionLocked      = "TRANSACTION_LOCKED"
)

// TransactionType is the closed set of stock movements
type TransactionType string

const (
	TransactionTypeReceipt    TransactionType = "RECEIPT"
	TransactionTypeIssue      TransactionType = "ISSUE"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
	TransactionTypeCycleCount TransactionType = "CYCLE_COUNT"
	TransactionTypeReturn     TransactionType = "RETURN"
)

// AllTransactionTypes returns every transaction type
func AllTransactionTypes() []TransactionType {
	return []TransactionType{
		TransactionTypeReceipt,
		TransactionTypeIssue,
		TransactionTypeTransfer,
		TransactionTypeAdjustment,
		TransactionTypeCycleCount,
		TransactionTypeReturn,
	}
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeReceipt, TransactionTypeIssue, TransactionTypeTransfer,
		TransactionTypeAdjustment, TransactionTypeCycleCount, TransactionTypeReturn:
		return true
	}
	return false
}

// TransactionStatus is the lifecycle state of a transaction
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "PENDING"
	TransactionStatusApproved   TransactionStatus = "APPROVED"
	TransactionStatusProcessing TransactionStatus = "PROCESSING"
	TransactionStatusCompleted  TransactionStatus = "COMPLETED"
	TransactionStatusCancelled  TransactionStatus = "CANCELLED"
	TransactionStatusFailed     TransactionStatus = "FAILED"
)

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// IsValid checks if the status is valid
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusApproved, TransactionStatusProcessing,
		TransactionStatusCompleted, TransactionStatusCancelled, TransactionStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true if no transition leaves the status
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusCancelled
}

// IsActive returns true while the transaction may still move stock
func (s TransactionStatus) IsActive() bool {
	return s == TransactionStatusPending || s == TransactionStatusApproved || s == TransactionStatusProcessing
}

// IsLocked returns true if the transaction fields may no longer be edited
func (s TransactionStatus) IsLocked() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusProcessing
}

// CanTransitionTo checks if the status can transition to the target status
func (s TransactionStatus) CanTransitionTo(target TransactionStatus) bool {
	switch s {
	case TransactionStatusPending:
		return target == TransactionStatusApproved || target == TransactionStatusCancelled
	case TransactionStatusApproved:
		return target == TransactionStatusProcessing || target == TransactionStatusCancelled
	case TransactionStatusProcessing:
		return target == TransactionStatusCompleted || target == TransactionStatusFailed
	case TransactionStatusFailed:
		return target == TransactionStatusPending
	default:
		return false
	}
}

// InventoryTransaction records one stock movement against one item
type InventoryTransaction struct {
	shared.BaseAggregateRoot
	TransactionNumber     string
	Type                  TransactionType
	Status                TransactionStatus
	InventoryItemID       uuid.UUID
	SourceLocationID      *uuid.UUID
	DestinationLocationID *uuid.UUID
	// Quantity is signed for adjustments and the counted total for cycle counts
	Quantity        int64
	UnitCost        *decimal.Decimal
	Reason          string
	ReferenceNumber string
	Notes           string
	InitiatedAt     time.Time
	InitiatedBy     uuid.UUID
	ApprovedAt      *time.Time
	ApprovedBy      *uuid.UUID
	ProcessedAt     *time.Time
	ProcessedBy     *uuid.UUID
}

// NewPendingTransaction creates a workflow-gated transaction awaiting approval
func NewPendingTransaction(req TransactionRequest, number string, actor uuid.UUID, at time.Time) (*InventoryTransaction, error) {
	if !req.Type.IsValid() {
		return nil, invalidTransactionType(req.Type)
	}
	if req.InventoryItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Inventory item ID cannot be empty")
	}
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_NUMBER", "Transaction number is required")
	}

	at = shared.StorageTime(at)
	tx := &InventoryTransaction{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.NewBaseEntityAt(at),
			Version:    1,
		},
		TransactionNumber:     number,
		Type:                  req.Type,
		Status:                TransactionStatusPending,
		InventoryItemID:       req.InventoryItemID,
		SourceLocationID:      copyID(req.SourceLocationID),
		DestinationLocationID: copyID(req.DestinationLocationID),
		Quantity:              req.Quantity,
		UnitCost:              req.UnitCost,
		Reason:                strings.TrimSpace(req.Reason),
		ReferenceNumber:       req.ReferenceNumber,
		Notes:                 req.Notes,
		InitiatedAt:           at,
		InitiatedBy:           actor,
	}
	tx.AddDomainEvent(NewTransactionEvent(EventTypeTransactionRecorded, tx, at))
	return tx, nil
}

// NewCompletedTransaction creates a transaction through the direct recording path.
// It starts and ends in Completed; the caller has already applied the stock change.
func NewCompletedTransaction(req TransactionRequest, number string, actor uuid.UUID, at time.Time) (*InventoryTransaction, error) {
	tx, err := NewPendingTransaction(req, number, actor, at)
	if err != nil {
		return nil, err
	}
	at = tx.InitiatedAt
	tx.Status = TransactionStatusCompleted
	tx.ProcessedAt, tx.ProcessedBy = &at, &actor
	tx.AddDomainEvent(NewTransactionEvent(EventTypeTransactionCompleted, tx, at))
	return tx, nil
}

// Request rebuilds the validation request for this transaction
func (t *InventoryTransaction) Request() TransactionRequest {
	return TransactionRequest{
		Type:                  t.Type,
		InventoryItemID:       t.InventoryItemID,
		SourceLocationID:      copyID(t.SourceLocationID),
		DestinationLocationID: copyID(t.DestinationLocationID),
		Quantity:              t.Quantity,
		UnitCost:              t.UnitCost,
		Reason:                t.Reason,
		ReferenceNumber:       t.ReferenceNumber,
		Notes:                 t.Notes,
	}
}

// Value returns unitCost * |quantity|, or zero without a unit cost
func (t *InventoryTransaction) Value() decimal.Decimal {
	if t.UnitCost == nil {
		return decimal.Zero
	}
	return t.UnitCost.Mul(decimal.NewFromInt(abs(t.Quantity)))
}

// Approve moves a pending transaction to Approved
func (t *InventoryTransaction) Approve(actor uuid.UUID, at time.Time) error {
	if err := t.transitionTo(TransactionStatusApproved); err != nil {
		return err
	}
	approvedAt := shared.StorageTime(at)
	t.ApprovedAt, t.ApprovedBy = &approvedAt, &actor
	t.touch(at)
	t.AddDomainEvent(NewTransactionEvent(EventTypeTransactionApproved, t, at))
	return nil
}

// StartProcessing moves an approved transaction to Processing
func (t *InventoryTransaction) StartProcessing(at time.Time) error {
	if err := t.transitionTo(TransactionStatusProcessing); err != nil {
		return err
	}
	t.touch(at)
	return nil
}

// Complete moves a processing transaction to Completed
func (t *InventoryTransaction) Complete(actor uuid.UUID, at time.Time) error {
	if err := t.transitionTo(TransactionStatusCompleted); err != nil {
		return err
	}
	processedAt := shared.StorageTime(at)
	t.ProcessedAt, t.ProcessedBy = &processedAt, &actor
	t.touch(at)
	t.AddDomainEvent(NewTransactionEvent(EventTypeTransactionCompleted, t, at))
	return nil
}

// Fail moves a processing transaction to Failed and records why
func (t *InventoryTransaction) Fail(reason string, at time.Time) error {
	if err := t.transitionTo(TransactionStatusFailed); err != nil {
		return err
	}
	t.appendNote("Failed: "+reason, at)
	t.touch(at)
	t.AddDomainEvent(NewTransactionEvent(EventTypeTransactionFailed, t, at))
	return nil
}

// Retry puts a failed transaction back into Pending; it needs a fresh approval
func (t *InventoryTransaction) Retry(at time.Time) error {
	if err := t.transitionTo(TransactionStatusPending); err != nil {
		return err
	}
	t.ApprovedAt, t.ApprovedBy = nil, nil
	t.ProcessedAt, t.ProcessedBy = nil, nil
	t.touch(at)
	return nil
}

// Cancel abandons the transaction and appends the reason to its notes
func (t *InventoryTransaction) Cancel(reason string, actor uuid.UUID, at time.Time) error {
	if t.Status.IsTerminal() {
		return shared.NewDomainError(CodeInvalidStateTransition,
			fmt.Sprintf("Cannot cancel a transaction in %s status", t.Status))
	}
	if err := t.transitionTo(TransactionStatusCancelled); err != nil {
		return err
	}
	note := "Cancelled"
	if reason = strings.TrimSpace(reason); reason != "" {
		note += ": " + reason
	}
	t.appendNote(note+" (by "+actor.String()+")", at)
	t.touch(at)
	t.AddDomainEvent(NewTransactionEvent(EventTypeTransactionCancelled, t, at))
	return nil
}

// TransactionChanges lists editable transaction fields; nil fields are left untouched
type TransactionChanges struct {
	Quantity        *int64
	UnitCost        *decimal.Decimal
	Reason          *string
	ReferenceNumber *string
	Notes           *string
}

// Modify edits the transaction while it is not locked
func (t *InventoryTransaction) Modify(changes TransactionChanges, at time.Time) error {
	if t.Status.IsLocked() {
		return shared.NewDomainError(CodeTransactionLocked,
			fmt.Sprintf("Transaction %s cannot be modified in %s status", t.TransactionNumber, t.Status))
	}
	if changes.Quantity != nil {
		t.Quantity = *changes.Quantity
	}
	if changes.UnitCost != nil {
		cost := *changes.UnitCost
		t.UnitCost = &cost
	}
	if changes.Reason != nil {
		t.Reason = strings.TrimSpace(*changes.Reason)
	}
	if changes.ReferenceNumber != nil {
		t.ReferenceNumber = *changes.ReferenceNumber
	}
	if changes.Notes != nil {
		t.Notes = *changes.Notes
	}
	t.touch(at)
	return nil
}

// AppendNote adds an audit annotation; allowed in every status
func (t *InventoryTransaction) AppendNote(note string, at time.Time) {
	t.appendNote(note, at)
	t.touch(at)
}

func (t *InventoryTransaction) appendNote(note string, at time.Time) {
	line := fmt.Sprintf("[%s] %s", shared.StorageTime(at).Format(time.RFC3339), note)
	if t.Notes == "" {
		t.Notes = line
		return
	}
	t.Notes += "\n" + line
}

func (t *InventoryTransaction) transitionTo(target TransactionStatus) error {
	if !t.Status.CanTransitionTo(target) {
		return shared.NewDomainError(CodeInvalidStateTransition,
			fmt.Sprintf("Cannot transition transaction from %s to %s", t.Status, target))
	}
	t.Status = target
	return nil
}

func (t *InventoryTransaction) touch(at time.Time) {
	t.Touch(at)
	t.IncrementVersion()
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
