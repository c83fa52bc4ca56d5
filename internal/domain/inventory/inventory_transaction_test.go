package inventory

import (
	"testing"
	"time"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func createPendingTransaction(t *testing.T) *InventoryTransaction {
	t.Helper()
	dest := uuid.New()
	tx, err := NewPendingTransaction(TransactionRequest{
		Type:                  TransactionTypeReceipt,
		InventoryItemID:       uuid.New(),
		DestinationLocationID: &dest,
		Quantity:              5,
	}, "REC-20260504-0001", uuid.New(), testNow)
	require.NoError(t, err)
	return tx
}

func TestTransactionStatus_CanTransitionTo(t *testing.T) {
	legal := map[TransactionStatus][]TransactionStatus{
		TransactionStatusPending:    {TransactionStatusApproved, TransactionStatusCancelled},
		TransactionStatusApproved:   {TransactionStatusProcessing, TransactionStatusCancelled},
		TransactionStatusProcessing: {TransactionStatusCompleted, TransactionStatusFailed},
		TransactionStatusFailed:     {TransactionStatusPending},
	}
	all := []TransactionStatus{
		TransactionStatusPending, TransactionStatusApproved, TransactionStatusProcessing,
		TransactionStatusCompleted, TransactionStatusCancelled, TransactionStatusFailed,
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, allowed := range legal[from] {
				if allowed == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestNewPendingTransaction(t *testing.T) {
	t.Run("starts pending", func(t *testing.T) {
		tx := createPendingTransaction(t)
		assert.Equal(t, TransactionStatusPending, tx.Status)
		assert.Equal(t, testNow, tx.InitiatedAt)
		assert.Nil(t, tx.ApprovedAt)
		require.Len(t, tx.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeTransactionRecorded, tx.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewPendingTransaction(TransactionRequest{Type: "SCRAP", InventoryItemID: uuid.New()}, "X-1", uuid.New(), testNow)
		assert.True(t, shared.HasCode(err, CodeInvalidTransactionType))
	})

	t.Run("direct path is completed immediately", func(t *testing.T) {
		actor := uuid.New()
		tx, err := NewCompletedTransaction(TransactionRequest{
			Type: TransactionTypeIssue, InventoryItemID: uuid.New(), Quantity: 1,
		}, "ISS-20260504-0001", actor, testNow)
		require.NoError(t, err)
		assert.Equal(t, TransactionStatusCompleted, tx.Status)
		require.NotNil(t, tx.ProcessedBy)
		assert.Equal(t, actor, *tx.ProcessedBy)
	})
}

func TestInventoryTransaction_Workflow(t *testing.T) {
	actor := uuid.New()

	t.Run("approve, process, complete", func(t *testing.T) {
		tx := createPendingTransaction(t)
		require.NoError(t, tx.Approve(actor, testNow.Add(time.Minute)))
		assert.Equal(t, TransactionStatusApproved, tx.Status)
		require.NotNil(t, tx.ApprovedBy)
		assert.Equal(t, actor, *tx.ApprovedBy)

		require.NoError(t, tx.StartProcessing(testNow.Add(2*time.Minute)))
		require.NoError(t, tx.Complete(actor, testNow.Add(2*time.Minute)))
		assert.Equal(t, TransactionStatusCompleted, tx.Status)
		require.NotNil(t, tx.ProcessedAt)
	})

	t.Run("processing a pending transaction is rejected", func(t *testing.T) {
		tx := createPendingTransaction(t)
		err := tx.StartProcessing(testNow)
		assert.True(t, shared.HasCode(err, CodeInvalidStateTransition))
		assert.Equal(t, TransactionStatusPending, tx.Status)
	})

	t.Run("approve twice is rejected", func(t *testing.T) {
		tx := createPendingTransaction(t)
		require.NoError(t, tx.Approve(actor, testNow))
		assert.True(t, shared.HasCode(tx.Approve(actor, testNow), CodeInvalidStateTransition))
	})

	t.Run("cancel appends the reason", func(t *testing.T) {
		tx := createPendingTransaction(t)
		require.NoError(t, tx.Cancel("supplier short-shipped", actor, testNow))
		assert.Equal(t, TransactionStatusCancelled, tx.Status)
		assert.Contains(t, tx.Notes, "supplier short-shipped")
	})

	t.Run("cancel on completed or cancelled fails", func(t *testing.T) {
		done, err := NewCompletedTransaction(TransactionRequest{
			Type: TransactionTypeReceipt, InventoryItemID: uuid.New(), Quantity: 1,
		}, "REC-20260504-0009", actor, testNow)
		require.NoError(t, err)
		assert.True(t, shared.HasCode(done.Cancel("late", actor, testNow), CodeInvalidStateTransition))

		tx := createPendingTransaction(t)
		require.NoError(t, tx.Cancel("", actor, testNow))
		assert.True(t, shared.HasCode(tx.Cancel("again", actor, testNow), CodeInvalidStateTransition))
	})

	t.Run("fail then retry returns to pending", func(t *testing.T) {
		tx := createPendingTransaction(t)
		require.NoError(t, tx.Approve(actor, testNow))
		require.NoError(t, tx.StartProcessing(testNow))
		require.NoError(t, tx.Fail("insufficient stock", testNow))
		assert.Equal(t, TransactionStatusFailed, tx.Status)
		assert.Contains(t, tx.Notes, "insufficient stock")

		require.NoError(t, tx.Retry(testNow))
		assert.Equal(t, TransactionStatusPending, tx.Status)
		assert.Nil(t, tx.ApprovedBy)
	})

	t.Run("version and timestamp move on every change", func(t *testing.T) {
		tx := createPendingTransaction(t)
		v, updated := tx.Version, tx.UpdatedAt
		require.NoError(t, tx.Approve(actor, testNow))
		assert.Equal(t, v+1, tx.Version)
		assert.True(t, tx.UpdatedAt.After(updated))
	})
}

func TestInventoryTransaction_Modify(t *testing.T) {
	qty := int64(9)
	cost := decimal.NewFromInt(3)

	t.Run("pending transactions can be edited", func(t *testing.T) {
		tx := createPendingTransaction(t)
		require.NoError(t, tx.Modify(TransactionChanges{Quantity: &qty, UnitCost: &cost}, testNow))
		assert.Equal(t, int64(9), tx.Quantity)
		assert.True(t, tx.Value().Equal(decimal.NewFromInt(27)))
	})

	t.Run("processing and completed are locked", func(t *testing.T) {
		tx := createPendingTransaction(t)
		require.NoError(t, tx.Approve(uuid.New(), testNow))
		require.NoError(t, tx.StartProcessing(testNow))
		assert.True(t, shared.HasCode(tx.Modify(TransactionChanges{Quantity: &qty}, testNow), CodeTransactionLocked))

		require.NoError(t, tx.Complete(uuid.New(), testNow))
		assert.True(t, shared.HasCode(tx.Modify(TransactionChanges{Quantity: &qty}, testNow), CodeTransactionLocked))
	})

	t.Run("notes can always be annotated", func(t *testing.T) {
		tx := createPendingTransaction(t)
		tx.Status = TransactionStatusCompleted
		tx.AppendNote("audited", testNow)
		assert.Contains(t, tx.Notes, "audited")
	})
}
