package inventory

import (
	"context"
	"fmt"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Processing outcomes reported to metrics
const (
	outcomeCompleted = "completed"
	outcomeFailed    = "failed"
	outcomeConflict  = "conflict"
	outcomeError     = "error"
)

// ValidateReceipt validates a receipt without writing anything
func (s *InventoryService) ValidateReceipt(ctx context.Context, req TransactionRequest) error {
	return s.rules(s.items).ValidateReceipt(ctx, req.ToDomain())
}

// ValidateIssue validates an issue without writing anything
func (s *InventoryService) ValidateIssue(ctx context.Context, req TransactionRequest) error {
	return s.rules(s.items).ValidateIssue(ctx, req.ToDomain())
}

// ValidateTransfer validates a transfer without writing anything
func (s *InventoryService) ValidateTransfer(ctx context.Context, req TransactionRequest) error {
	return s.rules(s.items).ValidateTransfer(ctx, req.ToDomain())
}

// ValidateAdjustment validates an adjustment without writing anything
func (s *InventoryService) ValidateAdjustment(ctx context.Context, req TransactionRequest) error {
	return s.rules(s.items).ValidateAdjustment(ctx, req.ToDomain())
}

// ValidateTransaction dispatches on the request type
func (s *InventoryService) ValidateTransaction(ctx context.Context, req TransactionRequest) error {
	_, err := s.rules(s.items).Evaluate(ctx, req.ToDomain())
	return err
}

// RecordTransaction validates and records a transaction.
// In direct mode the stock change is written with a compare-tag-and-write and the
// transaction is stored as Completed; in workflow mode it is stored as Pending.
func (s *InventoryService) RecordTransaction(ctx context.Context, req RecordTransactionRequest, actor Actor) (*TransactionResponse, error) {
	mode := req.Mode
	if mode == "" {
		mode = RecordModeDirect
	}
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "record_transaction",
		telemetry.SpanAttrItemID, req.InventoryItemID.String(),
		telemetry.SpanAttrTransactionType, req.Type,
		telemetry.SpanAttrQuantity, req.Quantity,
	)
	defer span.End()

	if !mode.IsValid() {
		err := shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown record mode: %s", mode))
		telemetry.RecordError(span, err)
		return nil, err
	}

	domainReq := req.ToDomain()
	var (
		tx   *inventory.InventoryTransaction
		item *inventory.InventoryItem
	)
	number, err := s.GenerateTransactionNumber(ctx, domainReq.Type)
	if err == nil {
		err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			if mode == RecordModeDirect {
				tx, item, err = s.applyDirect(ctx, repos, domainReq, number, actor, req.IfMatch, false)
				return err
			}
			tx, err = s.recordPending(ctx, repos, domainReq, number, actor)
			return err
		})
	}
	if err != nil {
		telemetry.RecordError(span, err)
		s.observeFailure(ctx, "record_transaction", err,
			zap.String("inventory_item_id", req.InventoryItemID.String()),
			zap.String("type", req.Type),
		)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTransactionID, tx.ID.String(),
		telemetry.SpanAttrTransactionNumber, tx.TransactionNumber,
	)
	s.metrics.RecordTransaction(ctx, string(tx.Type), string(mode))
	s.publishDomainEvents(ctx, tx, item)

	s.logger.Info("transaction recorded",
		zap.String("transaction_number", tx.TransactionNumber),
		zap.String("status", string(tx.Status)),
		zap.String("mode", string(mode)),
	)
	response := ToTransactionResponse(tx)
	return &response, nil
}

// applyDirect evaluates req, writes the stock change guarded by the item's tag and
// records a Completed transaction numbered number, all against the scoped repositories
func (s *InventoryService) applyDirect(
	ctx context.Context,
	repos TransactionalRepositories,
	req inventory.TransactionRequest,
	number string,
	actor Actor,
	suppliedTag string,
	bulk bool,
) (*inventory.InventoryTransaction, *inventory.InventoryItem, error) {
	rules := s.rules(repos.ItemRepo())
	evaluate := rules.Evaluate
	if bulk {
		evaluate = rules.EvaluateBulk
	}
	item, err := evaluate(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	if err := inventory.CheckPrecondition(suppliedTag, item); err != nil {
		return nil, nil, err
	}

	now := s.clock.Now()
	if err := s.applyToItem(ctx, repos, item, inventory.RequestImpact(req, item), req.Type, req.DestinationLocationID); err != nil {
		return nil, nil, err
	}

	tx, err := inventory.NewCompletedTransaction(req, number, actor.ID, now)
	if err != nil {
		return nil, nil, err
	}
	if err := repos.TransactionRepo().Create(ctx, tx); err != nil {
		return nil, nil, err
	}
	return tx, item, nil
}

// applyToItem mutates item by delta, relocates it for transfers and persists it
// with the tag it was read with
func (s *InventoryService) applyToItem(
	ctx context.Context,
	repos TransactionalRepositories,
	item *inventory.InventoryItem,
	delta int64,
	txType inventory.TransactionType,
	destination *uuid.UUID,
) error {
	expectedTag := inventory.Tag(item)
	now := s.clock.Now()
	if err := item.ApplyStockDelta(delta, now); err != nil {
		return err
	}
	if txType == inventory.TransactionTypeTransfer && destination != nil {
		item.Relocate(*destination, now)
	}
	return repos.ItemRepo().SaveIfTagMatches(ctx, item, expectedTag)
}

func (s *InventoryService) recordPending(
	ctx context.Context,
	repos TransactionalRepositories,
	req inventory.TransactionRequest,
	number string,
	actor Actor,
) (*inventory.InventoryTransaction, error) {
	if _, err := s.rules(repos.ItemRepo()).Evaluate(ctx, req); err != nil {
		return nil, err
	}
	tx, err := inventory.NewPendingTransaction(req, number, actor.ID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := repos.TransactionRepo().Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Approve moves a Pending transaction to Approved after checking the actor's approval ceiling
func (s *InventoryService) Approve(ctx context.Context, transactionID uuid.UUID, actor Actor) (*TransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "approve",
		telemetry.SpanAttrTransactionID, transactionID.String(),
	)
	defer span.End()

	tx, err := s.updateTransaction(ctx, transactionID, func(repos TransactionalRepositories, tx *inventory.InventoryTransaction) error {
		if tx.UnitCost != nil {
			if err := s.rules(repos.ItemRepo()).CheckApprovalLimit(actor.Role, *tx.UnitCost, tx.Quantity); err != nil {
				return err
			}
		}
		return tx.Approve(actor.ID, s.clock.Now())
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.observeFailure(ctx, "approve", err, zap.String("transaction_id", transactionID.String()))
		return nil, err
	}
	response := ToTransactionResponse(tx)
	return &response, nil
}

// Process drives an Approved transaction through Processing. The transaction is
// re-evaluated against current stock: on success the stock delta is written and the
// transaction completes; on a rule violation it is stored as Failed and the
// violation is returned. A concurrency conflict rolls everything back.
func (s *InventoryService) Process(ctx context.Context, transactionID uuid.UUID, actor Actor) (*TransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "process",
		telemetry.SpanAttrTransactionID, transactionID.String(),
	)
	defer span.End()

	var (
		tx        *inventory.InventoryTransaction
		item      *inventory.InventoryItem
		violation error
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		violation = nil
		var err error
		tx, err = repos.TransactionRepo().FindByID(ctx, transactionID)
		if err != nil {
			return err
		}
		loadedVersion := tx.GetVersion()
		now := s.clock.Now()
		if err := tx.StartProcessing(now); err != nil {
			return err
		}

		item, err = s.rules(repos.ItemRepo()).Evaluate(ctx, tx.Request())
		if err == nil {
			err = s.applyToItem(ctx, repos, item, inventory.StockImpact(tx, item), tx.Type, tx.DestinationLocationID)
		}
		switch {
		case err == nil:
			if err := tx.Complete(actor.ID, now); err != nil {
				return err
			}
		case shared.IsConcurrencyConflict(err) || !shared.IsDomainError(err):
			return err
		default:
			violation = err
			item = nil
			if err := tx.Fail(err.Error(), now); err != nil {
				return err
			}
		}
		return repos.TransactionRepo().Update(ctx, tx, loadedVersion)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		outcome := outcomeError
		if shared.IsConcurrencyConflict(err) {
			outcome = outcomeConflict
		}
		if tx != nil {
			s.metrics.RecordProcessed(ctx, string(tx.Type), outcome)
		}
		s.observeFailure(ctx, "process", err, zap.String("transaction_id", transactionID.String()))
		return nil, err
	}

	s.publishDomainEvents(ctx, tx, item)
	response := ToTransactionResponse(tx)
	if violation != nil {
		telemetry.RecordError(span, violation)
		s.metrics.RecordProcessed(ctx, string(tx.Type), outcomeFailed)
		s.observeFailure(ctx, "process", violation,
			zap.String("transaction_number", tx.TransactionNumber),
		)
		return &response, violation
	}
	s.metrics.RecordProcessed(ctx, string(tx.Type), outcomeCompleted)
	telemetry.AddEvent(span, "transaction_completed",
		telemetry.SpanAttrTransactionNumber, tx.TransactionNumber,
	)
	return &response, nil
}

// Cancel abandons a transaction and appends the reason to its notes
func (s *InventoryService) Cancel(ctx context.Context, transactionID uuid.UUID, reason string, actor Actor) (*TransactionResponse, error) {
	tx, err := s.updateTransaction(ctx, transactionID, func(repos TransactionalRepositories, tx *inventory.InventoryTransaction) error {
		return tx.Cancel(reason, actor.ID, s.clock.Now())
	})
	if err != nil {
		s.observeFailure(ctx, "cancel", err, zap.String("transaction_id", transactionID.String()))
		return nil, err
	}
	response := ToTransactionResponse(tx)
	return &response, nil
}

// Retry moves a Failed transaction back to Pending; it needs a new approval
func (s *InventoryService) Retry(ctx context.Context, transactionID uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.updateTransaction(ctx, transactionID, func(repos TransactionalRepositories, tx *inventory.InventoryTransaction) error {
		return tx.Retry(s.clock.Now())
	})
	if err != nil {
		s.observeFailure(ctx, "retry", err, zap.String("transaction_id", transactionID.String()))
		return nil, err
	}
	response := ToTransactionResponse(tx)
	return &response, nil
}

// Modify edits a transaction that is neither Completed nor Processing.
// A changed quantity is re-validated against current stock.
func (s *InventoryService) Modify(ctx context.Context, transactionID uuid.UUID, req ModifyTransactionRequest) (*TransactionResponse, error) {
	tx, err := s.updateTransaction(ctx, transactionID, func(repos TransactionalRepositories, tx *inventory.InventoryTransaction) error {
		if err := tx.Modify(inventory.TransactionChanges{
			Quantity:        req.Quantity,
			UnitCost:        req.UnitCost,
			Reason:          req.Reason,
			ReferenceNumber: req.ReferenceNumber,
			Notes:           req.Notes,
		}, s.clock.Now()); err != nil {
			return err
		}
		if req.Quantity == nil && req.Reason == nil {
			return nil
		}
		_, err := s.rules(repos.ItemRepo()).Evaluate(ctx, tx.Request())
		return err
	})
	if err != nil {
		s.observeFailure(ctx, "modify", err, zap.String("transaction_id", transactionID.String()))
		return nil, err
	}
	response := ToTransactionResponse(tx)
	return &response, nil
}

// updateTransaction loads a transaction, applies change and saves it against the loaded version
func (s *InventoryService) updateTransaction(
	ctx context.Context,
	transactionID uuid.UUID,
	change func(repos TransactionalRepositories, tx *inventory.InventoryTransaction) error,
) (*inventory.InventoryTransaction, error) {
	var tx *inventory.InventoryTransaction
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		tx, err = repos.TransactionRepo().FindByID(ctx, transactionID)
		if err != nil {
			return err
		}
		loadedVersion := tx.GetVersion()
		if err := change(repos, tx); err != nil {
			return err
		}
		return repos.TransactionRepo().Update(ctx, tx, loadedVersion)
	})
	if err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, tx)
	return tx, nil
}

// GetTransaction retrieves a transaction by ID
func (s *InventoryService) GetTransaction(ctx context.Context, transactionID uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	response := ToTransactionResponse(tx)
	return &response, nil
}

// GetTransactionByNumber retrieves a transaction by its number
func (s *InventoryService) GetTransactionByNumber(ctx context.Context, number string) (*TransactionResponse, error) {
	tx, err := s.transactions.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	response := ToTransactionResponse(tx)
	return &response, nil
}

// ListTransactions returns a page of transactions
func (s *InventoryService) ListTransactions(ctx context.Context, filter TransactionListFilter) ([]TransactionResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	if filter.InventoryItemID != "" {
		itemID, err := uuid.Parse(filter.InventoryItemID)
		if err != nil {
			return nil, 0, shared.NewDomainError(shared.CodeInvalidInput, "Invalid inventory_item_id")
		}
		domainFilter.Filters["inventory_item_id"] = itemID
	}
	if filter.Type != "" {
		domainFilter.Filters["transaction_type"] = filter.Type
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	txs, total, err := s.transactions.List(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToTransactionResponses(txs), total, nil
}
