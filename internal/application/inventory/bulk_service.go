package inventory

import (
	"context"

	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CodeDuplicateRequest rejects a replayed Idempotency-Key
const CodeDuplicateRequest = "DUPLICATE_REQUEST"

const idempotencyKeyPrefix = "inventory:bulk:"

// BulkProcess applies a batch of transactions directly, one at a time, and stops at
// the first failure. Transactions before the failure stay committed; the batch as
// a whole is not atomic. A batch that commits nothing releases its Idempotency-Key. The returned result is non-nil once the batch passed
// structural validation, and the error is the failure that stopped it.
func (s *InventoryService) BulkProcess(ctx context.Context, req BulkProcessRequest, actor Actor) (*BulkResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "bulk_process",
		telemetry.SpanAttrBatchSize, len(req.Transactions),
	)
	defer span.End()

	domainReqs := make([]inventory.TransactionRequest, len(req.Transactions))
	for i, r := range req.Transactions {
		domainReqs[i] = r.ToDomain()
	}
	if err := s.rules(s.items).ValidateBatch(domainReqs); err != nil {
		telemetry.RecordError(span, err)
		s.metrics.RecordBulk(ctx, len(domainReqs), "rejected")
		s.observeFailure(ctx, "bulk_process", err, zap.Int("size", len(domainReqs)))
		return nil, err
	}
	if err := s.claimIdempotencyKey(ctx, req.IdempotencyKey); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &BulkResult{
		Submitted: len(domainReqs),
		Processed: make([]TransactionResponse, 0, len(domainReqs)),
	}
	for i, domainReq := range domainReqs {
		tx, err := s.applyBulkEntry(ctx, domainReq, actor)
		if err != nil {
			index := i
			result.FailedIndex = &index
			result.Error = err.Error()
			if domainErr, ok := shared.AsDomainError(err); ok {
				result.ErrorCode = domainErr.Code
			}
			telemetry.RecordError(span, err)
			telemetry.AddEvent(span, "bulk_stopped", "index", i)
			s.metrics.RecordBulk(ctx, len(domainReqs), "partial")
			s.observeFailure(ctx, "bulk_process", err,
				zap.Int("index", i),
				zap.Int("committed", len(result.Processed)),
			)
			if len(result.Processed) == 0 {
				s.releaseIdempotencyKey(ctx, req.IdempotencyKey)
			}
			return result, err
		}
		result.Processed = append(result.Processed, ToTransactionResponse(tx))
	}

	s.metrics.RecordBulk(ctx, len(domainReqs), "completed")
	s.logger.Info("bulk submission processed", zap.Int("size", len(domainReqs)))
	return result, nil
}

func (s *InventoryService) applyBulkEntry(ctx context.Context, req inventory.TransactionRequest, actor Actor) (*inventory.InventoryTransaction, error) {
	number, err := s.GenerateTransactionNumber(ctx, req.Type)
	if err != nil {
		return nil, err
	}
	var (
		tx   *inventory.InventoryTransaction
		item *inventory.InventoryItem
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		tx, item, err = s.applyDirect(ctx, repos, req, number, actor, "", true)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordTransaction(ctx, string(tx.Type), string(RecordModeDirect))
	s.publishDomainEvents(ctx, tx, item)
	return tx, nil
}

// claimIdempotencyKey marks key as used; a key seen before is a duplicate request
func (s *InventoryService) claimIdempotencyKey(ctx context.Context, key string) error {
	if key == "" || s.idempotency == nil {
		return nil
	}
	fresh, err := s.idempotency.MarkProcessed(ctx, idempotencyKeyPrefix+key, s.config.IdempotencyTTL)
	if err != nil {
		return err
	}
	if !fresh {
		return shared.NewDomainError(CodeDuplicateRequest, "This bulk submission was already accepted")
	}
	return nil
}

// releaseIdempotencyKey lets a batch that committed nothing be retried under the same key
func (s *InventoryService) releaseIdempotencyKey(ctx context.Context, key string) {
	if key == "" || s.idempotency == nil {
		return
	}
	if err := s.idempotency.Forget(ctx, idempotencyKeyPrefix+key); err != nil {
		s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}
