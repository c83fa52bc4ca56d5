package inventory

import (
	"context"
	"fmt"

	"github.com/erp/inventory/internal/domain/barcode"
	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CodeHasActiveTransactions rejects deactivation of an item that still has open transactions
const CodeHasActiveTransactions = "HAS_ACTIVE_TRANSACTIONS"

// CreateItem creates an item with zero stock. The barcode, when given, must be
// valid in some supported format; part number and barcode must be unused.
func (s *InventoryService) CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResponse, error) {
	if req.Barcode != "" {
		if _, err := s.codec.ValidateFormat(req.Barcode, barcode.FormatAuto); err != nil {
			return nil, err
		}
	}
	if _, err := s.locations.FindByID(ctx, req.LocationID); err != nil {
		return nil, err
	}
	if req.SupplierID != nil && s.suppliers != nil {
		if _, err := s.suppliers.FindByID(ctx, *req.SupplierID); err != nil {
			return nil, err
		}
	}

	item, err := inventory.NewInventoryItem(inventory.NewItemInput{
		PartNumber:   req.PartNumber,
		Barcode:      req.Barcode,
		Name:         req.Name,
		Description:  req.Description,
		MinimumStock: req.MinimumStock,
		MaximumStock: req.MaximumStock,
		StandardCost: req.StandardCost,
		SellingPrice: req.SellingPrice,
		LocationID:   req.LocationID,
		SupplierID:   req.SupplierID,
	}, s.clock.Now())
	if err != nil {
		return nil, err
	}

	exists, err := s.items.ExistsByPartNumber(ctx, item.PartNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("Part number %s is already in use", item.PartNumber))
	}
	if err := s.ensureBarcodeFree(ctx, s.items, item.Barcode, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.items.Create(ctx, item); err != nil {
		s.observeFailure(ctx, "create_item", err, zap.String("part_number", item.PartNumber))
		return nil, err
	}
	s.logger.Info("inventory item created",
		zap.String("item_id", item.ID.String()),
		zap.String("part_number", item.PartNumber),
	)
	response := ToItemResponse(item)
	return &response, nil
}

// GetItem retrieves an item; the response carries its current version tag
func (s *InventoryService) GetItem(ctx context.Context, itemID uuid.UUID) (*ItemResponse, error) {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// GetItemByBarcode retrieves an item by its barcode
func (s *InventoryService) GetItemByBarcode(ctx context.Context, code string) (*ItemResponse, error) {
	item, err := s.items.FindByBarcode(ctx, code)
	if err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// ListItemsByLocation lists the items stored at a location
func (s *InventoryService) ListItemsByLocation(ctx context.Context, locationID uuid.UUID) ([]ItemResponse, error) {
	items, err := s.items.FindByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	responses := make([]ItemResponse, len(items))
	for i := range items {
		responses[i] = ToItemResponse(&items[i])
	}
	return responses, nil
}

// UpdateItem edits an item's descriptive fields and limits. suppliedTag, when
// non-empty, must match the item's current tag.
func (s *InventoryService) UpdateItem(ctx context.Context, itemID uuid.UUID, req UpdateItemRequest, suppliedTag string) (*ItemResponse, error) {
	if req.Barcode != nil && *req.Barcode != "" {
		if _, err := s.codec.ValidateFormat(*req.Barcode, barcode.FormatAuto); err != nil {
			return nil, err
		}
	}
	item, err := s.mutateItem(ctx, "update_item", itemID, suppliedTag,
		func(repos TransactionalRepositories, item *inventory.InventoryItem) error {
			if req.Barcode != nil && *req.Barcode != item.Barcode {
				if err := s.ensureBarcodeFree(ctx, repos.ItemRepo(), *req.Barcode, item.ID); err != nil {
					return err
				}
			}
			return item.Update(inventory.ItemChanges{
				Name:         req.Name,
				Description:  req.Description,
				Barcode:      req.Barcode,
				MinimumStock: req.MinimumStock,
				MaximumStock: req.MaximumStock,
				StandardCost: req.StandardCost,
				SellingPrice: req.SellingPrice,
				SupplierID:   req.SupplierID,
			}, s.clock.Now())
		})
	if err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// AdjustStock applies a signed correction through the adjustment rules and records
// it as a Completed adjustment transaction
func (s *InventoryService) AdjustStock(ctx context.Context, itemID uuid.UUID, req AdjustStockRequest, suppliedTag string, actor Actor) (*ItemResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "adjust_stock",
		telemetry.SpanAttrItemID, itemID.String(),
		telemetry.SpanAttrQuantity, req.Delta,
	)
	defer span.End()

	domainReq := inventory.TransactionRequest{
		Type:            inventory.TransactionTypeAdjustment,
		InventoryItemID: itemID,
		Quantity:        req.Delta,
		Reason:          req.Reason,
	}
	var (
		tx   *inventory.InventoryTransaction
		item *inventory.InventoryItem
	)
	number, err := s.GenerateTransactionNumber(ctx, domainReq.Type)
	if err == nil {
		err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			tx, item, err = s.applyDirect(ctx, repos, domainReq, number, actor, suppliedTag, false)
			return err
		})
	}
	if err != nil {
		telemetry.RecordError(span, err)
		s.observeFailure(ctx, "adjust_stock", err, zap.String("item_id", itemID.String()))
		return nil, err
	}

	s.metrics.RecordTransaction(ctx, string(tx.Type), string(RecordModeDirect))
	s.publishDomainEvents(ctx, tx, item)
	response := ToItemResponse(item)
	return &response, nil
}

// DeactivateItem soft-deletes an item that no open transaction references
func (s *InventoryService) DeactivateItem(ctx context.Context, itemID uuid.UUID, suppliedTag string) (*ItemResponse, error) {
	item, err := s.mutateItem(ctx, "deactivate_item", itemID, suppliedTag,
		func(repos TransactionalRepositories, item *inventory.InventoryItem) error {
			active, err := repos.TransactionRepo().CountActiveByItem(ctx, item.ID)
			if err != nil {
				return err
			}
			if active > 0 {
				return shared.NewDomainError(CodeHasActiveTransactions,
					fmt.Sprintf("Item %s has %d open transactions", item.PartNumber, active))
			}
			item.Deactivate(s.clock.Now())
			return nil
		})
	if err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// ReserveStock sets quantity aside from available stock
func (s *InventoryService) ReserveStock(ctx context.Context, itemID uuid.UUID, quantity int64, suppliedTag string) (*ItemResponse, error) {
	item, err := s.mutateItem(ctx, "reserve_stock", itemID, suppliedTag,
		func(_ TransactionalRepositories, item *inventory.InventoryItem) error {
			return item.Reserve(quantity, s.clock.Now())
		})
	if err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// ReleaseStock returns reserved quantity to available stock
func (s *InventoryService) ReleaseStock(ctx context.Context, itemID uuid.UUID, quantity int64, suppliedTag string) (*ItemResponse, error) {
	item, err := s.mutateItem(ctx, "release_stock", itemID, suppliedTag,
		func(_ TransactionalRepositories, item *inventory.InventoryItem) error {
			return item.Release(quantity, s.clock.Now())
		})
	if err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// mutateItem loads an item, checks the supplied tag, applies change and writes the
// item back only if its stored tag is still the one it was read with
func (s *InventoryService) mutateItem(
	ctx context.Context,
	operation string,
	itemID uuid.UUID,
	suppliedTag string,
	change func(repos TransactionalRepositories, item *inventory.InventoryItem) error,
) (*inventory.InventoryItem, error) {
	var item *inventory.InventoryItem
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		item, err = repos.ItemRepo().FindByID(ctx, itemID)
		if err != nil {
			return err
		}
		if err := inventory.CheckPrecondition(suppliedTag, item); err != nil {
			return err
		}
		expectedTag := inventory.Tag(item)
		if err := change(repos, item); err != nil {
			return err
		}
		return repos.ItemRepo().SaveIfTagMatches(ctx, item, expectedTag)
	})
	if err != nil {
		s.observeFailure(ctx, operation, err, zap.String("item_id", itemID.String()))
		return nil, err
	}
	s.publishDomainEvents(ctx, item)
	return item, nil
}

func (s *InventoryService) ensureBarcodeFree(ctx context.Context, items inventory.InventoryItemRepository, code string, owner uuid.UUID) error {
	if code == "" {
		return nil
	}
	existing, err := items.FindByBarcode(ctx, code)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != owner {
		return shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("Barcode %s is already assigned to %s", code, existing.PartNumber))
	}
	return nil
}
