package inventory

// AvailableStock is current stock minus reserved stock. It is not clamped.
func AvailableStock(item *InventoryItem) int64 {
	return item.CurrentStock - item.ReservedStock
}

// StockImpact returns the signed change tx applies to item's current stock.
// A transfer with a source is the outbound leg and decrements; the item's
// location change is applied separately.
func StockImpact(tx *InventoryTransaction, item *InventoryItem) int64 {
	return stockImpact(tx.Type, tx.Quantity, tx.SourceLocationID != nil, item.CurrentStock)
}

// RequestImpact is StockImpact for a transaction that has not been created yet
func RequestImpact(req TransactionRequest, item *InventoryItem) int64 {
	return stockImpact(req.Type, req.Quantity, req.SourceLocationID != nil, item.CurrentStock)
}

func stockImpact(t TransactionType, quantity int64, hasSource bool, current int64) int64 {
	switch t {
	case TransactionTypeReceipt:
		return quantity
	case TransactionTypeIssue:
		return -quantity
	case TransactionTypeTransfer:
		if hasSource {
			return -quantity
		}
		return quantity
	case TransactionTypeAdjustment:
		return quantity
	case TransactionTypeCycleCount:
		return quantity - current
	case TransactionTypeReturn:
		return quantity
	default:
		return 0
	}
}
