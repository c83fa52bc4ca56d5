package persistence

import (
	"strings"

	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// InventoryItemSortFields contains allowed sort fields for inventory items
var InventoryItemSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"part_number":   true,
	"name":          true,
	"current_stock": true,
	"last_movement": true,
}

// InventoryTransactionSortFields contains allowed sort fields for inventory transactions
var InventoryTransactionSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"transaction_number": true,
	"transaction_type":   true,
	"status":             true,
	"quantity":           true,
	"initiated_at":       true,
	"processed_at":       true,
}

// applyOrdering adds a whitelisted ORDER BY plus the id as tie-breaker,
// so paging over equal keys stays stable
func applyOrdering(query *gorm.DB, orderBy, orderDir string, allowed map[string]bool) *gorm.DB {
	field := ValidateSortField(orderBy, allowed, "created_at")
	return query.Order(field + " " + ValidateSortOrder(orderDir)).Order("id ASC")
}

// applyPagination limits query to the requested page when both values are positive
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if page > 0 && pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	return query
}
