package inventory

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/erp/inventory/internal/domain/shared"
)

// Tag returns an opaque version tag for item derived from its ID and last
// modification instant (creation instant if never modified). It has no side effects.
func Tag(item *InventoryItem) string {
	modified := item.UpdatedAt
	if modified.IsZero() {
		modified = item.CreatedAt
	}
	sum := sha256.Sum256([]byte(item.ID.String() + strconv.FormatInt(modified.UnixNano(), 10)))
	return hex.EncodeToString(sum[:16])
}

// Matches compares a client-supplied tag with the current one, ignoring wrapping quotes
func Matches(supplied, current string) bool {
	return strings.Trim(strings.TrimSpace(supplied), `"`) == current
}

// CheckPrecondition lets a write proceed when no tag was supplied or the tag is current
func CheckPrecondition(supplied string, item *InventoryItem) error {
	if strings.TrimSpace(supplied) == "" {
		return nil
	}
	if !Matches(supplied, Tag(item)) {
		return shared.NewDomainError(shared.CodeConcurrencyConflict,
			"Item was modified by another user; reload it and retry")
	}
	return nil
}
