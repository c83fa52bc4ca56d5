package inventory

import (
	"context"
	"time"

	"github.com/erp/inventory/internal/domain/inventory"
)

// SequenceSource hands out the next daily sequence for a transaction-number prefix.
// Implementations only compute the next candidate; uniqueness of the stored
// number is enforced by the transactions table.
type SequenceSource interface {
	Next(ctx context.Context, prefix string, day time.Time) (int, error)
}

// DatabaseSequence derives the next sequence from the highest stored number
// for the prefix on the same UTC day
type DatabaseSequence struct {
	transactions inventory.InventoryTransactionRepository
}

// NewDatabaseSequence creates a DatabaseSequence
func NewDatabaseSequence(transactions inventory.InventoryTransactionRepository) *DatabaseSequence {
	return &DatabaseSequence{transactions: transactions}
}

// Next returns 1 when the day has no numbers yet, otherwise the latest sequence + 1
func (s *DatabaseSequence) Next(ctx context.Context, prefix string, day time.Time) (int, error) {
	latest, err := s.transactions.LatestNumber(ctx, prefix, day.UTC())
	if err != nil {
		return 0, err
	}
	if latest == "" {
		return 1, nil
	}
	seq, err := inventory.ParseTransactionSequence(latest)
	if err != nil {
		return 0, err
	}
	return seq + 1, nil
}

var _ SequenceSource = (*DatabaseSequence)(nil)
