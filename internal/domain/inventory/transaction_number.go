package inventory

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/erp/inventory/internal/domain/shared"
)

// FallbackPrefix numbers transactions whose type has no configured prefix
const FallbackPrefix = "TXN"

const numberDateLayout = "20060102"

// NumberPrefixes maps transaction types to transaction-number prefixes
type NumberPrefixes map[TransactionType]string

// DefaultNumberPrefixes returns the standard prefix table
func DefaultNumberPrefixes() NumberPrefixes {
	return NumberPrefixes{
		TransactionTypeReceipt:    "REC",
		TransactionTypeIssue:      "ISS",
		TransactionTypeTransfer:   "TRF",
		TransactionTypeAdjustment: "ADJ",
		TransactionTypeCycleCount: "CC",
		TransactionTypeReturn:     "RTN",
	}
}

// PrefixFor returns the prefix for t, or FallbackPrefix
func (p NumberPrefixes) PrefixFor(t TransactionType) string {
	if prefix, ok := p[t]; ok && prefix != "" {
		return prefix
	}
	return FallbackPrefix
}

// NumberDate formats the UTC calendar day used in transaction numbers
func NumberDate(at time.Time) string {
	return at.UTC().Format(numberDateLayout)
}

// FormatTransactionNumber renders PREFIX-yyyyMMdd-NNNN
func FormatTransactionNumber(prefix string, at time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, NumberDate(at), seq)
}

// ParseTransactionSequence extracts the trailing sequence of a transaction number
func ParseTransactionSequence(number string) (int, error) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, shared.NewDomainError("INVALID_TRANSACTION_NUMBER", fmt.Sprintf("Malformed transaction number: %s", number))
	}
	seq, err := strconv.Atoi(number[idx+1:])
	if err != nil || seq < 0 {
		return 0, shared.NewDomainError("INVALID_TRANSACTION_NUMBER", fmt.Sprintf("Malformed transaction number: %s", number))
	}
	return seq, nil
}
