package barcode

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/erp/inventory/internal/domain/shared"
	"golang.org/x/text/unicode/norm"
)

// Error codes
const (
	CodeInvalidFormat       = "INVALID_BARCODE_FORMAT"
	CodeUnsupportedFormat   = "UNSUPPORTED_FORMAT"
	CodeFormatNotRecognized = "FORMAT_NOT_RECOGNIZED"
	CodePoorScanQuality     = "POOR_SCAN_QUALITY"
)

// Scanner quality thresholds
const (
	MinScanConfidence = 50
	MinScanLength     = 3
	MaxScanLength     = 2048
)

// Codec validates and generates barcodes against an ordered table of rules.
// The table is fixed at construction.
type Codec struct {
	rules    []Rule
	byFormat map[Format]Rule
}

// NewCodec creates a codec over rules; detection follows the slice order
func NewCodec(rules []Rule) *Codec {
	c := &Codec{
		rules:    make([]Rule, len(rules)),
		byFormat: make(map[Format]Rule, len(rules)),
	}
	copy(c.rules, rules)
	for _, r := range rules {
		c.byFormat[r.Format] = r
	}
	return c
}

// NewDefaultCodec creates a codec over DefaultRules
func NewDefaultCodec() *Codec {
	return NewCodec(DefaultRules())
}

// Formats returns the supported formats in detection order
func (c *Codec) Formats() []Format {
	formats := make([]Format, len(c.rules))
	for i, r := range c.rules {
		formats[i] = r.Format
	}
	return formats
}

// ValidateFormat validates code against format and returns the matching format.
// With FormatAuto every rule is tried in table order and the first match wins.
func (c *Codec) ValidateFormat(code string, format Format) (Format, error) {
	if code == "" {
		return "", shared.NewDomainError(CodeInvalidFormat, "Barcode is required")
	}
	if format == "" || format == FormatAuto {
		for _, r := range c.rules {
			if r.Accepts(code) {
				return r.Format, nil
			}
		}
		return "", shared.NewDomainError(CodeInvalidFormat, "Barcode does not match any supported format")
	}

	rule, ok := c.byFormat[format]
	if !ok {
		return "", shared.NewDomainError(CodeUnsupportedFormat, fmt.Sprintf("Unsupported barcode format: %s", format))
	}
	if !rule.Accepts(code) {
		return "", shared.NewDomainError(CodeInvalidFormat, fmt.Sprintf("Barcode is not a valid %s", format))
	}
	return rule.Format, nil
}

// DetectFormat returns the first format in table order that accepts code
func (c *Codec) DetectFormat(code string) (Format, error) {
	for _, r := range c.rules {
		if r.Accepts(code) {
			return r.Format, nil
		}
	}
	return "", shared.NewDomainError(CodeFormatNotRecognized, "Barcode format not recognized")
}

// GenerateSuggested derives a barcode for partNumber in the requested format.
// Code128 and Code39 keep the upper-cased alphanumerics of the part number.
// Numeric formats keep its digits, right-padded with zeros or truncated to the
// payload length, and append the computed check digit.
func (c *Codec) GenerateSuggested(partNumber string, format Format) (string, error) {
	if format == "" || format == FormatAuto {
		format = FormatCode128
	}
	rule, ok := c.byFormat[format]
	if !ok {
		return "", shared.NewDomainError(CodeUnsupportedFormat, fmt.Sprintf("Unsupported barcode format: %s", format))
	}

	cleaned := cleanPartNumber(partNumber)

	switch format {
	case FormatCode128, FormatCode39:
		if cleaned == "" {
			return "", shared.NewDomainError(CodeInvalidFormat, "Part number has no alphanumeric characters")
		}
		if len(cleaned) > rule.MaxLength {
			cleaned = cleaned[:rule.MaxLength]
		}
		return cleaned, nil
	case FormatEAN13:
		payload := fitDigits(cleaned, 12)
		return payload + strconv.Itoa(EAN13CheckDigit(payload)), nil
	case FormatEAN8:
		payload := fitDigits(cleaned, 7)
		return payload + strconv.Itoa(EAN8CheckDigit(payload)), nil
	case FormatUPCA:
		payload := fitDigits(cleaned, 11)
		return payload + strconv.Itoa(UPCACheckDigit(payload)), nil
	default:
		return "", shared.NewDomainError(CodeUnsupportedFormat, fmt.Sprintf("Barcode generation is not supported for %s", format))
	}
}

// ValidateScanningQuality rejects scans a reader flagged as unreliable
func (c *Codec) ValidateScanningQuality(confidence float64, length int) error {
	switch {
	case confidence < MinScanConfidence:
		return shared.NewDomainError(CodePoorScanQuality, "Scan rejected: low confidence")
	case length < MinScanLength:
		return shared.NewDomainError(CodePoorScanQuality, "Scan rejected: barcode too short")
	case length > MaxScanLength:
		return shared.NewDomainError(CodePoorScanQuality, "Scan rejected: barcode too long")
	}
	return nil
}

// cleanPartNumber folds compatibility characters (full-width forms and the like),
// drops everything except ASCII letters and digits, and upper-cases the rest.
func cleanPartNumber(partNumber string) string {
	folded := norm.NFKC.String(partNumber)
	var b strings.Builder
	for _, r := range folded {
		if r > unicode.MaxASCII {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

func fitDigits(s string, n int) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	digits := b.String()
	if len(digits) > n {
		return digits[:n]
	}
	return digits + strings.Repeat("0", n-len(digits))
}
