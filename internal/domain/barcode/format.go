// Package barcode classifies, validates and generates barcode strings for the
// symbologies used on inventory labels.
package barcode

import (
	"regexp"
	"strings"
)

// Format names a barcode symbology
type Format string

const (
	FormatAuto    Format = "AUTO"
	FormatCode128 Format = "CODE_128"
	FormatQRCode  Format = "QR_CODE"
	FormatCode39  Format = "CODE_39"
	FormatEAN13   Format = "EAN_13"
	FormatEAN8    Format = "EAN_8"
	FormatUPCA    Format = "UPC_A"
	FormatUPCE    Format = "UPC_E"
)

// String returns the string representation of Format
func (f Format) String() string {
	return string(f)
}

// ParseFormat normalises user input such as "ean13", "EAN-13" or "Code 128" to a Format.
// Unknown names are returned as-is so the codec can report them as unsupported.
func ParseFormat(name string) Format {
	compact := strings.ToUpper(strings.TrimSpace(name))
	if compact == "" {
		return FormatAuto
	}
	compact = strings.NewReplacer("_", "", "-", "", " ", "").Replace(compact)
	switch compact {
	case "AUTO":
		return FormatAuto
	case "CODE128":
		return FormatCode128
	case "QRCODE", "QR":
		return FormatQRCode
	case "CODE39":
		return FormatCode39
	case "EAN13":
		return FormatEAN13
	case "EAN8":
		return FormatEAN8
	case "UPCA":
		return FormatUPCA
	case "UPCE":
		return FormatUPCE
	}
	return Format(strings.ToUpper(strings.TrimSpace(name)))
}

// Rule describes the constraints of one symbology
type Rule struct {
	Format    Format
	MinLength int
	MaxLength int
	// Pattern is nil when any character is accepted
	Pattern *regexp.Regexp
	// CheckDigit is nil when the symbology carries no check digit
	CheckDigit func(code string) bool
}

// Accepts reports whether code satisfies the rule
func (r Rule) Accepts(code string) bool {
	n := len([]rune(code))
	if n < r.MinLength || n > r.MaxLength {
		return false
	}
	if r.Pattern != nil && !r.Pattern.MatchString(code) {
		return false
	}
	if r.CheckDigit != nil && !r.CheckDigit(code) {
		return false
	}
	return true
}

var (
	code128Pattern = regexp.MustCompile(`^[A-Za-z0-9\-./ ]+$`)
	code39Pattern  = regexp.MustCompile(`^[A-Z0-9\-./ ]+$`)
	digitsPattern  = regexp.MustCompile(`^[0-9]+$`)
)

// DefaultRules returns the supported symbologies in detection order
func DefaultRules() []Rule {
	return []Rule{
		{Format: FormatCode128, MinLength: 1, MaxLength: 128, Pattern: code128Pattern},
		{Format: FormatQRCode, MinLength: 1, MaxLength: 2048},
		{Format: FormatCode39, MinLength: 1, MaxLength: 43, Pattern: code39Pattern},
		{Format: FormatEAN13, MinLength: 13, MaxLength: 13, Pattern: digitsPattern, CheckDigit: ValidEAN13},
		{Format: FormatEAN8, MinLength: 8, MaxLength: 8, Pattern: digitsPattern, CheckDigit: ValidEAN8},
		{Format: FormatUPCA, MinLength: 12, MaxLength: 12, Pattern: digitsPattern, CheckDigit: ValidUPCA},
		{Format: FormatUPCE, MinLength: 6, MaxLength: 8, Pattern: digitsPattern, CheckDigit: ValidUPCE},
	}
}
