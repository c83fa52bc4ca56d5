package barcode

// Weighted modulo-10 check digits. EAN-13 weights the first digit 1 while
// UPC-A and EAN-8 weight it 3; the asymmetry follows the respective standards.

const (
	ean13EvenWeight = 1
	ean13OddWeight  = 3
	upcaEvenWeight  = 3
	upcaOddWeight   = 1
	ean8EvenWeight  = 3
	ean8OddWeight   = 1
)

// checkDigit computes (10 - weightedSum mod 10) mod 10 over payload.
// evenWeight applies to 0-based even positions, oddWeight to odd ones.
// payload must contain only ASCII digits.
func checkDigit(payload string, evenWeight, oddWeight int) int {
	sum := 0
	for i := 0; i < len(payload); i++ {
		d := int(payload[i] - '0')
		if i%2 == 0 {
			sum += d * evenWeight
		} else {
			sum += d * oddWeight
		}
	}
	return (10 - sum%10) % 10
}

func validWeighted(code string, length, evenWeight, oddWeight int) bool {
	if len(code) != length || !isDigits(code) {
		return false
	}
	want := checkDigit(code[:length-1], evenWeight, oddWeight)
	return int(code[length-1]-'0') == want
}

// ValidEAN13 validates a 13-digit EAN-13 code including its check digit
func ValidEAN13(code string) bool {
	return validWeighted(code, 13, ean13EvenWeight, ean13OddWeight)
}

// ValidEAN8 validates an 8-digit EAN-8 code including its check digit
func ValidEAN8(code string) bool {
	return validWeighted(code, 8, ean8EvenWeight, ean8OddWeight)
}

// ValidUPCA validates a 12-digit UPC-A code including its check digit
func ValidUPCA(code string) bool {
	return validWeighted(code, 12, upcaEvenWeight, upcaOddWeight)
}

// ValidUPCE only verifies that the compressed code is numeric; the
// check digit is not expanded and recomputed.
func ValidUPCE(code string) bool {
	return isDigits(code)
}

// EAN13CheckDigit returns the check digit for a 12-digit payload
func EAN13CheckDigit(payload string) int {
	return checkDigit(payload, ean13EvenWeight, ean13OddWeight)
}

// EAN8CheckDigit returns the check digit for a 7-digit payload
func EAN8CheckDigit(payload string) int {
	return checkDigit(payload, ean8EvenWeight, ean8OddWeight)
}

// UPCACheckDigit returns the check digit for an 11-digit payload
func UPCACheckDigit(payload string) int {
	return checkDigit(payload, upcaEvenWeight, upcaOddWeight)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
