package inventory

import (
	"github.com/erp/inventory/internal/domain/barcode"
)

// BarcodeService exposes the barcode codec to callers
type BarcodeService struct {
	codec *barcode.Codec
}

// NewBarcodeService creates a BarcodeService over codec, or the default table when nil
func NewBarcodeService(codec *barcode.Codec) *BarcodeService {
	if codec == nil {
		codec = barcode.NewDefaultCodec()
	}
	return &BarcodeService{codec: codec}
}

// ValidateBarcode validates code against format ("AUTO" or empty tries every format)
func (s *BarcodeService) ValidateBarcode(code, format string) (*BarcodeValidationResponse, error) {
	matched, err := s.codec.ValidateFormat(code, barcode.ParseFormat(format))
	if err != nil {
		return nil, err
	}
	return &BarcodeValidationResponse{Barcode: code, Format: matched.String()}, nil
}

// DetectFormat returns the first format that accepts code
func (s *BarcodeService) DetectFormat(code string) (*BarcodeValidationResponse, error) {
	matched, err := s.codec.DetectFormat(code)
	if err != nil {
		return nil, err
	}
	return &BarcodeValidationResponse{Barcode: code, Format: matched.String()}, nil
}

// SuggestBarcode generates a barcode for partNumber in format
func (s *BarcodeService) SuggestBarcode(partNumber, format string) (*BarcodeSuggestionResponse, error) {
	f := barcode.ParseFormat(format)
	if f == barcode.FormatAuto {
		f = barcode.FormatCode128
	}
	code, err := s.codec.GenerateSuggested(partNumber, f)
	if err != nil {
		return nil, err
	}
	return &BarcodeSuggestionResponse{PartNumber: partNumber, Format: f.String(), Barcode: code}, nil
}

// ValidateScanQuality rejects scans the reader flagged as unreliable
func (s *BarcodeService) ValidateScanQuality(confidence float64, length int) error {
	return s.codec.ValidateScanningQuality(confidence, length)
}

// Formats lists the supported formats in detection order
func (s *BarcodeService) Formats() []string {
	formats := s.codec.Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.String()
	}
	return names
}
