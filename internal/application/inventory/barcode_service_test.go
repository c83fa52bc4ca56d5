package inventory

import (
	"testing"

	"github.com/erp/inventory/internal/domain/barcode"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarcodeService_ValidateBarcode(t *testing.T) {
	service := NewBarcodeService(nil)

	tests := []struct {
		name       string
		code       string
		format     string
		wantFormat string
		wantCode   string
	}{
		{name: "ean13 explicit", code: "4006381333931", format: "ean-13", wantFormat: "EAN_13"},
		{name: "ean13 bad check digit", code: "4006381333932", format: "EAN_13", wantCode: barcode.CodeInvalidFormat},
		{name: "auto picks code128 first", code: "BOLT-M8", format: "", wantFormat: "CODE_128"},
		{name: "unsupported format", code: "123", format: "PDF417", wantCode: barcode.CodeUnsupportedFormat},
		{name: "empty code", code: "", format: "AUTO", wantCode: barcode.CodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := service.ValidateBarcode(tt.code, tt.format)
			if tt.wantCode != "" {
				assert.True(t, shared.HasCode(err, tt.wantCode), "got %v", err)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFormat, resp.Format)
			assert.Equal(t, tt.code, resp.Barcode)
		})
	}
}

func TestBarcodeService_SuggestBarcode(t *testing.T) {
	service := NewBarcodeService(nil)

	resp, err := service.SuggestBarcode("bolt-m8", "auto")
	require.NoError(t, err)
	assert.Equal(t, "CODE_128", resp.Format)
	assert.Equal(t, "BOLTM8", resp.Barcode)

	resp, err = service.SuggestBarcode("PN-400638133393", "EAN13")
	require.NoError(t, err)
	assert.Equal(t, "4006381333931", resp.Barcode)
	_, err = service.ValidateBarcode(resp.Barcode, "EAN_13")
	assert.NoError(t, err)
}

func TestBarcodeService_ScanQuality(t *testing.T) {
	service := NewBarcodeService(nil)

	assert.NoError(t, service.ValidateScanQuality(90, 13))
	assert.True(t, shared.HasCode(service.ValidateScanQuality(10, 13), barcode.CodePoorScanQuality))
	assert.True(t, shared.HasCode(service.ValidateScanQuality(90, 2), barcode.CodePoorScanQuality))
	assert.True(t, shared.HasCode(service.ValidateScanQuality(90, 2049), barcode.CodePoorScanQuality))
}

func TestBarcodeService_Formats(t *testing.T) {
	formats := NewBarcodeService(nil).Formats()
	require.NotEmpty(t, formats)
	assert.Equal(t, "CODE_128", formats[0])
	assert.Contains(t, formats, "UPC_E")
}
