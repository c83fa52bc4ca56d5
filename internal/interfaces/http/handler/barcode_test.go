package handler

import (
	"net/http"
	"testing"

	inventoryapp "github.com/erp/inventory/internal/application/inventory"
	"github.com/erp/inventory/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarcodeHandler(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("validate detects format", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/barcodes/validate", ValidateBarcodeRequest{
			Barcode: "4006381333931", Format: "EAN_13",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var result inventoryapp.BarcodeValidationResponse
		decode(t, w, &result)
		assert.Equal(t, "EAN_13", result.Format)
	})

	t.Run("bad check digit", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/barcodes/validate", ValidateBarcodeRequest{
			Barcode: "4006381333932", Format: "EAN_13",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown format is a validation error", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/barcodes/validate", ValidateBarcodeRequest{
			Barcode: "ABC", Format: "PDF_417",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decode(t, w, nil).Error.Code)
	})

	t.Run("suggest defaults to code 128", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/barcodes/suggest", SuggestBarcodeRequest{PartNumber: "P-100"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var result inventoryapp.BarcodeSuggestionResponse
		decode(t, w, &result)
		assert.Equal(t, "CODE_128", result.Format)
		assert.NotEmpty(t, result.Barcode)
	})

	t.Run("scan quality", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/barcodes/scan-quality", ScanQualityRequest{Confidence: 92, Length: 13})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = f.do(http.MethodPost, "/api/v1/barcodes/scan-quality", ScanQualityRequest{Confidence: 20, Length: 13})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "POOR_SCAN_QUALITY", decode(t, w, nil).Error.Code)
	})

	t.Run("formats", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/v1/barcodes/formats", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var formats []string
		decode(t, w, &formats)
		assert.Equal(t, "CODE_128", formats[0])
		assert.Contains(t, formats, "UPC_E")
	})
}
