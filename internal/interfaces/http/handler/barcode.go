package handler

import (
	inventoryapp "github.com/erp/inventory/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// BarcodeHandler exposes barcode validation and generation
type BarcodeHandler struct {
	BaseHandler
	barcodeService *inventoryapp.BarcodeService
}

// NewBarcodeHandler creates a new BarcodeHandler
func NewBarcodeHandler(barcodeService *inventoryapp.BarcodeService) *BarcodeHandler {
	return &BarcodeHandler{barcodeService: barcodeService}
}

// ValidateBarcodeRequest asks whether code is valid in format
type ValidateBarcodeRequest struct {
	Barcode string `json:"barcode" binding:"required,max=2048"`
	Format  string `json:"format" binding:"omitempty,barcode_format"`
}

// SuggestBarcodeRequest asks for a barcode derived from a part number
type SuggestBarcodeRequest struct {
	PartNumber string `json:"part_number" binding:"required,max=100"`
	Format     string `json:"format" binding:"omitempty,barcode_format"`
}

// ScanQualityRequest describes a scan as reported by the reader
type ScanQualityRequest struct {
	Confidence float64 `json:"confidence" binding:"min=0,max=100"`
	Length     int     `json:"length" binding:"min=0"`
}

// ScanQualityResponse reports an accepted scan
type ScanQualityResponse struct {
	Acceptable bool `json:"acceptable"`
}

// Validate handles POST /barcodes/validate
func (h *BarcodeHandler) Validate(c *gin.Context) {
	var req ValidateBarcodeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.barcodeService.ValidateBarcode(req.Barcode, req.Format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Suggest handles POST /barcodes/suggest
func (h *BarcodeHandler) Suggest(c *gin.Context) {
	var req SuggestBarcodeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.barcodeService.SuggestBarcode(req.PartNumber, req.Format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ScanQuality handles POST /barcodes/scan-quality
func (h *BarcodeHandler) ScanQuality(c *gin.Context) {
	var req ScanQualityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.barcodeService.ValidateScanQuality(req.Confidence, req.Length); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ScanQualityResponse{Acceptable: true})
}

// Formats handles GET /barcodes/formats
func (h *BarcodeHandler) Formats(c *gin.Context) {
	h.Success(c, h.barcodeService.Formats())
}
