package handler

import (
	"net/http"
	"strings"

	inventoryapp "github.com/erp/inventory/internal/application/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/interfaces/http/dto"
	"github.com/erp/inventory/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// TransactionHandler handles inventory transaction endpoints
type TransactionHandler struct {
	BaseHandler
	inventoryService *inventoryapp.InventoryService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(inventoryService *inventoryapp.InventoryService) *TransactionHandler {
	return &TransactionHandler{inventoryService: inventoryService}
}

// CancelTransactionRequest carries the optional cancellation reason
type CancelTransactionRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ValidationResult is returned by the dry-run endpoint
type ValidationResult struct {
	Valid bool `json:"valid"`
}

// Record handles POST /transactions.
// If-Match pins the item version when the transaction is applied directly.
func (h *TransactionHandler) Record(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req inventoryapp.RecordTransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.IfMatch = ifMatch(c)

	tx, err := h.inventoryService.RecordTransaction(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleConditionalError(c, err)
		return
	}
	h.Created(c, tx)
}

// Validate handles POST /transactions/validate. Nothing is persisted.
func (h *TransactionHandler) Validate(c *gin.Context) {
	var req inventoryapp.TransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.inventoryService.ValidateTransaction(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ValidationResult{Valid: true})
}

// Bulk handles POST /transactions/bulk.
// A partial failure reports the committed prefix alongside the error.
func (h *TransactionHandler) Bulk(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req inventoryapp.BulkProcessRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.IdempotencyKey = strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))

	result, err := h.inventoryService.BulkProcess(c.Request.Context(), req, actor)
	if err != nil && result == nil {
		h.HandleError(c, err)
		return
	}
	if err != nil {
		h.bulkFailure(c, result, err)
		return
	}
	h.Success(c, result)
}

func (h *TransactionHandler) bulkFailure(c *gin.Context, result *inventoryapp.BulkResult, err error) {
	status := http.StatusInternalServerError
	code := dto.ErrCodeInternal
	message := "An unexpected error occurred"
	if result.ErrorCode != "" {
		code = result.ErrorCode
		status = dto.GetHTTPStatus(code)
		if status == http.StatusInternalServerError {
			status = http.StatusUnprocessableEntity
		}
		message = result.Error
	} else {
		_ = c.Error(err)
	}

	resp := dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c))
	resp.Data = result
	c.JSON(status, resp)
}

// List handles GET /transactions
func (h *TransactionHandler) List(c *gin.Context) {
	var filter inventoryapp.TransactionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	txs, total, err := h.inventoryService.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := filter.Page, filter.PageSize
	defaults := shared.DefaultFilter()
	if page == 0 {
		page = defaults.Page
	}
	if pageSize == 0 {
		pageSize = defaults.PageSize
	}
	h.SuccessWithMeta(c, txs, total, page, pageSize)
}

// GetByID handles GET /transactions/:id
func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	tx, err := h.inventoryService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// GetByNumber handles GET /transactions/by-number/:number
func (h *TransactionHandler) GetByNumber(c *gin.Context) {
	tx, err := h.inventoryService.GetTransactionByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Modify handles PUT /transactions/:id
func (h *TransactionHandler) Modify(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.ModifyTransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tx, err := h.inventoryService.Modify(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Approve handles POST /transactions/:id/approve
func (h *TransactionHandler) Approve(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	tx, err := h.inventoryService.Approve(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Process handles POST /transactions/:id/process
func (h *TransactionHandler) Process(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	tx, err := h.inventoryService.Process(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Cancel handles POST /transactions/:id/cancel
func (h *TransactionHandler) Cancel(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req CancelTransactionRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	tx, err := h.inventoryService.Cancel(c.Request.Context(), id, req.Reason, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Retry handles POST /transactions/:id/retry
func (h *TransactionHandler) Retry(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	tx, err := h.inventoryService.Retry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}
