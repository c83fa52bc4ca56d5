package handler

import (
	"net/http"
	"strings"

	inventoryapp "github.com/erp/inventory/internal/application/inventory"
	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/infrastructure/logger"
	"github.com/erp/inventory/internal/interfaces/http/dto"
	"github.com/erp/inventory/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conditional request headers
const (
	HeaderIfMatch        = "If-Match"
	HeaderIfNoneMatch    = "If-None-Match"
	HeaderETag           = "ETag"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, code, message string) {
	h.Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, shared.CodeUnauthorized, message)
}

// HandleError converts domain errors to their mapped status.
// Anything else is an infrastructure failure and is reported as 500 without detail.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	if domainErr, ok := shared.AsDomainError(err); ok {
		h.Error(c, dto.StatusForDomainError(domainErr), domainErr.Code, domainErr.Message)
		return
	}
	_ = c.Error(err)
	logger.L(c.Request.Context()).Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// HandleConditionalError is HandleError for requests that may carry If-Match.
// A conflict against a supplied tag means the precondition failed.
func (h *BaseHandler) HandleConditionalError(c *gin.Context, err error) {
	if ifMatch(c) != "" && shared.IsConcurrencyConflict(err) {
		h.Error(c, http.StatusPreconditionFailed, shared.CodeConcurrencyConflict, err.Error())
		return
	}
	h.HandleError(c, err)
}

// bindJSON binds the body into req, writing the 400 response on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters into req, writing the 400 response on failure
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// parseID parses the named path parameter as a UUID
func (h *BaseHandler) parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.BadRequest(c, shared.CodeInvalidInput, "Invalid "+param+" format")
		return uuid.Nil, false
	}
	return id, true
}

// actor builds the acting user from the verified token
func (h *BaseHandler) actor(c *gin.Context) (inventoryapp.Actor, bool) {
	id, err := middleware.GetActorUUID(c)
	if err != nil {
		h.Unauthorized(c, "Authenticated actor required")
		return inventoryapp.Actor{}, false
	}
	return inventoryapp.Actor{ID: id, Role: inventory.ApprovalRole(middleware.GetActorRole(c))}, true
}

// setETag exposes the item version tag, quoted as HTTP requires
func setETag(c *gin.Context, tag string) {
	if tag != "" {
		c.Header(HeaderETag, `"`+tag+`"`)
	}
}

func ifMatch(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(HeaderIfMatch))
}
