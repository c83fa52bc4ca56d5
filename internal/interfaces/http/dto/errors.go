package dto

import (
	"net/http"

	"github.com/erp/inventory/internal/domain/shared"
)

// Transport-level error codes. Rule violations keep the code of the
// domain error that produced them.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "INVALID_TOKEN"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Malformed input -> 400 Bad Request
	ErrCodeBadRequest:            http.StatusBadRequest,
	ErrCodeValidation:            http.StatusBadRequest,
	ErrCodeInvalidJSON:           http.StatusBadRequest,
	shared.CodeInvalidInput:      http.StatusBadRequest,
	"INVALID_QUANTITY":           http.StatusBadRequest,
	"INVALID_TRANSACTION_TYPE":   http.StatusBadRequest,
	"INVALID_PART_NUMBER":        http.StatusBadRequest,
	"INVALID_NAME":               http.StatusBadRequest,
	"INVALID_LOCATION":           http.StatusBadRequest,
	"INVALID_LOCATION_TYPE":      http.StatusBadRequest,
	"INVALID_STOCK_LEVEL":        http.StatusBadRequest,
	"INVALID_COST":               http.StatusBadRequest,
	"INVALID_PRICE":              http.StatusBadRequest,
	"INVALID_CAPACITY":           http.StatusBadRequest,
	"INVALID_CODE":               http.StatusBadRequest,
	"INVALID_LEAD_TIME":          http.StatusBadRequest,
	"INVALID_EMAIL":              http.StatusBadRequest,
	"INVALID_ITEM":               http.StatusBadRequest,
	"INVALID_TRANSACTION_NUMBER": http.StatusBadRequest,
	"INVALID_BARCODE_FORMAT":     http.StatusBadRequest,
	"UNSUPPORTED_FORMAT":         http.StatusBadRequest,
	"FORMAT_NOT_RECOGNIZED":      http.StatusBadRequest,
	"LOCATION_REQUIRED":          http.StatusBadRequest,
	"REASON_REQUIRED":            http.StatusBadRequest,
	"SAME_LOCATION":              http.StatusBadRequest,
	"SELF_PARENT":                http.StatusBadRequest,
	"BATCH_TOO_LARGE":            http.StatusBadRequest,
	"DUPLICATE_IN_BATCH":         http.StatusBadRequest,
	ErrCodeRequestTooLarge:       http.StatusRequestEntityTooLarge,
	ErrCodeRouteNotFound:         http.StatusNotFound,

	// Auth errors
	shared.CodeUnauthorized:  http.StatusUnauthorized,
	ErrCodeTokenExpired:      http.StatusUnauthorized,
	ErrCodeTokenInvalid:      http.StatusUnauthorized,
	shared.CodeForbidden:     http.StatusForbidden,
	"UNKNOWN_ROLE":           http.StatusForbidden,
	"EXCEEDS_APPROVAL_LIMIT": http.StatusForbidden,

	// Resource errors
	shared.CodeNotFound:            http.StatusNotFound,
	"PARENT_NOT_FOUND":             http.StatusNotFound,
	shared.CodeAlreadyExists:       http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,
	"DUPLICATE_REQUEST":            http.StatusConflict,

	// Rule violations against current state -> 422 Unprocessable Entity
	shared.CodeInvalidState:       http.StatusUnprocessableEntity,
	shared.CodeInsufficientStock:  http.StatusUnprocessableEntity,
	shared.CodeInvariantViolation: http.StatusUnprocessableEntity,
	"WOULD_GO_NEGATIVE":           http.StatusUnprocessableEntity,
	"UNREASONABLE_ADJUSTMENT":     http.StatusUnprocessableEntity,
	"QUANTITY_EXCEEDS_LIMIT":      http.StatusUnprocessableEntity,
	"INVALID_STATE_TRANSITION":    http.StatusUnprocessableEntity,
	"TRANSACTION_LOCKED":          http.StatusUnprocessableEntity,
	"ITEM_INACTIVE":               http.StatusUnprocessableEntity,
	"LOCATION_CANNOT_RECEIVE":     http.StatusUnprocessableEntity,
	"CIRCULAR_REFERENCE":          http.StatusUnprocessableEntity,
	"DEPTH_EXCEEDED":              http.StatusUnprocessableEntity,
	"INCOMPATIBLE_TYPE":           http.StatusUnprocessableEntity,
	"HAS_CHILDREN":                http.StatusUnprocessableEntity,
	"HAS_ITEMS":                   http.StatusUnprocessableEntity,
	"HAS_ACTIVE_TRANSACTIONS":     http.StatusUnprocessableEntity,
	"POOR_SCAN_QUALITY":           http.StatusUnprocessableEntity,
	"ALREADY_INACTIVE":            http.StatusUnprocessableEntity,
	"ALREADY_BLOCKED":             http.StatusUnprocessableEntity,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// StatusForDomainError returns the HTTP status for a rule violation.
// Codes without an explicit entry are business rule failures and map to 422.
func StatusForDomainError(err *shared.DomainError) int {
	if status, ok := ErrorCodeHTTPStatus[err.Code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
