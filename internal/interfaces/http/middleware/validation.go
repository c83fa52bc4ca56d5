package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/erp/inventory/internal/domain/barcode"
	"github.com/erp/inventory/internal/domain/location"
	"github.com/erp/inventory/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator configures gin's validator: JSON field names in errors and
// the barcode_format and location_type tags. It is safe to call more than once.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("barcode_format", validateBarcodeFormat)
	_ = v.RegisterValidation("location_type", validateLocationType)
}

// validateBarcodeFormat accepts AUTO, an empty value, or any symbology the
// default codec knows, in any of the spellings ParseFormat understands.
func validateBarcodeFormat(fl validator.FieldLevel) bool {
	format := barcode.ParseFormat(fl.Field().String())
	if format == barcode.FormatAuto {
		return true
	}
	for _, known := range barcode.NewDefaultCodec().Formats() {
		if known == format {
			return true
		}
	}
	return false
}

func validateLocationType(fl validator.FieldLevel) bool {
	return location.LocationType(fl.Field().String()).IsValid()
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse(
		"Request validation failed",
		requestID,
		details,
	)
}

// HandleValidationError writes a 400 response for a failed bind.
// Malformed JSON is reported as INVALID_JSON rather than as field errors.
func HandleValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidJSON, "Request body could not be parsed", getRequestID(c)))
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, FormatValidationErrors(err, getRequestID(c)))
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	case "barcode_format":
		return "Unsupported barcode format"
	case "location_type":
		types := location.AllLocationTypes()
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = string(t)
		}
		return "Must be one of: " + strings.Join(names, ", ")
	default:
		return "Invalid value"
	}
}
