package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/unicluster/internal/app/models/dto"
)

// BindJSON binds and validates a request body. On failure it writes a 400
// response and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(ValidationErrorDetail(err)))
		return false
	}
	return true
}

// ValidationErrorDetail converts a binding error into an ErrorDetail listing every failed field
func ValidationErrorDetail(err error) *dto.ErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = formatValidationError(fe)
	}

	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").WithDetails(fields)
	if len(verrs) == 1 {
		detail = detail.WithField(verrs[0].Field())
	}
	return detail
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
