package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/unicluster/internal/app/models/dto"
	"github.com/yigit/unicluster/internal/pkg/apperrors"
	"github.com/yigit/unicluster/internal/pkg/logger"
)

// HandleAPIError maps service errors onto HTTP responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classifyError(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("requestId", c.GetString(RequestIDKey)).
			Str("path", c.FullPath()).
			Msg("Request failed")
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}

func classifyError(err error) (int, *dto.ErrorDetail) {
	message := err.Error()
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		message = custom.Message
	}

	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message)

	case errors.Is(err, apperrors.ErrApplicationNotFound),
		errors.Is(err, apperrors.ErrPlacementNotFound),
		errors.Is(err, apperrors.ErrOfferingNotFound),
		errors.Is(err, apperrors.ErrClusterNotFound),
		errors.Is(err, apperrors.ErrStudentNotFound),
		errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message)

	case errors.Is(err, apperrors.ErrCapacityExceeded):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeCapacityExceeded, "Offering has no remaining capacity")
	case errors.Is(err, apperrors.ErrConcurrentModification):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConcurrentModification, message)
	case errors.Is(err, apperrors.ErrInvalidStatusTransition):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeInvalidStatusTransition, message)
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, message)

	case errors.Is(err, apperrors.ErrNotEligible):
		return http.StatusUnprocessableEntity, dto.NewErrorDetail(dto.ErrorCodeNotEligible, message)
	case errors.Is(err, apperrors.ErrMissingClusterMapping):
		return http.StatusUnprocessableEntity, dto.NewErrorDetail(dto.ErrorCodeMissingClusterMapping, message)

	case errors.Is(err, apperrors.ErrStorageFailure):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Database error")
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}
