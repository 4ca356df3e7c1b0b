package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/unitime/internal/app/models/dto"
	"github.com/yigit/unitime/internal/pkg/apperrors"
	"github.com/yigit/unitime/internal/pkg/logger"
)

// HandleAPIError maps an application error to an HTTP status and the standard
// error envelope. Controllers call it for every service error so the mapping
// from the error taxonomy to status codes lives in exactly one place.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classify(err)

	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
	}

	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) && customErr.Details != nil {
		detail.WithDetails(customErr.Details)
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func classify(err error) (int, *dto.ErrorDetail) {
	switch {
	case apperrors.Is(err, apperrors.ErrValidationFailed, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error())

	case apperrors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, err.Error())

	case apperrors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, err.Error())

	case apperrors.Is(err, apperrors.ErrTokenInvalid, apperrors.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, err.Error())

	case apperrors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, err.Error())

	case apperrors.Is(err, apperrors.ErrResourceNotFound,
		apperrors.ErrRequestNotFound,
		apperrors.ErrTimeSlotNotFound,
		apperrors.ErrRoomNotFound,
		apperrors.ErrSectionNotFound,
		apperrors.ErrAssignmentNotFound,
		apperrors.ErrInstructorNotFound,
		apperrors.ErrUserNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, err.Error())

	case apperrors.Is(err, apperrors.ErrInvalidState,
		apperrors.ErrRequestAlreadyTaken,
		apperrors.ErrRequestNotAccepted,
		apperrors.ErrRequestHasReservations):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeInvalidState, err.Error())

	case apperrors.Is(err, apperrors.ErrNoEligibleRoom):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeNoEligibleRoom, err.Error())

	case apperrors.Is(err, apperrors.ErrConflict,
		apperrors.ErrSlotUnavailable,
		apperrors.ErrRoomOccupied,
		apperrors.ErrRoomTooSmall,
		apperrors.ErrRoomTypeMismatch):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeScheduleConflict, err.Error())

	default:
		return http.StatusInternalServerError,
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "an internal error occurred").
				WithSeverity(dto.ErrorSeverityCritical)
	}
}

// HandleValidationError maps a request binding failure to a 400 response
func HandleValidationError(c *gin.Context, err error) {
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error())
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
}
