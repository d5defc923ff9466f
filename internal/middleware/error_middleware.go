package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcouto/ensalamento/internal/app/models/dto"
	"github.com/gcouto/ensalamento/internal/pkg/apperrors"
	"github.com/gcouto/ensalamento/internal/pkg/logger"
)

// HandleAPIError maps service-layer errors onto HTTP responses. Every
// controller funnels its error returns through here so status codes and
// envelope shapes stay uniform.
func HandleAPIError(c *gin.Context, err error) {
	detail := errorDetailFor(err)
	status := statusFor(err)

	var custom *apperrors.CustomError
	if errors.As(err, &custom) {
		if custom.Message != "" {
			detail.Message = custom.Message
		}
		if custom.Details != nil {
			detail = detail.WithDetails(custom.Details)
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}

	c.JSON(status, dto.APIResponse{
		Error:     detail,
		Timestamp: time.Now(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrScheduleFormat),
		errors.Is(err, apperrors.ErrBadRequest),
		errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrOccupiedSlot),
		errors.Is(err, apperrors.ErrConcurrentRun),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrResourceAlreadyExists),
		errors.Is(err, apperrors.ErrSemesterAlreadyExists),
		errors.Is(err, apperrors.ErrRoomAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrResourceNotFound),
		errors.Is(err, apperrors.ErrSemesterNotFound),
		errors.Is(err, apperrors.ErrRoomNotFound),
		errors.Is(err, apperrors.ErrDemandNotFound),
		errors.Is(err, apperrors.ErrDemandNotAllocated),
		errors.Is(err, apperrors.ErrProfessorNotFound),
		errors.Is(err, apperrors.ErrReservationNotFound),
		errors.Is(err, apperrors.ErrRunNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func errorDetailFor(err error) *dto.ErrorDetail {
	switch {
	case errors.Is(err, apperrors.ErrScheduleFormat):
		return dto.NewErrorDetail(dto.ErrorCodeScheduleFormat, err.Error()).WithField("scheduleCode")
	case errors.Is(err, apperrors.ErrOccupiedSlot):
		return dto.NewErrorDetail(dto.ErrorCodeOccupiedSlot, err.Error())
	case errors.Is(err, apperrors.ErrConcurrentRun):
		return dto.NewErrorDetail(dto.ErrorCodeConcurrentRun, err.Error())
	case errors.Is(err, apperrors.ErrRunNotFound):
		return dto.NewErrorDetail(dto.ErrorCodeRunNotFound, err.Error())
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		return dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error())
	case errors.Is(err, apperrors.ErrSemesterAlreadyExists),
		errors.Is(err, apperrors.ErrRoomAlreadyExists),
		errors.Is(err, apperrors.ErrResourceAlreadyExists):
		return dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		return dto.NewErrorDetail(dto.ErrorCodeConflict, err.Error())
	case errors.Is(err, apperrors.ErrSemesterNotFound),
		errors.Is(err, apperrors.ErrRoomNotFound),
		errors.Is(err, apperrors.ErrDemandNotFound),
		errors.Is(err, apperrors.ErrDemandNotAllocated),
		errors.Is(err, apperrors.ErrProfessorNotFound),
		errors.Is(err, apperrors.ErrReservationNotFound),
		errors.Is(err, apperrors.ErrResourceNotFound):
		return dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, err.Error())
	default:
		return dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}
