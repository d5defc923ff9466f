package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcouto/ensalamento/internal/app/models/dto"
	"github.com/gcouto/ensalamento/internal/app/services"
	"github.com/gcouto/ensalamento/internal/middleware"
)

// ReservationController handles ad-hoc room reservations
type ReservationController struct {
	reservationService *services.ReservationService
}

// NewReservationController creates a new ReservationController
func NewReservationController(reservationService *services.ReservationService) *ReservationController {
	return &ReservationController{reservationService: reservationService}
}

// CreateReservation creates a one-off or recurring reservation
// @Summary Create a reservation
// @Description Expands the recurrence descriptor into concrete occurrences and persists the whole batch, or rejects the entire request if any occurrence conflicts
// @Tags reservations
// @Accept json
// @Produce json
// @Param request body dto.CreateReservationRequest true "Reservation request"
// @Success 201 {object} dto.APIResponse{data=models.ReservationRequest} "Reservation created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Room not found"
// @Failure 409 {object} dto.ErrorResponse "A requested slot is occupied"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reservations [post]
func (c *ReservationController) CreateReservation(ctx *gin.Context) {
	var req dto.CreateReservationRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	request, recurrence, err := req.ToModel()
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Dates must use the YYYY-MM-DD format")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	_, err = c.reservationService.Create(ctx, request, services.Recurrence{
		Type:     recurrence.Type,
		Until:    recurrence.Until,
		Weekdays: recurrence.Weekdays,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(request))
}

// ListReservations lists reservation occurrences merged for display
// @Summary List reservation occurrences
// @Description Returns occurrences in the date range, with contiguous blocks of the same request merged into ranges
// @Tags reservations
// @Produce json
// @Param roomId query int false "Filter by room ID"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=[]dto.OccurrenceRange} "Occurrences retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid range"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reservations [get]
func (c *ReservationController) ListReservations(ctx *gin.Context) {
	from, ok := queryDate(ctx, "from")
	if !ok {
		return
	}
	to, ok := queryDate(ctx, "to")
	if !ok {
		return
	}

	var roomID int64
	if raw := ctx.Query("roomId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "roomId must be a valid number")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		roomID = parsed
	}

	occurrences, err := c.reservationService.ListOccurrences(ctx, roomID, from, to)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.MergeContiguous(occurrences)))
}

// CancelSeries removes a reservation request with every occurrence
// @Summary Cancel a reservation series
// @Tags reservations
// @Produce json
// @Param requestId path string true "Reservation request ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Series cancelled"
// @Failure 400 {object} dto.ErrorResponse "Invalid request ID"
// @Failure 404 {object} dto.ErrorResponse "Reservation not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reservations/{requestId} [delete]
func (c *ReservationController) CancelSeries(ctx *gin.Context) {
	if err := c.reservationService.CancelSeries(ctx, ctx.Param("requestId")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Reservation series cancelled"}))
}

// CancelOccurrence removes a single occurrence of a series
// @Summary Cancel one reservation occurrence
// @Tags reservations
// @Produce json
// @Param id path int true "Occurrence ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Occurrence cancelled"
// @Failure 400 {object} dto.ErrorResponse "Invalid occurrence ID"
// @Failure 404 {object} dto.ErrorResponse "Occurrence not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reservations/occurrences/{id} [delete]
func (c *ReservationController) CancelOccurrence(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.reservationService.CancelOccurrence(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Reservation occurrence cancelled"}))
}

// queryDate parses a required date query parameter, writing the 400
// response itself on failure.
func queryDate(ctx *gin.Context, name string) (time.Time, bool) {
	value, err := dto.ParseDate(ctx.Query(name))
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, name+" must be a YYYY-MM-DD date")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return time.Time{}, false
	}
	return value, true
}
