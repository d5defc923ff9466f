package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcouto/ensalamento/internal/app/models/dto"
	"github.com/gcouto/ensalamento/internal/app/services"
	"github.com/gcouto/ensalamento/internal/middleware"
)

// AllocationController handles allocation runs, manual overrides and the
// interactive room suggestion query
type AllocationController struct {
	allocationService *services.AllocationService
	scoringService    *services.ScoringService
}

// NewAllocationController creates a new AllocationController
func NewAllocationController(allocationService *services.AllocationService, scoringService *services.ScoringService) *AllocationController {
	return &AllocationController{
		allocationService: allocationService,
		scoringService:    scoringService,
	}
}

// RunAllocation starts a full allocation pass for one semester
// @Summary Run the room allocation for a semester
// @Description Places every unallocated demand of the semester. The run is synchronous and system-wide exclusive; a second concurrent invocation is rejected with 409.
// @Tags allocations
// @Produce json
// @Param id path int true "Semester ID"
// @Success 200 {object} dto.APIResponse{data=models.RunSummary} "Run finished"
// @Failure 404 {object} dto.ErrorResponse "Semester not found"
// @Failure 409 {object} dto.ErrorResponse "Another run is active"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /semesters/{id}/allocations/run [post]
func (c *AllocationController) RunAllocation(ctx *gin.Context) {
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	summary, err := c.allocationService.Run(ctx, semesterID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(summary))
}

// GetRunSummary returns the summary of the semester's last run
// @Summary Get the last allocation run summary
// @Tags allocations
// @Produce json
// @Param id path int true "Semester ID"
// @Success 200 {object} dto.APIResponse{data=models.RunSummary} "Summary retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "No run recorded for the semester"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /semesters/{id}/allocations/summary [get]
func (c *AllocationController) GetRunSummary(ctx *gin.Context) {
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	summary, err := c.allocationService.LastSummary(semesterID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(summary))
}

// ListAllocations returns the semester's committed allocation records
// @Summary List allocation records
// @Tags allocations
// @Produce json
// @Param id path int true "Semester ID"
// @Success 200 {object} dto.APIResponse{data=[]models.AllocationRecord} "Records retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Semester not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /semesters/{id}/allocations [get]
func (c *AllocationController) ListAllocations(ctx *gin.Context) {
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	records, err := c.allocationService.ListBySemester(ctx, semesterID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(records))
}

// AllocateManually commits one demand to one room
// @Summary Manually allocate a demand
// @Description Assigns a specific room to a demand, bypassing scoring but not conflict checking
// @Tags allocations
// @Accept json
// @Produce json
// @Param request body dto.ManualAllocationRequest true "Demand and room"
// @Success 201 {object} dto.APIResponse{data=[]models.AllocationRecord} "Allocation committed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Demand or room not found"
// @Failure 409 {object} dto.ErrorResponse "A requested slot is occupied"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /allocations [post]
func (c *AllocationController) AllocateManually(ctx *gin.Context) {
	var req dto.ManualAllocationRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	records, err := c.allocationService.AllocateManually(ctx, req.DemandID, req.RoomID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(records))
}

// Deallocate frees a demand's allocation
// @Summary Deallocate a demand
// @Tags allocations
// @Accept json
// @Produce json
// @Param request body dto.DeallocationRequest true "Demand to free"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Allocation removed"
// @Failure 404 {object} dto.ErrorResponse "Demand holds no allocation"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /allocations [delete]
func (c *AllocationController) Deallocate(ctx *gin.Context) {
	var req dto.DeallocationRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	if err := c.allocationService.Deallocate(ctx, req.DemandID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Allocation removed"}))
}

// SuggestRooms returns the ranked candidate rooms for one demand
// @Summary Suggest rooms for a demand
// @Description Scores every room for the demand with the same engine the automatic run uses and returns the ranked breakdowns
// @Tags allocations
// @Accept json
// @Produce json
// @Param request body dto.SuggestionRequest true "Demand to score"
// @Success 200 {object} dto.APIResponse{data=dto.SuggestionResponse} "Suggestions computed"
// @Failure 400 {object} dto.ErrorResponse "Malformed schedule code"
// @Failure 404 {object} dto.ErrorResponse "Demand not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /allocations/suggestions [post]
func (c *AllocationController) SuggestRooms(ctx *gin.Context) {
	var req dto.SuggestionRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	breakdowns, unmatched, err := c.scoringService.SuggestRooms(ctx, req.DemandID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuggestionResponse{
		Suggestions:             breakdowns,
		UnmatchedProfessorNames: unmatched,
	}))
}
