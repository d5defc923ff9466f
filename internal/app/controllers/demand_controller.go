package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcouto/ensalamento/internal/app/models/dto"
	"github.com/gcouto/ensalamento/internal/app/services"
	"github.com/gcouto/ensalamento/internal/middleware"
)

// DemandController handles course demand ingestion and lifecycle
type DemandController struct {
	demandService *services.DemandService
}

// NewDemandController creates a new DemandController
func NewDemandController(demandService *services.DemandService) *DemandController {
	return &DemandController{demandService: demandService}
}

// ImportDemands ingests a demand feed batch for one semester
// @Summary Import a demand feed
// @Description Upserts feed records de-duplicated on their external id. Records with malformed schedule codes or unknown professor names are stored and reported as warnings; the batch never aborts on them.
// @Tags demands
// @Accept json
// @Produce json
// @Param id path int true "Semester ID"
// @Param request body dto.ImportDemandsRequest true "Demand feed batch"
// @Success 200 {object} dto.APIResponse{data=services.ImportResult} "Feed imported"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Semester not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /semesters/{id}/demands/import [post]
func (c *DemandController) ImportDemands(ctx *gin.Context) {
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.ImportDemandsRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	result, err := c.demandService.ImportFeed(ctx, semesterID, req.ToModels())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result))
}

// ListDemands lists a semester's demands with allocation status
// @Summary List semester demands
// @Tags demands
// @Produce json
// @Param id path int true "Semester ID"
// @Success 200 {object} dto.APIResponse{data=[]models.CourseDemand} "Demands retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Semester not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /semesters/{id}/demands [get]
func (c *DemandController) ListDemands(ctx *gin.Context) {
	semesterID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	demands, err := c.demandService.ListBySemester(ctx, semesterID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(demands))
}

// GetDemandByID retrieves one demand with its hard rules
// @Summary Get demand by ID
// @Tags demands
// @Produce json
// @Param id path int true "Demand ID"
// @Success 200 {object} dto.APIResponse{data=models.CourseDemand} "Demand retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Demand not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /demands/{id} [get]
func (c *DemandController) GetDemandByID(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	demand, err := c.demandService.GetByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(demand))
}

// AddRule attaches a hard rule to a demand
// @Summary Add a hard rule to a demand
// @Description Attaches a mandatory room constraint (type, specific room or characteristic) to one demand
// @Tags demands
// @Accept json
// @Produce json
// @Param id path int true "Demand ID"
// @Param request body dto.AddRuleRequest true "Rule information"
// @Success 201 {object} dto.APIResponse{data=models.HardRule} "Rule added"
// @Failure 400 {object} dto.ErrorResponse "Invalid rule"
// @Failure 404 {object} dto.ErrorResponse "Demand not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /demands/{id}/rules [post]
func (c *DemandController) AddRule(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.AddRuleRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	rule := req.ToModel(id)
	if err := c.demandService.AddRule(ctx, rule); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(rule))
}

// CancelDemand removes a demand with its rules and allocation records
// @Summary Cancel a demand
// @Tags demands
// @Produce json
// @Param id path int true "Demand ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Demand cancelled"
// @Failure 404 {object} dto.ErrorResponse "Demand not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /demands/{id} [delete]
func (c *DemandController) CancelDemand(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.demandService.Cancel(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Demand cancelled"}))
}
