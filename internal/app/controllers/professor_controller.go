package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcouto/ensalamento/internal/app/models/dto"
	"github.com/gcouto/ensalamento/internal/app/services"
	"github.com/gcouto/ensalamento/internal/middleware"
)

// ProfessorController handles professor registry operations
type ProfessorController struct {
	professorService *services.ProfessorService
}

// NewProfessorController creates a new ProfessorController
func NewProfessorController(professorService *services.ProfessorService) *ProfessorController {
	return &ProfessorController{professorService: professorService}
}

// RegisterProfessor adds a professor to the registry
// @Summary Register a professor
// @Description Adds a professor to the registry; demand feeds resolve free-text names against it
// @Tags professors
// @Accept json
// @Produce json
// @Param request body dto.RegisterProfessorRequest true "Professor information"
// @Success 201 {object} dto.APIResponse{data=models.Professor} "Professor registered successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /professors [post]
func (c *ProfessorController) RegisterProfessor(ctx *gin.Context) {
	var req dto.RegisterProfessorRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	professor, err := c.professorService.Register(ctx, req.Name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(professor))
}

// GetProfessorByID retrieves a professor by ID
// @Summary Get professor by ID
// @Tags professors
// @Produce json
// @Param id path int true "Professor ID"
// @Success 200 {object} dto.APIResponse{data=models.Professor} "Professor retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid professor ID"
// @Failure 404 {object} dto.ErrorResponse "Professor not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /professors/{id} [get]
func (c *ProfessorController) GetProfessorByID(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	professor, err := c.professorService.GetByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(professor))
}

// SavePreference replaces a professor's soft room preferences
// @Summary Save professor preference
// @Description Replaces the professor's preferred room and characteristic set used by scoring
// @Tags professors
// @Accept json
// @Produce json
// @Param id path int true "Professor ID"
// @Param request body dto.SavePreferenceRequest true "Preference information"
// @Success 200 {object} dto.APIResponse{data=models.ProfessorPreference} "Preference saved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Professor or room not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /professors/{id}/preference [put]
func (c *ProfessorController) SavePreference(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.SavePreferenceRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	preference, err := c.professorService.SavePreference(ctx, id, req.PreferredRoomID, req.PreferredCharacteristics)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(preference))
}
