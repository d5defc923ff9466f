package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gcouto/ensalamento/internal/app/models/dto"
	"github.com/gcouto/ensalamento/internal/app/services"
	"github.com/gcouto/ensalamento/internal/middleware"
)

// SemesterController handles semester-related operations
type SemesterController struct {
	semesterService *services.SemesterService
}

// NewSemesterController creates a new SemesterController
func NewSemesterController(semesterService *services.SemesterService) *SemesterController {
	return &SemesterController{semesterService: semesterService}
}

// CreateSemester registers a new semester
// @Summary Create a new semester
// @Description Registers an academic term with its label and date range
// @Tags semesters
// @Accept json
// @Produce json
// @Param request body dto.CreateSemesterRequest true "Semester information"
// @Success 201 {object} dto.APIResponse{data=dto.SemesterResponse} "Semester created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Semester already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /semesters [post]
func (c *SemesterController) CreateSemester(ctx *gin.Context) {
	var req dto.CreateSemesterRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	semester, err := req.ToModel()
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Dates must use the YYYY-MM-DD format")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.semesterService.Create(ctx, semester); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.NewSemesterResponse(semester)))
}

// GetSemesterByID retrieves a semester by ID
// @Summary Get semester by ID
// @Tags semesters
// @Produce json
// @Param id path int true "Semester ID"
// @Success 200 {object} dto.APIResponse{data=dto.SemesterResponse} "Semester retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid semester ID"
// @Failure 404 {object} dto.ErrorResponse "Semester not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /semesters/{id} [get]
func (c *SemesterController) GetSemesterByID(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	semester, err := c.semesterService.GetByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewSemesterResponse(semester)))
}

// GetAllSemesters retrieves all semesters
// @Summary List semesters
// @Tags semesters
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.SemesterResponse} "Semesters retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /semesters [get]
func (c *SemesterController) GetAllSemesters(ctx *gin.Context) {
	semesters, err := c.semesterService.GetAll(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewSemesterListResponse(semesters)))
}

// pathID parses a numeric path parameter, writing the 400 response itself
// when the value is not a number.
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter").
			WithDetails(name + " must be a valid number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
