package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/gcouto/ensalamento/internal/app/controllers"
	"github.com/gcouto/ensalamento/internal/app/models/dto"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	semesterController *controllers.SemesterController,
	roomController *controllers.RoomController,
	professorController *controllers.ProfessorController,
	demandController *controllers.DemandController,
	allocationController *controllers.AllocationController,
	reservationController *controllers.ReservationController,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// Semester routes
	semesters := v1.Group("/semesters")
	{
		semesters.POST("", semesterController.CreateSemester)
		semesters.GET("", semesterController.GetAllSemesters)
		semesters.GET("/:id", semesterController.GetSemesterByID)

		// Semester-scoped demand and allocation routes
		semesters.POST("/:id/demands/import", demandController.ImportDemands)
		semesters.GET("/:id/demands", demandController.ListDemands)
		semesters.POST("/:id/allocations/run", allocationController.RunAllocation)
		semesters.GET("/:id/allocations/summary", allocationController.GetRunSummary)
		semesters.GET("/:id/allocations", allocationController.ListAllocations)
	}

	// Room inventory routes
	rooms := v1.Group("/rooms")
	{
		rooms.POST("", roomController.CreateRoom)
		rooms.GET("", roomController.GetAllRooms)
		rooms.GET("/:id", roomController.GetRoomByID)
	}

	// Professor registry routes
	professors := v1.Group("/professors")
	{
		professors.POST("", professorController.RegisterProfessor)
		professors.GET("/:id", professorController.GetProfessorByID)
		professors.PUT("/:id/preference", professorController.SavePreference)
	}

	// Demand routes not scoped to a semester
	demands := v1.Group("/demands")
	{
		demands.GET("/:id", demandController.GetDemandByID)
		demands.POST("/:id/rules", demandController.AddRule)
		demands.DELETE("/:id", demandController.CancelDemand)
	}

	// Manual allocation and suggestion routes
	allocations := v1.Group("/allocations")
	{
		allocations.POST("", allocationController.AllocateManually)
		allocations.DELETE("", allocationController.Deallocate)
		allocations.POST("/suggestions", allocationController.SuggestRooms)
	}

	// Reservation routes
	reservations := v1.Group("/reservations")
	{
		reservations.POST("", reservationController.CreateReservation)
		reservations.GET("", reservationController.ListReservations)
		reservations.DELETE("/:requestId", reservationController.CancelSeries)
		reservations.DELETE("/occurrences/:id", reservationController.CancelOccurrence)
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.NewAPIResponse(gin.H{"status": "ok"}))
	})

	// Swagger routes are set up in bootstrap.go already
}
