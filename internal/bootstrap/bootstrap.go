package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/gcouto/ensalamento/internal/app/controllers"
	appMigrations "github.com/gcouto/ensalamento/internal/app/migrations"
	appRepos "github.com/gcouto/ensalamento/internal/app/repositories"
	appRoutes "github.com/gcouto/ensalamento/internal/app/routes"
	appServices "github.com/gcouto/ensalamento/internal/app/services"
	"github.com/gcouto/ensalamento/internal/config"
	"github.com/gcouto/ensalamento/internal/db"
	appMiddleware "github.com/gcouto/ensalamento/internal/middleware"
	"github.com/gcouto/ensalamento/internal/pkg/logger"
	"github.com/gcouto/ensalamento/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	SemesterController    *appControllers.SemesterController
	RoomController        *appControllers.RoomController
	ProfessorController   *appControllers.ProfessorController
	DemandController      *appControllers.DemandController
	AllocationController  *appControllers.AllocationController
	ReservationController *appControllers.ReservationController
	Repos                 *appRepos.Repositories
	Logger                zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(cfg.Logging.Level),
		Pretty: strings.EqualFold(cfg.Logging.Format, "console"),
	})

	logger.Info().
		Str("config", configPath).
		Str("mode", cfg.Server.Mode).
		Msg("Configuration loaded")

	return cfg, nil
}

// SetupDatabase connects to PostgreSQL, runs migrations and seeds the
// time block catalog.
func SetupDatabase(cfg *config.Config) (*db.PostgresDB, error) {
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := database.Pool.Ping(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	migrator := appMigrations.NewMigrator(database.Pool)
	if err := migrator.MigrateFromDirectory("migrations"); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := seed.CreateDefaultData(ctx, database.Pool); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to seed default data: %w", err)
	}

	logger.Info().Msg("Database ready")
	return database, nil
}

// BuildDependencies wires repositories, services and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool) *Dependencies {
	repos := appRepos.NewRepositories(dbPool)

	conflictChecker := appServices.NewConflictChecker(
		repos.AllocationRepository,
		repos.ReservationRepository,
	)

	semesterService := appServices.NewSemesterService(repos.SemesterRepository)
	roomService := appServices.NewRoomService(repos.RoomRepository)
	professorService := appServices.NewProfessorService(repos.ProfessorRepository, repos.RoomRepository)
	demandService := appServices.NewDemandService(
		repos.DemandRepository,
		repos.SemesterRepository,
		repos.ProfessorRepository,
	)
	scoringService := appServices.NewScoringService(
		repos.DemandRepository,
		repos.RoomRepository,
		repos.ProfessorRepository,
		repos.AllocationRepository,
	)
	allocationService := appServices.NewAllocationService(
		repos.SemesterRepository,
		repos.DemandRepository,
		repos.RoomRepository,
		repos.ProfessorRepository,
		repos.AllocationRepository,
		conflictChecker,
		cfg.Allocation.ScoringWorkers,
	)
	reservationService := appServices.NewReservationService(
		repos.ReservationRepository,
		repos.RoomRepository,
		cfg.Reservation.MaxHorizonDays,
	)

	return &Dependencies{
		SemesterController:    appControllers.NewSemesterController(semesterService),
		RoomController:        appControllers.NewRoomController(roomService),
		ProfessorController:   appControllers.NewProfessorController(professorService),
		DemandController:      appControllers.NewDemandController(demandService),
		AllocationController:  appControllers.NewAllocationController(allocationService, scoringService),
		ReservationController: appControllers.NewReservationController(reservationService),
		Repos:                 repos,
		Logger:                log.Logger,
	}
}

// SetupRouter configures the Gin engine with middleware, swagger and all
// application routes.
func SetupRouter(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if strings.EqualFold(cfg.Server.Mode, "production") {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger())

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(
		router,
		deps.SemesterController,
		deps.RoomController,
		deps.ProfessorController,
		deps.DemandController,
		deps.AllocationController,
		deps.ReservationController,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
