package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gcouto/ensalamento/internal/app/models"
	"github.com/gcouto/ensalamento/internal/app/repositories"
	"github.com/gcouto/ensalamento/internal/pkg/apperrors"
	"github.com/gcouto/ensalamento/internal/pkg/logger"
	"github.com/gcouto/ensalamento/internal/pkg/schedule"
)

// DemandWriteStore extends DemandStore with the mutations the feed importer
// and manual entry need.
type DemandWriteStore interface {
	DemandStore
	Upsert(ctx context.Context, demand *models.CourseDemand) error
	AddRule(ctx context.Context, rule *models.HardRule) error
	Delete(ctx context.Context, id int64) error
}

// ImportWarning flags one feed record that was stored but needs attention.
type ImportWarning struct {
	ExternalID string `json:"externalId"`
	Message    string `json:"message"`
}

// ImportResult summarizes one feed import batch.
type ImportResult struct {
	Imported int             `json:"imported"`
	Warnings []ImportWarning `json:"warnings,omitempty"`
}

// DemandService handles course demand ingestion and lifecycle. Demands are
// created by the upstream feed or manual entry; only the orchestrator or a
// manual override assigns rooms, and cancellation removes the demand with
// its records.
type DemandService struct {
	demandRepo    DemandWriteStore
	semesterRepo  SemesterStore
	professorRepo ProfessorStore
}

// NewDemandService creates a new demand service
func NewDemandService(demandRepo DemandWriteStore, semesterRepo SemesterStore, professorRepo ProfessorStore) *DemandService {
	return &DemandService{
		demandRepo:    demandRepo,
		semesterRepo:  semesterRepo,
		professorRepo: professorRepo,
	}
}

// ImportFeed upserts a batch of feed records into one semester,
// de-duplicated on (semester, external id). Records with malformed schedule
// codes or unknown professor names are still stored; the problems are
// reported as per-record warnings and never abort the batch.
func (s *DemandService) ImportFeed(ctx context.Context, semesterID int64, demands []*models.CourseDemand) (*ImportResult, error) {
	if _, err := s.semesterRepo.GetByID(ctx, semesterID); err != nil {
		if errors.Is(err, repositories.ErrSemesterNotFound) {
			return nil, apperrors.ErrSemesterNotFound
		}
		return nil, fmt.Errorf("error retrieving semester: %w", err)
	}

	result := &ImportResult{}
	for _, demand := range demands {
		demand.SemesterID = semesterID
		demand.ExternalID = strings.TrimSpace(demand.ExternalID)
		if demand.ExternalID == "" {
			result.Warnings = append(result.Warnings, ImportWarning{
				Message: fmt.Sprintf("record %s/%s skipped: missing external id", demand.CourseCode, demand.SectionLabel),
			})
			continue
		}

		if _, err := schedule.Decode(demand.ScheduleCode); err != nil {
			result.Warnings = append(result.Warnings, ImportWarning{
				ExternalID: demand.ExternalID,
				Message:    err.Error(),
			})
		}

		if _, unmatched, err := loadPreferences(ctx, s.professorRepo, demand); err != nil {
			return nil, err
		} else {
			for _, name := range unmatched {
				result.Warnings = append(result.Warnings, ImportWarning{
					ExternalID: demand.ExternalID,
					Message:    fmt.Sprintf("professor %q not found in registry", name),
				})
			}
		}

		if err := s.demandRepo.Upsert(ctx, demand); err != nil {
			return nil, fmt.Errorf("error importing demand %s: %w", demand.ExternalID, err)
		}
		result.Imported++
	}

	logger.Info().
		Int64("semesterId", semesterID).
		Int("imported", result.Imported).
		Int("warnings", len(result.Warnings)).
		Msg("Demand feed imported")

	return result, nil
}

// ListBySemester retrieves a semester's demands with their hard rules.
func (s *DemandService) ListBySemester(ctx context.Context, semesterID int64) ([]*models.CourseDemand, error) {
	if _, err := s.semesterRepo.GetByID(ctx, semesterID); err != nil {
		if errors.Is(err, repositories.ErrSemesterNotFound) {
			return nil, apperrors.ErrSemesterNotFound
		}
		return nil, fmt.Errorf("error retrieving semester: %w", err)
	}
	return s.demandRepo.ListBySemester(ctx, semesterID)
}

// GetByID retrieves one demand.
func (s *DemandService) GetByID(ctx context.Context, id int64) (*models.CourseDemand, error) {
	demand, err := s.demandRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrDemandNotFound) {
			return nil, apperrors.ErrDemandNotFound
		}
		return nil, fmt.Errorf("error retrieving course demand: %w", err)
	}
	return demand, nil
}

// AddRule attaches a hard rule to a demand after validating its shape.
func (s *DemandService) AddRule(ctx context.Context, rule *models.HardRule) error {
	switch rule.Kind {
	case models.RuleSpecificRoomRequired:
		if rule.RoomID == nil {
			return apperrors.NewBadRequestError("specific-room rule requires a room id")
		}
	case models.RuleRoomTypeRequired, models.RuleCharacteristicRequired:
		if strings.TrimSpace(rule.Value) == "" {
			return apperrors.NewBadRequestError("rule requires a value")
		}
	default:
		return apperrors.NewBadRequestError(fmt.Sprintf("unknown rule kind %q", rule.Kind))
	}

	if _, err := s.GetByID(ctx, rule.DemandID); err != nil {
		return err
	}

	if err := s.demandRepo.AddRule(ctx, rule); err != nil {
		return fmt.Errorf("error adding hard rule: %w", err)
	}
	return nil
}

// Cancel removes a demand along with its rules and allocation records.
func (s *DemandService) Cancel(ctx context.Context, id int64) error {
	err := s.demandRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrDemandNotFound) {
			return apperrors.ErrDemandNotFound
		}
		return fmt.Errorf("error cancelling demand: %w", err)
	}
	return nil
}
