package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gcouto/ensalamento/internal/app/models"
	"github.com/gcouto/ensalamento/internal/app/repositories"
	"github.com/gcouto/ensalamento/internal/pkg/apperrors"
)

// SemesterService manages the academic term records every allocation and
// class conflict check is scoped to.
type SemesterService struct {
	semesterRepo SemesterStore
}

// NewSemesterService creates a new semester service
func NewSemesterService(semesterRepo SemesterStore) *SemesterService {
	return &SemesterService{semesterRepo: semesterRepo}
}

// Create registers a new semester after validating its date range.
func (s *SemesterService) Create(ctx context.Context, semester *models.Semester) error {
	semester.Label = strings.TrimSpace(semester.Label)
	if semester.Label == "" {
		return apperrors.NewBadRequestError("semester label is required")
	}
	if !semester.EndDate.After(semester.StartDate) {
		return apperrors.NewBadRequestError("semester end date must be after its start date")
	}

	err := s.semesterRepo.Create(ctx, semester)
	if err != nil {
		if errors.Is(err, repositories.ErrSemesterAlreadyExists) {
			return apperrors.ErrSemesterAlreadyExists
		}
		return fmt.Errorf("error creating semester: %w", err)
	}
	return nil
}

// GetByID retrieves one semester.
func (s *SemesterService) GetByID(ctx context.Context, id int64) (*models.Semester, error) {
	semester, err := s.semesterRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSemesterNotFound) {
			return nil, apperrors.ErrSemesterNotFound
		}
		return nil, fmt.Errorf("error retrieving semester: %w", err)
	}
	return semester, nil
}

// GetAll lists every semester, most recent first.
func (s *SemesterService) GetAll(ctx context.Context) ([]*models.Semester, error) {
	semesters, err := s.semesterRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing semesters: %w", err)
	}
	return semesters, nil
}
