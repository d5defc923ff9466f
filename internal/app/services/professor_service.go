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

// ProfessorWriteStore extends ProfessorStore with the registry mutations.
type ProfessorWriteStore interface {
	ProfessorStore
	Create(ctx context.Context, professor *models.Professor) error
	GetByID(ctx context.Context, id int64) (*models.Professor, error)
	SavePreference(ctx context.Context, preference *models.ProfessorPreference) error
}

// ProfessorService maintains the professor registry that demand-feed name
// resolution and soft-preference scoring read from. Registration upserts by
// normalized name, so re-registering a professor never forks the registry.
type ProfessorService struct {
	professorRepo ProfessorWriteStore
	roomRepo      RoomStore
}

// NewProfessorService creates a new professor service
func NewProfessorService(professorRepo ProfessorWriteStore, roomRepo RoomStore) *ProfessorService {
	return &ProfessorService{professorRepo: professorRepo, roomRepo: roomRepo}
}

// Register adds a professor to the registry, or refreshes the display name
// of an existing entry with the same normalized name.
func (s *ProfessorService) Register(ctx context.Context, name string) (*models.Professor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewBadRequestError("professor name is required")
	}

	professor := &models.Professor{Name: name}
	if err := s.professorRepo.Create(ctx, professor); err != nil {
		return nil, fmt.Errorf("error registering professor: %w", err)
	}
	return professor, nil
}

// GetByID retrieves one registry entry.
func (s *ProfessorService) GetByID(ctx context.Context, id int64) (*models.Professor, error) {
	professor, err := s.professorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrProfessorNotFound) {
			return nil, apperrors.ErrProfessorNotFound
		}
		return nil, fmt.Errorf("error retrieving professor: %w", err)
	}
	return professor, nil
}

// SavePreference replaces a professor's soft room preferences. The preferred
// room must exist when given; characteristics are free-form but non-blank.
func (s *ProfessorService) SavePreference(ctx context.Context, professorID int64, preferredRoomID *int64, characteristics []string) (*models.ProfessorPreference, error) {
	if _, err := s.professorRepo.GetByID(ctx, professorID); err != nil {
		if errors.Is(err, repositories.ErrProfessorNotFound) {
			return nil, apperrors.ErrProfessorNotFound
		}
		return nil, fmt.Errorf("error retrieving professor: %w", err)
	}

	if preferredRoomID != nil {
		if _, err := s.roomRepo.GetByID(ctx, *preferredRoomID); err != nil {
			if errors.Is(err, repositories.ErrRoomNotFound) {
				return nil, apperrors.ErrRoomNotFound
			}
			return nil, fmt.Errorf("error retrieving room: %w", err)
		}
	}

	cleaned := make([]string, 0, len(characteristics))
	for _, c := range characteristics {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, apperrors.NewBadRequestError("characteristics must not be blank")
		}
		cleaned = append(cleaned, c)
	}

	preference := &models.ProfessorPreference{
		ProfessorID:              professorID,
		PreferredRoomID:          preferredRoomID,
		PreferredCharacteristics: cleaned,
	}
	if err := s.professorRepo.SavePreference(ctx, preference); err != nil {
		return nil, fmt.Errorf("error saving professor preference: %w", err)
	}
	return preference, nil
}
