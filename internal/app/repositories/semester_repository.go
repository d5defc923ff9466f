package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gcouto/ensalamento/internal/app/models"
	"github.com/gcouto/ensalamento/internal/pkg/dberrors"
)

// Semester error types
var (
	ErrSemesterNotFound      = errors.New("semester not found")
	ErrSemesterAlreadyExists = errors.New("semester with this label already exists")
)

// SemesterRepository handles database operations for semesters
type SemesterRepository struct {
	db *pgxpool.Pool
}

// NewSemesterRepository creates a new semester repository
func NewSemesterRepository(db *pgxpool.Pool) *SemesterRepository {
	return &SemesterRepository{
		db: db,
	}
}

// Create creates a new semester
func (r *SemesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM semesters WHERE label = $1)`,
		semester.Label).Scan(&exists)
	if err != nil {
		return fmt.Errorf("error checking semester existence: %w", err)
	}
	if exists {
		return ErrSemesterAlreadyExists
	}

	query := `
		INSERT INTO semesters (label, start_date, end_date, current)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err = r.db.QueryRow(ctx, query,
		semester.Label, semester.StartDate, semester.EndDate, semester.Current).Scan(&semester.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "semesters_label_key") {
			return ErrSemesterAlreadyExists
		}
		return fmt.Errorf("error creating semester: %w", err)
	}

	return nil
}

// GetByID retrieves a semester by ID
func (r *SemesterRepository) GetByID(ctx context.Context, id int64) (*models.Semester, error) {
	query := `
		SELECT id, label, start_date, end_date, current
		FROM semesters
		WHERE id = $1
	`

	var semester models.Semester
	err := r.db.QueryRow(ctx, query, id).Scan(
		&semester.ID,
		&semester.Label,
		&semester.StartDate,
		&semester.EndDate,
		&semester.Current,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSemesterNotFound
		}
		return nil, fmt.Errorf("error retrieving semester: %w", err)
	}

	return &semester, nil
}

// GetAll retrieves all semesters ordered by start date, newest first
func (r *SemesterRepository) GetAll(ctx context.Context) ([]*models.Semester, error) {
	query := `
		SELECT id, label, start_date, end_date, current
		FROM semesters
		ORDER BY start_date DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var semesters []*models.Semester
	for rows.Next() {
		var semester models.Semester
		if err := rows.Scan(
			&semester.ID,
			&semester.Label,
			&semester.StartDate,
			&semester.EndDate,
			&semester.Current,
		); err != nil {
			return nil, err
		}
		semesters = append(semesters, &semester)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return semesters, nil
}
