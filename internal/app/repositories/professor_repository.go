package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gcouto/ensalamento/internal/app/models"
)

// Professor error types
var (
	ErrProfessorNotFound = errors.New("professor not found")
)

// ProfessorRepository handles database operations for the professor registry
// and professor room preferences
type ProfessorRepository struct {
	db *pgxpool.Pool
}

// NewProfessorRepository creates a new professor repository
func NewProfessorRepository(db *pgxpool.Pool) *ProfessorRepository {
	return &ProfessorRepository{
		db: db,
	}
}

// Create registers a professor, storing the normalized name used for
// resolution lookups
func (r *ProfessorRepository) Create(ctx context.Context, professor *models.Professor) error {
	query := `
		INSERT INTO professors (name, normalized_name)
		VALUES ($1, $2)
		ON CONFLICT (normalized_name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		professor.Name, models.NormalizeName(professor.Name)).Scan(&professor.ID)
	if err != nil {
		return fmt.Errorf("error creating professor: %w", err)
	}

	return nil
}

// GetByID retrieves a professor by ID
func (r *ProfessorRepository) GetByID(ctx context.Context, id int64) (*models.Professor, error) {
	var professor models.Professor
	err := r.db.QueryRow(ctx,
		`SELECT id, name FROM professors WHERE id = $1`, id).
		Scan(&professor.ID, &professor.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfessorNotFound
		}
		return nil, fmt.Errorf("error retrieving professor: %w", err)
	}
	return &professor, nil
}

// ResolveByNames matches free-text names against the registry by exact
// normalized-name equality. The result maps the normalized form of each
// matched input name to its professor; unmatched names are simply absent.
func (r *ProfessorRepository) ResolveByNames(ctx context.Context, names []string) (map[string]*models.Professor, error) {
	resolved := make(map[string]*models.Professor)
	if len(names) == 0 {
		return resolved, nil
	}

	normalized := make([]string, 0, len(names))
	for _, n := range names {
		normalized = append(normalized, models.NormalizeName(n))
	}

	query := `
		SELECT id, name, normalized_name
		FROM professors
		WHERE normalized_name = ANY($1)
	`

	rows, err := r.db.Query(ctx, query, normalized)
	if err != nil {
		return nil, fmt.Errorf("error resolving professors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var professor models.Professor
		var key string
		if err := rows.Scan(&professor.ID, &professor.Name, &key); err != nil {
			return nil, err
		}
		resolved[key] = &professor
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return resolved, nil
}

// PreferencesByProfessorIDs retrieves the room preferences of the given
// professors, characteristics aggregated per preference row
func (r *ProfessorRepository) PreferencesByProfessorIDs(ctx context.Context, ids []int64) ([]*models.ProfessorPreference, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT p.id, p.professor_id, p.preferred_room_id,
		       COALESCE(array_agg(pc.characteristic ORDER BY pc.characteristic)
		                FILTER (WHERE pc.characteristic IS NOT NULL), '{}')
		FROM professor_preferences p
		LEFT JOIN professor_preferred_characteristics pc ON pc.preference_id = p.id
		WHERE p.professor_id = ANY($1)
		GROUP BY p.id
		ORDER BY p.id
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("error retrieving professor preferences: %w", err)
	}
	defer rows.Close()

	var preferences []*models.ProfessorPreference
	for rows.Next() {
		var preference models.ProfessorPreference
		if err := rows.Scan(
			&preference.ID,
			&preference.ProfessorID,
			&preference.PreferredRoomID,
			&preference.PreferredCharacteristics,
		); err != nil {
			return nil, err
		}
		preferences = append(preferences, &preference)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return preferences, nil
}

// SavePreference upserts a professor's preference row and its characteristic set
func (r *ProfessorRepository) SavePreference(ctx context.Context, preference *models.ProfessorPreference) error {
	query := `
		INSERT INTO professor_preferences (professor_id, preferred_room_id)
		VALUES ($1, $2)
		ON CONFLICT (professor_id) DO UPDATE SET preferred_room_id = EXCLUDED.preferred_room_id
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		preference.ProfessorID, preference.PreferredRoomID).Scan(&preference.ID)
	if err != nil {
		return fmt.Errorf("error saving professor preference: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`DELETE FROM professor_preferred_characteristics WHERE preference_id = $1`,
		preference.ID)
	if err != nil {
		return fmt.Errorf("error clearing preferred characteristics: %w", err)
	}

	for _, c := range preference.PreferredCharacteristics {
		_, err = r.db.Exec(ctx, `
			INSERT INTO professor_preferred_characteristics (preference_id, characteristic)
			VALUES ($1, $2)`,
			preference.ID, c)
		if err != nil {
			return fmt.Errorf("error adding preferred characteristic: %w", err)
		}
	}

	return nil
}
