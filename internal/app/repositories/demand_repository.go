package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gcouto/ensalamento/internal/app/models"
)

// Demand error types
var (
	ErrDemandNotFound = errors.New("course demand not found")
)

// DemandRepository handles database operations for course demands and their
// hard rules
type DemandRepository struct {
	db *pgxpool.Pool
}

// NewDemandRepository creates a new demand repository
func NewDemandRepository(db *pgxpool.Pool) *DemandRepository {
	return &DemandRepository{
		db: db,
	}
}

// Upsert inserts a demand or refreshes it in place, de-duplicated on
// (semester_id, external_id). Allocation status is preserved on update.
func (r *DemandRepository) Upsert(ctx context.Context, demand *models.CourseDemand) error {
	query := `
		INSERT INTO course_demands
			(semester_id, external_id, course_code, course_name, section_label,
			 professor_names, seats, preferred_room_type, schedule_code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'UNALLOCATED')
		ON CONFLICT (semester_id, external_id) DO UPDATE SET
			course_code = EXCLUDED.course_code,
			course_name = EXCLUDED.course_name,
			section_label = EXCLUDED.section_label,
			professor_names = EXCLUDED.professor_names,
			seats = EXCLUDED.seats,
			preferred_room_type = EXCLUDED.preferred_room_type,
			schedule_code = EXCLUDED.schedule_code
		RETURNING id, status
	`

	err := r.db.QueryRow(ctx, query,
		demand.SemesterID,
		demand.ExternalID,
		demand.CourseCode,
		demand.CourseName,
		demand.SectionLabel,
		demand.ProfessorNames,
		demand.Seats,
		demand.PreferredRoomType,
		demand.ScheduleCode,
	).Scan(&demand.ID, &demand.Status)
	if err != nil {
		return fmt.Errorf("error upserting course demand: %w", err)
	}

	return nil
}

const demandSelect = `
	SELECT id, semester_id, external_id, course_code, course_name, section_label,
	       professor_names, seats, preferred_room_type, schedule_code, status
	FROM course_demands
`

func scanDemand(row pgx.Row) (*models.CourseDemand, error) {
	var demand models.CourseDemand
	if err := row.Scan(
		&demand.ID,
		&demand.SemesterID,
		&demand.ExternalID,
		&demand.CourseCode,
		&demand.CourseName,
		&demand.SectionLabel,
		&demand.ProfessorNames,
		&demand.Seats,
		&demand.PreferredRoomType,
		&demand.ScheduleCode,
		&demand.Status,
	); err != nil {
		return nil, err
	}
	return &demand, nil
}

// GetByID retrieves a demand by ID, hard rules included
func (r *DemandRepository) GetByID(ctx context.Context, id int64) (*models.CourseDemand, error) {
	demand, err := scanDemand(r.db.QueryRow(ctx, demandSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDemandNotFound
		}
		return nil, fmt.Errorf("error retrieving course demand: %w", err)
	}

	rules, err := r.RulesByDemandIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	demand.HardRules = rules[id]

	return demand, nil
}

// ListBySemester retrieves all demands of one semester ordered by course code
// then id, hard rules included
func (r *DemandRepository) ListBySemester(ctx context.Context, semesterID int64) ([]*models.CourseDemand, error) {
	rows, err := r.db.Query(ctx,
		demandSelect+` WHERE semester_id = $1 ORDER BY course_code, id`, semesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var demands []*models.CourseDemand
	var ids []int64
	for rows.Next() {
		demand, err := scanDemand(rows)
		if err != nil {
			return nil, err
		}
		demands = append(demands, demand)
		ids = append(ids, demand.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	rules, err := r.RulesByDemandIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, demand := range demands {
		demand.HardRules = rules[demand.ID]
	}

	return demands, nil
}

// RulesByDemandIDs retrieves hard rules grouped by demand id
func (r *DemandRepository) RulesByDemandIDs(ctx context.Context, ids []int64) (map[int64][]models.HardRule, error) {
	rules := make(map[int64][]models.HardRule)
	if len(ids) == 0 {
		return rules, nil
	}

	query := `
		SELECT id, demand_id, kind, room_id, COALESCE(value, '')
		FROM hard_rules
		WHERE demand_id = ANY($1)
		ORDER BY demand_id, id
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("error retrieving hard rules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rule models.HardRule
		if err := rows.Scan(&rule.ID, &rule.DemandID, &rule.Kind, &rule.RoomID, &rule.Value); err != nil {
			return nil, err
		}
		rules[rule.DemandID] = append(rules[rule.DemandID], rule)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rules, nil
}

// AddRule attaches a hard rule to a demand
func (r *DemandRepository) AddRule(ctx context.Context, rule *models.HardRule) error {
	query := `
		INSERT INTO hard_rules (demand_id, kind, room_id, value)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		rule.DemandID, rule.Kind, rule.RoomID, rule.Value).Scan(&rule.ID)
	if err != nil {
		return fmt.Errorf("error adding hard rule: %w", err)
	}

	return nil
}

// Delete removes a cancelled demand together with its rules and any
// allocation records it holds
func (r *DemandRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM course_demands WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting course demand: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrDemandNotFound
	}

	return nil
}
