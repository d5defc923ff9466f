package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gcouto/ensalamento/internal/app/models"
	"github.com/gcouto/ensalamento/internal/pkg/dberrors"
)

// Allocation error types
var (
	ErrAllocationNotFound = errors.New("allocation record not found")
	// ErrSlotTaken is returned when the unique slot index rejects a commit
	// that raced past the conflict pre-check.
	ErrSlotTaken = errors.New("allocation slot already taken")
)

// AllocationRepository handles database operations for class allocation
// records: batch conflict lookup, atomic commit/delete and the historical
// frequency aggregation used by scoring
type AllocationRepository struct {
	db *pgxpool.Pool
}

// NewAllocationRepository creates a new allocation repository
func NewAllocationRepository(db *pgxpool.Pool) *AllocationRepository {
	return &AllocationRepository{
		db: db,
	}
}

// ListBySemester retrieves all allocation records of one semester in a
// stable order
func (r *AllocationRepository) ListBySemester(ctx context.Context, semesterID int64) ([]*models.AllocationRecord, error) {
	query := `
		SELECT id, semester_id, demand_id, room_id, day_of_week, block_id, created_at
		FROM allocation_records
		WHERE semester_id = $1
		ORDER BY room_id, day_of_week, block_id
	`

	rows, err := r.db.Query(ctx, query, semesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.AllocationRecord
	for rows.Next() {
		var record models.AllocationRecord
		if err := rows.Scan(
			&record.ID,
			&record.SemesterID,
			&record.DemandID,
			&record.RoomID,
			&record.Day,
			&record.BlockID,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// FindOccupied returns the subset of the given weekly slots already claimed
// by a persisted allocation record in this semester scope. The query runs
// against current (committed) state; callers must not reuse a result
// computed before an intervening commit.
func (r *AllocationRepository) FindOccupied(ctx context.Context, semesterID int64, slots []models.RoomSlot) (map[models.RoomSlot]bool, error) {
	occupied := make(map[models.RoomSlot]bool)
	if len(slots) == 0 {
		return occupied, nil
	}

	roomIDs := make([]int64, len(slots))
	days := make([]int16, len(slots))
	blocks := make([]string, len(slots))
	for i, s := range slots {
		roomIDs[i] = s.RoomID
		days[i] = int16(s.Day)
		blocks[i] = s.BlockID
	}

	query := `
		SELECT DISTINCT ar.room_id, ar.day_of_week, ar.block_id
		FROM allocation_records ar
		JOIN unnest($2::bigint[], $3::smallint[], $4::text[]) AS s(room_id, day_of_week, block_id)
		  ON ar.room_id = s.room_id
		 AND ar.day_of_week = s.day_of_week
		 AND ar.block_id = s.block_id
		WHERE ar.semester_id = $1
	`

	rows, err := r.db.Query(ctx, query, semesterID, roomIDs, days, blocks)
	if err != nil {
		return nil, fmt.Errorf("error querying allocation conflicts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var slot models.RoomSlot
		if err := rows.Scan(&slot.RoomID, &slot.Day, &slot.BlockID); err != nil {
			return nil, err
		}
		occupied[slot] = true
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return occupied, nil
}

// HistoryCounts aggregates, per room, in how many distinct past semesters the
// given course code was allocated to that room. The current semester is
// excluded from the count.
func (r *AllocationRepository) HistoryCounts(ctx context.Context, courseCode string, excludeSemesterID int64) (map[int64]int, error) {
	query := `
		SELECT ar.room_id, COUNT(DISTINCT ar.semester_id)
		FROM allocation_records ar
		JOIN course_demands d ON d.id = ar.demand_id
		WHERE d.course_code = $1 AND ar.semester_id <> $2
		GROUP BY ar.room_id
	`

	rows, err := r.db.Query(ctx, query, courseCode, excludeSemesterID)
	if err != nil {
		return nil, fmt.Errorf("error aggregating allocation history: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var roomID int64
		var count int
		if err := rows.Scan(&roomID, &count); err != nil {
			return nil, err
		}
		counts[roomID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// CommitBatch persists a set of allocation records and marks their demands
// allocated, all inside one transaction. A failure rolls the whole batch
// back; the unique slot index is the final guard against double-booking.
func (r *AllocationRepository) CommitBatch(ctx context.Context, records []models.AllocationRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin allocation commit: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	demandIDs := make(map[int64]struct{})
	for _, record := range records {
		_, err = tx.Exec(ctx, `
			INSERT INTO allocation_records (semester_id, demand_id, room_id, day_of_week, block_id)
			VALUES ($1, $2, $3, $4, $5)`,
			record.SemesterID, record.DemandID, record.RoomID, int16(record.Day), record.BlockID)
		if err != nil {
			if dberrors.IsUniqueViolation(err) {
				return ErrSlotTaken
			}
			return fmt.Errorf("error inserting allocation record: %w", err)
		}
		demandIDs[record.DemandID] = struct{}{}
	}

	ids := make([]int64, 0, len(demandIDs))
	for id := range demandIDs {
		ids = append(ids, id)
	}
	_, err = tx.Exec(ctx,
		`UPDATE course_demands SET status = 'ALLOCATED' WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("error marking demands allocated: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit allocation batch: %w", err)
	}

	return nil
}

// DeleteByDemand removes a demand's allocation records and resets its status,
// in one transaction
func (r *AllocationRepository) DeleteByDemand(ctx context.Context, demandID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin deallocation: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cmdTag, err := tx.Exec(ctx,
		`DELETE FROM allocation_records WHERE demand_id = $1`, demandID)
	if err != nil {
		return fmt.Errorf("error deleting allocation records: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrAllocationNotFound
	}

	_, err = tx.Exec(ctx,
		`UPDATE course_demands SET status = 'UNALLOCATED' WHERE id = $1`, demandID)
	if err != nil {
		return fmt.Errorf("error resetting demand status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit deallocation: %w", err)
	}

	return nil
}

// ByDemand retrieves a demand's allocation records
func (r *AllocationRepository) ByDemand(ctx context.Context, demandID int64) ([]*models.AllocationRecord, error) {
	query := `
		SELECT id, semester_id, demand_id, room_id, day_of_week, block_id, created_at
		FROM allocation_records
		WHERE demand_id = $1
		ORDER BY day_of_week, block_id
	`

	rows, err := r.db.Query(ctx, query, demandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.AllocationRecord
	for rows.Next() {
		var record models.AllocationRecord
		if err := rows.Scan(
			&record.ID,
			&record.SemesterID,
			&record.DemandID,
			&record.RoomID,
			&record.Day,
			&record.BlockID,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
