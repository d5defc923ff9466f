package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gcouto/ensalamento/internal/app/models"
	"github.com/gcouto/ensalamento/internal/pkg/dberrors"
)

// Reservation error types
var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReservationConflict = errors.New("reservation conflicts with an occupied slot")
)

// ReservationRepository handles database operations for reservation requests
// and their occurrences. Creation is serialized per room with a transactional
// advisory lock so two concurrent requests cannot both pass the conflict
// check.
type ReservationRepository struct {
	db *pgxpool.Pool
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{
		db: db,
	}
}

func datedSlotArrays(slots []models.DatedSlot) ([]int64, []time.Time, []string) {
	roomIDs := make([]int64, len(slots))
	dates := make([]time.Time, len(slots))
	blocks := make([]string, len(slots))
	for i, s := range slots {
		roomIDs[i] = s.RoomID
		dates[i] = s.Date
		blocks[i] = s.BlockID
	}
	return roomIDs, dates, blocks
}

// FindOccurrenceConflicts returns the subset of the given dated slots already
// claimed by a persisted reservation occurrence
func (r *ReservationRepository) FindOccurrenceConflicts(ctx context.Context, slots []models.DatedSlot) ([]models.DatedSlot, error) {
	return r.findOccurrenceConflicts(ctx, r.db, slots)
}

func (r *ReservationRepository) findOccurrenceConflicts(ctx context.Context, q Querier, slots []models.DatedSlot) ([]models.DatedSlot, error) {
	if len(slots) == 0 {
		return nil, nil
	}

	roomIDs, dates, blocks := datedSlotArrays(slots)
	query := `
		SELECT DISTINCT ro.room_id, ro.date, ro.block_id
		FROM reservation_occurrences ro
		JOIN unnest($1::bigint[], $2::date[], $3::text[]) AS s(room_id, date, block_id)
		  ON ro.room_id = s.room_id
		 AND ro.date = s.date
		 AND ro.block_id = s.block_id
	`

	rows, err := q.Query(ctx, query, roomIDs, dates, blocks)
	if err != nil {
		return nil, fmt.Errorf("error querying occurrence conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []models.DatedSlot
	for rows.Next() {
		var slot models.DatedSlot
		if err := rows.Scan(&slot.RoomID, &slot.Date, &slot.BlockID); err != nil {
			return nil, err
		}
		conflicts = append(conflicts, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return conflicts, nil
}

// FindClassConflicts returns the subset of the given dated slots that collide
// with a class allocation. A dated slot collides when its date falls inside a
// semester's range and that semester holds an allocation record for the same
// room, the date's day-of-week and the same block.
func (r *ReservationRepository) FindClassConflicts(ctx context.Context, slots []models.DatedSlot) ([]models.DatedSlot, error) {
	return r.findClassConflicts(ctx, r.db, slots)
}

func (r *ReservationRepository) findClassConflicts(ctx context.Context, q Querier, slots []models.DatedSlot) ([]models.DatedSlot, error) {
	if len(slots) == 0 {
		return nil, nil
	}

	roomIDs, dates, blocks := datedSlotArrays(slots)
	query := `
		SELECT DISTINCT s.room_id, s.date, s.block_id
		FROM unnest($1::bigint[], $2::date[], $3::text[]) AS s(room_id, date, block_id)
		JOIN semesters sem
		  ON s.date BETWEEN sem.start_date AND sem.end_date
		JOIN allocation_records ar
		  ON ar.semester_id = sem.id
		 AND ar.room_id = s.room_id
		 AND ar.block_id = s.block_id
		 AND ar.day_of_week = EXTRACT(DOW FROM s.date)::smallint
	`

	rows, err := q.Query(ctx, query, roomIDs, dates, blocks)
	if err != nil {
		return nil, fmt.Errorf("error querying class conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []models.DatedSlot
	for rows.Next() {
		var slot models.DatedSlot
		if err := rows.Scan(&slot.RoomID, &slot.Date, &slot.BlockID); err != nil {
			return nil, err
		}
		conflicts = append(conflicts, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return conflicts, nil
}

// FindWeeklyOccupied maps reservation occurrences inside [start, end] onto
// their weekly identity and returns which of the given weekly slots they
// occupy. This is the reservation side of the batch conflict check used by
// the allocation orchestrator.
func (r *ReservationRepository) FindWeeklyOccupied(ctx context.Context, start, end time.Time, slots []models.RoomSlot) (map[models.RoomSlot]bool, error) {
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
		SELECT DISTINCT s.room_id, s.day_of_week, s.block_id
		FROM unnest($3::bigint[], $4::smallint[], $5::text[]) AS s(room_id, day_of_week, block_id)
		JOIN reservation_occurrences ro
		  ON ro.room_id = s.room_id
		 AND ro.block_id = s.block_id
		 AND EXTRACT(DOW FROM ro.date)::smallint = s.day_of_week
		WHERE ro.date BETWEEN $1 AND $2
	`

	rows, err := r.db.Query(ctx, query, start, end, roomIDs, days, blocks)
	if err != nil {
		return nil, fmt.Errorf("error querying weekly reservation conflicts: %w", err)
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

// CreateBatch persists a request and its full occurrence batch in one
// transaction. It takes an advisory lock on the room, re-runs both conflict
// checks under the lock and inserts nothing if any slot is taken, returning
// ErrReservationConflict. The unique (room, date, block) index backstops the
// check.
func (r *ReservationRepository) CreateBatch(ctx context.Context, request *models.ReservationRequest, occurrences []models.ReservationOccurrence) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin reservation creation: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Serializes check-then-create per room for the duration of the tx.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, reservationLockKey(request.RoomID)); err != nil {
		return fmt.Errorf("failed to acquire room lock: %w", err)
	}

	slots := make([]models.DatedSlot, len(occurrences))
	for i, occ := range occurrences {
		slots[i] = occ.Slot()
	}

	occConflicts, err := r.findOccurrenceConflicts(ctx, tx, slots)
	if err != nil {
		return err
	}
	classConflicts, err := r.findClassConflicts(ctx, tx, slots)
	if err != nil {
		return err
	}
	if len(occConflicts) > 0 || len(classConflicts) > 0 {
		return ErrReservationConflict
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO reservation_requests
			(id, room_id, title, requested_by, start_date, block_ids, recurrence, until_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		request.ID, request.RoomID, request.Title, request.RequestedBy,
		request.StartDate, request.BlockIDs, request.Recurrence, request.Until)
	if err != nil {
		return fmt.Errorf("error inserting reservation request: %w", err)
	}

	for _, occ := range occurrences {
		_, err = tx.Exec(ctx, `
			INSERT INTO reservation_occurrences (request_id, room_id, date, block_id, title)
			VALUES ($1, $2, $3, $4, $5)`,
			request.ID, occ.RoomID, occ.Date, occ.BlockID, occ.Title)
		if err != nil {
			if dberrors.IsUniqueViolation(err) {
				return ErrReservationConflict
			}
			return fmt.Errorf("error inserting reservation occurrence: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reservation batch: %w", err)
	}

	return nil
}

// reservationLockKey derives the per-room advisory lock key. The high word
// namespaces reservation locks away from any other advisory-lock user of the
// same database.
func reservationLockKey(roomID int64) int64 {
	const lockClass = int64(0x5245_5356) // "RESV"
	return lockClass<<32 | (roomID & 0xFFFF_FFFF)
}

// GetRequest retrieves a reservation request by id
func (r *ReservationRepository) GetRequest(ctx context.Context, id string) (*models.ReservationRequest, error) {
	query := `
		SELECT id, room_id, title, requested_by, start_date, block_ids, recurrence, until_date, created_at
		FROM reservation_requests
		WHERE id = $1
	`

	var request models.ReservationRequest
	err := r.db.QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.RoomID,
		&request.Title,
		&request.RequestedBy,
		&request.StartDate,
		&request.BlockIDs,
		&request.Recurrence,
		&request.Until,
		&request.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("error retrieving reservation request: %w", err)
	}

	return &request, nil
}

// ListOccurrences retrieves occurrences filtered by room and date range,
// ordered for display merging
func (r *ReservationRepository) ListOccurrences(ctx context.Context, roomID int64, from, to time.Time) ([]*models.ReservationOccurrence, error) {
	query := `
		SELECT id, request_id, room_id, date, block_id, title
		FROM reservation_occurrences
		WHERE ($1 = 0 OR room_id = $1) AND date BETWEEN $2 AND $3
		ORDER BY room_id, date, block_id
	`

	rows, err := r.db.Query(ctx, query, roomID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var occurrences []*models.ReservationOccurrence
	for rows.Next() {
		var occ models.ReservationOccurrence
		if err := rows.Scan(&occ.ID, &occ.RequestID, &occ.RoomID, &occ.Date, &occ.BlockID, &occ.Title); err != nil {
			return nil, err
		}
		occurrences = append(occurrences, &occ)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return occurrences, nil
}

// DeleteSeries removes a request and its entire occurrence batch
func (r *ReservationRepository) DeleteSeries(ctx context.Context, requestID string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM reservation_requests WHERE id = $1`, requestID)
	if err != nil {
		return fmt.Errorf("error deleting reservation series: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrReservationNotFound
	}

	return nil
}

// DeleteOccurrence removes a single occurrence of a series
func (r *ReservationRepository) DeleteOccurrence(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM reservation_occurrences WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting reservation occurrence: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrReservationNotFound
	}

	return nil
}
