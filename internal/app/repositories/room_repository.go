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

// Room error types
var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomAlreadyExists = errors.New("room with this code already exists")
)

// RoomRepository handles database operations for rooms
type RoomRepository struct {
	db *pgxpool.Pool
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{
		db: db,
	}
}

// Create creates a new room with its characteristic set
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM rooms WHERE code = $1)`,
		room.Code).Scan(&exists)
	if err != nil {
		return fmt.Errorf("error checking room existence: %w", err)
	}
	if exists {
		return ErrRoomAlreadyExists
	}

	query := `
		INSERT INTO rooms (code, building, capacity, room_type, accessible)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err = r.db.QueryRow(ctx, query,
		room.Code, room.Building, room.Capacity, room.Type, room.Accessible).Scan(&room.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "rooms_code_key") {
			return ErrRoomAlreadyExists
		}
		return fmt.Errorf("error creating room: %w", err)
	}

	for _, c := range room.Characteristics {
		_, err = r.db.Exec(ctx, `
			INSERT INTO room_characteristics (room_id, characteristic)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			room.ID, c)
		if err != nil {
			return fmt.Errorf("error adding room characteristic: %w", err)
		}
	}

	return nil
}

const roomSelect = `
	SELECT r.id, r.code, r.building, r.capacity, r.room_type, r.accessible,
	       COALESCE(array_agg(rc.characteristic ORDER BY rc.characteristic)
	                FILTER (WHERE rc.characteristic IS NOT NULL), '{}')
	FROM rooms r
	LEFT JOIN room_characteristics rc ON rc.room_id = r.id
`

func scanRoom(row pgx.Row) (*models.Room, error) {
	var room models.Room
	if err := row.Scan(
		&room.ID,
		&room.Code,
		&room.Building,
		&room.Capacity,
		&room.Type,
		&room.Accessible,
		&room.Characteristics,
	); err != nil {
		return nil, err
	}
	return &room, nil
}

// GetByID retrieves a room by ID
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	query := roomSelect + `
		WHERE r.id = $1
		GROUP BY r.id
	`

	room, err := scanRoom(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("error retrieving room: %w", err)
	}

	return room, nil
}

// GetAll retrieves all rooms ordered by id for deterministic candidate lists
func (r *RoomRepository) GetAll(ctx context.Context) ([]*models.Room, error) {
	query := roomSelect + `
		GROUP BY r.id
		ORDER BY r.id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rooms, nil
}
