package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx operations shared by *pgxpool.Pool and
// pgx.Tx, so repository helpers can run inside or outside a transaction.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	SemesterRepository    *SemesterRepository
	RoomRepository        *RoomRepository
	ProfessorRepository   *ProfessorRepository
	DemandRepository      *DemandRepository
	AllocationRepository  *AllocationRepository
	ReservationRepository *ReservationRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		SemesterRepository:    NewSemesterRepository(db),
		RoomRepository:        NewRoomRepository(db),
		ProfessorRepository:   NewProfessorRepository(db),
		DemandRepository:      NewDemandRepository(db),
		AllocationRepository:  NewAllocationRepository(db),
		ReservationRepository: NewReservationRepository(db),
	}
}
