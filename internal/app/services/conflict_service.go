package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gcouto/ensalamento/internal/app/models"
)

// AllocationStore is the persistence surface the conflict checker and the
// orchestrator need from allocation records.
type AllocationStore interface {
	FindOccupied(ctx context.Context, semesterID int64, slots []models.RoomSlot) (map[models.RoomSlot]bool, error)
	HistoryCounts(ctx context.Context, courseCode string, excludeSemesterID int64) (map[int64]int, error)
	CommitBatch(ctx context.Context, records []models.AllocationRecord) error
	DeleteByDemand(ctx context.Context, demandID int64) error
	ListBySemester(ctx context.Context, semesterID int64) ([]*models.AllocationRecord, error)
	ByDemand(ctx context.Context, demandID int64) ([]*models.AllocationRecord, error)
}

// ReservationWeeklyStore is the reservation side of the weekly conflict check.
type ReservationWeeklyStore interface {
	FindWeeklyOccupied(ctx context.Context, start, end time.Time, slots []models.RoomSlot) (map[models.RoomSlot]bool, error)
}

// ConflictChecker answers "is this weekly slot occupied within this semester
// scope?" against persisted class allocations and reservation occurrences.
// Results reflect state at call time; callers must never reuse a result
// computed before an intervening commit.
type ConflictChecker struct {
	allocations  AllocationStore
	reservations ReservationWeeklyStore
}

// NewConflictChecker creates a new conflict checker
func NewConflictChecker(allocations AllocationStore, reservations ReservationWeeklyStore) *ConflictChecker {
	return &ConflictChecker{
		allocations:  allocations,
		reservations: reservations,
	}
}

// CheckBatch queries both record kinds in one fresh pass and returns the
// occupied subset of the given slots. Reservations are scoped by calendar
// dates inside the semester's range, mapped onto day-of-week; allocations are
// scoped by semester id directly.
func (c *ConflictChecker) CheckBatch(ctx context.Context, semester *models.Semester, slots []models.RoomSlot) (map[models.RoomSlot]bool, error) {
	occupied, err := c.allocations.FindOccupied(ctx, semester.ID, slots)
	if err != nil {
		return nil, fmt.Errorf("error checking allocation conflicts: %w", err)
	}

	reserved, err := c.reservations.FindWeeklyOccupied(ctx, semester.StartDate, semester.EndDate, slots)
	if err != nil {
		return nil, fmt.Errorf("error checking reservation conflicts: %w", err)
	}
	for slot := range reserved {
		occupied[slot] = true
	}

	return occupied, nil
}

// Overlay is a caller-held working set of slots claimed during one phase,
// layered over a fresh CheckBatch result. It keeps decisions consistent
// across several in-flight candidates without a round trip per decision and
// never touches persisted storage.
type Overlay struct {
	claimed map[models.RoomSlot]struct{}
}

// NewOverlay creates an empty working overlay
func NewOverlay() *Overlay {
	return &Overlay{claimed: make(map[models.RoomSlot]struct{})}
}

// Reserve marks the given slots claimed in the overlay
func (o *Overlay) Reserve(slots []models.RoomSlot) {
	for _, s := range slots {
		o.claimed[s] = struct{}{}
	}
}

// Occupied reports whether a slot was claimed earlier in the same phase
func (o *Overlay) Occupied(slot models.RoomSlot) bool {
	_, ok := o.claimed[slot]
	return ok
}

// Len returns the number of claimed slots
func (o *Overlay) Len() int {
	return len(o.claimed)
}
