package models

import (
	"time"

	"github.com/gcouto/ensalamento/internal/pkg/schedule"
)

// AllocationRecord claims one atomic (room, day, block) slot for a demand
// within one semester scope. A demand's full decoded slot set always lands in
// a single room, one record per slot.
type AllocationRecord struct {
	ID         int64              `json:"id" db:"id"`
	SemesterID int64              `json:"semesterId" db:"semester_id"`
	DemandID   int64              `json:"demandId" db:"demand_id"`
	RoomID     int64              `json:"roomId" db:"room_id"`
	Day        schedule.DayOfWeek `json:"day" db:"day_of_week"`
	BlockID    string             `json:"blockId" db:"block_id"`
	CreatedAt  time.Time          `json:"createdAt" db:"created_at"`
}

// RoomSlot identifies one weekly atomic slot of one room. Together with a
// semester id it is the conflict identity for class allocations.
type RoomSlot struct {
	RoomID  int64              `json:"roomId"`
	Day     schedule.DayOfWeek `json:"day"`
	BlockID string             `json:"blockId"`
}

// DatedSlot identifies one concrete calendar slot of one room, the conflict
// identity for reservation occurrences.
type DatedSlot struct {
	RoomID  int64     `json:"roomId"`
	Date    time.Time `json:"date"`
	BlockID string    `json:"blockId"`
}
