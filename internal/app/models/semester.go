package models

import "time"

// Semester is the conflict-evaluation scope for all class allocations.
// Records belonging to different semesters never conflict, even on the
// same physical (room, day, block) slot.
type Semester struct {
	ID        int64     `json:"id" db:"id"`
	Label     string    `json:"label" db:"label"` // e.g. "2025/1"
	StartDate time.Time `json:"startDate" db:"start_date"`
	EndDate   time.Time `json:"endDate" db:"end_date"`
	Current   bool      `json:"current" db:"current"`
}
