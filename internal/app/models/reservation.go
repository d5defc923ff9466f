package models

import "time"

// RecurrenceType enumerates the supported reservation recurrence rules.
type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "NONE"
	RecurrenceDaily   RecurrenceType = "DAILY"
	RecurrenceWeekly  RecurrenceType = "WEEKLY"
	RecurrenceMonthly RecurrenceType = "MONTHLY"
)

// ReservationRequest is the originating one-off or recurring reservation.
// Its occurrences are persisted as a full batch or not at all.
type ReservationRequest struct {
	ID          string         `json:"id" db:"id"` // uuid
	RoomID      int64          `json:"roomId" db:"room_id"`
	Title       string         `json:"title" db:"title"`
	RequestedBy string         `json:"requestedBy" db:"requested_by"`
	StartDate   time.Time      `json:"startDate" db:"start_date"`
	BlockIDs    []string       `json:"blockIds" db:"block_ids"`
	Recurrence  RecurrenceType `json:"recurrence" db:"recurrence"`
	Until       *time.Time     `json:"until,omitempty" db:"until_date"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
}

// ReservationOccurrence is one concrete (room, date, block) row derived from
// a request. Storage granularity is always one row per block; contiguous
// blocks are merged only for display.
type ReservationOccurrence struct {
	ID        int64     `json:"id" db:"id"`
	RequestID string    `json:"requestId" db:"request_id"`
	RoomID    int64     `json:"roomId" db:"room_id"`
	Date      time.Time `json:"date" db:"date"`
	BlockID   string    `json:"blockId" db:"block_id"`
	Title     string    `json:"title" db:"title"`
}

// Slot returns the occurrence's conflict identity.
func (o *ReservationOccurrence) Slot() DatedSlot {
	return DatedSlot{RoomID: o.RoomID, Date: o.Date, BlockID: o.BlockID}
}
