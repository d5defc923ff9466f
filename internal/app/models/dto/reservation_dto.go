package dto

import (
	"sort"
	"time"

	"github.com/gcouto/ensalamento/internal/app/models"
	"github.com/gcouto/ensalamento/internal/pkg/schedule"
)

// RecurrenceRequest is the recurrence descriptor of a reservation request.
type RecurrenceRequest struct {
	Type string `json:"type" binding:"required" example:"WEEKLY" enums:"NONE,DAILY,WEEKLY,MONTHLY"`
	// Until is required for every type except NONE.
	Until string `json:"until,omitempty" example:"2026-06-29"`
	// Weekdays applies to WEEKLY only; 0 = Sunday. Empty means the start
	// date's weekday.
	Weekdays []int `json:"weekdays,omitempty" example:"1,3"`
}

// CreateReservationRequest represents a one-off or recurring reservation
type CreateReservationRequest struct {
	RoomID      int64             `json:"roomId" binding:"required" example:"3"`
	Title       string            `json:"title" binding:"required" example:"Department meeting"`
	RequestedBy string            `json:"requestedBy" example:"secretaria@ufx.br"`
	StartDate   string            `json:"startDate" binding:"required" example:"2026-03-09"`
	BlockIDs    []string          `json:"blockIds" binding:"required,min=1" example:"T1,T2"`
	Recurrence  RecurrenceRequest `json:"recurrence"`
}

// ToModel converts the request into a reservation request model and its
// recurrence descriptor.
func (r *CreateReservationRequest) ToModel() (*models.ReservationRequest, *Recurrence, error) {
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return nil, nil, err
	}

	request := &models.ReservationRequest{
		RoomID:      r.RoomID,
		Title:       r.Title,
		RequestedBy: r.RequestedBy,
		StartDate:   start,
		BlockIDs:    r.BlockIDs,
	}

	rec := &Recurrence{Type: models.RecurrenceType(r.Recurrence.Type)}
	if rec.Type == "" {
		rec.Type = models.RecurrenceNone
	}
	if r.Recurrence.Until != "" {
		until, err := ParseDate(r.Recurrence.Until)
		if err != nil {
			return nil, nil, err
		}
		rec.Until = until
	}
	for _, w := range r.Recurrence.Weekdays {
		rec.Weekdays = append(rec.Weekdays, schedule.DayOfWeek(w))
	}

	return request, rec, nil
}

// Recurrence mirrors the service-layer recurrence descriptor to keep the dto
// package free of a services import.
type Recurrence struct {
	Type     models.RecurrenceType
	Until    time.Time
	Weekdays []schedule.DayOfWeek
}

// OccurrenceRange is a display row of one reservation day: contiguous blocks
// of the same request are merged into a single start/end range. Storage
// stays per-block; this merge exists only on the wire.
type OccurrenceRange struct {
	RequestID  string `json:"requestId"`
	RoomID     int64  `json:"roomId"`
	Date       string `json:"date" example:"2026-03-09"`
	StartBlock string `json:"startBlock" example:"T1"`
	EndBlock   string `json:"endBlock" example:"T2"`
	Title      string `json:"title"`
	// OccurrenceIDs lists the merged rows, for per-occurrence cancellation.
	OccurrenceIDs []int64 `json:"occurrenceIds"`
}

// MergeContiguous folds per-block occurrences into display ranges. Two rows
// merge when they share a request, room and date and their blocks are
// adjacent within the same period.
func MergeContiguous(occurrences []*models.ReservationOccurrence) []OccurrenceRange {
	sorted := make([]*models.ReservationOccurrence, len(occurrences))
	copy(sorted, occurrences)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.RoomID != b.RoomID {
			return a.RoomID < b.RoomID
		}
		if a.RequestID != b.RequestID {
			return a.RequestID < b.RequestID
		}
		return schedule.BlockBefore(a.BlockID, b.BlockID)
	})

	var out []OccurrenceRange
	for _, occ := range sorted {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.RequestID == occ.RequestID &&
				last.RoomID == occ.RoomID &&
				last.Date == occ.Date.Format(DateLayout) &&
				schedule.Contiguous(last.EndBlock, occ.BlockID) {
				last.EndBlock = occ.BlockID
				last.OccurrenceIDs = append(last.OccurrenceIDs, occ.ID)
				continue
			}
		}
		out = append(out, OccurrenceRange{
			RequestID:     occ.RequestID,
			RoomID:        occ.RoomID,
			Date:          occ.Date.Format(DateLayout),
			StartBlock:    occ.BlockID,
			EndBlock:      occ.BlockID,
			Title:         occ.Title,
			OccurrenceIDs: []int64{occ.ID},
		})
	}
	return out
}
