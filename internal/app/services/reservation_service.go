package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gcouto/ensalamento/internal/app/models"
	"github.com/gcouto/ensalamento/internal/app/repositories"
	"github.com/gcouto/ensalamento/internal/pkg/apperrors"
	"github.com/gcouto/ensalamento/internal/pkg/logger"
	"github.com/gcouto/ensalamento/internal/pkg/schedule"
)

// ReservationStore is the persistence surface of reservation requests and
// occurrences. CreateBatch is transactional and serialized per room.
type ReservationStore interface {
	FindOccurrenceConflicts(ctx context.Context, slots []models.DatedSlot) ([]models.DatedSlot, error)
	FindClassConflicts(ctx context.Context, slots []models.DatedSlot) ([]models.DatedSlot, error)
	CreateBatch(ctx context.Context, request *models.ReservationRequest, occurrences []models.ReservationOccurrence) error
	GetRequest(ctx context.Context, id string) (*models.ReservationRequest, error)
	ListOccurrences(ctx context.Context, roomID int64, from, to time.Time) ([]*models.ReservationOccurrence, error)
	DeleteSeries(ctx context.Context, requestID string) error
	DeleteOccurrence(ctx context.Context, id int64) error
}

// Recurrence describes how a reservation repeats. Weekdays applies to weekly
// recurrences only; an empty set falls back to the start date's weekday.
type Recurrence struct {
	Type     models.RecurrenceType
	Until    time.Time
	Weekdays []schedule.DayOfWeek
}

// ReservationService expands recurrence descriptors into concrete occurrence
// batches and enforces the all-or-nothing conflict rule: if any requested
// block conflicts on any generated date, the entire request is rejected and
// nothing is persisted.
type ReservationService struct {
	reservationRepo ReservationStore
	roomRepo        RoomStore
	maxHorizonDays  int
}

// NewReservationService creates a new reservation service
func NewReservationService(reservationRepo ReservationStore, roomRepo RoomStore, maxHorizonDays int) *ReservationService {
	if maxHorizonDays < 1 {
		maxHorizonDays = 366
	}
	return &ReservationService{
		reservationRepo: reservationRepo,
		roomRepo:        roomRepo,
		maxHorizonDays:  maxHorizonDays,
	}
}

// ExpandOccurrences turns a start date and a recurrence descriptor into the
// finite, sorted list of concrete dates. Monthly recurrences fall on the
// start date's day-of-month; months lacking that day are skipped.
func ExpandOccurrences(start time.Time, rec Recurrence) ([]time.Time, error) {
	start = truncateDate(start)

	if rec.Type == models.RecurrenceNone || rec.Type == "" {
		return []time.Time{start}, nil
	}

	until := truncateDate(rec.Until)
	if until.Before(start) {
		return nil, apperrors.NewBadRequestError("recurrence end date precedes start date")
	}

	var dates []time.Time
	switch rec.Type {
	case models.RecurrenceDaily:
		for d := start; !d.After(until); d = d.AddDate(0, 0, 1) {
			dates = append(dates, d)
		}

	case models.RecurrenceWeekly:
		wanted := make(map[schedule.DayOfWeek]struct{})
		for _, w := range rec.Weekdays {
			wanted[w] = struct{}{}
		}
		if len(wanted) == 0 {
			wanted[schedule.DayOfDate(start)] = struct{}{}
		}
		for d := start; !d.After(until); d = d.AddDate(0, 0, 1) {
			if _, ok := wanted[schedule.DayOfDate(d)]; ok {
				dates = append(dates, d)
			}
		}

	case models.RecurrenceMonthly:
		day := start.Day()
		for d := start; !d.After(until); {
			dates = append(dates, d)
			next := time.Date(d.Year(), d.Month()+1, 1, 0, 0, 0, 0, d.Location())
			for {
				candidate := time.Date(next.Year(), next.Month(), day, 0, 0, 0, 0, d.Location())
				if candidate.Day() == day {
					d = candidate
					break
				}
				// The month has no such day (e.g. Jan 31 -> February); skip it.
				next = time.Date(next.Year(), next.Month()+1, 1, 0, 0, 0, 0, d.Location())
			}
			if d.After(until) {
				break
			}
		}

	default:
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("unknown recurrence type %q", rec.Type))
	}

	return dates, nil
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Create validates, expands and persists a reservation request. The
// occurrence batch is written in full or not at all.
func (s *ReservationService) Create(ctx context.Context, request *models.ReservationRequest, rec Recurrence) ([]models.ReservationOccurrence, error) {
	if _, err := s.roomRepo.GetByID(ctx, request.RoomID); err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return nil, apperrors.ErrRoomNotFound
		}
		return nil, fmt.Errorf("error retrieving room: %w", err)
	}

	if len(request.BlockIDs) == 0 {
		return nil, apperrors.NewBadRequestError("at least one time block is required")
	}
	for _, block := range request.BlockIDs {
		if _, ok := schedule.BlockByCode(block); !ok {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("unknown time block %q", block))
		}
	}

	// Bound the recurrence before expanding it, so an absurdly distant end
	// date never materializes a huge date list.
	if rec.Type != models.RecurrenceNone && rec.Type != "" {
		horizon := truncateDate(request.StartDate).AddDate(0, 0, s.maxHorizonDays)
		if truncateDate(rec.Until).After(horizon) {
			return nil, apperrors.NewBadRequestError(
				fmt.Sprintf("recurrence extends past the %d-day horizon", s.maxHorizonDays))
		}
	}
	dates, err := ExpandOccurrences(request.StartDate, rec)
	if err != nil {
		return nil, err
	}

	request.ID = uuid.NewString()
	request.StartDate = truncateDate(request.StartDate)
	request.Recurrence = rec.Type
	if request.Recurrence == "" {
		request.Recurrence = models.RecurrenceNone
	}
	if rec.Type != models.RecurrenceNone && rec.Type != "" {
		until := truncateDate(rec.Until)
		request.Until = &until
	}

	occurrences := make([]models.ReservationOccurrence, 0, len(dates)*len(request.BlockIDs))
	for _, date := range dates {
		for _, block := range request.BlockIDs {
			occurrences = append(occurrences, models.ReservationOccurrence{
				RequestID: request.ID,
				RoomID:    request.RoomID,
				Date:      date,
				BlockID:   block,
				Title:     request.Title,
			})
		}
	}

	slots := make([]models.DatedSlot, len(occurrences))
	for i, occ := range occurrences {
		slots[i] = occ.Slot()
	}

	// Fresh pre-check for a detailed rejection. CreateBatch re-checks under
	// the per-room lock, so a request racing past this point still cannot
	// double-book.
	occConflicts, err := s.reservationRepo.FindOccurrenceConflicts(ctx, slots)
	if err != nil {
		return nil, err
	}
	classConflicts, err := s.reservationRepo.FindClassConflicts(ctx, slots)
	if err != nil {
		return nil, err
	}
	if conflicts := append(occConflicts, classConflicts...); len(conflicts) > 0 {
		return nil, conflictError(conflicts)
	}

	if err := s.reservationRepo.CreateBatch(ctx, request, occurrences); err != nil {
		if errors.Is(err, repositories.ErrReservationConflict) {
			return nil, apperrors.NewOccupiedSlotError("a requested slot was taken while the request was being processed")
		}
		return nil, fmt.Errorf("error persisting reservation: %w", err)
	}

	logger.Info().
		Str("requestId", request.ID).
		Int64("roomId", request.RoomID).
		Int("occurrences", len(occurrences)).
		Msg("Reservation created")

	return occurrences, nil
}

func conflictError(conflicts []models.DatedSlot) error {
	details := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		details = append(details, fmt.Sprintf("%s %s", c.Date.Format("2006-01-02"), c.BlockID))
	}
	return apperrors.NewCustomError(apperrors.ErrOccupiedSlot, "requested slots are occupied").
		WithDetails(map[string]interface{}{"conflicts": details})
}

// ListOccurrences returns occurrences for a room (0 = all rooms) within a
// date range.
func (s *ReservationService) ListOccurrences(ctx context.Context, roomID int64, from, to time.Time) ([]*models.ReservationOccurrence, error) {
	if to.Before(from) {
		return nil, apperrors.NewBadRequestError("range end precedes range start")
	}
	return s.reservationRepo.ListOccurrences(ctx, roomID, truncateDate(from), truncateDate(to))
}

// CancelSeries removes a request and all of its occurrences as one batch.
func (s *ReservationService) CancelSeries(ctx context.Context, requestID string) error {
	if _, err := uuid.Parse(requestID); err != nil {
		return apperrors.NewBadRequestError("invalid reservation request id")
	}
	err := s.reservationRepo.DeleteSeries(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrReservationNotFound) {
			return apperrors.ErrReservationNotFound
		}
		return fmt.Errorf("error cancelling reservation series: %w", err)
	}
	return nil
}

// CancelOccurrence removes one occurrence, leaving the rest of its series.
func (s *ReservationService) CancelOccurrence(ctx context.Context, id int64) error {
	err := s.reservationRepo.DeleteOccurrence(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrReservationNotFound) {
			return apperrors.ErrReservationNotFound
		}
		return fmt.Errorf("error cancelling reservation occurrence: %w", err)
	}
	return nil
}
