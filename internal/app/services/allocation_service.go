package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gcouto/ensalamento/internal/app/models"
	"github.com/gcouto/ensalamento/internal/app/repositories"
	"github.com/gcouto/ensalamento/internal/pkg/apperrors"
	"github.com/gcouto/ensalamento/internal/pkg/logger"
	"github.com/gcouto/ensalamento/internal/pkg/schedule"
)

// SemesterStore is the persistence surface services need from semesters.
type SemesterStore interface {
	Create(ctx context.Context, semester *models.Semester) error
	GetByID(ctx context.Context, id int64) (*models.Semester, error)
	GetAll(ctx context.Context) ([]*models.Semester, error)
}

// AllocationService drives the three-phase allocation run and the manual
// allocate/deallocate overrides. At most one run may be active system-wide;
// phase-local working overlays are not safe to share across runs, so a
// concurrent invocation is rejected outright.
type AllocationService struct {
	semesterRepo   SemesterStore
	demandRepo     DemandStore
	roomRepo       RoomStore
	professorRepo  ProfessorStore
	allocationRepo AllocationStore
	conflicts      *ConflictChecker
	scoringWorkers int

	running   atomic.Bool
	mu        sync.Mutex
	summaries map[int64]*models.RunSummary
}

// NewAllocationService creates a new allocation service
func NewAllocationService(
	semesterRepo SemesterStore,
	demandRepo DemandStore,
	roomRepo RoomStore,
	professorRepo ProfessorStore,
	allocationRepo AllocationStore,
	conflicts *ConflictChecker,
	scoringWorkers int,
) *AllocationService {
	if scoringWorkers < 1 {
		scoringWorkers = 1
	}
	return &AllocationService{
		semesterRepo:   semesterRepo,
		demandRepo:     demandRepo,
		roomRepo:       roomRepo,
		professorRepo:  professorRepo,
		allocationRepo: allocationRepo,
		conflicts:      conflicts,
		scoringWorkers: scoringWorkers,
		summaries:      make(map[int64]*models.RunSummary),
	}
}

// preparedDemand carries everything needed to score and place one demand:
// its decoded weekly slots and the immutable inputs collected up front.
type preparedDemand struct {
	demand *models.CourseDemand
	slots  []schedule.Slot
	prefs  []*models.ProfessorPreference

	// ranked is filled by scoring: candidates that may win (no failed hard
	// rule), best first.
	ranked []models.ScoringBreakdown
}

// pinned reports whether the demand carries a specific-room rule.
func (p *preparedDemand) pinned() bool {
	for _, rule := range p.demand.HardRules {
		if rule.Kind == models.RuleSpecificRoomRequired {
			return true
		}
	}
	return false
}

// roomSlots maps the demand's weekly slots onto one candidate room.
func (p *preparedDemand) roomSlots(roomID int64) []models.RoomSlot {
	slots := make([]models.RoomSlot, len(p.slots))
	for i, s := range p.slots {
		slots[i] = models.RoomSlot{RoomID: roomID, Day: s.Day, BlockID: s.Block}
	}
	return slots
}

// Run executes one full allocation pass over the semester's unallocated
// demands. Failures are non-fatal per demand: the run completes and reports
// a summary with per-phase counts and the unresolved demands. Only a phase
// commit failure aborts the run; earlier committed phases remain valid.
//
// Cancellation is honored at phase boundaries only. A cancelled run keeps
// every phase committed so far and discards the phase in progress.
func (s *AllocationService) Run(ctx context.Context, semesterID int64) (*models.RunSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, apperrors.ErrConcurrentRun
	}
	defer s.running.Store(false)

	semester, err := s.semesterRepo.GetByID(ctx, semesterID)
	if err != nil {
		if errors.Is(err, repositories.ErrSemesterNotFound) {
			return nil, apperrors.ErrSemesterNotFound
		}
		return nil, fmt.Errorf("error retrieving semester: %w", err)
	}

	summary := &models.RunSummary{SemesterID: semesterID, StartedAt: time.Now()}
	finish := func() *models.RunSummary {
		summary.FinishedAt = time.Now()
		s.mu.Lock()
		s.summaries[semesterID] = summary
		s.mu.Unlock()
		return summary
	}

	rooms, err := s.roomRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving rooms: %w", err)
	}

	pending, err := s.prepare(ctx, semester, summary)
	if err != nil {
		return nil, err
	}
	summary.TotalDemands = len(pending) + len(summary.Unresolved)

	history, err := s.loadHistory(ctx, semesterID, pending)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int64("semesterId", semesterID).
		Int("demands", summary.TotalDemands).
		Int("rooms", len(rooms)).
		Msg("Allocation run started")

	// Phase A: demands pinned to a specific room are placed and persisted
	// first, so later phases see their slots as occupied.
	var pinned, rest []*preparedDemand
	for _, p := range pending {
		if p.pinned() {
			pinned = append(pinned, p)
		} else {
			rest = append(rest, p)
		}
	}

	for _, p := range pinned {
		s.score(p, rooms, history)
	}
	committedA, err := s.commitPhase(ctx, semester, pinned, summary)
	if err != nil {
		return nil, fmt.Errorf("phase A commit failed: %w", err)
	}
	summary.PhaseACommitted = committedA
	logger.Info().Int("committed", committedA).Msg("Phase A committed")

	if err := ctx.Err(); err != nil {
		logger.Warn().Err(err).Msg("Allocation run cancelled after phase A")
		return finish(), err
	}

	// Phase B: remaining demands are scored against the room set. Scoring
	// only reads immutable snapshots, so the fan-out is safe.
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.scoringWorkers)
	for _, p := range rest {
		p := p
		g.Go(func() error {
			s.score(p, rooms, history)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	summary.PhaseBScored = len(rest)

	if err := ctx.Err(); err != nil {
		logger.Warn().Err(err).Msg("Allocation run cancelled after phase B")
		return finish(), err
	}

	// Phase C: one fresh batch conflict check against persisted state, which
	// now reflects phase A, then a single atomic commit pass.
	committedC, err := s.commitPhase(ctx, semester, rest, summary)
	if err != nil {
		return nil, fmt.Errorf("phase C commit failed: %w", err)
	}
	summary.PhaseCCommitted = committedC

	logger.Info().
		Int("phaseA", summary.PhaseACommitted).
		Int("phaseC", committedC).
		Int("unresolved", len(summary.Unresolved)).
		Msg("Allocation run finished")

	return finish(), nil
}

// prepare loads the semester's unallocated demands, decodes their schedule
// codes and resolves professor preferences. Demands that cannot produce a
// structurally valid candidate are reported unallocatable right away.
func (s *AllocationService) prepare(ctx context.Context, semester *models.Semester, summary *models.RunSummary) ([]*preparedDemand, error) {
	demands, err := s.demandRepo.ListBySemester(ctx, semester.ID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving demands: %w", err)
	}

	var pending []*preparedDemand
	for _, demand := range demands {
		if demand.Status != models.DemandUnallocated {
			continue
		}

		slots, err := schedule.Decode(demand.ScheduleCode)
		if err != nil {
			summary.Unresolved = append(summary.Unresolved, models.UnresolvedDemand{
				DemandID:     demand.ID,
				CourseCode:   demand.CourseCode,
				SectionLabel: demand.SectionLabel,
				Reason:       models.ReasonUnallocatable,
				Detail:       err.Error(),
			})
			continue
		}

		prefs, unmatched, err := loadPreferences(ctx, s.professorRepo, demand)
		if err != nil {
			return nil, err
		}
		for _, name := range unmatched {
			summary.Warnings = append(summary.Warnings, models.RunWarning{
				DemandID:   demand.ID,
				CourseCode: demand.CourseCode,
				Message:    fmt.Sprintf("professor %q not found in registry", name),
			})
		}

		pending = append(pending, &preparedDemand{demand: demand, slots: slots, prefs: prefs})
	}

	return pending, nil
}

// loadHistory aggregates historical allocation counts once per distinct
// course code so scoring goroutines only read.
func (s *AllocationService) loadHistory(ctx context.Context, semesterID int64, pending []*preparedDemand) (map[string]map[int64]int, error) {
	history := make(map[string]map[int64]int)
	for _, p := range pending {
		code := p.demand.CourseCode
		if _, ok := history[code]; ok {
			continue
		}
		counts, err := s.allocationRepo.HistoryCounts(ctx, code, semesterID)
		if err != nil {
			return nil, fmt.Errorf("error aggregating history for %s: %w", code, err)
		}
		history[code] = counts
	}
	return history, nil
}

// score ranks the demand's candidates, keeping only rooms that may win.
func (s *AllocationService) score(p *preparedDemand, rooms []*models.Room, history map[string]map[int64]int) {
	breakdowns := ScoreRooms(p.demand, rooms, p.demand.HardRules, p.prefs, history[p.demand.CourseCode])
	p.ranked = p.ranked[:0]
	for _, b := range breakdowns {
		if !b.HardRuleFailed {
			p.ranked = append(p.ranked, b)
		}
	}
}

// commitPhase runs one commit pass over scored demands: a single fresh batch
// conflict check for the union of all candidate slots, then a deterministic
// walk committing each demand to its best free candidate. Slots claimed by a
// commit are reserved in the phase-local overlay before the next demand is
// evaluated, so two demands in the same phase can never be double-booked.
// All records of the phase are persisted as one atomic batch.
func (s *AllocationService) commitPhase(ctx context.Context, semester *models.Semester, demands []*preparedDemand, summary *models.RunSummary) (int, error) {
	var placeable []*preparedDemand
	var union []models.RoomSlot
	for _, p := range demands {
		if len(p.ranked) == 0 {
			summary.Unresolved = append(summary.Unresolved, models.UnresolvedDemand{
				DemandID:     p.demand.ID,
				CourseCode:   p.demand.CourseCode,
				SectionLabel: p.demand.SectionLabel,
				Reason:       models.ReasonUnallocatable,
				Detail:       "no candidate room satisfies the mandatory rules",
			})
			continue
		}
		placeable = append(placeable, p)
		for _, b := range p.ranked {
			union = append(union, p.roomSlots(b.RoomID)...)
		}
	}

	if len(placeable) == 0 {
		return 0, nil
	}

	occupied, err := s.conflicts.CheckBatch(ctx, semester, union)
	if err != nil {
		return 0, err
	}

	// Best first; equal scores resolve by course code then id so reruns on
	// identical input commit identical records.
	sort.SliceStable(placeable, func(i, j int) bool {
		bi, bj := placeable[i].ranked[0].Total, placeable[j].ranked[0].Total
		if bi != bj {
			return bi > bj
		}
		if placeable[i].demand.CourseCode != placeable[j].demand.CourseCode {
			return placeable[i].demand.CourseCode < placeable[j].demand.CourseCode
		}
		return placeable[i].demand.ID < placeable[j].demand.ID
	})

	overlay := NewOverlay()
	var records []models.AllocationRecord
	committed := 0

	for _, p := range placeable {
		var chosen *models.ScoringBreakdown
		var chosenSlots []models.RoomSlot
		for i := range p.ranked {
			slots := p.roomSlots(p.ranked[i].RoomID)
			if slotsFree(slots, occupied, overlay) {
				chosen = &p.ranked[i]
				chosenSlots = slots
				break
			}
		}

		if chosen == nil {
			summary.Unresolved = append(summary.Unresolved, models.UnresolvedDemand{
				DemandID:     p.demand.ID,
				CourseCode:   p.demand.CourseCode,
				SectionLabel: p.demand.SectionLabel,
				Reason:       models.ReasonBlockedByConflict,
				Detail:       "every scored candidate slot is occupied",
			})
			continue
		}

		overlay.Reserve(chosenSlots)
		for _, slot := range chosenSlots {
			records = append(records, models.AllocationRecord{
				SemesterID: semester.ID,
				DemandID:   p.demand.ID,
				RoomID:     slot.RoomID,
				Day:        slot.Day,
				BlockID:    slot.BlockID,
			})
		}
		committed++
	}

	if err := s.allocationRepo.CommitBatch(ctx, records); err != nil {
		return 0, err
	}

	return committed, nil
}

func slotsFree(slots []models.RoomSlot, occupied map[models.RoomSlot]bool, overlay *Overlay) bool {
	for _, slot := range slots {
		if occupied[slot] || overlay.Occupied(slot) {
			return false
		}
	}
	return true
}

// LastSummary returns the summary of the most recent run for a semester.
func (s *AllocationService) LastSummary(semesterID int64) (*models.RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary, ok := s.summaries[semesterID]
	if !ok {
		return nil, apperrors.ErrRunNotFound
	}
	return summary, nil
}

// ListBySemester returns the semester's committed allocation records.
func (s *AllocationService) ListBySemester(ctx context.Context, semesterID int64) ([]*models.AllocationRecord, error) {
	if _, err := s.semesterRepo.GetByID(ctx, semesterID); err != nil {
		if errors.Is(err, repositories.ErrSemesterNotFound) {
			return nil, apperrors.ErrSemesterNotFound
		}
		return nil, fmt.Errorf("error retrieving semester: %w", err)
	}
	return s.allocationRepo.ListBySemester(ctx, semesterID)
}

// AllocateManually commits one demand to one room, bypassing scoring but not
// conflict checking. The whole decoded slot set must be free.
func (s *AllocationService) AllocateManually(ctx context.Context, demandID, roomID int64) ([]*models.AllocationRecord, error) {
	demand, err := s.demandRepo.GetByID(ctx, demandID)
	if err != nil {
		if errors.Is(err, repositories.ErrDemandNotFound) {
			return nil, apperrors.ErrDemandNotFound
		}
		return nil, fmt.Errorf("error retrieving course demand: %w", err)
	}
	if demand.Status == models.DemandAllocated {
		return nil, apperrors.NewConflictError("demand already holds an allocation")
	}

	if _, err := s.roomRepo.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return nil, apperrors.ErrRoomNotFound
		}
		return nil, fmt.Errorf("error retrieving room: %w", err)
	}

	semester, err := s.semesterRepo.GetByID(ctx, demand.SemesterID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving semester: %w", err)
	}

	decoded, err := schedule.Decode(demand.ScheduleCode)
	if err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrScheduleFormat, err.Error())
	}

	p := preparedDemand{demand: demand, slots: decoded}
	slots := p.roomSlots(roomID)

	occupied, err := s.conflicts.CheckBatch(ctx, semester, slots)
	if err != nil {
		return nil, err
	}
	for _, slot := range slots {
		if occupied[slot] {
			return nil, apperrors.NewOccupiedSlotError(
				fmt.Sprintf("slot %s %s in room %d is occupied", slot.Day, slot.BlockID, slot.RoomID))
		}
	}

	records := make([]models.AllocationRecord, len(slots))
	for i, slot := range slots {
		records[i] = models.AllocationRecord{
			SemesterID: semester.ID,
			DemandID:   demand.ID,
			RoomID:     slot.RoomID,
			Day:        slot.Day,
			BlockID:    slot.BlockID,
		}
	}
	if err := s.allocationRepo.CommitBatch(ctx, records); err != nil {
		if errors.Is(err, repositories.ErrSlotTaken) {
			return nil, apperrors.NewOccupiedSlotError("slot was taken by a concurrent allocation")
		}
		return nil, fmt.Errorf("error committing manual allocation: %w", err)
	}

	return s.allocationRepo.ByDemand(ctx, demandID)
}

// Deallocate removes a demand's allocation records and frees its slots.
func (s *AllocationService) Deallocate(ctx context.Context, demandID int64) error {
	err := s.allocationRepo.DeleteByDemand(ctx, demandID)
	if err != nil {
		if errors.Is(err, repositories.ErrAllocationNotFound) {
			return apperrors.ErrDemandNotAllocated
		}
		return fmt.Errorf("error deallocating demand: %w", err)
	}
	return nil
}
