package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcouto/ensalamento/internal/app/models"
	"github.com/gcouto/ensalamento/internal/pkg/apperrors"
	"github.com/gcouto/ensalamento/internal/pkg/schedule"
)

type allocationFixture struct {
	semesters   *fakeSemesterStore
	demands     *fakeDemandStore
	rooms       *fakeRoomStore
	professors  *fakeProfessorStore
	allocations *fakeAllocationStore
	svc         *AllocationService
}

func newAllocationFixture(rooms []*models.Room, demands ...*models.CourseDemand) *allocationFixture {
	f := &allocationFixture{
		semesters:  newFakeSemesterStore(testSemester()),
		demands:    newFakeDemandStore(demands...),
		rooms:      &fakeRoomStore{rooms: rooms},
		professors: &fakeProfessorStore{},
	}
	f.allocations = &fakeAllocationStore{demands: f.demands, history: map[string]map[int64]int{}}
	checker := NewConflictChecker(f.allocations, &fakeReservationWeekly{})
	f.svc = NewAllocationService(f.semesters, f.demands, f.rooms, f.professors, f.allocations, checker, 2)
	return f
}

func (f *allocationFixture) roomOf(t *testing.T, demandID int64) int64 {
	t.Helper()
	records, err := f.allocations.ByDemand(context.Background(), demandID)
	require.NoError(t, err)
	require.NotEmpty(t, records, "demand %d has no records", demandID)
	for _, r := range records {
		require.Equal(t, records[0].RoomID, r.RoomID, "all slots of one demand must share a room")
	}
	return records[0].RoomID
}

func classrooms(capacities ...int) []*models.Room {
	rooms := make([]*models.Room, len(capacities))
	for i, c := range capacities {
		rooms[i] = &models.Room{ID: int64(i + 1), Code: string(rune('A' + i)), Capacity: c, Type: models.RoomTypeClassroom}
	}
	return rooms
}

func TestRunCommitsPinnedDemandsBeforeGeneralScoring(t *testing.T) {
	// Both demands share the weekly slots of "24M12" and both would score
	// best in room 1. The pinned demand must take room 1 and the general
	// demand must see that commit and fall back to room 2.
	pinned := &models.CourseDemand{
		ID: 1, SemesterID: 1, CourseCode: "FIS203", SectionLabel: "T1",
		ScheduleCode: "24M12", Seats: 30,
		HardRules: []models.HardRule{{DemandID: 1, Kind: models.RuleSpecificRoomRequired, RoomID: int64Ptr(1)}},
	}
	general := &models.CourseDemand{
		ID: 2, SemesterID: 1, CourseCode: "MAT101", SectionLabel: "T1",
		ScheduleCode: "24M12", Seats: 30,
	}
	f := newAllocationFixture(classrooms(30, 60), pinned, general)
	// Bias the general demand toward room 1 via history.
	f.allocations.history["MAT101"] = map[int64]int{1: 4}

	summary, err := f.svc.Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalDemands)
	assert.Equal(t, 1, summary.PhaseACommitted)
	assert.Equal(t, 1, summary.PhaseBScored)
	assert.Equal(t, 1, summary.PhaseCCommitted)
	assert.Empty(t, summary.Unresolved)

	assert.Equal(t, int64(1), f.roomOf(t, 1))
	assert.Equal(t, int64(2), f.roomOf(t, 2))
	assert.Equal(t, models.DemandAllocated, f.demands.demands[1].Status)
	assert.Equal(t, models.DemandAllocated, f.demands.demands[2].Status)
}

func TestRunOverlayPreventsDoubleBookingWithinOnePhase(t *testing.T) {
	// Two general demands, same slots, same best room. Both are committed in
	// phase C; the overlay must push the second one to the other room.
	a := &models.CourseDemand{ID: 1, SemesterID: 1, CourseCode: "MAT101", ScheduleCode: "35T34", Seats: 30}
	b := &models.CourseDemand{ID: 2, SemesterID: 1, CourseCode: "MAT102", ScheduleCode: "35T34", Seats: 30}
	f := newAllocationFixture(classrooms(30, 60), a, b)

	summary, err := f.svc.Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.PhaseCCommitted)
	assert.Empty(t, summary.Unresolved)
	assert.NotEqual(t, f.roomOf(t, 1), f.roomOf(t, 2))

	seen := make(map[models.RoomSlot]int64)
	for _, r := range f.allocations.records {
		slot := models.RoomSlot{RoomID: r.RoomID, Day: r.Day, BlockID: r.BlockID}
		if owner, ok := seen[slot]; ok {
			t.Fatalf("slot %+v booked by demands %d and %d", slot, owner, r.DemandID)
		}
		seen[slot] = r.DemandID
	}
}

func TestRunReportsBlockedByConflictWhenEveryCandidateIsTaken(t *testing.T) {
	a := &models.CourseDemand{ID: 1, SemesterID: 1, CourseCode: "MAT101", ScheduleCode: "2M1", Seats: 10}
	b := &models.CourseDemand{ID: 2, SemesterID: 1, CourseCode: "MAT102", ScheduleCode: "2M1", Seats: 10}
	f := newAllocationFixture(classrooms(20), a, b)

	summary, err := f.svc.Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.PhaseCCommitted)
	require.Len(t, summary.Unresolved, 1)
	assert.Equal(t, models.ReasonBlockedByConflict, summary.Unresolved[0].Reason)
	assert.Equal(t, int64(2), summary.Unresolved[0].DemandID, "course-code order decides who wins the slot")
}

func TestRunReportsUnallocatableDemands(t *testing.T) {
	undecodable := &models.CourseDemand{ID: 1, SemesterID: 1, CourseCode: "MAT101", ScheduleCode: "9M1", Seats: 10}
	impossible := &models.CourseDemand{
		ID: 2, SemesterID: 1, CourseCode: "QUI110", ScheduleCode: "2M1", Seats: 10,
		HardRules: []models.HardRule{{DemandID: 2, Kind: models.RuleRoomTypeRequired, Value: string(models.RoomTypeLab)}},
	}
	f := newAllocationFixture(classrooms(20), undecodable, impossible)

	summary, err := f.svc.Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalDemands)
	assert.Zero(t, summary.PhaseCCommitted)
	require.Len(t, summary.Unresolved, 2)
	for _, u := range summary.Unresolved {
		assert.Equal(t, models.ReasonUnallocatable, u.Reason)
	}
	assert.Empty(t, f.allocations.records)
}

func TestRunWarnsAboutUnregisteredProfessors(t *testing.T) {
	demand := &models.CourseDemand{
		ID: 1, SemesterID: 1, CourseCode: "MAT101", ScheduleCode: "2M1", Seats: 10,
		ProfessorNames: []string{"Maria Silva", "Ghost Professor"},
	}
	f := newAllocationFixture(classrooms(20), demand)
	f.professors.professors = []*models.Professor{{ID: 1, Name: "Maria Silva"}}

	summary, err := f.svc.Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.PhaseCCommitted)
	require.Len(t, summary.Warnings, 1)
	assert.Equal(t, int64(1), summary.Warnings[0].DemandID)
	assert.Equal(t, "MAT101", summary.Warnings[0].CourseCode)
	assert.Contains(t, summary.Warnings[0].Message, "Ghost Professor")
}

func TestRunSkipsAlreadyAllocatedDemands(t *testing.T) {
	done := &models.CourseDemand{ID: 1, SemesterID: 1, CourseCode: "MAT101", ScheduleCode: "2M1", Seats: 10, Status: models.DemandAllocated}
	f := newAllocationFixture(classrooms(20), done)

	summary, err := f.svc.Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Zero(t, summary.TotalDemands)
	assert.Empty(t, f.allocations.records)
}

func TestRunDeterministicAcrossIdenticalReruns(t *testing.T) {
	build := func() *allocationFixture {
		demands := []*models.CourseDemand{
			{ID: 1, SemesterID: 1, CourseCode: "MAT101", ScheduleCode: "24M12", Seats: 30},
			{ID: 2, SemesterID: 1, CourseCode: "FIS203", ScheduleCode: "24M12", Seats: 30},
			{ID: 3, SemesterID: 1, CourseCode: "QUI110", ScheduleCode: "35T12", Seats: 50},
		}
		f := newAllocationFixture(classrooms(30, 60, 55), demands...)
		f.allocations.history["QUI110"] = map[int64]int{2: 2}
		return f
	}

	first := build()
	_, err := first.svc.Run(context.Background(), 1)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		next := build()
		_, err := next.svc.Run(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, first.allocations.records, next.allocations.records)
	}
}

func TestRunRejectsConcurrentInvocation(t *testing.T) {
	f := newAllocationFixture(classrooms(20))
	f.svc.running.Store(true)

	_, err := f.svc.Run(context.Background(), 1)
	assert.True(t, errors.Is(err, apperrors.ErrConcurrentRun))

	f.svc.running.Store(false)
	_, err = f.svc.Run(context.Background(), 1)
	assert.NoError(t, err, "guard must be released after a run")
}

func TestRunCancelledAtPhaseBoundaryKeepsCommittedPhases(t *testing.T) {
	pinned := &models.CourseDemand{
		ID: 1, SemesterID: 1, CourseCode: "FIS203", ScheduleCode: "2M1", Seats: 10,
		HardRules: []models.HardRule{{DemandID: 1, Kind: models.RuleSpecificRoomRequired, RoomID: int64Ptr(1)}},
	}
	general := &models.CourseDemand{ID: 2, SemesterID: 1, CourseCode: "MAT101", ScheduleCode: "3M1", Seats: 10}
	f := newAllocationFixture(classrooms(20), pinned, general)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := f.svc.Run(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)

	// Phase A landed before the first boundary check; phase C never ran.
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.PhaseACommitted)
	assert.Zero(t, summary.PhaseCCommitted)
	assert.Equal(t, int64(1), f.roomOf(t, 1))
	assert.Equal(t, models.DemandUnallocated, f.demands.demands[2].Status)

	stored, err := f.svc.LastSummary(1)
	require.NoError(t, err)
	assert.Equal(t, summary, stored)
}

func TestLastSummaryUnknownSemester(t *testing.T) {
	f := newAllocationFixture(classrooms(20))
	_, err := f.svc.LastSummary(9)
	assert.True(t, errors.Is(err, apperrors.ErrRunNotFound))
}

func TestAllocateManuallyChecksConflicts(t *testing.T) {
	demand := &models.CourseDemand{ID: 1, SemesterID: 1, CourseCode: "MAT101", ScheduleCode: "24M12", Seats: 10}
	f := newAllocationFixture(classrooms(20, 20), demand)

	// Occupy one of the demand's four slots in room 1.
	require.NoError(t, f.allocations.CommitBatch(context.Background(), []models.AllocationRecord{
		{SemesterID: 1, DemandID: 99, RoomID: 1, Day: schedule.Wednesday, BlockID: "M2"},
	}))

	_, err := f.svc.AllocateManually(context.Background(), 1, 1)
	assert.True(t, errors.Is(err, apperrors.ErrOccupiedSlot))
	assert.Equal(t, models.DemandUnallocated, f.demands.demands[1].Status)

	records, err := f.svc.AllocateManually(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Len(t, records, 4, "one record per decoded slot")
	assert.Equal(t, models.DemandAllocated, f.demands.demands[1].Status)

	_, err = f.svc.AllocateManually(context.Background(), 1, 2)
	assert.Error(t, err, "an allocated demand cannot be allocated again")
}

func TestDeallocateFreesSlotsAndStatus(t *testing.T) {
	demand := &models.CourseDemand{ID: 1, SemesterID: 1, CourseCode: "MAT101", ScheduleCode: "2M1", Seats: 10}
	f := newAllocationFixture(classrooms(20), demand)

	_, err := f.svc.AllocateManually(context.Background(), 1, 1)
	require.NoError(t, err)

	require.NoError(t, f.svc.Deallocate(context.Background(), 1))
	assert.Empty(t, f.allocations.records)
	assert.Equal(t, models.DemandUnallocated, f.demands.demands[1].Status)

	err = f.svc.Deallocate(context.Background(), 1)
	assert.True(t, errors.Is(err, apperrors.ErrDemandNotAllocated))
}
