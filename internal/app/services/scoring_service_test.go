package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcouto/ensalamento/internal/app/models"
	"github.com/gcouto/ensalamento/internal/pkg/apperrors"
)

func int64Ptr(v int64) *int64 { return &v }

func TestScoreRoomsCapacityPoint(t *testing.T) {
	demand := &models.CourseDemand{ID: 1, Seats: 40}
	rooms := []*models.Room{
		{ID: 1, Capacity: 40, Type: models.RoomTypeClassroom},
		{ID: 2, Capacity: 39, Type: models.RoomTypeClassroom},
	}

	breakdowns := ScoreRooms(demand, rooms, nil, nil, nil)
	require.Len(t, breakdowns, 2)

	byRoom := breakdownsByRoom(breakdowns)
	assert.Equal(t, models.CapacityPoints, byRoom[1].CapacityPoints)
	assert.Equal(t, 0, byRoom[2].CapacityPoints, "undersized room earns no capacity point")
	assert.Equal(t, int64(1), breakdowns[0].RoomID, "fitting room ranks first")
}

func TestScoreRoomsHardRulePointsPerSatisfiedRule(t *testing.T) {
	demand := &models.CourseDemand{ID: 1, Seats: 10}
	rules := []models.HardRule{
		{Kind: models.RuleRoomTypeRequired, Value: string(models.RoomTypeLab)},
		{Kind: models.RuleCharacteristicRequired, Value: "projector"},
	}
	rooms := []*models.Room{
		{ID: 1, Capacity: 20, Type: models.RoomTypeLab, Characteristics: []string{"projector"}},
		{ID: 2, Capacity: 20, Type: models.RoomTypeLab},
		{ID: 3, Capacity: 20, Type: models.RoomTypeClassroom},
	}

	byRoom := breakdownsByRoom(ScoreRooms(demand, rooms, rules, nil, nil))

	assert.Equal(t, 2*models.HardRulePoints, byRoom[1].HardRulePoints)
	assert.False(t, byRoom[1].HardRuleFailed)

	// One of two rules satisfied still earns that rule's points, but the
	// room is out of the running.
	assert.Equal(t, models.HardRulePoints, byRoom[2].HardRulePoints)
	assert.True(t, byRoom[2].HardRuleFailed)

	assert.Equal(t, 0, byRoom[3].HardRulePoints)
	assert.True(t, byRoom[3].HardRuleFailed)
}

func TestScoreRoomsRuleFailureZeroesSoftComponents(t *testing.T) {
	demand := &models.CourseDemand{ID: 1, CourseCode: "MAT101", Seats: 10}
	rules := []models.HardRule{
		{Kind: models.RuleRoomTypeRequired, Value: string(models.RoomTypeLab)},
	}
	prefs := []*models.ProfessorPreference{
		{ProfessorID: 7, PreferredRoomID: int64Ptr(2), PreferredCharacteristics: []string{"projector"}},
	}
	history := map[int64]int{2: 5}

	rooms := []*models.Room{
		{ID: 1, Capacity: 20, Type: models.RoomTypeLab},
		{ID: 2, Capacity: 20, Type: models.RoomTypeClassroom, Characteristics: []string{"projector"}},
	}

	byRoom := breakdownsByRoom(ScoreRooms(demand, rooms, rules, prefs, history))

	// Room 2 matches every preference and has history, but fails the rule:
	// only capacity may count.
	assert.True(t, byRoom[2].HardRuleFailed)
	assert.Equal(t, 0, byRoom[2].PreferencePoints)
	assert.Equal(t, 0, byRoom[2].HistoryPoints)
	assert.Equal(t, models.CapacityPoints, byRoom[2].Total)

	assert.Greater(t, byRoom[1].Total, byRoom[2].Total,
		"a rule-passing room must always outrank a rule-failing one here")
}

func TestScoreRoomsSoftPreferencesApplyIndependently(t *testing.T) {
	demand := &models.CourseDemand{ID: 1, Seats: 10}
	prefs := []*models.ProfessorPreference{
		{ProfessorID: 7, PreferredRoomID: int64Ptr(1), PreferredCharacteristics: []string{"whiteboard", "projector"}},
	}
	rooms := []*models.Room{
		{ID: 1, Capacity: 10, Type: models.RoomTypeClassroom, Characteristics: []string{"projector"}},
		{ID: 2, Capacity: 10, Type: models.RoomTypeClassroom, Characteristics: []string{"whiteboard"}},
		{ID: 3, Capacity: 10, Type: models.RoomTypeClassroom},
	}

	byRoom := breakdownsByRoom(ScoreRooms(demand, rooms, nil, prefs, nil))

	assert.Equal(t, models.PreferredRoomPoints+models.CharacteristicPoints, byRoom[1].PreferencePoints)
	assert.Equal(t, models.CharacteristicPoints, byRoom[2].PreferencePoints)
	assert.Equal(t, 0, byRoom[3].PreferencePoints)
}

func TestScoreRoomsHistoryPointPerPastSemester(t *testing.T) {
	demand := &models.CourseDemand{ID: 1, CourseCode: "FIS203", Seats: 10}
	rooms := []*models.Room{
		{ID: 1, Capacity: 10, Type: models.RoomTypeClassroom},
		{ID: 2, Capacity: 10, Type: models.RoomTypeClassroom},
	}
	history := map[int64]int{1: 3}

	byRoom := breakdownsByRoom(ScoreRooms(demand, rooms, nil, nil, history))
	assert.Equal(t, 3*models.HistoryPointPerTerm, byRoom[1].HistoryPoints)
	assert.Equal(t, 0, byRoom[2].HistoryPoints)
}

func TestScoreRoomsTieBreakBySlackThenID(t *testing.T) {
	demand := &models.CourseDemand{ID: 1, Seats: 30}
	rooms := []*models.Room{
		{ID: 3, Capacity: 35, Type: models.RoomTypeClassroom}, // slack 5
		{ID: 1, Capacity: 60, Type: models.RoomTypeClassroom}, // slack 30
		{ID: 2, Capacity: 35, Type: models.RoomTypeClassroom}, // slack 5
	}

	breakdowns := ScoreRooms(demand, rooms, nil, nil, nil)
	require.Len(t, breakdowns, 3)

	// All three earn only the capacity point; order falls to slack, then id.
	assert.Equal(t, int64(2), breakdowns[0].RoomID)
	assert.Equal(t, int64(3), breakdowns[1].RoomID)
	assert.Equal(t, int64(1), breakdowns[2].RoomID)
}

func TestScoreRoomsDeterministic(t *testing.T) {
	demand := &models.CourseDemand{ID: 1, CourseCode: "QUI110", Seats: 25}
	rules := []models.HardRule{{Kind: models.RuleRoomTypeRequired, Value: string(models.RoomTypeLab)}}
	prefs := []*models.ProfessorPreference{{ProfessorID: 1, PreferredCharacteristics: []string{"fume hood"}}}
	history := map[int64]int{2: 1, 4: 2}
	rooms := []*models.Room{
		{ID: 1, Capacity: 30, Type: models.RoomTypeLab},
		{ID: 2, Capacity: 30, Type: models.RoomTypeLab, Characteristics: []string{"fume hood"}},
		{ID: 3, Capacity: 10, Type: models.RoomTypeClassroom},
		{ID: 4, Capacity: 25, Type: models.RoomTypeLab},
	}

	first := ScoreRooms(demand, rooms, rules, prefs, history)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ScoreRooms(demand, rooms, rules, prefs, history))
	}
}

func TestSuggestRoomsRanksAndReportsUnmatchedNames(t *testing.T) {
	demand := &models.CourseDemand{
		ID:             1,
		SemesterID:     1,
		CourseCode:     "MAT101",
		ScheduleCode:   "24M12",
		Seats:          30,
		ProfessorNames: []string{"Ana Souza", "Ghost Professor"},
	}
	demands := newFakeDemandStore(demand)
	rooms := &fakeRoomStore{rooms: []*models.Room{
		{ID: 1, Code: "A-101", Capacity: 40, Type: models.RoomTypeClassroom},
		{ID: 2, Code: "A-102", Capacity: 35, Type: models.RoomTypeClassroom},
	}}
	professors := &fakeProfessorStore{
		professors: []*models.Professor{{ID: 7, Name: "Ana Souza"}},
		prefs: map[int64][]*models.ProfessorPreference{
			7: {{ProfessorID: 7, PreferredRoomID: int64Ptr(1)}},
		},
	}
	svc := NewScoringService(demands, rooms, professors, &fakeAllocationStore{})

	breakdowns, unmatched, err := svc.SuggestRooms(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, breakdowns, 2)

	assert.Equal(t, int64(1), breakdowns[0].RoomID, "preferred room wins")
	require.NotNil(t, breakdowns[0].Room)
	assert.Equal(t, "A-101", breakdowns[0].Room.Code)
	assert.Equal(t, []string{"Ghost Professor"}, unmatched)
}

func TestSuggestRoomsRejectsMalformedScheduleCode(t *testing.T) {
	demands := newFakeDemandStore(&models.CourseDemand{ID: 1, SemesterID: 1, ScheduleCode: "99X12"})
	svc := NewScoringService(demands, &fakeRoomStore{}, &fakeProfessorStore{}, &fakeAllocationStore{})

	_, _, err := svc.SuggestRooms(context.Background(), 1)
	assert.True(t, errors.Is(err, apperrors.ErrScheduleFormat))
}

func TestSuggestRoomsUnknownDemand(t *testing.T) {
	svc := NewScoringService(newFakeDemandStore(), &fakeRoomStore{}, &fakeProfessorStore{}, &fakeAllocationStore{})

	_, _, err := svc.SuggestRooms(context.Background(), 42)
	assert.True(t, errors.Is(err, apperrors.ErrDemandNotFound))
}

func breakdownsByRoom(breakdowns []models.ScoringBreakdown) map[int64]models.ScoringBreakdown {
	out := make(map[int64]models.ScoringBreakdown, len(breakdowns))
	for _, b := range breakdowns {
		out[b.RoomID] = b
	}
	return out
}
