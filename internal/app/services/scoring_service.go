package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/gcouto/ensalamento/internal/app/models"
	"github.com/gcouto/ensalamento/internal/app/repositories"
	"github.com/gcouto/ensalamento/internal/pkg/apperrors"
	"github.com/gcouto/ensalamento/internal/pkg/schedule"
)

// ScoreRooms scores one demand against every candidate room and returns the
// breakdowns ordered best-first. The function is pure: it reads only its
// arguments and is shared verbatim by the orchestrator and the interactive
// suggestion query, so both always agree.
//
// Components are cumulative and a room is never removed for failing a rule:
//   - capacity:  +1 when the room seats the demand
//   - hard rule: +4 per individually satisfied rule; if any rule fails the
//     room cannot win and its soft and historical components are zeroed,
//     while capacity and the satisfied-rule points still count
//   - soft preferences (all rules passed): +2 exact preferred room, +2 any
//     preferred characteristic; the two apply independently
//   - history (all rules passed): +1 per distinct past semester in which
//     this course code already sat in this room
//
// Ties are broken by smaller capacity slack (|capacity - seats|), then lower
// room id, so equal-score candidate lists are always in the same order.
func ScoreRooms(demand *models.CourseDemand, rooms []*models.Room, rules []models.HardRule, prefs []*models.ProfessorPreference, history map[int64]int) []models.ScoringBreakdown {
	breakdowns := make([]models.ScoringBreakdown, 0, len(rooms))

	for _, room := range rooms {
		b := models.ScoringBreakdown{DemandID: demand.ID, RoomID: room.ID}

		if room.Capacity >= demand.Seats {
			b.CapacityPoints = models.CapacityPoints
		}

		for i := range rules {
			rule := &rules[i]
			if rule.SatisfiedBy(room) {
				b.HardRulePoints += models.HardRulePoints
				b.SatisfiedRules = append(b.SatisfiedRules, rule.Label())
			} else {
				b.HardRuleFailed = true
			}
		}

		if !b.HardRuleFailed {
			for _, pref := range prefs {
				if pref.PreferredRoomID != nil && *pref.PreferredRoomID == room.ID {
					b.PreferencePoints += models.PreferredRoomPoints
					b.SatisfiedPreferences = append(b.SatisfiedPreferences, "preferred room")
					break
				}
			}
			for _, pref := range prefs {
				if matched, ok := firstMatchingCharacteristic(room, pref.PreferredCharacteristics); ok {
					b.PreferencePoints += models.CharacteristicPoints
					b.SatisfiedPreferences = append(b.SatisfiedPreferences, "preferred characteristic "+matched)
					break
				}
			}

			b.HistoryPoints = history[room.ID] * models.HistoryPointPerTerm
		}

		b.Total = b.CapacityPoints + b.HardRulePoints + b.PreferencePoints + b.HistoryPoints
		breakdowns = append(breakdowns, b)
	}

	sort.SliceStable(breakdowns, func(i, j int) bool {
		if breakdowns[i].Total != breakdowns[j].Total {
			return breakdowns[i].Total > breakdowns[j].Total
		}
		si := capacitySlack(roomByID(rooms, breakdowns[i].RoomID), demand.Seats)
		sj := capacitySlack(roomByID(rooms, breakdowns[j].RoomID), demand.Seats)
		if si != sj {
			return si < sj
		}
		return breakdowns[i].RoomID < breakdowns[j].RoomID
	})

	return breakdowns
}

func firstMatchingCharacteristic(room *models.Room, wanted []string) (string, bool) {
	for _, c := range wanted {
		if room.HasCharacteristic(c) {
			return c, true
		}
	}
	return "", false
}

func capacitySlack(room *models.Room, seats int) int {
	if room == nil {
		return int(^uint(0) >> 1)
	}
	slack := room.Capacity - seats
	if slack < 0 {
		slack = -slack
	}
	return slack
}

func roomByID(rooms []*models.Room, id int64) *models.Room {
	for _, r := range rooms {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// DemandStore is the persistence surface scoring and orchestration need from
// course demands.
type DemandStore interface {
	GetByID(ctx context.Context, id int64) (*models.CourseDemand, error)
	ListBySemester(ctx context.Context, semesterID int64) ([]*models.CourseDemand, error)
}

// RoomStore supplies the materialized room inventory.
type RoomStore interface {
	GetByID(ctx context.Context, id int64) (*models.Room, error)
	GetAll(ctx context.Context) ([]*models.Room, error)
}

// ProfessorStore resolves free-text names and loads preferences.
type ProfessorStore interface {
	ResolveByNames(ctx context.Context, names []string) (map[string]*models.Professor, error)
	PreferencesByProfessorIDs(ctx context.Context, ids []int64) ([]*models.ProfessorPreference, error)
}

// ScoringService loads a demand's scoring inputs and runs ScoreRooms over
// them. It backs the interactive "suggest rooms" query; the orchestrator
// shares the same inputs loader so the two can never disagree.
type ScoringService struct {
	demandRepo     DemandStore
	roomRepo       RoomStore
	professorRepo  ProfessorStore
	allocationRepo AllocationStore
}

// NewScoringService creates a new scoring service
func NewScoringService(demandRepo DemandStore, roomRepo RoomStore, professorRepo ProfessorStore, allocationRepo AllocationStore) *ScoringService {
	return &ScoringService{
		demandRepo:     demandRepo,
		roomRepo:       roomRepo,
		professorRepo:  professorRepo,
		allocationRepo: allocationRepo,
	}
}

// loadPreferences resolves a demand's professor names against the registry
// and loads the preferences of every matched professor. Unmatched names are
// returned verbatim as warnings, never fuzzy-matched. Both the orchestrator
// and the suggestion query load preferences through here.
func loadPreferences(ctx context.Context, repo ProfessorStore, demand *models.CourseDemand) ([]*models.ProfessorPreference, []string, error) {
	resolved, err := repo.ResolveByNames(ctx, demand.ProfessorNames)
	if err != nil {
		return nil, nil, fmt.Errorf("error resolving professors: %w", err)
	}

	var ids []int64
	var unmatched []string
	for _, name := range demand.ProfessorNames {
		professor, ok := resolved[models.NormalizeName(name)]
		if !ok {
			unmatched = append(unmatched, name)
			continue
		}
		ids = append(ids, professor.ID)
	}

	prefs, err := repo.PreferencesByProfessorIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	return prefs, unmatched, nil
}

// SuggestRooms scores one demand against the full inventory and returns the
// ranked breakdowns with rooms attached, plus any unmatched professor names.
func (s *ScoringService) SuggestRooms(ctx context.Context, demandID int64) ([]models.ScoringBreakdown, []string, error) {
	demand, err := s.demandRepo.GetByID(ctx, demandID)
	if err != nil {
		if errors.Is(err, repositories.ErrDemandNotFound) {
			return nil, nil, apperrors.ErrDemandNotFound
		}
		return nil, nil, fmt.Errorf("error retrieving course demand: %w", err)
	}

	if _, err := schedule.Decode(demand.ScheduleCode); err != nil {
		return nil, nil, apperrors.NewCustomError(apperrors.ErrScheduleFormat, err.Error())
	}

	rooms, err := s.roomRepo.GetAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error retrieving rooms: %w", err)
	}

	prefs, unmatched, err := loadPreferences(ctx, s.professorRepo, demand)
	if err != nil {
		return nil, nil, err
	}

	history, err := s.allocationRepo.HistoryCounts(ctx, demand.CourseCode, demand.SemesterID)
	if err != nil {
		return nil, nil, err
	}

	breakdowns := ScoreRooms(demand, rooms, demand.HardRules, prefs, history)
	for i := range breakdowns {
		breakdowns[i].Room = roomByID(rooms, breakdowns[i].RoomID)
	}

	return breakdowns, unmatched, nil
}
