package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gcouto/ensalamento/internal/app/models"
	"github.com/gcouto/ensalamento/internal/app/repositories"
)

// In-memory store fakes used by the service tests. They mirror the ordering
// and sentinel-error contracts of the pgx repositories.

func mustDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

type fakeSemesterStore struct {
	semesters map[int64]*models.Semester
}

func newFakeSemesterStore(semesters ...*models.Semester) *fakeSemesterStore {
	f := &fakeSemesterStore{semesters: make(map[int64]*models.Semester)}
	for _, s := range semesters {
		f.semesters[s.ID] = s
	}
	return f
}

func (f *fakeSemesterStore) Create(_ context.Context, semester *models.Semester) error {
	for _, existing := range f.semesters {
		if existing.Label == semester.Label {
			return repositories.ErrSemesterAlreadyExists
		}
	}
	semester.ID = int64(len(f.semesters) + 1)
	f.semesters[semester.ID] = semester
	return nil
}

func (f *fakeSemesterStore) GetByID(_ context.Context, id int64) (*models.Semester, error) {
	semester, ok := f.semesters[id]
	if !ok {
		return nil, repositories.ErrSemesterNotFound
	}
	return semester, nil
}

func (f *fakeSemesterStore) GetAll(_ context.Context) ([]*models.Semester, error) {
	out := make([]*models.Semester, 0, len(f.semesters))
	for _, s := range f.semesters {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

type fakeDemandStore struct {
	demands map[int64]*models.CourseDemand
	nextID  int64
}

func newFakeDemandStore(demands ...*models.CourseDemand) *fakeDemandStore {
	f := &fakeDemandStore{demands: make(map[int64]*models.CourseDemand)}
	for _, d := range demands {
		if d.Status == "" {
			d.Status = models.DemandUnallocated
		}
		f.demands[d.ID] = d
		if d.ID > f.nextID {
			f.nextID = d.ID
		}
	}
	return f
}

func (f *fakeDemandStore) GetByID(_ context.Context, id int64) (*models.CourseDemand, error) {
	demand, ok := f.demands[id]
	if !ok {
		return nil, repositories.ErrDemandNotFound
	}
	return demand, nil
}

func (f *fakeDemandStore) ListBySemester(_ context.Context, semesterID int64) ([]*models.CourseDemand, error) {
	var out []*models.CourseDemand
	for _, d := range f.demands {
		if d.SemesterID == semesterID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CourseCode != out[j].CourseCode {
			return out[i].CourseCode < out[j].CourseCode
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeDemandStore) Upsert(_ context.Context, demand *models.CourseDemand) error {
	for _, existing := range f.demands {
		if existing.SemesterID == demand.SemesterID && existing.ExternalID == demand.ExternalID {
			id := existing.ID
			status := existing.Status
			*existing = *demand
			existing.ID = id
			existing.Status = status
			demand.ID = id
			demand.Status = status
			return nil
		}
	}
	f.nextID++
	demand.ID = f.nextID
	demand.Status = models.DemandUnallocated
	f.demands[demand.ID] = demand
	return nil
}

func (f *fakeDemandStore) AddRule(_ context.Context, rule *models.HardRule) error {
	demand, ok := f.demands[rule.DemandID]
	if !ok {
		return repositories.ErrDemandNotFound
	}
	demand.HardRules = append(demand.HardRules, *rule)
	return nil
}

func (f *fakeDemandStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.demands[id]; !ok {
		return repositories.ErrDemandNotFound
	}
	delete(f.demands, id)
	return nil
}

type fakeRoomStore struct {
	rooms []*models.Room
}

func (f *fakeRoomStore) Create(_ context.Context, room *models.Room) error {
	for _, existing := range f.rooms {
		if existing.Code == room.Code {
			return repositories.ErrRoomAlreadyExists
		}
	}
	room.ID = int64(len(f.rooms) + 1)
	f.rooms = append(f.rooms, room)
	return nil
}

func (f *fakeRoomStore) GetByID(_ context.Context, id int64) (*models.Room, error) {
	for _, room := range f.rooms {
		if room.ID == id {
			return room, nil
		}
	}
	return nil, repositories.ErrRoomNotFound
}

func (f *fakeRoomStore) GetAll(_ context.Context) ([]*models.Room, error) {
	out := make([]*models.Room, len(f.rooms))
	copy(out, f.rooms)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeProfessorStore struct {
	professors []*models.Professor
	prefs      map[int64][]*models.ProfessorPreference
}

func (f *fakeProfessorStore) Create(_ context.Context, professor *models.Professor) error {
	normalized := models.NormalizeName(professor.Name)
	for _, p := range f.professors {
		if models.NormalizeName(p.Name) == normalized {
			p.Name = professor.Name
			professor.ID = p.ID
			return nil
		}
	}
	professor.ID = int64(len(f.professors) + 1)
	f.professors = append(f.professors, professor)
	return nil
}

func (f *fakeProfessorStore) GetByID(_ context.Context, id int64) (*models.Professor, error) {
	for _, p := range f.professors {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repositories.ErrProfessorNotFound
}

func (f *fakeProfessorStore) SavePreference(_ context.Context, preference *models.ProfessorPreference) error {
	if f.prefs == nil {
		f.prefs = make(map[int64][]*models.ProfessorPreference)
	}
	preference.ID = int64(len(f.prefs) + 1)
	f.prefs[preference.ProfessorID] = []*models.ProfessorPreference{preference}
	return nil
}

func (f *fakeProfessorStore) ResolveByNames(_ context.Context, names []string) (map[string]*models.Professor, error) {
	out := make(map[string]*models.Professor)
	for _, name := range names {
		normalized := models.NormalizeName(name)
		for _, p := range f.professors {
			if models.NormalizeName(p.Name) == normalized {
				out[normalized] = p
			}
		}
	}
	return out, nil
}

func (f *fakeProfessorStore) PreferencesByProfessorIDs(_ context.Context, ids []int64) ([]*models.ProfessorPreference, error) {
	var out []*models.ProfessorPreference
	for _, id := range ids {
		out = append(out, f.prefs[id]...)
	}
	return out, nil
}

type fakeAllocationStore struct {
	records []models.AllocationRecord
	history map[string]map[int64]int
	demands *fakeDemandStore
	commits int
	nextID  int64
}

func (f *fakeAllocationStore) FindOccupied(_ context.Context, semesterID int64, slots []models.RoomSlot) (map[models.RoomSlot]bool, error) {
	occupied := make(map[models.RoomSlot]bool)
	for _, slot := range slots {
		for _, r := range f.records {
			if r.SemesterID == semesterID && r.RoomID == slot.RoomID && r.Day == slot.Day && r.BlockID == slot.BlockID {
				occupied[slot] = true
			}
		}
	}
	return occupied, nil
}

func (f *fakeAllocationStore) HistoryCounts(_ context.Context, courseCode string, _ int64) (map[int64]int, error) {
	counts := f.history[courseCode]
	if counts == nil {
		counts = map[int64]int{}
	}
	return counts, nil
}

func (f *fakeAllocationStore) CommitBatch(_ context.Context, records []models.AllocationRecord) error {
	f.commits++
	for _, r := range records {
		f.nextID++
		r.ID = f.nextID
		f.records = append(f.records, r)
		if f.demands != nil {
			if demand, ok := f.demands.demands[r.DemandID]; ok {
				demand.Status = models.DemandAllocated
			}
		}
	}
	return nil
}

func (f *fakeAllocationStore) DeleteByDemand(_ context.Context, demandID int64) error {
	kept := f.records[:0]
	removed := 0
	for _, r := range f.records {
		if r.DemandID == demandID {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	f.records = kept
	if removed == 0 {
		return repositories.ErrAllocationNotFound
	}
	if f.demands != nil {
		if demand, ok := f.demands.demands[demandID]; ok {
			demand.Status = models.DemandUnallocated
		}
	}
	return nil
}

func (f *fakeAllocationStore) ListBySemester(_ context.Context, semesterID int64) ([]*models.AllocationRecord, error) {
	var out []*models.AllocationRecord
	for i := range f.records {
		if f.records[i].SemesterID == semesterID {
			out = append(out, &f.records[i])
		}
	}
	return out, nil
}

func (f *fakeAllocationStore) ByDemand(_ context.Context, demandID int64) ([]*models.AllocationRecord, error) {
	var out []*models.AllocationRecord
	for i := range f.records {
		if f.records[i].DemandID == demandID {
			out = append(out, &f.records[i])
		}
	}
	return out, nil
}

type fakeReservationWeekly struct {
	occupied map[models.RoomSlot]bool
}

func (f *fakeReservationWeekly) FindWeeklyOccupied(_ context.Context, _, _ time.Time, slots []models.RoomSlot) (map[models.RoomSlot]bool, error) {
	out := make(map[models.RoomSlot]bool)
	for _, slot := range slots {
		if f.occupied[slot] {
			out[slot] = true
		}
	}
	return out, nil
}

func datedKey(s models.DatedSlot) string {
	return fmt.Sprintf("%d|%s|%s", s.RoomID, s.Date.Format("2006-01-02"), s.BlockID)
}

type fakeReservationStore struct {
	occConflicts   map[string]bool
	classConflicts map[string]bool
	raceConflict   bool

	requests    map[string]*models.ReservationRequest
	occurrences []*models.ReservationOccurrence
	nextID      int64
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{
		occConflicts:   make(map[string]bool),
		classConflicts: make(map[string]bool),
		requests:       make(map[string]*models.ReservationRequest),
	}
}

func (f *fakeReservationStore) FindOccurrenceConflicts(_ context.Context, slots []models.DatedSlot) ([]models.DatedSlot, error) {
	var out []models.DatedSlot
	for _, slot := range slots {
		if f.occConflicts[datedKey(slot)] {
			out = append(out, slot)
			continue
		}
		for _, occ := range f.occurrences {
			if datedKey(occ.Slot()) == datedKey(slot) {
				out = append(out, slot)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeReservationStore) FindClassConflicts(_ context.Context, slots []models.DatedSlot) ([]models.DatedSlot, error) {
	var out []models.DatedSlot
	for _, slot := range slots {
		if f.classConflicts[datedKey(slot)] {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (f *fakeReservationStore) CreateBatch(_ context.Context, request *models.ReservationRequest, occurrences []models.ReservationOccurrence) error {
	if f.raceConflict {
		return repositories.ErrReservationConflict
	}
	f.requests[request.ID] = request
	for i := range occurrences {
		f.nextID++
		occ := occurrences[i]
		occ.ID = f.nextID
		f.occurrences = append(f.occurrences, &occ)
	}
	return nil
}

func (f *fakeReservationStore) GetRequest(_ context.Context, id string) (*models.ReservationRequest, error) {
	request, ok := f.requests[id]
	if !ok {
		return nil, repositories.ErrReservationNotFound
	}
	return request, nil
}

func (f *fakeReservationStore) ListOccurrences(_ context.Context, roomID int64, from, to time.Time) ([]*models.ReservationOccurrence, error) {
	var out []*models.ReservationOccurrence
	for _, occ := range f.occurrences {
		if roomID != 0 && occ.RoomID != roomID {
			continue
		}
		if occ.Date.Before(from) || occ.Date.After(to) {
			continue
		}
		out = append(out, occ)
	}
	return out, nil
}

func (f *fakeReservationStore) DeleteSeries(_ context.Context, requestID string) error {
	if _, ok := f.requests[requestID]; !ok {
		return repositories.ErrReservationNotFound
	}
	delete(f.requests, requestID)
	kept := f.occurrences[:0]
	for _, occ := range f.occurrences {
		if occ.RequestID != requestID {
			kept = append(kept, occ)
		}
	}
	f.occurrences = kept
	return nil
}

func (f *fakeReservationStore) DeleteOccurrence(_ context.Context, id int64) error {
	for i, occ := range f.occurrences {
		if occ.ID == id {
			f.occurrences = append(f.occurrences[:i], f.occurrences[i+1:]...)
			return nil
		}
	}
	return repositories.ErrReservationNotFound
}
