package models

// DemandStatus tracks whether a course demand currently holds a room.
type DemandStatus string

const (
	DemandUnallocated DemandStatus = "UNALLOCATED"
	DemandAllocated   DemandStatus = "ALLOCATED"
)

// CourseDemand is one course-section's need for a room across its weekly
// schedule. Demands arrive from the upstream offering feed (de-duplicated on
// semester + external id) or from manual entry; only the allocation
// orchestrator or a manual override assigns them a room.
type CourseDemand struct {
	ID                int64        `json:"id" db:"id"`
	SemesterID        int64        `json:"semesterId" db:"semester_id"`
	ExternalID        string       `json:"externalId" db:"external_id"`
	CourseCode        string       `json:"courseCode" db:"course_code"`
	CourseName        string       `json:"courseName" db:"course_name"`
	SectionLabel      string       `json:"sectionLabel" db:"section_label"`
	ProfessorNames    []string     `json:"professorNames" db:"professor_names"`
	Seats             int          `json:"seats" db:"seats"`
	PreferredRoomType *RoomType    `json:"preferredRoomType,omitempty" db:"preferred_room_type"` // Nullable
	ScheduleCode      string       `json:"scheduleCode" db:"schedule_code"`
	Status            DemandStatus `json:"status" db:"status"`

	// Relations (populated when needed)
	Semester  *Semester  `json:"semester,omitempty"`
	HardRules []HardRule `json:"hardRules,omitempty"`
}

// HardRuleKind enumerates the mandatory constraint kinds a demand may carry.
type HardRuleKind string

const (
	// RuleRoomTypeRequired requires the room to be of a specific type.
	RuleRoomTypeRequired HardRuleKind = "ROOM_TYPE_REQUIRED"
	// RuleSpecificRoomRequired pins the demand to one physical room.
	RuleSpecificRoomRequired HardRuleKind = "SPECIFIC_ROOM_REQUIRED"
	// RuleCharacteristicRequired requires a room characteristic code.
	RuleCharacteristicRequired HardRuleKind = "CHARACTERISTIC_REQUIRED"
)

// HardRule is a mandatory constraint bound to one demand. A violated rule
// disqualifies a candidate room from winning but never removes it from the
// scored candidate list.
type HardRule struct {
	ID       int64        `json:"id" db:"id"`
	DemandID int64        `json:"demandId" db:"demand_id"`
	Kind     HardRuleKind `json:"kind" db:"kind"`
	// RoomID is set for SPECIFIC_ROOM_REQUIRED rules.
	RoomID *int64 `json:"roomId,omitempty" db:"room_id"`
	// Value carries the required room type or characteristic code.
	Value string `json:"value,omitempty" db:"value"`
}

// SatisfiedBy reports whether the given room satisfies this rule.
func (h *HardRule) SatisfiedBy(room *Room) bool {
	switch h.Kind {
	case RuleRoomTypeRequired:
		return string(room.Type) == h.Value
	case RuleSpecificRoomRequired:
		return h.RoomID != nil && room.ID == *h.RoomID
	case RuleCharacteristicRequired:
		return room.HasCharacteristic(h.Value)
	default:
		return false
	}
}

// Label returns a short human-readable description used in scoring breakdowns.
func (h *HardRule) Label() string {
	switch h.Kind {
	case RuleRoomTypeRequired:
		return "room type " + h.Value
	case RuleSpecificRoomRequired:
		return "specific room"
	case RuleCharacteristicRequired:
		return "characteristic " + h.Value
	default:
		return string(h.Kind)
	}
}
