package models

// Scoring point weights. Components are cumulative; a room failing a hard
// rule stays in the list but can no longer win against a passing one.
const (
	CapacityPoints       = 1
	HardRulePoints       = 4
	PreferredRoomPoints  = 2
	CharacteristicPoints = 2
	HistoryPointPerTerm  = 1
)

// ScoringBreakdown is the per-room result of scoring one demand. The same
// breakdown backs the automatic orchestrator and the interactive room
// suggestion query.
type ScoringBreakdown struct {
	DemandID int64 `json:"demandId"`
	RoomID   int64 `json:"roomId"`

	CapacityPoints   int `json:"capacityPoints"`
	HardRulePoints   int `json:"hardRulePoints"`
	PreferencePoints int `json:"preferencePoints"`
	HistoryPoints    int `json:"historyPoints"`
	Total            int `json:"total"`

	// HardRuleFailed marks that at least one mandatory rule failed; soft
	// preference and history components are zeroed when set.
	HardRuleFailed       bool     `json:"hardRuleFailed"`
	SatisfiedRules       []string `json:"satisfiedRules,omitempty"`
	SatisfiedPreferences []string `json:"satisfiedPreferences,omitempty"`

	// Relations (populated when needed)
	Room *Room `json:"room,omitempty"`
}
