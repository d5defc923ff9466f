package models

import "strings"

// Professor is one entry of the professor registry. Demand feeds carry
// free-text professor names; resolution against this registry is an explicit
// exact-match step, never a fuzzy guess.
type Professor struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// NormalizeName canonicalizes a free-text professor name for registry
// lookup: trimmed, lowercased, inner whitespace collapsed.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// ProfessorPreference holds a professor's soft room preferences. Either
// field may be empty; both score independently.
type ProfessorPreference struct {
	ID                       int64    `json:"id" db:"id"`
	ProfessorID              int64    `json:"professorId" db:"professor_id"`
	PreferredRoomID          *int64   `json:"preferredRoomId,omitempty" db:"preferred_room_id"`
	PreferredCharacteristics []string `json:"preferredCharacteristics" db:"preferred_characteristics"`

	// Relations (populated when needed)
	Professor *Professor `json:"professor,omitempty"`
}
