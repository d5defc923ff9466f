package models

// RoomType classifies rooms for type-based rules and preferences.
type RoomType string

const (
	RoomTypeClassroom  RoomType = "CLASSROOM"
	RoomTypeLab        RoomType = "LAB"
	RoomTypeAuditorium RoomType = "AUDITORIUM"
	RoomTypeDrawing    RoomType = "DRAWING"
)

// Room is a fully materialized snapshot of a physical room. Characteristic
// codes (e.g. "PROJECTOR", "AIR_CONDITIONING") are free-form strings managed
// by the inventory collaborator.
type Room struct {
	ID              int64    `json:"id" db:"id"`
	Code            string   `json:"code" db:"code"`
	Building        string   `json:"building" db:"building"`
	Capacity        int      `json:"capacity" db:"capacity"`
	Type            RoomType `json:"type" db:"room_type"`
	Characteristics []string `json:"characteristics" db:"characteristics"`
	Accessible      bool     `json:"accessible" db:"accessible"`
}

// HasCharacteristic reports whether the room carries the given characteristic code.
func (r *Room) HasCharacteristic(code string) bool {
	for _, c := range r.Characteristics {
		if c == code {
			return true
		}
	}
	return false
}
