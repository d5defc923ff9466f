package dto

// RegisterProfessorRequest represents a request to add a professor to the
// registry used by demand-feed name resolution
type RegisterProfessorRequest struct {
	Name string `json:"name" binding:"required" example:"Maria Silva"`
}

// SavePreferenceRequest represents a request to replace a professor's soft
// room preferences
type SavePreferenceRequest struct {
	PreferredRoomID          *int64   `json:"preferredRoomId,omitempty" example:"3"`
	PreferredCharacteristics []string `json:"preferredCharacteristics" example:"projector,whiteboard"`
}
