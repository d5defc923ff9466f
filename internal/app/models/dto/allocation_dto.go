package dto

import "github.com/gcouto/ensalamento/internal/app/models"

// ManualAllocationRequest represents a manual room assignment for one demand
type ManualAllocationRequest struct {
	DemandID int64 `json:"demandId" binding:"required" example:"12"`
	RoomID   int64 `json:"roomId" binding:"required" example:"3"`
}

// DeallocationRequest represents a request to free one demand's allocation
type DeallocationRequest struct {
	DemandID int64 `json:"demandId" binding:"required" example:"12"`
}

// SuggestionRequest asks for the ranked candidate rooms of one demand
type SuggestionRequest struct {
	DemandID int64 `json:"demandId" binding:"required" example:"12"`
}

// SuggestionResponse carries the ranked scoring breakdowns plus the
// professor names that could not be resolved against the registry.
type SuggestionResponse struct {
	Suggestions             []models.ScoringBreakdown `json:"suggestions"`
	UnmatchedProfessorNames []string                  `json:"unmatchedProfessorNames,omitempty"`
}
