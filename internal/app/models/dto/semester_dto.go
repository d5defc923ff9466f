package dto

import (
	"github.com/gcouto/ensalamento/internal/app/models"
)

// CreateSemesterRequest represents a request to register a semester
type CreateSemesterRequest struct {
	Label     string `json:"label" binding:"required" example:"2026/1"`
	StartDate string `json:"startDate" binding:"required" example:"2026-03-02"`
	EndDate   string `json:"endDate" binding:"required" example:"2026-07-11"`
}

// ToModel converts the request into a semester model
func (r *CreateSemesterRequest) ToModel() (*models.Semester, error) {
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(r.EndDate)
	if err != nil {
		return nil, err
	}
	return &models.Semester{Label: r.Label, StartDate: start, EndDate: end}, nil
}

// SemesterResponse represents a semester in API responses
type SemesterResponse struct {
	ID        int64  `json:"id" example:"1"`
	Label     string `json:"label" example:"2026/1"`
	StartDate string `json:"startDate" example:"2026-03-02"`
	EndDate   string `json:"endDate" example:"2026-07-11"`
}

// NewSemesterResponse maps a semester model to its response form
func NewSemesterResponse(s *models.Semester) SemesterResponse {
	return SemesterResponse{
		ID:        s.ID,
		Label:     s.Label,
		StartDate: s.StartDate.Format(DateLayout),
		EndDate:   s.EndDate.Format(DateLayout),
	}
}

// NewSemesterListResponse maps a semester slice to response form
func NewSemesterListResponse(semesters []*models.Semester) []SemesterResponse {
	out := make([]SemesterResponse, len(semesters))
	for i, s := range semesters {
		out[i] = NewSemesterResponse(s)
	}
	return out
}
