package dto

import "github.com/gcouto/ensalamento/internal/app/models"

// DemandFeedRecord is one course section record of an upstream demand feed.
type DemandFeedRecord struct {
	ExternalID        string   `json:"externalId" binding:"required" example:"2026-1-MAT101-T1"`
	CourseCode        string   `json:"courseCode" binding:"required" example:"MAT101"`
	CourseName        string   `json:"courseName" example:"Calculus I"`
	SectionLabel      string   `json:"sectionLabel" example:"T1"`
	ProfessorNames    []string `json:"professorNames" example:"Ana Souza"`
	Seats             int      `json:"seats" binding:"required,min=1" example:"45"`
	PreferredRoomType string   `json:"preferredRoomType,omitempty" example:"CLASSROOM"`
	ScheduleCode      string   `json:"scheduleCode" binding:"required" example:"24M12"`
}

// ImportDemandsRequest represents one demand feed import batch
type ImportDemandsRequest struct {
	Demands []DemandFeedRecord `json:"demands" binding:"required,min=1,dive"`
}

// ToModels converts the feed records into demand models
func (r *ImportDemandsRequest) ToModels() []*models.CourseDemand {
	out := make([]*models.CourseDemand, len(r.Demands))
	for i, record := range r.Demands {
		demand := &models.CourseDemand{
			ExternalID:     record.ExternalID,
			CourseCode:     record.CourseCode,
			CourseName:     record.CourseName,
			SectionLabel:   record.SectionLabel,
			ProfessorNames: record.ProfessorNames,
			Seats:          record.Seats,
			ScheduleCode:   record.ScheduleCode,
		}
		if record.PreferredRoomType != "" {
			preferred := models.RoomType(record.PreferredRoomType)
			demand.PreferredRoomType = &preferred
		}
		out[i] = demand
	}
	return out
}

// AddRuleRequest represents a request to attach a hard rule to a demand
type AddRuleRequest struct {
	Kind   string `json:"kind" binding:"required" example:"ROOM_TYPE_REQUIRED" enums:"ROOM_TYPE_REQUIRED,SPECIFIC_ROOM_REQUIRED,CHARACTERISTIC_REQUIRED"`
	RoomID *int64 `json:"roomId,omitempty" example:"3"`
	Value  string `json:"value,omitempty" example:"LAB"`
}

// ToModel converts the request into a hard rule bound to the given demand
func (r *AddRuleRequest) ToModel(demandID int64) *models.HardRule {
	return &models.HardRule{
		DemandID: demandID,
		Kind:     models.HardRuleKind(r.Kind),
		RoomID:   r.RoomID,
		Value:    r.Value,
	}
}
