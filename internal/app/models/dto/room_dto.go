package dto

import "github.com/gcouto/ensalamento/internal/app/models"

// CreateRoomRequest represents a request to register a room
type CreateRoomRequest struct {
	Code            string   `json:"code" binding:"required" example:"A-101"`
	Building        string   `json:"building" example:"Block A"`
	Capacity        int      `json:"capacity" binding:"required,min=1" example:"45"`
	Type            string   `json:"type" binding:"required" example:"CLASSROOM" enums:"CLASSROOM,LAB,AUDITORIUM,DRAWING"`
	Characteristics []string `json:"characteristics" example:"projector,air conditioning"`
	Accessible      bool     `json:"accessible" example:"true"`
}

// ToModel converts the request into a room model
func (r *CreateRoomRequest) ToModel() *models.Room {
	return &models.Room{
		Code:            r.Code,
		Building:        r.Building,
		Capacity:        r.Capacity,
		Type:            models.RoomType(r.Type),
		Characteristics: r.Characteristics,
		Accessible:      r.Accessible,
	}
}
