package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gcouto/ensalamento/internal/app/models"
	"github.com/gcouto/ensalamento/internal/app/repositories"
	"github.com/gcouto/ensalamento/internal/pkg/apperrors"
)

// RoomWriteStore extends RoomStore with the seeding mutation.
type RoomWriteStore interface {
	RoomStore
	Create(ctx context.Context, room *models.Room) error
}

// RoomService exposes the room inventory. The inventory is a read-side
// collaborator of allocation; the create path exists for operational
// seeding only.
type RoomService struct {
	roomRepo RoomWriteStore
}

// NewRoomService creates a new room service
func NewRoomService(roomRepo RoomWriteStore) *RoomService {
	return &RoomService{roomRepo: roomRepo}
}

var validRoomTypes = map[models.RoomType]bool{
	models.RoomTypeClassroom:  true,
	models.RoomTypeLab:        true,
	models.RoomTypeAuditorium: true,
	models.RoomTypeDrawing:    true,
}

// Create registers a room in the inventory.
func (s *RoomService) Create(ctx context.Context, room *models.Room) error {
	room.Code = strings.TrimSpace(room.Code)
	if room.Code == "" {
		return apperrors.NewBadRequestError("room code is required")
	}
	if room.Capacity <= 0 {
		return apperrors.NewBadRequestError("room capacity must be positive")
	}
	if !validRoomTypes[room.Type] {
		return apperrors.NewBadRequestError(fmt.Sprintf("unknown room type %q", room.Type))
	}

	err := s.roomRepo.Create(ctx, room)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomAlreadyExists) {
			return apperrors.ErrRoomAlreadyExists
		}
		return fmt.Errorf("error creating room: %w", err)
	}
	return nil
}

// GetByID retrieves one room with its characteristics.
func (s *RoomService) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return nil, apperrors.ErrRoomNotFound
		}
		return nil, fmt.Errorf("error retrieving room: %w", err)
	}
	return room, nil
}

// GetAll lists the full inventory in stable id order.
func (s *RoomService) GetAll(ctx context.Context) ([]*models.Room, error) {
	rooms, err := s.roomRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing rooms: %w", err)
	}
	return rooms, nil
}
