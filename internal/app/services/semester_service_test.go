package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcouto/ensalamento/internal/app/models"
	"github.com/gcouto/ensalamento/internal/pkg/apperrors"
)

func TestSemesterCreateValidation(t *testing.T) {
	svc := NewSemesterService(newFakeSemesterStore())

	err := svc.Create(context.Background(), &models.Semester{
		Label: "  ", StartDate: mustDay(2025, 3, 3), EndDate: mustDay(2025, 7, 12),
	})
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))

	err = svc.Create(context.Background(), &models.Semester{
		Label: "2025/1", StartDate: mustDay(2025, 7, 12), EndDate: mustDay(2025, 3, 3),
	})
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))

	err = svc.Create(context.Background(), &models.Semester{
		Label: "2025/1", StartDate: mustDay(2025, 3, 3), EndDate: mustDay(2025, 7, 12),
	})
	require.NoError(t, err)

	err = svc.Create(context.Background(), &models.Semester{
		Label: "2025/1", StartDate: mustDay(2025, 8, 4), EndDate: mustDay(2025, 12, 13),
	})
	assert.True(t, errors.Is(err, apperrors.ErrSemesterAlreadyExists))
}

func TestSemesterGetByID(t *testing.T) {
	svc := NewSemesterService(newFakeSemesterStore(testSemester()))

	semester, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "2025/1", semester.Label)

	_, err = svc.GetByID(context.Background(), 9)
	assert.True(t, errors.Is(err, apperrors.ErrSemesterNotFound))
}

func TestRoomCreateValidation(t *testing.T) {
	svc := NewRoomService(&fakeRoomStore{})

	err := svc.Create(context.Background(), &models.Room{Code: "", Capacity: 30, Type: models.RoomTypeClassroom})
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))

	err = svc.Create(context.Background(), &models.Room{Code: "A-101", Capacity: 0, Type: models.RoomTypeClassroom})
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))

	err = svc.Create(context.Background(), &models.Room{Code: "A-101", Capacity: 30, Type: "GYM"})
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))

	err = svc.Create(context.Background(), &models.Room{Code: "A-101", Capacity: 30, Type: models.RoomTypeClassroom})
	require.NoError(t, err)

	err = svc.Create(context.Background(), &models.Room{Code: "A-101", Capacity: 20, Type: models.RoomTypeLab})
	assert.True(t, errors.Is(err, apperrors.ErrRoomAlreadyExists))
}

func TestRoomGetByID(t *testing.T) {
	svc := NewRoomService(&fakeRoomStore{rooms: []*models.Room{{ID: 1, Code: "A-101", Capacity: 30, Type: models.RoomTypeClassroom}}})

	room, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "A-101", room.Code)

	_, err = svc.GetByID(context.Background(), 9)
	assert.True(t, errors.Is(err, apperrors.ErrRoomNotFound))
}
