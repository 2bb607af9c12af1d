package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"support-chat/domain"
	"support-chat/errors"
)

func Test_Create_And_Get_Room(t *testing.T) {
	req := require.New(t)
	repository := NewRoomRepository(newTestDB(t), slog.Default())
	now := time.Now().UTC().Truncate(time.Millisecond)

	room := domain.NewRoom("abc12", "Order #4512", now)
	req.NoError(repository.CreateRoom(room))

	fetched, err := repository.GetRoom("abc12")
	req.NoError(err)
	req.Equal(room.RoomID, fetched.RoomID)
	req.Equal("Order #4512", fetched.Name)
	req.True(fetched.IsActive)
	req.Nil(fetched.FirstVisitAt)
}

func Test_Create_Room_Rejects_Duplicate(t *testing.T) {
	req := require.New(t)
	repository := NewRoomRepository(newTestDB(t), slog.Default())
	now := time.Now().UTC()

	req.NoError(repository.CreateRoom(domain.NewRoom("abc12", "First", now)))
	err := repository.CreateRoom(domain.NewRoom("abc12", "Second", now))
	req.ErrorIs(err, errors.ErrDuplicateRoomID)
}

func Test_Get_Unknown_Room(t *testing.T) {
	req := require.New(t)
	repository := NewRoomRepository(newTestDB(t), slog.Default())

	_, err := repository.GetRoom("ghost1")
	req.ErrorIs(err, errors.ErrRoomNotFound)
}

func Test_Update_Room_First_Visit(t *testing.T) {
	req := require.New(t)
	repository := NewRoomRepository(newTestDB(t), slog.Default())
	now := time.Now().UTC().Truncate(time.Millisecond)

	room := domain.NewRoom("abc12", "Order #4512", now)
	req.NoError(repository.CreateRoom(room))

	visit := now.Add(time.Minute)
	room.FirstVisitAt = &visit
	room.LastActive = visit
	req.NoError(repository.UpdateRoom(room))

	fetched, err := repository.GetRoom("abc12")
	req.NoError(err)
	req.NotNil(fetched.FirstVisitAt)
	req.True(fetched.FirstVisitAt.Equal(visit))
}

func Test_List_Active_Rooms_Newest_First(t *testing.T) {
	req := require.New(t)
	repository := NewRoomRepository(newTestDB(t), slog.Default())
	now := time.Now().UTC().Truncate(time.Millisecond)

	older := domain.NewRoom("abc12", "Older", now.Add(-time.Hour))
	newer := domain.NewRoom("xyz99", "Newer", now)
	inactive := domain.NewRoom("off77", "Closed", now)
	inactive.IsActive = false

	req.NoError(repository.CreateRoom(older))
	req.NoError(repository.CreateRoom(newer))
	req.NoError(repository.CreateRoom(inactive))

	rooms, err := repository.ListActive()
	req.NoError(err)
	req.Len(rooms, 2)
	req.Equal(domain.RoomID("xyz99"), rooms[0].RoomID)
	req.Equal(domain.RoomID("abc12"), rooms[1].RoomID)
}

func Test_Delete_Room_Record(t *testing.T) {
	req := require.New(t)
	repository := NewRoomRepository(newTestDB(t), slog.Default())

	req.NoError(repository.CreateRoom(domain.NewRoom("abc12", "Short lived", time.Now().UTC())))
	req.NoError(repository.DeleteRoom("abc12"))

	_, err := repository.GetRoom("abc12")
	req.ErrorIs(err, errors.ErrRoomNotFound)
}
