//go:generate go run go.uber.org/mock/mockgen -source=room.go -destination=../mocks/mock_room_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"

	"support-chat/domain"
	"support-chat/errors"
)

type IRoomRepository interface {
	CreateRoom(room domain.Room) error
	GetRoom(roomID domain.RoomID) (domain.Room, error)
	UpdateRoom(room domain.Room) error
	ListActive() ([]domain.Room, error)
	DeleteRoom(roomID domain.RoomID) error
}

type RoomRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewRoomRepository(db *badger.DB, log *slog.Logger) RoomRepository {
	return RoomRepository{db: db, log: log}
}

// diskRoom is the stored shape of a room record.
type diskRoom struct {
	RoomID       string     `json:"room_id"`
	Name         string     `json:"name"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActive   time.Time  `json:"last_active"`
	FirstVisitAt *time.Time `json:"first_visit_at,omitempty"`
}

func roomKey(roomID domain.RoomID) []byte {
	return []byte(fmt.Sprintf("room:%s", roomID))
}

// CreateRoom persists a new room record. A key that already exists means
// the roomId is taken and surfaces as ErrDuplicateRoomID.
func (r RoomRepository) CreateRoom(room domain.Room) error {
	bytes, err := json.Marshal(fromRoom(room))
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		key := roomKey(room.RoomID)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrDuplicateRoomID
		}
		return txn.Set(key, bytes)
	})
}

func (r RoomRepository) GetRoom(roomID domain.RoomID) (domain.Room, error) {
	var stored diskRoom
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(roomKey(roomID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.ErrRoomNotFound
			}
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &stored)
		})
	})
	if err != nil {
		return domain.Room{}, err
	}
	return toRoom(stored), nil
}

func (r RoomRepository) UpdateRoom(room domain.Room) error {
	bytes, err := json.Marshal(fromRoom(room))
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(roomKey(room.RoomID), bytes)
	})
}

// ListActive returns the active room records, most recent first.
func (r RoomRepository) ListActive() ([]domain.Room, error) {
	var stored []diskRoom
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("room:")
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var room diskRoom
				if err := json.Unmarshal(value, &room); err != nil {
					return err
				}
				if room.IsActive {
					stored = append(stored, room)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rooms := lo.Map(stored, func(item diskRoom, _ int) domain.Room {
		return toRoom(item)
	})
	// Newest rooms first, as the admin room list expects
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
	})
	return rooms, nil
}

func (r RoomRepository) DeleteRoom(roomID domain.RoomID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(roomKey(roomID))
	})
}

func fromRoom(room domain.Room) diskRoom {
	return diskRoom{
		RoomID:       string(room.RoomID),
		Name:         room.Name,
		IsActive:     room.IsActive,
		CreatedAt:    room.CreatedAt,
		LastActive:   room.LastActive,
		FirstVisitAt: room.FirstVisitAt,
	}
}

func toRoom(stored diskRoom) domain.Room {
	return domain.Room{
		RoomID:       domain.RoomID(stored.RoomID),
		Name:         stored.Name,
		IsActive:     stored.IsActive,
		CreatedAt:    stored.CreatedAt,
		LastActive:   stored.LastActive,
		FirstVisitAt: stored.FirstVisitAt,
	}
}
