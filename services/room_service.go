//go:generate go run go.uber.org/mock/mockgen -source=room_service.go -destination=../mocks/mock_room_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"support-chat/contract"
	"support-chat/domain"
	"support-chat/errors"
	"support-chat/repositories"
	"support-chat/runtime"
)

type IRoomService interface {
	CreateRoom(ctx context.Context, cmd CreateRoomCommand) (domain.Room, error)
	GetRoom(roomID domain.RoomID) (domain.Room, error)
	ListRooms() ([]RoomView, error)
	DeleteRoom(ctx context.Context, roomID domain.RoomID) error
	MarkVisited(ctx context.Context, roomID domain.RoomID) error
	SeedRegistry() (int, error)
}

// CreateRoomCommand carries the admin request to open a conversation.
type CreateRoomCommand struct {
	RoomID string `validate:"required,alphanum,min=3,max=7"`
	Name   string `validate:"required,min=2,max=50"`
}

// RoomView is a room record enriched with its live occupancy.
type RoomView struct {
	domain.Room
	OnlineCount int
}

// RoomService owns the room lifecycle: creation seeds both the durable
// record and the live registry, deletion tears the live side down first and
// only then removes durable data.
type RoomService struct {
	log         *slog.Logger
	validate    *validator.Validate
	rooms       repositories.IRoomRepository
	messages    repositories.IMessageRepository
	registry    contract.IRegistry
	gateway     *runtime.SessionGateway
	coordinator *runtime.DeletionCoordinator
	visitMu     sync.Mutex
}

func NewRoomService(log *slog.Logger, rooms repositories.IRoomRepository,
	messages repositories.IMessageRepository, registry contract.IRegistry,
	gateway *runtime.SessionGateway, coordinator *runtime.DeletionCoordinator) *RoomService {
	return &RoomService{
		log:         log,
		validate:    validator.New(),
		rooms:       rooms,
		messages:    messages,
		registry:    registry,
		gateway:     gateway,
		coordinator: coordinator,
	}
}

// CreateRoom opens a new conversation. The room becomes joinable the moment
// this returns, and a room_created system message is already in its history.
func (s *RoomService) CreateRoom(ctx context.Context, cmd CreateRoomCommand) (domain.Room, error) {
	if err := s.validate.Struct(cmd); err != nil {
		if len(cmd.Name) < 2 || len(cmd.Name) > 50 {
			return domain.Room{}, fmt.Errorf("%w: %v", errors.ErrInvalidRoomName, err)
		}
		return domain.Room{}, fmt.Errorf("%w: %v", errors.ErrInvalidRoomID, err)
	}

	room := domain.NewRoom(domain.RoomID(cmd.RoomID), cmd.Name, time.Now().UTC())
	if err := s.rooms.CreateRoom(room); err != nil {
		return domain.Room{}, err
	}
	s.registry.Activate(room.RoomID)
	s.log.Info("Room created", "room_id", room.RoomID, "name", room.Name)

	welcome := domain.NewSystemMessage(room.RoomID, domain.SubTypeRoomCreated,
		fmt.Sprintf("Conversation %s opened", room.Name), room.CreatedAt)
	s.gateway.Publish(ctx, welcome)
	return room, nil
}

func (s *RoomService) GetRoom(roomID domain.RoomID) (domain.Room, error) {
	if !roomID.Valid() {
		return domain.Room{}, errors.ErrInvalidRoomID
	}
	return s.rooms.GetRoom(roomID)
}

// ListRooms returns the active rooms with their current occupancy, for the
// admin dashboard.
func (s *RoomService) ListRooms() ([]RoomView, error) {
	rooms, err := s.rooms.ListActive()
	if err != nil {
		return nil, err
	}
	views := make([]RoomView, 0, len(rooms))
	for _, room := range rooms {
		views = append(views, RoomView{
			Room:        room,
			OnlineCount: s.registry.OnlineCount(room.RoomID),
		})
	}
	return views, nil
}

// DeleteRoom drives the full teardown. Live sessions are notified and
// drained before the durable record and the message history disappear.
func (s *RoomService) DeleteRoom(ctx context.Context, roomID domain.RoomID) error {
	if _, err := s.rooms.GetRoom(roomID); err != nil {
		return err
	}

	s.coordinator.Delete(ctx, roomID)

	deleted, err := s.messages.DeleteRoomMessages(roomID)
	if err != nil {
		return err
	}
	if err := s.rooms.DeleteRoom(roomID); err != nil {
		return err
	}
	s.log.Info("Room deleted", "room_id", roomID, "messages_removed", deleted)
	return nil
}

// MarkVisited records the first time a visitor enters the room and publishes
// the first_visit system message exactly once. Later visits only refresh
// LastActive. The mutex serializes the read-modify-write across concurrent
// joiners so only one of them observes an unset FirstVisitAt.
func (s *RoomService) MarkVisited(ctx context.Context, roomID domain.RoomID) error {
	s.visitMu.Lock()
	defer s.visitMu.Unlock()
	room, err := s.rooms.GetRoom(roomID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	room.LastActive = now
	if room.FirstVisitAt == nil {
		room.FirstVisitAt = &now
		greeting := domain.NewSystemMessage(roomID, domain.SubTypeFirstVisit,
			"A visitor entered the conversation", now)
		s.gateway.Publish(ctx, greeting)
	}
	return s.rooms.UpdateRoom(room)
}

// SeedRegistry activates every persisted active room at startup so they are
// joinable again after a restart.
func (s *RoomService) SeedRegistry() (int, error) {
	rooms, err := s.rooms.ListActive()
	if err != nil {
		return 0, err
	}
	for _, room := range rooms {
		s.registry.Activate(room.RoomID)
	}
	return len(rooms), nil
}
