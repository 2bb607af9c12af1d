//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"log/slog"

	"support-chat/contract"
	"support-chat/domain"
	"support-chat/repositories"
	"support-chat/runtime"
)

type IChatService interface {
	Join(ctx context.Context, connID domain.ConnectionID, roomID domain.RoomID,
		role domain.Role, sink contract.EventSink) (domain.Session, error)
	PostMessage(ctx context.Context, connID domain.ConnectionID,
		msgType domain.MessageType, content string) (domain.Message, error)
	Disconnect(ctx context.Context, connID domain.ConnectionID)
	History(roomID domain.RoomID, cursor *string) ([]domain.Message, *string, error)
}

// ChatService is the transport-facing facade over the live session layer.
type ChatService struct {
	log      *slog.Logger
	gateway  *runtime.SessionGateway
	rooms    IRoomService
	messages repositories.IMessageRepository
}

func NewChatService(log *slog.Logger, gateway *runtime.SessionGateway,
	rooms IRoomService, messages repositories.IMessageRepository) *ChatService {
	return &ChatService{log: log, gateway: gateway, rooms: rooms, messages: messages}
}

// Join admits a connection and, for visitors, records the visit on the room
// record. A failed visit update never rolls the join back.
func (s *ChatService) Join(ctx context.Context, connID domain.ConnectionID,
	roomID domain.RoomID, role domain.Role, sink contract.EventSink) (domain.Session, error) {
	session, err := s.gateway.HandleJoin(ctx, connID, roomID, role, sink)
	if err != nil {
		return domain.Session{}, err
	}
	if role == domain.RoleUser {
		if err := s.rooms.MarkVisited(ctx, roomID); err != nil {
			s.log.Warn("Failed to record room visit", "room_id", roomID, "error", err)
		}
	}
	return session, nil
}

func (s *ChatService) PostMessage(ctx context.Context, connID domain.ConnectionID,
	msgType domain.MessageType, content string) (domain.Message, error) {
	return s.gateway.HandleMessage(ctx, connID, msgType, content)
}

func (s *ChatService) Disconnect(ctx context.Context, connID domain.ConnectionID) {
	s.gateway.HandleDisconnect(ctx, connID)
}

// History pages through the persisted messages of a room, newest first.
func (s *ChatService) History(roomID domain.RoomID, cursor *string) ([]domain.Message, *string, error) {
	return s.messages.GetMessages(roomID, cursor)
}
