package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"

	"support-chat/contract"
	"support-chat/domain"
	"support-chat/domain/event"
	"support-chat/errors"
	"support-chat/moderation"
)

// SessionGateway validates inbound connection events, drives the registry
// and emits the resulting events through the broadcaster.
//
// Persistence and indexing are side effects pushed onto buffered queues:
// live delivery never waits on storage, and a full queue drops the write
// with a log line instead of stalling the connection.
type SessionGateway struct {
	log              *slog.Logger
	registry         contract.IRegistry
	broadcaster      contract.IBroadcaster
	moderator        moderation.Moderator
	persistQueue     chan<- domain.Message
	indexQueue       chan<- domain.Message
	maxContentLength int
}

func NewSessionGateway(log *slog.Logger, registry contract.IRegistry,
	broadcaster contract.IBroadcaster, moderator moderation.Moderator,
	persistQueue, indexQueue chan<- domain.Message, maxContentLength int) *SessionGateway {
	return &SessionGateway{
		log:              log,
		registry:         registry,
		broadcaster:      broadcaster,
		moderator:        moderator,
		persistQueue:     persistQueue,
		indexQueue:       indexQueue,
		maxContentLength: maxContentLength,
	}
}

// HandleJoin admits a connection into a room. On success the joining
// session is registered before any event is emitted, and every session of
// the room (the joiner included) receives the updated count.
func (g *SessionGateway) HandleJoin(ctx context.Context, connID domain.ConnectionID,
	roomID domain.RoomID, role domain.Role, sink contract.EventSink) (domain.Session, error) {
	if !roomID.Valid() {
		return domain.Session{}, errors.ErrInvalidRoomID
	}
	if !role.Valid() {
		return domain.Session{}, errors.ErrInvalidRole
	}

	session, count, err := g.registry.Join(roomID, connID, role, sink)
	if err != nil {
		return domain.Session{}, err
	}

	g.log.Info("Session joined",
		"room_id", roomID, "connection_id", connID, "role", role, "online", count)
	g.broadcaster.Emit(ctx, event.UserJoined{Room: roomID, OnlineCount: count})
	return session, nil
}

// HandleMessage resolves the sender's room, sanitizes the content and fans
// the message out. The built message is returned so the transport can
// persist acknowledgement details if it needs them.
func (g *SessionGateway) HandleMessage(ctx context.Context, connID domain.ConnectionID,
	msgType domain.MessageType, rawContent string) (domain.Message, error) {
	session, ok := g.registry.SessionOf(connID)
	if !ok {
		return domain.Message{}, errors.ErrUnknownSession
	}
	if !msgType.Valid() || msgType == domain.MessageSystem {
		return domain.Message{}, errors.ErrInvalidMessage
	}
	if rawContent == "" || len(rawContent) > g.maxContentLength {
		return domain.Message{}, errors.ErrInvalidMessage
	}

	content := domain.DecodeContent(msgType, rawContent)
	lang := ""
	if content.Kind == domain.ContentText {
		info := whatlanggo.Detect(content.Text)
		lang = info.Lang.Iso6391()

		sanitized, foundWords := g.moderator.Censor(content.Text)
		if len(foundWords) > 0 {
			g.log.Warn("Message censored",
				"room_id", session.Room,
				"sender", session.Role,
				"words", len(foundWords))
			content.Text = sanitized
		}
	}

	message := domain.Message{
		ID:        uuid.New(),
		Room:      session.Room,
		Type:      msgType,
		Sender:    string(session.Role),
		Content:   content,
		Lang:      lang,
		CreatedAt: time.Now().UTC(),
	}

	g.broadcaster.Emit(ctx, event.MessageBroadcast{Message: message})
	g.enqueue(message)
	return message, nil
}

// HandleDisconnect releases the session of a connection. Safe to call more
// than once; a connection that never joined is only logged as anomalous.
func (g *SessionGateway) HandleDisconnect(ctx context.Context, connID domain.ConnectionID) {
	session, count, ok := g.registry.Leave(connID)
	if !ok {
		g.log.Debug(fmt.Sprintf("Disconnect for unknown connection %s", connID))
		return
	}
	g.log.Info("Session left",
		"room_id", session.Room, "connection_id", connID, "online", count)
	if count > 0 {
		g.broadcaster.Emit(ctx, event.UserLeft{Room: session.Room, OnlineCount: count})
	}
}

// Publish broadcasts an already-built message (system messages from the
// room lifecycle) and schedules its persistence like any other message.
func (g *SessionGateway) Publish(ctx context.Context, message domain.Message) {
	g.broadcaster.Emit(ctx, event.MessageBroadcast{Message: message})
	g.enqueue(message)
}

func (g *SessionGateway) enqueue(message domain.Message) {
	select {
	case g.persistQueue <- message:
	default:
		g.log.Warn("Persist queue full, message dropped from storage", "message_id", message.ID)
	}
	select {
	case g.indexQueue <- message:
	default:
		g.log.Debug("Index queue full, message not indexed", "message_id", message.ID)
	}
}
