package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"support-chat/domain"
	"support-chat/services"
)

const writeWait = 10 * time.Second

// wsHandler owns the lifecycle of one websocket connection: a reader loop
// driving the chat service and a writer pump draining the connection's sink.
type wsHandler struct {
	log        *slog.Logger
	chat       services.IChatService
	bufferSize int
}

func newWSHandler(log *slog.Logger, chat services.IChatService, bufferSize int) *wsHandler {
	return &wsHandler{log: log, chat: chat, bufferSize: bufferSize}
}

func (h *wsHandler) handle(conn *websocket.Conn) {
	connID := domain.ConnectionID(uuid.New().String())
	sink := NewConnSink(h.bufferSize)
	ctx := context.Background()

	// Writer pump. Sole writer on the connection; a force-closed sink shuts
	// the socket down, which unblocks the reader below.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case frame := <-sink.Frames():
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					h.log.Debug("Write failed, dropping connection",
						"connection_id", connID, "error", err)
					conn.Close()
					return
				}
			case <-sink.Closed():
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "room deleted"))
				conn.Close()
				return
			}
		}
	}()

	defer func() {
		h.chat.Disconnect(ctx, connID)
		sink.Close()
		<-writerDone
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame WireEvent
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.sendError(sink, "malformed frame")
			continue
		}

		switch frame.Event {
		case eventJoinRoom:
			var payload joinRoomPayload
			if err := json.Unmarshal(frame.Data, &payload); err != nil {
				h.sendError(sink, "malformed joinRoom payload")
				continue
			}
			_, err := h.chat.Join(ctx, connID,
				domain.RoomID(payload.RoomID), domain.Role(payload.UserType), sink)
			if err != nil {
				h.sendError(sink, err.Error())
			}
		case eventMessage:
			var payload inboundMessagePayload
			if err := json.Unmarshal(frame.Data, &payload); err != nil {
				h.sendError(sink, "malformed message payload")
				continue
			}
			_, err := h.chat.PostMessage(ctx, connID,
				domain.MessageType(payload.Type), payload.Content)
			if err != nil {
				h.sendError(sink, err.Error())
			}
		default:
			h.log.Debug("Unknown event ignored", "event", frame.Event, "connection_id", connID)
		}
	}
}

// sendError pushes an error frame through the sink so ordering with pending
// broadcasts is preserved. Best effort like any other frame.
func (h *wsHandler) sendError(sink *ConnSink, message string) {
	frame, err := encodeWire(eventError, errorPayload{Message: message})
	if err != nil {
		return
	}
	select {
	case sink.frames <- frame:
	default:
	}
}
