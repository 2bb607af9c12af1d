package httpapi

import (
	"encoding/json"
	"fmt"
	"time"

	"support-chat/domain"
	"support-chat/domain/event"
)

// WireEvent is the JSON envelope of every websocket frame, both directions:
// an event name plus an event-specific payload.
type WireEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

const (
	eventJoinRoom    = "joinRoom"
	eventMessage     = "message"
	eventUserJoined  = "userJoined"
	eventUserLeft    = "userLeft"
	eventRoomDeleted = "roomDeleted"
	eventError       = "error"
)

type joinRoomPayload struct {
	RoomID   string `json:"roomId"`
	UserType string `json:"userType"`
}

type inboundMessagePayload struct {
	Content string `json:"content"`
	Type    string `json:"type"`
}

type outboundMessagePayload struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	SubType   string    `json:"subType,omitempty"`
	Sender    string    `json:"sender,omitempty"`
	Lang      string    `json:"lang,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type presencePayload struct {
	OnlineCount int `json:"onlineCount"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func messagePayload(message domain.Message) outboundMessagePayload {
	return outboundMessagePayload{
		ID:        message.ID.String(),
		RoomID:    string(message.Room),
		Content:   message.Content.Raw(),
		Type:      string(message.Type),
		SubType:   string(message.SubType),
		Sender:    message.Sender,
		Lang:      message.Lang,
		CreatedAt: message.CreatedAt,
	}
}

func encodeWire(name string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(WireEvent{Event: name, Data: data})
}

// encodeEvent turns a domain event into its wire frame.
func encodeEvent(e event.DomainEvent) ([]byte, error) {
	switch evt := e.(type) {
	case event.MessageBroadcast:
		return encodeWire(eventMessage, messagePayload(evt.Message))
	case event.UserJoined:
		return encodeWire(eventUserJoined, presencePayload{OnlineCount: evt.OnlineCount})
	case event.UserLeft:
		return encodeWire(eventUserLeft, presencePayload{OnlineCount: evt.OnlineCount})
	case event.RoomDeleted:
		return json.Marshal(WireEvent{Event: eventRoomDeleted})
	default:
		return nil, fmt.Errorf("unmapped event type %T", e)
	}
}
