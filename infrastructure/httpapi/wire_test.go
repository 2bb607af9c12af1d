package httpapi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"support-chat/domain"
	"support-chat/domain/event"
)

func TestEncodeEvent_Message(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC().Truncate(time.Second)
	message := domain.Message{
		ID:        uuid.New(),
		Room:      "abc12",
		Type:      domain.MessageText,
		Sender:    "user",
		Content:   domain.Content{Kind: domain.ContentText, Text: "hello"},
		Lang:      "en",
		CreatedAt: at,
	}

	frame, err := encodeEvent(event.MessageBroadcast{Message: message})
	req.NoError(err)

	var wire WireEvent
	req.NoError(json.Unmarshal(frame, &wire))
	req.Equal("message", wire.Event)

	var payload outboundMessagePayload
	req.NoError(json.Unmarshal(wire.Data, &payload))
	req.Equal("hello", payload.Content)
	req.Equal("text", payload.Type)
	req.Equal("user", payload.Sender)
	req.True(payload.CreatedAt.Equal(at))
}

func TestEncodeEvent_System_Message_Has_No_Sender(t *testing.T) {
	req := require.New(t)
	system := domain.NewSystemMessage("abc12", domain.SubTypeRoomCreated,
		"Conversation opened", time.Now().UTC())

	frame, err := encodeEvent(event.MessageBroadcast{Message: system})
	req.NoError(err)

	// The sender key is omitted entirely for system messages
	req.NotContains(string(frame), `"sender"`)
	req.Contains(string(frame), `"subType":"room_created"`)
}

func TestEncodeEvent_Presence(t *testing.T) {
	req := require.New(t)

	frame, err := encodeEvent(event.UserJoined{Room: "abc12", OnlineCount: 2})
	req.NoError(err)
	var wire WireEvent
	req.NoError(json.Unmarshal(frame, &wire))
	req.Equal("userJoined", wire.Event)

	var presence presencePayload
	req.NoError(json.Unmarshal(wire.Data, &presence))
	req.Equal(2, presence.OnlineCount)

	frame, err = encodeEvent(event.UserLeft{Room: "abc12", OnlineCount: 1})
	req.NoError(err)
	req.NoError(json.Unmarshal(frame, &wire))
	req.Equal("userLeft", wire.Event)
}

func TestEncodeEvent_RoomDeleted(t *testing.T) {
	req := require.New(t)

	frame, err := encodeEvent(event.RoomDeleted{Room: "abc12"})
	req.NoError(err)

	var wire WireEvent
	req.NoError(json.Unmarshal(frame, &wire))
	req.Equal("roomDeleted", wire.Event)
	req.Empty(wire.Data)
}

func TestEncodeEvent_Card_Content_Stays_JSON(t *testing.T) {
	req := require.New(t)
	message := domain.Message{
		ID:   uuid.New(),
		Room: "abc12",
		Type: domain.MessageText,
		Content: domain.Content{Kind: domain.ContentCard, Card: &domain.ProductCard{
			ProductName: "Blue Mug",
		}},
		Sender:    "admin",
		CreatedAt: time.Now().UTC(),
	}

	frame, err := encodeEvent(event.MessageBroadcast{Message: message})
	req.NoError(err)

	var wire WireEvent
	req.NoError(json.Unmarshal(frame, &wire))
	var payload outboundMessagePayload
	req.NoError(json.Unmarshal(wire.Data, &payload))

	// Clients re-parse the content string to detect the card shape
	decoded := domain.DecodeContent(domain.MessageText, payload.Content)
	req.Equal(domain.ContentCard, decoded.Kind)
	req.Equal("Blue Mug", decoded.Card.ProductName)
}
