package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoomID_Valid(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		id    string
		valid bool
	}{
		{"abc", true},
		{"abc1234", true},
		{"ABC12", true},
		{"ab", false},
		{"abcd5678", false},
		{"ab-12", false},
		{"ab 12", false},
		{"", false},
		{"abc!2", false},
	}
	for _, tt := range tests {
		req.Equal(tt.valid, RoomID(tt.id).Valid(), "roomId %q", tt.id)
	}
}

func TestDecodeContent_Variants(t *testing.T) {
	req := require.New(t)

	// Plain text stays text
	content := DecodeContent(MessageText, "hello there")
	req.Equal(ContentText, content.Kind)
	req.Equal("hello there", content.Text)

	// Image messages carry the URL
	content = DecodeContent(MessageImage, "/uploads/photo.png")
	req.Equal(ContentImage, content.Kind)
	req.Equal("/uploads/photo.png", content.ImageURL)

	// A JSON product card is recognized
	raw := `{"productName":"Blue Mug","productImage":"/uploads/mug.png","subtitle1":"In stock"}`
	content = DecodeContent(MessageText, raw)
	req.Equal(ContentCard, content.Kind)
	req.Equal("Blue Mug", content.Card.ProductName)
	req.Equal("In stock", content.Card.Subtitle1)

	// JSON without a product name stays plain text
	content = DecodeContent(MessageText, `{"foo":"bar"}`)
	req.Equal(ContentText, content.Kind)

	// Broken JSON stays plain text
	content = DecodeContent(MessageText, `{"productName":`)
	req.Equal(ContentText, content.Kind)
}

func TestContent_Raw_Roundtrip(t *testing.T) {
	req := require.New(t)

	text := Content{Kind: ContentText, Text: "hello"}
	req.Equal("hello", text.Raw())

	image := Content{Kind: ContentImage, ImageURL: "/uploads/a.png"}
	req.Equal("/uploads/a.png", image.Raw())

	card := Content{Kind: ContentCard, Card: &ProductCard{ProductName: "Blue Mug"}}
	decoded := DecodeContent(MessageText, card.Raw())
	req.Equal(ContentCard, decoded.Kind)
	req.Equal("Blue Mug", decoded.Card.ProductName)
}

func TestNewSystemMessage(t *testing.T) {
	req := require.New(t)

	message := NewSystemMessage("abc12", SubTypeRoomCreated, "Conversation opened", time.Now().UTC())
	req.Equal(MessageSystem, message.Type)
	req.Equal(SubTypeRoomCreated, message.SubType)
	req.Empty(message.Sender)
	req.Equal("Conversation opened", message.Content.Text)
}
