// Package domain contains core concepts of the support chat system.
// This file defines Message events and their content variants.
// Messages are immutable and decoded exactly once at the transport boundary.
package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageText   MessageType = "text"
	MessageImage  MessageType = "image"
	MessageSystem MessageType = "system"
)

func (t MessageType) Valid() bool {
	return t == MessageText || t == MessageImage || t == MessageSystem
}

// SubType marks the two system messages the room lifecycle produces.
type SubType string

const (
	SubTypeNone        SubType = ""
	SubTypeRoomCreated SubType = "room_created"
	SubTypeFirstVisit  SubType = "first_visit"
)

type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentImage ContentKind = "image"
	ContentCard  ContentKind = "card"
)

// ProductCard is the structured payload a text message may carry instead of
// plain text (a product the conversation is about).
type ProductCard struct {
	ProductImage string `json:"productImage"`
	ProductName  string `json:"productName"`
	Subtitle1    string `json:"subtitle1,omitempty"`
	Subtitle2    string `json:"subtitle2,omitempty"`
	Subtitle3    string `json:"subtitle3,omitempty"`
}

// Content is the tagged variant behind the wire-level "content" field.
// Exactly one of Text, ImageURL or Card is set, according to Kind.
type Content struct {
	Kind     ContentKind
	Text     string
	ImageURL string
	Card     *ProductCard
}

// DecodeContent interprets the raw content string for a given message type.
// Image messages carry a URL. Text messages may carry a JSON product card;
// anything that does not parse as a card stays plain text.
func DecodeContent(msgType MessageType, raw string) Content {
	if msgType == MessageImage {
		return Content{Kind: ContentImage, ImageURL: raw}
	}
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		var card ProductCard
		if err := json.Unmarshal([]byte(trimmed), &card); err == nil && card.ProductName != "" {
			return Content{Kind: ContentCard, Card: &card}
		}
	}
	return Content{Kind: ContentText, Text: raw}
}

// Raw returns the wire-level representation of the content.
func (c Content) Raw() string {
	switch c.Kind {
	case ContentImage:
		return c.ImageURL
	case ContentCard:
		b, err := json.Marshal(c.Card)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return c.Text
	}
}

// Message represents an immutable chat event.
// Sender is empty only for system messages.
type Message struct {
	ID        uuid.UUID
	Room      RoomID
	Type      MessageType
	SubType   SubType
	Sender    string
	Content   Content
	Lang      string
	CreatedAt time.Time
}

// NewSystemMessage builds a server-generated lifecycle message.
func NewSystemMessage(room RoomID, sub SubType, text string, now time.Time) Message {
	return Message{
		ID:        uuid.New(),
		Room:      room,
		Type:      MessageSystem,
		SubType:   sub,
		Content:   Content{Kind: ContentText, Text: text},
		CreatedAt: now,
	}
}
