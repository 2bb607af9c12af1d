// Package domain contains core concepts of the support chat system.
// This file defines rooms and the roomId format rule.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"regexp"
	"time"
)

// RoomID is the short alphanumeric identifier of a conversation.
type RoomID string

// roomIDPattern is the only accepted roomId shape, checked before any state mutation.
var roomIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{3,7}$`)

func (id RoomID) Valid() bool {
	return roomIDPattern.MatchString(string(id))
}

func (id RoomID) String() string { return string(id) }

// Room is the durable room record, distinct from live presence which is
// owned by the runtime registry.
type Room struct {
	RoomID       RoomID
	Name         string
	IsActive     bool
	CreatedAt    time.Time
	LastActive   time.Time
	FirstVisitAt *time.Time
}

func NewRoom(id RoomID, name string, now time.Time) Room {
	return Room{
		RoomID:     id,
		Name:       name,
		IsActive:   true,
		CreatedAt:  now,
		LastActive: now,
	}
}
