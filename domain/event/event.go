// Package event defines the events the broadcaster fans out to sessions.
package event

import "support-chat/domain"

// DomainEvent is anything deliverable to the sessions of a room.
type DomainEvent interface {
	RoomID() domain.RoomID
}

// MessageBroadcast carries a chat message to every session of its room.
type MessageBroadcast struct {
	Message domain.Message
}

func (e MessageBroadcast) RoomID() domain.RoomID { return e.Message.Room }

// UserJoined reports a presence gain with the count computed atomically
// with the registry mutation that caused it.
type UserJoined struct {
	Room        domain.RoomID
	OnlineCount int
}

func (e UserJoined) RoomID() domain.RoomID { return e.Room }

// UserLeft reports a presence loss, count semantics as UserJoined.
type UserLeft struct {
	Room        domain.RoomID
	OnlineCount int
}

func (e UserLeft) RoomID() domain.RoomID { return e.Room }

// RoomDeleted is the terminal signal sent before a room is torn down.
type RoomDeleted struct {
	Room domain.RoomID
}

func (e RoomDeleted) RoomID() domain.RoomID { return e.Room }
