// Package domain contains core concepts of the support chat system.
// This file defines Sessions, one live connection of a participant to a room.
package domain

import "time"

// Role tags a session as the customer side or the support side.
// It determines message alignment on the client and nothing else here.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ConnectionID is the opaque identifier of a transport-level connection.
type ConnectionID string

// Session is one participant's live connection to a single room.
// The room is immutable for the lifetime of the session.
type Session struct {
	ConnectionID ConnectionID
	Room         RoomID
	Role         Role
	JoinedAt     time.Time
}
