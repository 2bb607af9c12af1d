//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"support-chat/domain"
	"support-chat/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// for logging and supervision purposes.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives one delivered event. A sink must never block longer
// than the context allows; slow consumers are the sink's problem, not the
// broadcaster's.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry is the single source of truth for presence.
type IRegistry interface {
	Activate(roomID domain.RoomID)
	Deactivate(roomID domain.RoomID) []EventSink
	IsActive(roomID domain.RoomID) bool
	Join(roomID domain.RoomID, connID domain.ConnectionID, role domain.Role, sink EventSink) (domain.Session, int, error)
	Leave(connID domain.ConnectionID) (domain.Session, int, bool)
	SessionOf(connID domain.ConnectionID) (domain.Session, bool)
	OnlineCount(roomID domain.RoomID) int
	SinksOf(roomID domain.RoomID) []EventSink
}

// IBroadcaster fans one event out to every current session of a room.
type IBroadcaster interface {
	Emit(ctx context.Context, e event.DomainEvent)
}

// MessageAppender is the persistence collaborator seen from the live layer.
type MessageAppender interface {
	StoreMessage(message domain.Message) error
}

// MessageIndexer is the search collaborator fed asynchronously.
type MessageIndexer interface {
	Index(message domain.Message) error
}
