package httpapi

import (
	"context"
	"fmt"
	"sync"

	"support-chat/domain/event"
)

// ConnSink bridges the broadcaster to one websocket connection. Events are
// encoded once and parked in a bounded buffer drained by the connection's
// writer; a full buffer drops the frame for this recipient only.
type ConnSink struct {
	frames chan []byte
	closed chan struct{}
	once   sync.Once
}

func NewConnSink(bufferSize int) *ConnSink {
	return &ConnSink{
		frames: make(chan []byte, bufferSize),
		closed: make(chan struct{}),
	}
}

func (s *ConnSink) Consume(ctx context.Context, e event.DomainEvent) error {
	frame, err := encodeEvent(e)
	if err != nil {
		return err
	}
	select {
	case <-s.closed:
		return fmt.Errorf("sink closed")
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case s.frames <- frame:
		return nil
	default:
		return fmt.Errorf("sink buffer full, frame dropped")
	}
}

// Close signals the writer to shut the connection down. Used for forced
// disconnects during room teardown. Safe to call more than once.
func (s *ConnSink) Close() {
	s.once.Do(func() { close(s.closed) })
}

// Frames is drained by the connection writer.
func (s *ConnSink) Frames() <-chan []byte { return s.frames }

// Closed fires once the sink has been force-closed.
func (s *ConnSink) Closed() <-chan struct{} { return s.closed }
