package workers

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"support-chat/domain"
	"support-chat/mocks"
)

func testMessage() domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		Room:      "abc12",
		Type:      domain.MessageText,
		Sender:    "user",
		Content:   domain.Content{Kind: domain.ContentText, Text: "hello"},
		CreatedAt: time.Now().UTC(),
	}
}

func TestDiskSinkWorker_Drains_Queue(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	queue := make(chan domain.Message, 4)
	appender := mocks.NewMockMessageAppender(ctrl)
	stored := make(chan domain.Message, 4)
	appender.EXPECT().
		StoreMessage(gomock.Any()).
		DoAndReturn(func(m domain.Message) error {
			stored <- m
			return nil
		}).
		Times(2)

	worker := NewDiskSinkWorker(slog.Default(), queue, appender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	first := testMessage()
	second := testMessage()
	queue <- first
	queue <- second

	// Both messages reach the store, in queue order
	req.Equal(first.ID, (<-stored).ID)
	req.Equal(second.ID, (<-stored).ID)
}

func TestDiskSinkWorker_Swallows_Storage_Errors(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	queue := make(chan domain.Message, 4)
	appender := mocks.NewMockMessageAppender(ctrl)
	processed := make(chan struct{}, 4)
	appender.EXPECT().
		StoreMessage(gomock.Any()).
		DoAndReturn(func(m domain.Message) error {
			processed <- struct{}{}
			return fmt.Errorf("disk full")
		}).
		Times(2)

	worker := NewDiskSinkWorker(slog.Default(), queue, appender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	// A failing first write must not stop the worker
	queue <- testMessage()
	queue <- testMessage()

	for i := 0; i < 2; i++ {
		select {
		case <-processed:
		case <-time.After(time.Second):
			req.Fail("worker stopped draining after an error")
		}
	}
}

func TestReaperWorker_Ticks(t *testing.T) {
	req := require.New(t)

	reaper := &fakeReaper{calls: make(chan struct{}, 8)}
	worker := NewReaperWorker(slog.Default(), reaper, 30*time.Minute, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	select {
	case <-reaper.calls:
	case <-time.After(time.Second):
		req.Fail("reaper never ran")
	}
}

type fakeReaper struct {
	calls chan struct{}
}

func (f *fakeReaper) ReapIdle(now time.Time, ttl time.Duration) int {
	select {
	case f.calls <- struct{}{}:
	default:
	}
	return 0
}
