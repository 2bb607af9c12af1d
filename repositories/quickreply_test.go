package repositories

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"support-chat/errors"
)

func Test_QuickReply_Create_And_List(t *testing.T) {
	req := require.New(t)
	repository := NewQuickReplyRepository(newTestDB(t))

	first, err := repository.Create("Thanks for reaching out!", "right")
	req.NoError(err)
	// Distinct timestamps keep the newest-first ordering deterministic
	time.Sleep(2 * time.Millisecond)
	second, err := repository.Create("Where is my order?", "left")
	req.NoError(err)

	replies, err := repository.List()
	req.NoError(err)
	req.Len(replies, 2)

	// Newest first
	req.Equal(second.ID, replies[0].ID)
	req.Equal(first.ID, replies[1].ID)
	req.Equal("left", replies[0].Side)
}

func Test_QuickReply_Delete(t *testing.T) {
	req := require.New(t)
	repository := NewQuickReplyRepository(newTestDB(t))

	reply, err := repository.Create("Anything else?", "right")
	req.NoError(err)

	req.NoError(repository.Delete(reply.ID))

	replies, err := repository.List()
	req.NoError(err)
	req.Empty(replies)

	// Deleting again reports the missing record
	req.ErrorIs(repository.Delete(reply.ID), errors.ErrQuickReplyMissing)
	req.ErrorIs(repository.Delete(uuid.New()), errors.ErrQuickReplyMissing)
}
