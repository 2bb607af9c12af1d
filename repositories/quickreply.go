//go:generate go run go.uber.org/mock/mockgen -source=quickreply.go -destination=../mocks/mock_quickreply_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"support-chat/errors"
)

type IQuickReplyRepository interface {
	Create(content, side string) (QuickReply, error)
	List() ([]QuickReply, error)
	Delete(id uuid.UUID) error
}

// QuickReply is a canned answer the admin can send with one click.
// Side decides which panel of the admin view lists it.
type QuickReply struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Side      string    `json:"side"`
	CreatedAt time.Time `json:"created_at"`
}

type QuickReplyRepository struct {
	db *badger.DB
}

func NewQuickReplyRepository(db *badger.DB) QuickReplyRepository {
	return QuickReplyRepository{db: db}
}

func quickReplyKey(id uuid.UUID) []byte {
	return []byte("qr:" + id.String())
}

func (r QuickReplyRepository) Create(content, side string) (QuickReply, error) {
	reply := QuickReply{
		ID:        uuid.New(),
		Content:   content,
		Side:      side,
		CreatedAt: time.Now().UTC(),
	}
	bytes, err := json.Marshal(reply)
	if err != nil {
		return QuickReply{}, err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(quickReplyKey(reply.ID), bytes)
	})
	return reply, err
}

// List returns every quick reply, newest first.
func (r QuickReplyRepository) List() ([]QuickReply, error) {
	var replies []QuickReply
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("qr:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var reply QuickReply
				if err := json.Unmarshal(value, &reply); err != nil {
					return err
				}
				replies = append(replies, reply)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(replies, func(i, j int) bool {
		return replies[i].CreatedAt.After(replies[j].CreatedAt)
	})
	return replies, nil
}

func (r QuickReplyRepository) Delete(id uuid.UUID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := quickReplyKey(id)
		if _, err := txn.Get(key); err != nil {
			return lo.Ternary(err == badger.ErrKeyNotFound, errors.ErrQuickReplyMissing, err)
		}
		return txn.Delete(key)
	})
}
