//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"support-chat/domain"
)

type IMessageRepository interface {
	StoreMessage(message domain.Message) error
	GetMessages(roomID domain.RoomID, cursor *string) ([]domain.Message, *string, error)
	DeleteRoomMessages(roomID domain.RoomID) (int, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// diskMessage is the stored shape of a chat message.
type diskMessage struct {
	ID        string `json:"id"`
	Room      string `json:"room"`
	Type      string `json:"type"`
	SubType   string `json:"sub_type,omitempty"`
	Sender    string `json:"sender,omitempty"`
	Content   string `json:"content"`
	Lang      string `json:"lang,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// StoreMessage persists a message.
// The key is formatted as "msg:{room_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two
//     messages arrive at the same nanosecond.
func (m MessageRepository) StoreMessage(message domain.Message) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		message.Room,
		message.CreatedAt.UnixNano(),
		message.ID,
	)
	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetMessages retrieves messages for a room using a reverse prefix scan.
// Thanks to the padded timestamp in the key, messages come back newest
// first. The returned cursor resumes the scan on the next page; it is nil
// once the page came back short of the limit, meaning the history is
// exhausted.
func (m MessageRepository) GetMessages(roomID domain.RoomID, cursor *string) ([]domain.Message, *string, error) {
	var byteMessages [][]byte
	var lastKey string
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", roomID)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past the newest possible key, then walk backwards
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(byteMessages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				byteMessages = append(byteMessages, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var messages []domain.Message
	for _, b := range byteMessages {
		var stored diskMessage
		if err = json.Unmarshal(b, &stored); err != nil {
			return nil, nil, err
		}
		message, err := toMessage(stored)
		if err != nil {
			return nil, nil, err
		}
		messages = append(messages, message)
	}
	var next *string
	if m.limitMessages != nil && len(messages) == *m.limitMessages && lastKey != "" {
		next = &lastKey
	}
	return messages, next, nil
}

// DeleteRoomMessages removes every persisted message of a room. Called by
// the durable-deletion step, after the live layer has already torn down.
func (m MessageRepository) DeleteRoomMessages(roomID domain.RoomID) (int, error) {
	prefix := []byte(fmt.Sprintf("msg:%s:", roomID))
	var keys [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, chunk := range lo.Chunk(keys, 100) {
		err = m.db.Update(func(txn *badger.Txn) error {
			for _, key := range chunk {
				if err := txn.Delete(key); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return deleted, err
		}
		deleted += len(chunk)
	}
	return deleted, nil
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:        message.ID.String(),
		Room:      string(message.Room),
		Type:      string(message.Type),
		SubType:   string(message.SubType),
		Sender:    message.Sender,
		Content:   message.Content.Raw(),
		Lang:      message.Lang,
		CreatedAt: message.CreatedAt.UnixNano(),
	}
}

func toMessage(stored diskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(stored.ID)
	if err != nil {
		return domain.Message{}, err
	}
	msgType := domain.MessageType(stored.Type)
	return domain.Message{
		ID:        parsedID,
		Room:      domain.RoomID(stored.Room),
		Type:      msgType,
		SubType:   domain.SubType(stored.SubType),
		Sender:    stored.Sender,
		Content:   domain.DecodeContent(msgType, stored.Content),
		Lang:      stored.Lang,
		CreatedAt: time.Unix(0, stored.CreatedAt).UTC(),
	}, nil
}
