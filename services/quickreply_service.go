//go:generate go run go.uber.org/mock/mockgen -source=quickreply_service.go -destination=../mocks/mock_quickreply_service.go -package=mocks
package services

import (
	"fmt"

	"github.com/google/uuid"

	"support-chat/errors"
	"support-chat/repositories"
)

type IQuickReplyService interface {
	Create(content, side string) (repositories.QuickReply, error)
	List() ([]repositories.QuickReply, error)
	Delete(id uuid.UUID) error
}

// QuickReplyService manages the canned answers of the admin console.
type QuickReplyService struct {
	replies repositories.IQuickReplyRepository
}

func NewQuickReplyService(replies repositories.IQuickReplyRepository) *QuickReplyService {
	return &QuickReplyService{replies: replies}
}

func (s *QuickReplyService) Create(content, side string) (repositories.QuickReply, error) {
	if content == "" {
		return repositories.QuickReply{}, fmt.Errorf("%w: empty content", errors.ErrInvalidMessage)
	}
	if side != "left" && side != "right" {
		return repositories.QuickReply{}, fmt.Errorf("%w: side must be left or right", errors.ErrInvalidMessage)
	}
	return s.replies.Create(content, side)
}

func (s *QuickReplyService) List() ([]repositories.QuickReply, error) {
	return s.replies.List()
}

func (s *QuickReplyService) Delete(id uuid.UUID) error {
	return s.replies.Delete(id)
}
