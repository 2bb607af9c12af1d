package errors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrInvalidRoomID     = fmt.Errorf("room id must be 3-7 alphanumeric characters")
	ErrRoomNotFound      = fmt.Errorf("room not found")
	ErrDuplicateRoomID   = fmt.Errorf("room id already in use")
	ErrUnknownSession    = fmt.Errorf("connection never joined a room")
	ErrAlreadyJoined     = fmt.Errorf("connection already joined another room")
	ErrInvalidRole       = fmt.Errorf("role must be user or admin")
	ErrInvalidRoomName   = fmt.Errorf("room name must be 2-50 characters")
	ErrInvalidMessage    = fmt.Errorf("invalid message payload")
	ErrQuickReplyMissing = fmt.Errorf("quick reply not found")
	ErrInvalidPassword   = fmt.Errorf("invalid password")
	ErrUnsupportedUpload = fmt.Errorf("unsupported file type")
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrEmptyWords        = fmt.Errorf("no words have been found")
)

// MapToStatus translates domain sentinels into HTTP status codes for the
// fiber handlers. Unknown errors stay internal.
func MapToStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRoomID),
		errors.Is(err, ErrInvalidRoomName),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrInvalidMessage),
		errors.Is(err, ErrDuplicateRoomID),
		errors.Is(err, ErrUnsupportedUpload):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrRoomNotFound),
		errors.Is(err, ErrQuickReplyMissing):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidPassword):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrUnknownSession),
		errors.Is(err, ErrAlreadyJoined):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
