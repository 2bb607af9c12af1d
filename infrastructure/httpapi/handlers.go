package httpapi

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"support-chat/domain"
	"support-chat/errors"
	"support-chat/repositories"
	"support-chat/services"
)

type createRoomRequest struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type roomResponse struct {
	RoomID       string     `json:"roomId"`
	Name         string     `json:"name"`
	OnlineCount  int        `json:"onlineCount"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastActive   time.Time  `json:"lastActive"`
	FirstVisitAt *time.Time `json:"firstVisitAt,omitempty"`
}

type historyResponse struct {
	Messages []outboundMessagePayload `json:"messages"`
	Cursor   *string                  `json:"cursor,omitempty"`
}

type quickReplyRequest struct {
	Content string `json:"content"`
	Side    string `json:"side"`
}

type loginRequest struct {
	Password string `json:"password"`
}

type searchResponse struct {
	Hits  []searchHitResponse `json:"hits"`
	Total uint64              `json:"total"`
}

type searchHitResponse struct {
	MessageID string    `json:"messageId"`
	Sender    string    `json:"sender,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(errors.MapToStatus(err)).JSON(errorResponse{Error: err.Error()})
}

func (s *Server) createRoom(c *fiber.Ctx) error {
	var req createRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, errors.ErrInvalidMessage)
	}
	room, err := s.rooms.CreateRoom(c.UserContext(), services.CreateRoomCommand{
		RoomID: req.RoomID,
		Name:   req.Name,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toRoomResponse(services.RoomView{Room: room}))
}

func (s *Server) listRooms(c *fiber.Ctx) error {
	views, err := s.rooms.ListRooms()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(lo.Map(views, func(view services.RoomView, _ int) roomResponse {
		return toRoomResponse(view)
	}))
}

func (s *Server) getRoom(c *fiber.Ctx) error {
	room, err := s.rooms.GetRoom(domain.RoomID(c.Params("id")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toRoomResponse(services.RoomView{Room: room}))
}

func (s *Server) deleteRoom(c *fiber.Ctx) error {
	if err := s.rooms.DeleteRoom(c.UserContext(), domain.RoomID(c.Params("id"))); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// getHistory pages through a room's messages, newest first. The cursor query
// parameter resumes a previous page.
func (s *Server) getHistory(c *fiber.Ctx) error {
	roomID := domain.RoomID(c.Params("id"))
	if !roomID.Valid() {
		return fail(c, errors.ErrInvalidRoomID)
	}
	var cursor *string
	if raw := c.Query("cursor"); raw != "" {
		cursor = &raw
	}
	messages, next, err := s.chat.History(roomID, cursor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(historyResponse{
		Messages: lo.Map(messages, func(message domain.Message, _ int) outboundMessagePayload {
			return messagePayload(message)
		}),
		Cursor: next,
	})
}

func (s *Server) searchMessages(c *fiber.Ctx) error {
	roomID := domain.RoomID(c.Params("id"))
	if !roomID.Valid() {
		return fail(c, errors.ErrInvalidRoomID)
	}
	terms := c.Query("q")
	if terms == "" {
		return fail(c, errors.ErrInvalidMessage)
	}
	hits, total, err := s.search.SearchMessages(c.UserContext(), terms, roomID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(searchResponse{
		Hits: lo.Map(hits, func(hit repositories.SearchHit, _ int) searchHitResponse {
			return searchHitResponse{
				MessageID: hit.MessageID,
				Sender:    hit.Sender,
				Content:   hit.Content,
				CreatedAt: hit.CreatedAt,
			}
		}),
		Total: total,
	})
}

func (s *Server) createQuickReply(c *fiber.Ctx) error {
	var req quickReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, errors.ErrInvalidMessage)
	}
	reply, err := s.quickReplies.Create(req.Content, req.Side)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reply)
}

func (s *Server) listQuickReplies(c *fiber.Ctx) error {
	replies, err := s.quickReplies.List()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(replies)
}

func (s *Server) deleteQuickReply(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, errors.ErrQuickReplyMissing)
	}
	if err := s.quickReplies.Delete(id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, errors.ErrInvalidPassword)
	}
	token, err := s.auth.Login(req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"token": token})
}

// upload stores one image and returns its public URL. The type check sniffs
// the actual bytes; the client-provided filename and Content-Type are not
// trusted.
func (s *Server) upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return fail(c, errors.ErrInvalidMessage)
	}
	file, err := header.Open()
	if err != nil {
		return fail(c, err)
	}
	defer file.Close()

	kind, err := mimetype.DetectReader(file)
	if err != nil {
		return fail(c, err)
	}
	if !allowedUpload(kind) {
		return fail(c, fmt.Errorf("%w: %s", errors.ErrUnsupportedUpload, kind.String()))
	}

	name := uuid.New().String() + kind.Extension()
	if err := c.SaveFile(header, filepath.Join(s.uploadDir, name)); err != nil {
		return fail(c, err)
	}
	s.log.Info("File uploaded", "name", name, "mime", kind.String(), "size", header.Size)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"imageUrl": "/uploads/" + name})
}

func allowedUpload(kind *mimetype.MIME) bool {
	for _, allowed := range []string{"image/jpeg", "image/png", "image/gif", "image/webp"} {
		if kind.Is(allowed) {
			return true
		}
	}
	return false
}

func (s *Server) health(c *fiber.Ctx) error {
	rooms, sessions := s.gauges.Gauges()
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"rooms":    rooms,
		"sessions": sessions,
	})
}

func toRoomResponse(view services.RoomView) roomResponse {
	return roomResponse{
		RoomID:       string(view.RoomID),
		Name:         view.Name,
		OnlineCount:  view.OnlineCount,
		CreatedAt:    view.CreatedAt,
		LastActive:   view.LastActive,
		FirstVisitAt: view.FirstVisitAt,
	}
}
