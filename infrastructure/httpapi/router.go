// Package httpapi exposes the chat system over HTTP: a REST surface for the
// room lifecycle and admin tooling, and a websocket endpoint for the live
// session protocol.
package httpapi

import (
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"support-chat/auth"
	"support-chat/repositories"
	"support-chat/services"
)

// LiveGauges reports current live-layer occupancy for the health endpoint.
type LiveGauges interface {
	Gauges() (rooms, sessions int)
}

type Server struct {
	log          *slog.Logger
	app          *fiber.App
	chat         services.IChatService
	rooms        services.IRoomService
	quickReplies services.IQuickReplyService
	auth         services.IAuthService
	search       repositories.ISearchRepository
	gauges       LiveGauges
	tokens       auth.TokenManager
	uploadDir    string
}

type ServerParams struct {
	Log          *slog.Logger
	Chat         services.IChatService
	Rooms        services.IRoomService
	QuickReplies services.IQuickReplyService
	Auth         services.IAuthService
	Search       repositories.ISearchRepository
	Gauges       LiveGauges
	Tokens       auth.TokenManager
	UploadDir    string
	BufferSize   int
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		log:          p.Log,
		app:          fiber.New(fiber.Config{DisableStartupMessage: true}),
		chat:         p.Chat,
		rooms:        p.Rooms,
		quickReplies: p.QuickReplies,
		auth:         p.Auth,
		search:       p.Search,
		gauges:       p.Gauges,
		tokens:       p.Tokens,
		uploadDir:    p.UploadDir,
	}
	s.routes(p.BufferSize)
	return s
}

func (s *Server) routes(bufferSize int) {
	s.app.Get("/health", s.health)
	s.app.Static("/uploads", s.uploadDir)

	// Websocket upgrade gate, then the live protocol
	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	ws := newWSHandler(s.log, s.chat, bufferSize)
	s.app.Get("/ws", websocket.New(ws.handle))

	api := s.app.Group("/api")
	api.Post("/auth/login", s.login)
	api.Post("/upload", s.upload)

	chat := api.Group("/chat")
	chat.Get("/rooms", s.listRooms)
	chat.Get("/rooms/:id", s.getRoom)
	chat.Get("/rooms/:id/messages", s.getHistory)
	chat.Get("/quick-replies", s.listQuickReplies)

	// Everything below changes state or exposes other conversations
	admin := chat.Group("", requireAdmin(s.tokens))
	admin.Post("/rooms", s.createRoom)
	admin.Delete("/rooms/:id", s.deleteRoom)
	admin.Get("/rooms/:id/search", s.searchMessages)
	admin.Post("/quick-replies", s.createQuickReply)
	admin.Delete("/quick-replies/:id", s.deleteQuickReply)
}

// Listen blocks serving HTTP until Shutdown is called.
func (s *Server) Listen(address string) error {
	s.log.Info("HTTP server listening", "address", address)
	return s.app.Listen(address)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
