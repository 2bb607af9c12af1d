package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"support-chat/auth"
	"support-chat/domain"
	"support-chat/infrastructure/httpapi"
	"support-chat/moderation"
	"support-chat/repositories"
	"support-chat/runtime"
	"support-chat/runtime/workers"
	"support-chat/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer executes before exit.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (BadgerDB) & Search index (Bluge)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	indexWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = indexWriter.Close()
	}()

	if err = os.MkdirAll(config.UploadDir, 0o755); err != nil {
		return fmt.Errorf("upload directory: %w", err)
	}

	// 3. Moderation
	censored, err := moderation.LoadWords()
	if err != nil {
		return fmt.Errorf("loading moderation words failed: %w", err)
	}
	moderator, err := moderation.NewModerator(censored.Words, config.ModerationCharReplacement)
	if err != nil {
		return fmt.Errorf("building moderator failed: %w", err)
	}
	log.Info("Moderation ready",
		"words", len(censored.Words), "languages", censored.Languages)

	// 4. Repositories
	roomRepository := repositories.NewRoomRepository(db, log)
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)
	quickReplyRepository := repositories.NewQuickReplyRepository(db)
	searchRepository := repositories.NewSearchRepository(indexWriter, log, config.SearchLimit)

	// 5. Live layer
	persistQueue := make(chan domain.Message, config.QueueSize)
	indexQueue := make(chan domain.Message, config.QueueSize)

	registry := runtime.NewRegistry(log)
	broadcaster := runtime.NewBroadcaster(log, registry, config.SinkTimeout)
	gateway := runtime.NewSessionGateway(log, registry, broadcaster, moderator,
		persistQueue, indexQueue, config.MaxContentLength)
	coordinator := runtime.NewDeletionCoordinator(log, registry, broadcaster, config.DrainPeriod)

	// 6. Services
	roomService := services.NewRoomService(log, roomRepository, messageRepository,
		registry, gateway, coordinator)
	chatService := services.NewChatService(log, gateway, roomService, messageRepository)
	quickReplyService := services.NewQuickReplyService(quickReplyRepository)
	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(config.AdminPasswordHash, tokens)

	seeded, err := roomService.SeedRegistry()
	if err != nil {
		return fmt.Errorf("seeding rooms failed: %w", err)
	}
	log.Info("Active rooms restored", "count", seeded)

	// 7. Supervised background workers
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		workers.NewDiskSinkWorker(log, persistQueue, messageRepository),
		workers.NewIndexSinkWorker(log, indexQueue, searchRepository),
		workers.NewReaperWorker(log, registry, config.IdleRoomTTL, config.ReapInterval),
		workers.NewHeartbeatWorker(log, registry, config.HeartbeatInterval),
	)
	go sup.Run(ctx)

	// 8. HTTP server
	server := httpapi.NewServer(httpapi.ServerParams{
		Log:          log,
		Chat:         chatService,
		Rooms:        roomService,
		QuickReplies: quickReplyService,
		Auth:         authService,
		Search:       searchRepository,
		Gauges:       registry,
		Tokens:       tokens,
		UploadDir:    config.UploadDir,
		BufferSize:   config.ConnectionBufferSize,
	})

	errChan := make(chan error, 1)
	go func() {
		address := fmt.Sprintf("%s:%d", config.Host, config.Port)
		if err := server.Listen(address); err != nil {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 9. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 10. Final Cleanup
	_ = server.Shutdown()
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
