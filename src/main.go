package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/google/uuid"

	"playdeck/src/features/config"
	"playdeck/src/features/hosting"
	"playdeck/src/features/logging"
	"playdeck/src/features/playback"
	"playdeck/src/features/playlists"
	"playdeck/src/features/searching"
	"playdeck/src/features/viewsync"
	"playdeck/src/infra/artwork"
	"playdeck/src/infra/storage"
	"playdeck/src/infra/tag"
	"playdeck/src/infra/watcher"
	"playdeck/src/playlist"
)

func main() {
	// Load configuration
	cfgManager, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core model: the collection, the background searcher and the panel
	// of views over it.
	collection := playlist.NewCollection()
	searcher := searching.NewSearcherWithDepth(cfgManager.Get().Search.QueueDepth)
	defer searcher.Close()
	panel := viewsync.NewPanel(collection, searcher)

	// Infra adapters
	sessionStore := storage.NewSessionStore(cfgManager.Get().Storage.SessionPath)
	tagReader := tag.NewTagReader()
	thumbnailer := artwork.NewService(cfgManager)

	// Create the playlists service and restore the previous session
	playlistService := playlists.NewService(collection, panel, searcher, sessionStore, tagReader, thumbnailer, cfgManager)
	if err := playlistService.LoadSession(); err != nil {
		slog.Warn("Could not restore the previous session", "error", err)
	}
	go playlistService.Run(ctx)

	// Create the playback service and wire play requests from the views
	playbackService := playback.NewService(playlistService)
	// The callback fires while the playlists lock is held; Play re-enters
	// that lock, so it must run on its own goroutine.
	panel.OnItemDesired(func(playlistID, itemID uuid.UUID) {
		go func() {
			if _, err := playbackService.Play(playlistID, itemID); err != nil {
				slog.Warn("play request failed", "playlistID", playlistID, "itemID", itemID, "error", err)
			}
		}()
	})

	// Watch the drop directory for playlist files
	if cfgManager.Get().Import.AutoStartWatcher && cfgManager.Get().Storage.DropPath != "" {
		dropEvents := make(chan watcher.FileEvent, 8)
		dropWatcher, err := watcher.NewWatcher(dropEvents)
		if err != nil {
			slog.Error("Failed to create drop watcher", "error", err)
		} else if err := dropWatcher.Start(ctx, cfgManager.Get().Storage.DropPath); err != nil {
			slog.Error("Failed to start drop watcher", "error", err)
		} else {
			defer dropWatcher.Stop()
			go func() {
				for event := range dropEvents {
					playlistService.HandleDrops(ctx, event.Paths)
				}
			}()
		}
	}

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, playlistService, playbackService)
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	slog.Info("Shutting down...")

	// Persist the session before going down
	if err := playlistService.SaveSession(); err != nil {
		slog.Error("Failed to save session", "error", err)
	}

	// Shutdown the server
	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}
	slog.Info("Server gracefully shut down.")
}
