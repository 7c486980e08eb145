// Package main runs the reelgrab bot: it receives Instagram and TikTok links
// over Telegram and replies with the downloaded videos.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/denisAlshanov/reelgrab/internal/api/handlers"
	"github.com/denisAlshanov/reelgrab/internal/api/router"
	"github.com/denisAlshanov/reelgrab/internal/config"
	"github.com/denisAlshanov/reelgrab/internal/services/downloader"
	"github.com/denisAlshanov/reelgrab/internal/services/relay"
	"github.com/denisAlshanov/reelgrab/internal/services/storage"
	"github.com/denisAlshanov/reelgrab/internal/services/telegram"
	"github.com/denisAlshanov/reelgrab/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	utils.ConfigureLogger(cfg.Log.Level, cfg.Log.Format)
	logger := utils.GetLogger()
	logger.Info("Starting reelgrab")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize archive storage (optional)
	var store storage.StorageInterface
	var archiver relay.Archiver
	if cfg.S3.Enabled() {
		store, err = storage.NewStorage(&cfg.S3)
		if err != nil {
			logger.Fatalf("Failed to initialize storage: %v", err)
		}
		archiver = storage.NewArchiver(store)
	}

	// Bind the liveness listener before anything slow happens
	healthHandler := handlers.NewHealthHandler(store)
	r := router.NewRouter(&cfg.Server, healthHandler)
	ln, err := r.Listen()
	if err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}

	// Initialize Telegram client
	bot, err := telegram.NewBotClient(&cfg.Telegram)
	if err != nil {
		logger.Fatalf("Failed to initialize Telegram bot: %v", err)
	}

	// Initialize downloader service
	dl := downloader.NewDownloader(&cfg.Download)
	versionCtx, cancelVersion := context.WithTimeout(ctx, 10*time.Second)
	if version, err := dl.CheckBinary(versionCtx); err != nil {
		utils.LogError(ctx, "yt-dlp is not available; downloads will fail", err)
	} else {
		logger.Infof("Using yt-dlp %s", version)
	}
	cancelVersion()

	links := relay.NewLinkHandler(bot, dl, archiver, cfg.Download)
	dispatcher := relay.NewRouter(bot, links, bot.Username())

	// Start server
	go func() {
		logger.Infof("Starting liveness server on %s", ln.Addr())
		if err := r.Serve(ln); err != nil {
			logger.Fatalf("Liveness server failed: %v", err)
		}
	}()

	if err := bot.Run(ctx, dispatcher.Dispatch); err != nil {
		logger.Errorf("Bot stopped with error: %v", err)
	}

	logger.Info("Shutting down server...")

	// Create a deadline for shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := r.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Failed to shut down liveness server: %v", err)
	}

	if err := bot.Close(); err != nil {
		logger.Errorf("Failed to close Telegram client: %v", err)
	}

	logger.Info("Server shutdown complete")
}
