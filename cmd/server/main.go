package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spygame/internal/app"
	"spygame/internal/config"
	"spygame/internal/domain"
	"spygame/internal/notifier"
	httpTransport "spygame/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up logger
	var logger *slog.Logger
	logOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	if cfg.Logging.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, logOpts))
	}

	slog.SetDefault(logger)

	logger.Info("starting spy game server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	words := app.NewStaticWordBank()
	settings := domain.Settings{
		MinPlayers:            cfg.Game.MinPlayers,
		MaxPlayers:            cfg.Game.MaxPlayers,
		DiscussionDuration:    cfg.DiscussionDuration(),
		AllowNicknameTakeover: cfg.Game.AllowNicknameTakeover,
	}
	var picker domain.SpyPicker = domain.UniformSpyPicker{}
	if cfg.Game.FairSpySelection {
		picker = domain.FairSpyPicker{}
	}

	factory := func(code string, now time.Time) *domain.Room {
		return domain.NewRoom(code, words, now,
			domain.WithSettings(settings),
			domain.WithSpyPicker(picker),
		)
	}

	registry := app.NewRegistry(app.NewMemoryStore(), factory, logger)
	defer registry.Close()

	var gatewayOpts []app.GatewayOption
	if cfg.NATS.URL != "" {
		n, closeNATS, err := notifier.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix, logger)
		if err != nil {
			logger.Error("failed to connect nats", "error", err)
			os.Exit(1)
		}
		defer closeNATS()
		gatewayOpts = append(gatewayOpts, app.WithNotifier(n))
	}

	gateway := app.NewGateway(registry, logger, gatewayOpts...)
	defer gateway.Close()

	registry.StartSweeper(cfg.SweepInterval(), cfg.EmptyRoomGrace(), gateway.RoomsEvicted)

	// Create HTTP server
	server := httpTransport.NewServer(cfg, gateway, words, logger)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
