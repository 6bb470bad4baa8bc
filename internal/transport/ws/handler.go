package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"spygame/internal/app"
)

// Options tunes accepted connections
type Options struct {
	AllowedOrigins    []string
	MessagesPerMinute int
	Burst             int
}

// Handler handles WebSocket connections
type Handler struct {
	gateway  *app.Gateway
	upgrader websocket.Upgrader
	opts     Options
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(gateway *app.Gateway, opts Options, logger *slog.Logger) *Handler {
	h := &Handler{
		gateway: gateway,
		opts:    opts,
		logger:  logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin allows every origin when no allow-list is configured
func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.opts.AllowedOrigins) == 0 {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (h *Handler) newLimiter() *rate.Limiter {
	if h.opts.MessagesPerMinute <= 0 {
		return nil
	}
	burst := h.opts.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(h.opts.MessagesPerMinute)), burst)
}

// ServeHTTP handles WebSocket upgrade requests. The connection joins a room
// later through create-room or join-room messages.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(conn, h.gateway, h.newLimiter(), h.logger)

	h.logger.Info("websocket connected", "connID", client.ID(), "remoteAddr", r.RemoteAddr)

	client.Run()

	h.logger.Info("websocket disconnected", "connID", client.ID())
}
