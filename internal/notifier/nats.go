// Package notifier publishes room lifecycle notifications to NATS so that
// other processes can observe games without joining them.
package notifier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher is the subset of *nats.Conn the notifier needs
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Message is the body of every notification
type Message struct {
	RoomCode  string      `json:"roomCode"`
	Event     string      `json:"event"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NATS publishes lifecycle events on <prefix>.rooms.<code>.<event>
type NATS struct {
	pub    Publisher
	prefix string
	logger *slog.Logger
}

// New wraps an existing publisher
func New(pub Publisher, prefix string, logger *slog.Logger) *NATS {
	return &NATS{
		pub:    pub,
		prefix: prefix,
		logger: logger,
	}
}

// Connect dials url and returns a notifier plus a function that drains the
// connection on shutdown
func Connect(url, prefix string, logger *slog.Logger) (*NATS, func(), error) {
	opts := []nats.Option{
		nats.Name("spygame"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("connect nats: %w", err)
	}

	closeFn := func() {
		if err := nc.Drain(); err != nil {
			logger.Warn("nats drain failed", "error", err)
		}
	}

	logger.Info("nats notifier enabled", "url", url, "prefix", prefix)

	return New(nc, prefix, logger), closeFn, nil
}

// Subject returns the subject a room event is published on
func (n *NATS) Subject(roomCode, event string) string {
	return fmt.Sprintf("%s.rooms.%s.%s", n.prefix, roomCode, event)
}

// Publish implements app.Notifier. Failures are logged, never returned, so a
// broker outage cannot stall a room.
func (n *NATS) Publish(roomCode, event string, payload interface{}) {
	data, err := json.Marshal(&Message{
		RoomCode:  roomCode,
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		n.logger.Error("failed to encode notification", "roomCode", roomCode, "event", event, "error", err)
		return
	}

	if err := n.pub.Publish(n.Subject(roomCode, event), data); err != nil {
		n.logger.Warn("failed to publish notification", "roomCode", roomCode, "event", event, "error", err)
	}
}
