package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"spygame/internal/app"
	"spygame/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// ErrSendBufferFull is returned by Send when the write pump is too far behind
var ErrSendBufferFull = errors.New("send buffer full")

// Client is one WebSocket connection. It carries no identity of its own;
// the gateway binds it to a seat on create-room or join-room.
type Client struct {
	id      string
	conn    *websocket.Conn
	gateway *app.Gateway
	limiter *rate.Limiter
	send    chan []byte
	done    chan struct{}
	logger  *slog.Logger
	mu      sync.Mutex
	closed  bool
}

// NewClient creates a new WebSocket client. limiter may be nil.
func NewClient(conn *websocket.Conn, gateway *app.Gateway, limiter *rate.Limiter, logger *slog.Logger) *Client {
	id := uuid.New().String()
	return &Client{
		id:      id,
		conn:    conn,
		gateway: gateway,
		limiter: limiter,
		send:    make(chan []byte, sendBufferSize),
		done:    make(chan struct{}),
		logger:  logger.With("connID", id),
	}
}

// ID implements app.ClientConnection
func (c *Client) ID() string {
	return c.id
}

// Send implements app.ClientConnection
func (c *Client) Send(event *domain.GameEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close implements app.ClientConnection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps and blocks until the
// connection is gone
func (c *Client) Run() {
	c.gateway.Connect(c)
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.gateway.Disconnect(c.id)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection.
// Each event is its own text frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	if c.limiter != nil && !c.limiter.Allow() {
		c.gateway.RejectMessage(c.id, domain.KindRateLimited, "too many messages")
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendInvalid("invalid message format")
		return
	}

	switch msg.Type {
	case MsgCreateRoom:
		if p, ok := decode[CreateRoomPayload](c, msg.Payload); ok {
			c.gateway.CreateRoom(c.id, p.Nickname)
		}
	case MsgJoinRoom:
		if p, ok := decode[JoinRoomPayload](c, msg.Payload); ok {
			c.gateway.JoinRoom(c.id, p.RoomCode, p.Nickname)
		}
	case MsgGetRoomState:
		if p, ok := decode[RoomPayload](c, msg.Payload); ok {
			c.gateway.GetRoomState(c.id, p.RoomCode)
		}
	case MsgStartGame:
		if p, ok := decode[StartGamePayload](c, msg.Payload); ok {
			c.gateway.StartGame(c.id, p.RoomCode, p.CategoryID)
		}
	case MsgFlipCard:
		if p, ok := decode[RoomPayload](c, msg.Payload); ok {
			c.gateway.FlipCard(c.id, p.RoomCode)
		}
	case MsgCastVote:
		if p, ok := decode[CastVotePayload](c, msg.Payload); ok {
			c.gateway.CastVote(c.id, p.RoomCode, p.TargetPlayerID)
		}
	case MsgSkipToVoting:
		if p, ok := decode[RoomPayload](c, msg.Payload); ok {
			c.gateway.SkipToVoting(c.id, p.RoomCode)
		}
	case MsgResetGame:
		if p, ok := decode[RoomPayload](c, msg.Payload); ok {
			c.gateway.ResetGame(c.id, p.RoomCode)
		}
	case MsgPing:
		c.gateway.Ping(c.id)
	default:
		c.sendInvalid("unknown message type")
	}
}

// decode validates a payload and reports failures to the client
func decode[T any](c *Client, raw json.RawMessage) (*T, bool) {
	payload, err := decodePayload[T](raw)
	if err != nil {
		c.sendInvalid(err.Error())
		return nil, false
	}
	return payload, true
}

func (c *Client) sendInvalid(message string) {
	c.gateway.RejectMessage(c.id, domain.KindInvalidMessage, message)
}
