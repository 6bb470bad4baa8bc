package app

import (
	"log/slog"
	"sync"
	"time"

	"spygame/internal/domain"
)

// ClientConnection represents a connected client
type ClientConnection interface {
	ID() string
	Send(event *domain.GameEvent) error
	Close() error
}

// Notifier receives room lifecycle notifications for out-of-process
// observers. Payloads never carry the word or the spy before results.
type Notifier interface {
	Publish(roomCode, event string, payload interface{})
}

// NopNotifier drops every notification
type NopNotifier struct{}

func (NopNotifier) Publish(string, string, interface{}) {}

// Lifecycle notification names
const (
	NotifyRoomCreated  = "room-created"
	NotifyPlayerJoined = "player-joined"
	NotifyPlayerLeft   = "player-left"
	NotifyGameStarted  = "game-started"
	NotifyPhaseChanged = "phase-changed"
	NotifyResults      = "results"
	NotifyGameReset    = "game-reset"
	NotifyRoomEvicted  = "room-evicted"
)

// Gateway turns inbound client intents into room operations and fans the
// outcome out to the right connections. Every room operation runs with the
// room lock held, and delivery happens before the lock is released so
// per-room event order matches mutation order.
type Gateway struct {
	registry *Registry
	notifier Notifier
	logger   *slog.Logger

	conns   map[string]ClientConnection
	connsMu sync.RWMutex

	timers   map[string]*time.Timer // roomCode -> discussion deadline
	timersMu sync.Mutex
}

// GatewayOption customizes a gateway
type GatewayOption func(*Gateway)

// WithNotifier sets the lifecycle notifier
func WithNotifier(n Notifier) GatewayOption {
	return func(g *Gateway) { g.notifier = n }
}

// NewGateway creates a gateway on top of registry
func NewGateway(registry *Registry, logger *slog.Logger, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		registry: registry,
		notifier: NopNotifier{},
		logger:   logger,
		conns:    make(map[string]ClientConnection),
		timers:   make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Registry returns the underlying registry
func (g *Gateway) Registry() *Registry {
	return g.registry
}

// Connect registers a transport connection
func (g *Gateway) Connect(conn ClientConnection) {
	g.connsMu.Lock()
	defer g.connsMu.Unlock()
	g.conns[conn.ID()] = conn
}

// Disconnect forgets a connection and marks its seat offline
func (g *Gateway) Disconnect(connID string) {
	g.connsMu.Lock()
	delete(g.conns, connID)
	g.connsMu.Unlock()

	g.leave(connID)
}

// leave detaches connID from whatever seat it is bound to
func (g *Gateway) leave(connID string) {
	route, ok := g.registry.Unbind(connID)
	if !ok {
		return
	}
	g.vacate(connID, route)
}

// vacate marks the seat behind an already unbound route offline
func (g *Gateway) vacate(connID string, route Route) {
	room, err := g.registry.LookupRoom(route.RoomCode)
	if err != nil {
		return
	}

	room.Lock()
	defer room.Unlock()

	g.detach(room, connID, route.PlayerID)
}

// detach marks playerID offline; caller holds the room lock
func (g *Gateway) detach(room *domain.Room, connID, playerID string) {
	res, err := room.MarkDisconnected(playerID, connID, g.registry.Now())
	if err != nil || !res.Applied {
		return
	}

	g.logger.Info("player disconnected",
		"roomCode", room.Code,
		"playerID", playerID,
		"hostChanged", res.HostChanged,
		"empty", res.Empty,
	)

	g.dispatch(room, domain.NewEvent(domain.EventPlayersUpdated, room.Code, room.PlayersUpdated()))
	g.notifier.Publish(room.Code, NotifyPlayerLeft, map[string]interface{}{
		"playerId":  playerID,
		"connected": room.ConnectedCount(),
	})
}

// CreateRoom opens a new room with the caller as host
func (g *Gateway) CreateRoom(connID, nickname string) {
	previous, seated := g.route(connID)

	room, join, err := g.registry.CreateRoom(nickname, connID)
	if err != nil {
		g.logger.Warn("create room failed", "connID", connID, "error", err)
		g.send(connID, domain.NewErrorEvent(domain.EventJoinError, "", err))
		return
	}
	if seated {
		g.vacate(connID, previous)
	}

	room.Lock()
	defer room.Unlock()

	g.send(connID, domain.NewEvent(domain.EventRoomCreated, room.Code, &domain.JoinedPayload{
		RoomCode: room.Code,
		PlayerID: join.Player.ID,
		IsHost:   join.Player.IsHost,
	}))
	g.dispatch(room, domain.NewEvent(domain.EventPlayersUpdated, room.Code, room.PlayersUpdated()))
	g.notifier.Publish(room.Code, NotifyRoomCreated, map[string]interface{}{
		"players": room.PlayerCount(),
	})
}

// JoinRoom seats the caller in an existing room, or reattaches them to the
// seat holding the same nickname.
func (g *Gateway) JoinRoom(connID, roomCode, nickname string) {
	room, err := g.registry.LookupRoom(roomCode)
	if err != nil {
		g.send(connID, domain.NewErrorEvent(domain.EventJoinError, roomCode, err))
		return
	}

	// Leave another room before locking this one; never hold two room locks.
	if previous, seated := g.route(connID); seated && previous.RoomCode != room.Code {
		g.leave(connID)
	}

	room.Lock()
	defer room.Unlock()

	g.checkDeadline(room)

	// A retry for the same seat reattaches in place. Switching nickname
	// inside the same room gives up the old seat first.
	if previous, seated := g.route(connID); seated && previous.RoomCode == room.Code {
		if p, err := room.Player(previous.PlayerID); err != nil || p.Nickname != nickname {
			g.registry.Unbind(connID)
			g.detach(room, connID, previous.PlayerID)
		}
	}

	join, err := room.AddOrReattachPlayer(nickname, connID, g.registry.Now())
	if err != nil {
		g.logger.Debug("join rejected", "roomCode", roomCode, "connID", connID, "error", err)
		g.send(connID, domain.NewErrorEvent(domain.EventJoinError, roomCode, err))
		return
	}

	if join.PreviousConnID != "" {
		g.registry.Unbind(join.PreviousConnID)
	}
	g.registry.Bind(connID, Route{PlayerID: join.Player.ID, RoomCode: room.Code})

	g.logger.Info("player joined",
		"roomCode", room.Code,
		"playerID", join.Player.ID,
		"reconnected", join.Reattached,
	)

	g.send(connID, domain.NewEvent(domain.EventJoinSuccess, room.Code, &domain.JoinedPayload{
		RoomCode:    room.Code,
		PlayerID:    join.Player.ID,
		IsHost:      join.Player.IsHost,
		Reconnected: join.Reattached,
	}))
	g.dispatch(room, domain.NewEvent(domain.EventPlayersUpdated, room.Code, room.PlayersUpdated()))

	if join.Reattached && room.Phase != domain.PhaseLobby {
		g.dispatch(room, domain.NewPlayerEvent(domain.EventRoomState, room.Code, join.Player.ID, room.StateFor(join.Player.ID)))
	}

	g.notifier.Publish(room.Code, NotifyPlayerJoined, map[string]interface{}{
		"playerId":    join.Player.ID,
		"reconnected": join.Reattached,
		"players":     room.PlayerCount(),
	})
}

// route returns the seat connID is bound to, if any
func (g *Gateway) route(connID string) (Route, bool) {
	route, err := g.registry.ResolveConnection(connID)
	return route, err == nil
}

// GetRoomState sends the caller its own view of the room
func (g *Gateway) GetRoomState(connID, roomCode string) {
	g.withRoom(connID, roomCode, func(room *domain.Room, playerID string) error {
		g.send(connID, domain.NewEvent(domain.EventRoomState, room.Code, room.StateFor(playerID)))
		return nil
	})
}

// StartGame starts a game and deals every player their private card
func (g *Gateway) StartGame(connID, roomCode, categoryID string) {
	g.withRoom(connID, roomCode, func(room *domain.Room, playerID string) error {
		start, err := room.StartGame(playerID, categoryID, g.registry.Now())
		if err != nil {
			return err
		}

		g.logger.Info("game started",
			"roomCode", room.Code,
			"category", start.Announcement.Category,
			"players", start.Announcement.RosterSize,
		)

		announcement := start.Announcement
		g.dispatch(room, domain.NewEvent(domain.EventGameStarted, room.Code, &announcement))
		for id, card := range start.Roles {
			card := card
			g.dispatch(room, domain.NewPlayerEvent(domain.EventRoleAssigned, room.Code, id, &card))
		}
		g.dispatch(room, domain.NewEvent(domain.EventPlayersUpdated, room.Code, room.PlayersUpdated()))

		g.notifier.Publish(room.Code, NotifyGameStarted, map[string]interface{}{
			"category":   announcement.Category,
			"rosterSize": announcement.RosterSize,
		})
		return nil
	})
}

// FlipCard reveals the caller's own card and advances the turn
func (g *Gateway) FlipCard(connID, roomCode string) {
	g.withRoom(connID, roomCode, func(room *domain.Room, playerID string) error {
		res, err := room.FlipCard(playerID, g.registry.Now())
		if err != nil {
			return err
		}

		reveal := res.Reveal
		g.dispatch(room, domain.NewPlayerEvent(domain.EventCardRevealed, room.Code, playerID, &reveal))
		g.dispatch(room, domain.NewEvent(domain.EventPlayersUpdated, room.Code, room.PlayersUpdated()))

		if !res.AllFlipped {
			g.dispatch(room, domain.NewEvent(domain.EventTurnChanged, room.Code, &domain.TurnChangedPayload{
				CurrentTurnPlayerID: res.NextTurn,
			}))
			return nil
		}

		endsAt := res.EndsAt
		g.announcePhase(room, &endsAt)
		g.scheduleDiscussion(room, endsAt)
		return nil
	})
}

// SkipToVoting ends the discussion early
func (g *Gateway) SkipToVoting(connID, roomCode string) {
	g.withRoom(connID, roomCode, func(room *domain.Room, playerID string) error {
		if err := room.SkipToVoting(playerID); err != nil {
			return err
		}
		g.cancelTimer(room.Code)
		g.openVoting(room)
		return nil
	})
}

// CastVote records the caller's vote
func (g *Gateway) CastVote(connID, roomCode, targetID string) {
	g.withRoom(connID, roomCode, func(room *domain.Room, playerID string) error {
		out, err := room.CastVote(playerID, targetID)
		if err != nil {
			return err
		}

		progress := out.Progress
		g.dispatch(room, domain.NewEvent(domain.EventVoteProgress, room.Code, &progress))
		g.dispatch(room, domain.NewEvent(domain.EventPlayersUpdated, room.Code, room.PlayersUpdated()))

		if out.Results == nil {
			return nil
		}

		g.logger.Info("game finished",
			"roomCode", room.Code,
			"spyCaught", out.Results.SpyCaught,
		)

		g.announcePhase(room, nil)
		g.dispatch(room, domain.NewEvent(domain.EventResults, room.Code, out.Results))
		g.notifier.Publish(room.Code, NotifyResults, out.Results)
		return nil
	})
}

// ResetGame sends the room back to the lobby
func (g *Gateway) ResetGame(connID, roomCode string) {
	g.withRoom(connID, roomCode, func(room *domain.Room, playerID string) error {
		wasLobby := room.Phase == domain.PhaseLobby
		if err := room.ResetToLobby(playerID); err != nil {
			return err
		}
		g.cancelTimer(room.Code)

		if !wasLobby {
			g.announcePhase(room, nil)
			g.notifier.Publish(room.Code, NotifyGameReset, nil)
		}
		g.dispatch(room, domain.NewEvent(domain.EventPlayersUpdated, room.Code, room.PlayersUpdated()))
		return nil
	})
}

// Ping answers a keepalive on the application level
func (g *Gateway) Ping(connID string) {
	g.send(connID, domain.NewEvent(domain.EventPong, "", nil))
}

// RejectMessage reports a malformed or throttled message to its sender only
func (g *Gateway) RejectMessage(connID string, kind domain.ErrorKind, message string) {
	g.send(connID, domain.NewEvent(domain.EventError, "", &domain.ErrorPayload{
		Kind:    kind,
		Message: message,
	}))
}

// RoomsEvicted cancels timers for rooms the registry swept
func (g *Gateway) RoomsEvicted(codes []string) {
	for _, code := range codes {
		g.cancelTimer(code)
		g.notifier.Publish(code, NotifyRoomEvicted, nil)
	}
}

// Close stops every timer and closes all connections
func (g *Gateway) Close() {
	g.timersMu.Lock()
	for code, timer := range g.timers {
		timer.Stop()
		delete(g.timers, code)
	}
	g.timersMu.Unlock()

	g.connsMu.Lock()
	conns := g.conns
	g.conns = make(map[string]ClientConnection)
	g.connsMu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}

// withRoom resolves the caller's seat, locks its room and runs fn. A
// rejection from fn goes back to the caller only.
func (g *Gateway) withRoom(connID, roomCode string, fn func(room *domain.Room, playerID string) error) {
	route, err := g.registry.ResolveConnection(connID)
	if err != nil {
		if roomCode != "" {
			if _, lookupErr := g.registry.LookupRoom(roomCode); lookupErr != nil {
				err = lookupErr
			}
		}
		g.sendError(connID, roomCode, err)
		return
	}
	if roomCode != "" && roomCode != route.RoomCode {
		g.sendError(connID, roomCode, domain.ErrPlayerNotFound)
		return
	}

	room, err := g.registry.LookupRoom(route.RoomCode)
	if err != nil {
		g.sendError(connID, route.RoomCode, err)
		return
	}

	room.Lock()
	defer room.Unlock()

	if room.Closed() {
		g.sendError(connID, room.Code, domain.ErrRoomNotFound)
		return
	}

	g.checkDeadline(room)

	if err := fn(room, route.PlayerID); err != nil {
		if !domain.IsRejection(err) {
			g.logger.Error("room operation failed", "roomCode", room.Code, "playerID", route.PlayerID, "error", err)
		}
		g.sendError(connID, room.Code, err)
	}
}

// checkDeadline applies an expired discussion deadline; caller holds the room lock
func (g *Gateway) checkDeadline(room *domain.Room) {
	if room.ExpireDiscussion(g.registry.Now()) {
		g.cancelTimer(room.Code)
		g.openVoting(room)
	}
}

// openVoting announces the voting phase; caller holds the room lock
func (g *Gateway) openVoting(room *domain.Room) {
	g.announcePhase(room, nil)
	g.dispatch(room, domain.NewEvent(domain.EventVoteProgress, room.Code, room.VoteProgress()))
}

func (g *Gateway) announcePhase(room *domain.Room, endsAt *time.Time) {
	g.logger.Debug("phase changed", "roomCode", room.Code, "phase", room.Phase)

	g.dispatch(room, domain.NewEvent(domain.EventPhaseChanged, room.Code, &domain.PhaseChangedPayload{
		Phase:  room.Phase,
		EndsAt: endsAt,
	}))
	g.notifier.Publish(room.Code, NotifyPhaseChanged, map[string]interface{}{
		"phase": room.Phase,
	})
}

// scheduleDiscussion arms the single per-room deadline callback
func (g *Gateway) scheduleDiscussion(room *domain.Room, endsAt time.Time) {
	code := room.Code
	delay := endsAt.Sub(g.registry.Now())
	if delay < 0 {
		delay = 0
	}

	g.timersMu.Lock()
	defer g.timersMu.Unlock()

	if existing, ok := g.timers[code]; ok {
		existing.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		g.timersMu.Lock()
		if g.timers[code] == timer {
			delete(g.timers, code)
		}
		g.timersMu.Unlock()

		room.Lock()
		defer room.Unlock()
		if room.Closed() {
			return
		}
		g.checkDeadline(room)
	})
	g.timers[code] = timer
}

func (g *Gateway) cancelTimer(code string) {
	g.timersMu.Lock()
	defer g.timersMu.Unlock()

	if timer, ok := g.timers[code]; ok {
		timer.Stop()
		delete(g.timers, code)
	}
}

// dispatch delivers an event to one player when PlayerID is set, otherwise to
// every connected player of the room; caller holds the room lock
func (g *Gateway) dispatch(room *domain.Room, event *domain.GameEvent) {
	if event.PlayerID != "" {
		if connID := room.ConnectionOf(event.PlayerID); connID != "" {
			g.send(connID, event)
		}
		return
	}

	for _, connID := range room.ConnectionIDs() {
		g.send(connID, event)
	}
}

func (g *Gateway) sendError(connID, roomCode string, err error) {
	g.send(connID, domain.NewErrorEvent(domain.EventError, roomCode, err))
}

func (g *Gateway) send(connID string, event *domain.GameEvent) {
	g.connsMu.RLock()
	conn, ok := g.conns[connID]
	g.connsMu.RUnlock()
	if !ok {
		return
	}

	if err := conn.Send(event); err != nil {
		if event.PlayerID != "" {
			g.logger.Warn("private event not delivered, client can recover with get-room-state",
				"connID", connID, "type", event.Type, "error", err)
			return
		}
		g.logger.Warn("failed to send to client", "connID", connID, "type", event.Type, "error", err)
	}
}
