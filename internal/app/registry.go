package app

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"spygame/internal/domain"
)

const (
	// roomCodeBase and roomCodeSpan produce codes 100000..999999
	roomCodeBase = 100000
	roomCodeSpan = 900000

	// maxCodeAttempts bounds collision retries before giving up
	maxCodeAttempts = 20
)

// Route binds a transport connection to a seat in a room
type Route struct {
	PlayerID string
	RoomCode string
}

// RoomFactory builds a new empty room for a code
type RoomFactory func(code string, now time.Time) *domain.Room

// RoomSummary is the public view of a room used by the HTTP API
type RoomSummary struct {
	Code           string       `json:"roomCode"`
	Phase          domain.Phase `json:"phase"`
	PlayerCount    int          `json:"playerCount"`
	MaxPlayers     int          `json:"maxPlayers"`
	ConnectedCount int          `json:"connectedCount"`
	CanJoin        bool         `json:"canJoin"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// Stats is a process-wide snapshot
type Stats struct {
	Rooms            int `json:"rooms"`
	Players          int `json:"players"`
	ConnectedPlayers int `json:"connectedPlayers"`
	GamesInProgress  int `json:"gamesInProgress"`
}

// Registry owns the code -> room map and the connection -> route map.
//
// Lock order is room before registry: the registry lock is never held while
// locking a room that is already visible in the store.
type Registry struct {
	store   Store
	routes  map[string]Route // connectionID -> route
	factory RoomFactory
	mu      sync.Mutex
	logger  *slog.Logger

	now          func() time.Time
	generateCode func() (string, error)

	done      chan struct{}
	closeOnce sync.Once
}

// RegistryOption customizes a registry
type RegistryOption func(*Registry)

// WithClock overrides the time source
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// WithCodeGenerator overrides room code generation
func WithCodeGenerator(gen func() (string, error)) RegistryOption {
	return func(r *Registry) { r.generateCode = gen }
}

// NewRegistry creates a registry backed by store
func NewRegistry(store Store, factory RoomFactory, logger *slog.Logger, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:        store,
		routes:       make(map[string]Route),
		factory:      factory,
		logger:       logger,
		now:          time.Now,
		generateCode: GenerateRoomCode,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now returns the registry clock
func (r *Registry) Now() time.Time {
	return r.now()
}

// CreateRoom creates a room with the caller as its only player and host
func (r *Registry) CreateRoom(nickname, connID string) (*domain.Room, *domain.JoinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := r.uniqueCode()
	if err != nil {
		return nil, nil, err
	}

	now := r.now()
	room := r.factory(code, now)

	room.Lock()
	join, err := room.AddOrReattachPlayer(nickname, connID, now)
	room.Unlock()
	if err != nil {
		return nil, nil, err
	}

	r.store.Set(code, room)
	r.routes[connID] = Route{PlayerID: join.Player.ID, RoomCode: code}

	r.logger.Info("room created", "roomCode", code, "playerID", join.Player.ID)

	return room, join, nil
}

// uniqueCode picks an unused code; caller holds r.mu
func (r *Registry) uniqueCode() (string, error) {
	for attempts := 0; attempts < maxCodeAttempts; attempts++ {
		code, err := r.generateCode()
		if err != nil {
			return "", fmt.Errorf("generate room code: %w", err)
		}
		if !r.store.Exists(code) {
			return code, nil
		}
	}
	return "", domain.ErrCodeSpaceExhausted
}

// LookupRoom returns a live room by code
func (r *Registry) LookupRoom(code string) (*domain.Room, error) {
	room, ok := r.store.Get(code)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

// ResolveConnection returns the seat bound to a connection
func (r *Registry) ResolveConnection(connID string) (Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	route, ok := r.routes[connID]
	if !ok {
		return Route{}, domain.ErrPlayerNotFound
	}
	return route, nil
}

// Bind routes a connection to a seat, replacing any previous binding
func (r *Registry) Bind(connID string, route Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[connID] = route
}

// Unbind forgets a connection and returns its last route
func (r *Registry) Unbind(connID string) (Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	route, ok := r.routes[connID]
	if ok {
		delete(r.routes, connID)
	}
	return route, ok
}

// RoomCount returns the number of live rooms
func (r *Registry) RoomCount() int {
	return r.store.Len()
}

// RoomSummary returns the public view of one room
func (r *Registry) RoomSummary(code string) (RoomSummary, error) {
	room, err := r.LookupRoom(code)
	if err != nil {
		return RoomSummary{}, err
	}

	room.Lock()
	defer room.Unlock()

	if room.Closed() {
		return RoomSummary{}, domain.ErrRoomNotFound
	}
	return RoomSummary{
		Code:           room.Code,
		Phase:          room.Phase,
		PlayerCount:    room.PlayerCount(),
		MaxPlayers:     room.Settings.MaxPlayers,
		ConnectedCount: room.ConnectedCount(),
		CanJoin:        room.CanJoin(),
		CreatedAt:      room.CreatedAt,
	}, nil
}

// Stats aggregates counters over all live rooms
func (r *Registry) Stats() Stats {
	var stats Stats
	for _, room := range r.store.All() {
		room.Lock()
		if !room.Closed() {
			stats.Rooms++
			stats.Players += room.PlayerCount()
			stats.ConnectedPlayers += room.ConnectedCount()
			if room.Phase.InGame() {
				stats.GamesInProgress++
			}
		}
		room.Unlock()
	}
	return stats
}

// SweepEmptyRooms removes rooms that have had nobody connected for longer
// than grace. Rooms are closed under their own lock first so a racing join
// sees RoomNotFound instead of reviving an evicted room.
func (r *Registry) SweepEmptyRooms(grace time.Duration) []string {
	now := r.now()

	var evicted []string
	for _, room := range r.store.All() {
		room.Lock()
		if room.Evictable(now, grace) {
			room.Close()
			evicted = append(evicted, room.Code)
		}
		room.Unlock()
	}

	if len(evicted) == 0 {
		return nil
	}

	r.mu.Lock()
	for _, code := range evicted {
		r.store.Delete(code)
		for connID, route := range r.routes {
			if route.RoomCode == code {
				delete(r.routes, connID)
			}
		}
	}
	r.mu.Unlock()

	for _, code := range evicted {
		r.logger.Info("empty room evicted", "roomCode", code)
	}

	return evicted
}

// StartSweeper runs SweepEmptyRooms every interval until Close
func (r *Registry) StartSweeper(interval, grace time.Duration, onEvict func(codes []string)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.done:
				return
			case <-ticker.C:
				if codes := r.SweepEmptyRooms(grace); len(codes) > 0 && onEvict != nil {
					onEvict(codes)
				}
			}
		}
	}()
}

// Close stops the sweeper and tears down every room
func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
	})

	for _, room := range r.store.All() {
		room.Lock()
		room.Close()
		room.Unlock()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.store.All() {
		r.store.Delete(room.Code)
	}
	r.routes = make(map[string]Route)
}

// GenerateRoomCode returns a uniformly random 6-digit code
func GenerateRoomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(roomCodeSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", roomCodeBase+n.Int64()), nil
}
