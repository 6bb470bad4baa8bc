package domain

import "time"

// EventType represents the type of an outbound event
type EventType string

const (
	EventRoomCreated    EventType = "room-created"
	EventJoinSuccess    EventType = "join-success"
	EventJoinError      EventType = "join-error"
	EventPlayersUpdated EventType = "players-updated"
	EventGameStarted    EventType = "game-started"
	EventRoleAssigned   EventType = "role-assigned"
	EventCardRevealed   EventType = "card-revealed"
	EventTurnChanged    EventType = "turn-changed"
	EventPhaseChanged   EventType = "phase-changed"
	EventVoteProgress   EventType = "vote-progress"
	EventResults        EventType = "results"
	EventRoomState      EventType = "room-state"
	EventError          EventType = "error"
	EventPong           EventType = "pong"
)

// GameEvent is the envelope for everything the server pushes to clients
type GameEvent struct {
	Type      EventType   `json:"type"`
	RoomCode  string      `json:"roomCode,omitempty"`
	PlayerID  string      `json:"-"` // If set, deliver to this player only
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new room-wide event
func NewEvent(eventType EventType, roomCode string, payload interface{}) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		RoomCode:  roomCode,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewPlayerEvent creates a new player-specific event
func NewPlayerEvent(eventType EventType, roomCode, playerID string, payload interface{}) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		RoomCode:  roomCode,
		PlayerID:  playerID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewErrorEvent builds an error event for err
func NewErrorEvent(eventType EventType, roomCode string, err error) *GameEvent {
	kind := KindOf(err)
	message := err.Error()
	if kind == KindInternal {
		message = "internal error"
	}
	return NewEvent(eventType, roomCode, &ErrorPayload{Kind: kind, Message: message})
}

// JoinedPayload answers create-room and join-room
type JoinedPayload struct {
	RoomCode    string `json:"roomCode"`
	PlayerID    string `json:"playerId"`
	IsHost      bool   `json:"isHost"`
	Reconnected bool   `json:"reconnected"`
}

// ErrorPayload is sent to a single connection when a request is rejected
type ErrorPayload struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// PlayersUpdatedPayload is the roster snapshot
type PlayersUpdatedPayload struct {
	Players []PlayerInfo `json:"players"`
	HostID  string       `json:"hostId"`
}

// GameStartedPayload is broadcast when a game starts. It carries no secrets.
type GameStartedPayload struct {
	Phase               Phase    `json:"phase"`
	Category            string   `json:"category"`
	RosterSize          int      `json:"rosterSize"`
	TurnOrder           []string `json:"turnOrder"`
	CurrentTurnPlayerID string   `json:"currentTurnPlayerId"`
}

// TurnChangedPayload names the next player to flip
type TurnChangedPayload struct {
	CurrentTurnPlayerID string `json:"currentTurnPlayerId"`
}

// PhaseChangedPayload announces a phase change; EndsAt is set for questions
type PhaseChangedPayload struct {
	Phase  Phase      `json:"phase"`
	EndsAt *time.Time `json:"endsAt,omitempty"`
}

// VoteProgressPayload is sent when a vote is cast (without revealing who)
type VoteProgressPayload struct {
	VotesIn      int `json:"votesIn"`
	TotalPlayers int `json:"totalPlayers"`
}

// RoomStatePayload is the full view of a room for one member
type RoomStatePayload struct {
	RoomCode            string               `json:"roomCode"`
	Phase               Phase                `json:"phase"`
	HostID              string               `json:"hostId"`
	Players             []PlayerInfo         `json:"players"`
	Category            string               `json:"category,omitempty"`
	TurnOrder           []string             `json:"turnOrder,omitempty"`
	CurrentTurnPlayerID string               `json:"currentTurnPlayerId,omitempty"`
	EndsAt              *time.Time           `json:"endsAt,omitempty"`
	VoteProgress        *VoteProgressPayload `json:"voteProgress,omitempty"`
	Role                *RoleCard            `json:"role,omitempty"`
	Results             *Results             `json:"results,omitempty"`
}
