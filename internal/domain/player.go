package domain

import "time"

// Player is one seat in a room. ID survives reconnection, ConnectionID does not.
type Player struct {
	ID             string
	Nickname       string
	ConnectionID   string
	IsHost         bool
	IsConnected    bool
	HasFlippedCard bool
	HasVoted       bool
	JoinedAt       time.Time
}

// NewPlayer creates a connected player bound to connID
func NewPlayer(id, nickname, connID string, now time.Time) *Player {
	return &Player{
		ID:           id,
		Nickname:     nickname,
		ConnectionID: connID,
		IsConnected:  true,
		JoinedAt:     now,
	}
}

// ResetForNewGame clears the per-game flags
func (p *Player) ResetForNewGame() {
	p.HasFlippedCard = false
	p.HasVoted = false
}

// Attach binds the player to a new transport connection
func (p *Player) Attach(connID string) {
	p.ConnectionID = connID
	p.IsConnected = true
}

// Detach marks the player as disconnected but keeps the seat
func (p *Player) Detach() {
	p.ConnectionID = ""
	p.IsConnected = false
}

// PlayerInfo is the public view of a player; it never carries role data
type PlayerInfo struct {
	ID             string `json:"id"`
	Nickname       string `json:"nickname"`
	IsHost         bool   `json:"isHost"`
	IsConnected    bool   `json:"isConnected"`
	HasFlippedCard bool   `json:"hasFlippedCard"`
	HasVoted       bool   `json:"hasVoted"`
}

// ToInfo converts a Player to PlayerInfo
func (p *Player) ToInfo() PlayerInfo {
	return PlayerInfo{
		ID:             p.ID,
		Nickname:       p.Nickname,
		IsHost:         p.IsHost,
		IsConnected:    p.IsConnected,
		HasFlippedCard: p.HasFlippedCard,
		HasVoted:       p.HasVoted,
	}
}
