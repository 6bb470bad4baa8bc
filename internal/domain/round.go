package domain

import "time"

// Round holds the secret, per-game state of a room. It is never serialized
// as a whole; clients only ever see projections of it.
type Round struct {
	Number       int
	Category     string
	Word         string
	SpyID        string
	TurnOrder    []string
	TurnCursor   int
	CardsFlipped int
	Votes        map[string]string // voterID -> targetID
	EndsAt       time.Time         // zero when no discussion deadline is set
	Results      *Results
	StartedAt    time.Time
}

// NewRound creates a new round with the given parameters
func NewRound(number int, category, word, spyID string, turnOrder []string, now time.Time) *Round {
	return &Round{
		Number:    number,
		Category:  category,
		Word:      word,
		SpyID:     spyID,
		TurnOrder: turnOrder,
		Votes:     make(map[string]string),
		StartedAt: now,
	}
}

// CurrentTurn returns the ID of the player whose turn it is to flip
func (r *Round) CurrentTurn() string {
	if r.TurnCursor >= len(r.TurnOrder) {
		return ""
	}
	return r.TurnOrder[r.TurnCursor]
}

// IsPlayerTurn checks if it's the given player's turn to flip
func (r *Round) IsPlayerTurn(playerID string) bool {
	return r.CurrentTurn() == playerID
}

// RoleCardFor returns the card for one player; only that player may see it
func (r *Round) RoleCardFor(playerID string) RoleCard {
	return NewRoleCard(playerID == r.SpyID, r.Word)
}

// HasVoted checks if a player has already voted
func (r *Round) HasVoted(playerID string) bool {
	_, ok := r.Votes[playerID]
	return ok
}

// HasDeadline reports whether a discussion deadline is pending
func (r *Round) HasDeadline() bool {
	return !r.EndsAt.IsZero()
}

// DeadlinePassed reports whether the discussion deadline has been reached
func (r *Round) DeadlinePassed(now time.Time) bool {
	return r.HasDeadline() && !now.Before(r.EndsAt)
}
