package domain

// Phase represents the current phase of a room
type Phase string

const (
	PhaseLobby        Phase = "lobby"         // Waiting for players to join
	PhaseCardFlipping Phase = "card-flipping" // Players reveal their cards in turn order
	PhaseQuestions    Phase = "questions"     // Discussion window with a shared deadline
	PhaseVoting       Phase = "voting"        // Everyone votes once
	PhaseResults      Phase = "results"       // Spy, word and tally revealed
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// InGame reports whether a game is running in this phase.
func (p Phase) InGame() bool {
	return p == PhaseCardFlipping || p == PhaseQuestions || p == PhaseVoting
}

// Each phase has exactly one successor; results -> lobby is the only backward edge.
var nextPhase = map[Phase]Phase{
	PhaseLobby:        PhaseCardFlipping,
	PhaseCardFlipping: PhaseQuestions,
	PhaseQuestions:    PhaseVoting,
	PhaseVoting:       PhaseResults,
	PhaseResults:      PhaseLobby,
}

// CanTransitionTo checks if a transition from current phase to target phase is valid
func (p Phase) CanTransitionTo(target Phase) bool {
	next, ok := nextPhase[p]
	return ok && next == target
}
