package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhase_CanTransitionTo(t *testing.T) {
	all := []Phase{PhaseLobby, PhaseCardFlipping, PhaseQuestions, PhaseVoting, PhaseResults}
	allowed := map[string]bool{
		"lobby>card-flipping":     true,
		"card-flipping>questions": true,
		"questions>voting":        true,
		"voting>results":          true,
		"results>lobby":           true,
	}

	for _, from := range all {
		for _, to := range all {
			key := fmt.Sprintf("%s>%s", from, to)
			assert.Equal(t, allowed[key], from.CanTransitionTo(to), key)
		}
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindRoomFull, KindOf(ErrRoomFull))
	assert.Equal(t, KindNotYourTurn, KindOf(fmt.Errorf("flip: %w", ErrNotYourTurn)))
	assert.Equal(t, KindInternal, KindOf(ErrInvalidTransition))
	assert.True(t, IsRejection(ErrAlreadyVoted))
	assert.False(t, IsRejection(fmt.Errorf("boom")))
}
