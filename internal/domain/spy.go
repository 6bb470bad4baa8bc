package domain

import "math/rand"

// SpyPicker chooses the spy for a new game. history lists previous spies,
// oldest first.
type SpyPicker interface {
	PickSpy(rng *rand.Rand, candidates []string, history []string) string
}

// UniformSpyPicker picks every candidate with equal probability
type UniformSpyPicker struct{}

func (UniformSpyPicker) PickSpy(rng *rand.Rand, candidates []string, _ []string) string {
	return candidates[rng.Intn(len(candidates))]
}

// FairSpyPicker biases selection toward players who were spy least recently.
// A player's weight is the number of games since they were last spy; players
// who never were get len(history)+1.
type FairSpyPicker struct{}

func (FairSpyPicker) PickSpy(rng *rand.Rand, candidates []string, history []string) string {
	weights := make([]int, len(candidates))
	total := 0
	for i, id := range candidates {
		weights[i] = gamesSinceSpy(id, history)
		total += weights[i]
	}

	n := rng.Intn(total)
	for i, w := range weights {
		if n < w {
			return candidates[i]
		}
		n -= w
	}
	return candidates[len(candidates)-1]
}

func gamesSinceSpy(playerID string, history []string) int {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i] == playerID {
			return len(history) - i
		}
	}
	return len(history) + 1
}
