package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniformSpyPicker(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	candidates := []string{"a", "b", "c"}

	seen := make(map[string]int)
	for i := 0; i < 300; i++ {
		seen[UniformSpyPicker{}.PickSpy(rng, candidates, nil)]++
	}

	for _, id := range candidates {
		assert.Greater(t, seen[id], 0, "candidate %s never picked", id)
	}
}

func TestFairSpyPicker_FavorsFreshPlayers(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	candidates := []string{"a", "b", "c"}
	history := []string{"a", "a", "a", "a", "a", "a", "a", "a"}

	seen := make(map[string]int)
	for i := 0; i < 1000; i++ {
		seen[FairSpyPicker{}.PickSpy(rng, candidates, history)]++
	}

	// weights are a:1, b:9, c:9
	assert.Less(t, seen["a"], seen["b"])
	assert.Less(t, seen["a"], seen["c"])
}

func TestGamesSinceSpy(t *testing.T) {
	history := []string{"a", "b", "a", "c"}

	assert.Equal(t, 2, gamesSinceSpy("a", history))
	assert.Equal(t, 3, gamesSinceSpy("b", history))
	assert.Equal(t, 1, gamesSinceSpy("c", history))
	assert.Equal(t, 5, gamesSinceSpy("d", history))
}
