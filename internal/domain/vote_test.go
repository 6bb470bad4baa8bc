package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTally(t *testing.T) {
	order := []string{"a", "b", "c", "d"}

	tests := []struct {
		name        string
		votes       map[string]string
		spy         string
		wantAccused []string
		wantCaught  bool
	}{
		{
			name:        "clear majority on spy",
			votes:       map[string]string{"a": "b", "b": "c", "c": "b", "d": "b"},
			spy:         "b",
			wantAccused: []string{"b"},
			wantCaught:  true,
		},
		{
			name:        "majority misses spy",
			votes:       map[string]string{"a": "c", "b": "c", "c": "a", "d": "c"},
			spy:         "d",
			wantAccused: []string{"c"},
			wantCaught:  false,
		},
		{
			name:        "tie including spy",
			votes:       map[string]string{"a": "b", "b": "a", "c": "b", "d": "a"},
			spy:         "a",
			wantAccused: []string{"a", "b"},
			wantCaught:  true,
		},
		{
			name:        "no votes",
			votes:       map[string]string{},
			spy:         "a",
			wantAccused: []string{},
			wantCaught:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Tally(tt.votes, tt.spy, "pizza", order)

			assert.Equal(t, tt.wantAccused, res.AccusedSet)
			assert.Equal(t, tt.wantCaught, res.SpyCaught)
			assert.Equal(t, tt.spy, res.SpyPlayerID)
			assert.Equal(t, "pizza", res.Word)
			assert.Len(t, res.VoteCounts, len(order))
		})
	}
}
