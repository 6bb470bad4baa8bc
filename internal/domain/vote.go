package domain

// Results is the final tally of a game
type Results struct {
	SpyPlayerID string         `json:"spyPlayerId"`
	Word        string         `json:"word"`
	VoteCounts  map[string]int `json:"voteCounts"`
	AccusedSet  []string       `json:"accusedSet"`
	SpyCaught   bool           `json:"spyCaught"`
}

// Tally counts votes per target. Every player in order gets an entry in
// VoteCounts. AccusedSet holds every player tied for the maximum count, in
// order; the spy is caught when they are a member of that set.
func Tally(votes map[string]string, spyID, word string, order []string) *Results {
	counts := make(map[string]int, len(order))
	for _, id := range order {
		counts[id] = 0
	}
	for _, target := range votes {
		counts[target]++
	}

	maxVotes := 0
	for _, n := range counts {
		if n > maxVotes {
			maxVotes = n
		}
	}

	accused := make([]string, 0)
	if maxVotes > 0 {
		for _, id := range order {
			if counts[id] == maxVotes {
				accused = append(accused, id)
			}
		}
	}

	caught := false
	for _, id := range accused {
		if id == spyID {
			caught = true
			break
		}
	}

	return &Results{
		SpyPlayerID: spyID,
		Word:        word,
		VoteCounts:  counts,
		AccusedSet:  accused,
		SpyCaught:   caught,
	}
}
