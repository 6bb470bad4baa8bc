package domain

// RoleCard is the private half of a game assignment. Word is nil for the spy
// and serializes as null.
type RoleCard struct {
	IsSpy bool    `json:"isSpy"`
	Word  *string `json:"word"`
}

// NewRoleCard builds the card for one player
func NewRoleCard(isSpy bool, word string) RoleCard {
	if isSpy {
		return RoleCard{IsSpy: true}
	}
	w := word
	return RoleCard{Word: &w}
}
