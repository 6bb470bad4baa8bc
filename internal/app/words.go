package app

import (
	"sort"

	"spygame/internal/domain"
)

// DefaultCategory is used when a host starts a game without choosing one
const DefaultCategory = "food"

// categoryWords is the built-in word bank, grouped by category id
var categoryWords = map[string][]string{
	"food": {
		"pizza", "sushi", "burger", "pasta", "tacos", "pancakes",
		"soup", "salad", "sandwich", "curry", "omelette", "dumplings",
	},
	"animals": {
		"tiger", "elephant", "penguin", "giraffe", "dolphin", "kangaroo",
		"owl", "octopus", "wolf", "camel", "panda", "crocodile",
	},
	"cities": {
		"paris", "tokyo", "london", "rome", "new york", "sydney",
		"cairo", "berlin", "madrid", "rio de janeiro", "istanbul", "moscow",
	},
	"colors": {
		"red", "blue", "green", "yellow", "purple", "orange",
		"pink", "brown", "black", "white", "gray", "turquoise",
	},
	"countries": {
		"italy", "japan", "brazil", "canada", "egypt", "india",
		"mexico", "norway", "kenya", "greece", "argentina", "thailand",
	},
	"sports": {
		"football", "tennis", "basketball", "swimming", "boxing", "golf",
		"volleyball", "skiing", "cycling", "baseball", "rugby", "surfing",
	},
	"professions": {
		"doctor", "teacher", "chef", "pilot", "firefighter", "lawyer",
		"farmer", "dentist", "plumber", "astronaut", "journalist", "architect",
	},
	"tools": {
		"hammer", "screwdriver", "wrench", "saw", "drill", "pliers",
		"shovel", "ladder", "tape measure", "chisel", "axe", "flashlight",
	},
	"transport": {
		"bicycle", "train", "airplane", "submarine", "helicopter", "bus",
		"taxi", "ferry", "tram", "motorcycle", "rocket", "hot air balloon",
	},
	"fruits": {
		"apple", "banana", "mango", "strawberry", "pineapple", "watermelon",
		"cherry", "kiwi", "peach", "grape", "lemon", "coconut",
	},
	"vegetables": {
		"carrot", "potato", "broccoli", "onion", "tomato", "cucumber",
		"pepper", "spinach", "pumpkin", "garlic", "cabbage", "eggplant",
	},
	"clothes": {
		"jacket", "scarf", "sneakers", "hat", "gloves", "dress",
		"jeans", "sweater", "tie", "raincoat", "pajamas", "sandals",
	},
}

// StaticWordBank serves the built-in categories
type StaticWordBank struct {
	categories map[string][]string
}

// NewStaticWordBank returns the built-in word bank
func NewStaticWordBank() *StaticWordBank {
	return &StaticWordBank{categories: categoryWords}
}

// Words returns the candidate words for a category. An empty id resolves to
// DefaultCategory.
func (b *StaticWordBank) Words(categoryID string) (string, []string, error) {
	if categoryID == "" {
		categoryID = DefaultCategory
	}
	words, ok := b.categories[categoryID]
	if !ok || len(words) == 0 {
		return "", nil, domain.ErrUnknownCategory
	}
	return categoryID, words, nil
}

// Categories lists the category ids in alphabetical order
func (b *StaticWordBank) Categories() []string {
	ids := make([]string, 0, len(b.categories))
	for id := range b.categories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
