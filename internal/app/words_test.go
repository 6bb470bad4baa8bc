package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spygame/internal/domain"
)

func TestStaticWordBank_Words(t *testing.T) {
	bank := NewStaticWordBank()

	category, words, err := bank.Words("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCategory, category)
	assert.NotEmpty(t, words)

	category, words, err = bank.Words("animals")
	require.NoError(t, err)
	assert.Equal(t, "animals", category)
	assert.Contains(t, words, "tiger")

	_, _, err = bank.Words("spaceships")
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
}

func TestStaticWordBank_Categories(t *testing.T) {
	bank := NewStaticWordBank()
	categories := bank.Categories()

	assert.Len(t, categories, 12)
	assert.IsIncreasing(t, categories)
	for _, id := range categories {
		_, words, err := bank.Words(id)
		require.NoError(t, err)
		assert.Len(t, words, 12, "category %s", id)
	}
}
