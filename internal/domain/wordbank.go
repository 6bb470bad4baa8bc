package domain

// WordBank resolves a category id to its candidate words. An empty id resolves
// to the bank's default category, which is returned as the first value.
type WordBank interface {
	Words(categoryID string) (string, []string, error)
}
