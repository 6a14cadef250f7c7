package restock

import (
	"sort"

	"github.com/andresuchdata/restock-engine/internal/domain"
)

// Rank merges restock and OK items into one list: items with a positive
// quantity to restock first, each group in ascending SKU order.
func Rank(restock, ok []domain.RestockSuggestion) []domain.RestockSuggestion {
	merged := make([]domain.RestockSuggestion, 0, len(restock)+len(ok))
	merged = append(merged, restock...)
	merged = append(merged, ok...)
	sortSuggestions(merged)
	return merged
}

func sortSuggestions(items []domain.RestockSuggestion) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].NeedsRestock(), items[j].NeedsRestock()
		if a != b {
			return a
		}
		return items[i].SKU < items[j].SKU
	})
}
