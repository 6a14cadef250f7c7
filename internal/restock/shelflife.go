package restock

import (
	"sort"

	"github.com/andresuchdata/restock-engine/internal/domain"
)

// ShelfLifeLimits indexes master limits by normalized SKU. A later entry
// for the same SKU replaces an earlier one.
func ShelfLifeLimits(limits []domain.ShelfLifeLimit) map[string]int {
	index := make(map[string]int, len(limits))
	for _, l := range limits {
		index[Normalize(l.SKU)] = l.MinDays
	}
	return index
}

// CheckShelfLife evaluates every inventory record against its SKU's limit,
// defaulting to 0 days. A record is compliant when its days to expiry do not
// exceed the limit; unknown days to expiry compare as 0.
// Non-compliant records sort first, then by days to expiry descending.
func CheckShelfLife(records []domain.InventoryRecord, limits []domain.ShelfLifeLimit) []domain.ShelfLifeResult {
	index := ShelfLifeLimits(limits)

	results := make([]domain.ShelfLifeResult, 0, len(records))
	for _, r := range records {
		required := index[Normalize(r.SKU)]
		days := 0
		if r.DaysToExpiry != nil {
			days = *r.DaysToExpiry
		}
		results = append(results, domain.ShelfLifeResult{
			SKU:          Normalize(r.SKU),
			Lot:          r.Lot,
			LPN:          r.LicensePlate,
			Description:  r.Description,
			Location:     r.Location,
			Quantity:     r.AvailableQty,
			DaysToExpiry: r.DaysToExpiry,
			RequiredDays: required,
			Compliant:    days <= required,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Compliant != b.Compliant {
			return !a.Compliant
		}
		return daysDesc(a.DaysToExpiry, b.DaysToExpiry)
	})
	return results
}

// daysDesc orders known days descending with unknown days last.
func daysDesc(a, b *int) bool {
	switch {
	case a != nil && b != nil:
		return *a > *b
	case a != nil:
		return true
	default:
		return false
	}
}
