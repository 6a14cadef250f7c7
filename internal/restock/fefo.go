package restock

import (
	"sort"

	"github.com/andresuchdata/restock-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// Allocation is the reserve stock picked for one candidate.
type Allocation struct {
	QuantityToRestock  decimal.Decimal
	SuggestedLocations []domain.SuggestedLocation
}

// SortFEFO returns a copy of locations ordered first-expired-first-out:
// days to expiry ascending, then expiration date ascending, unknown values last.
// Full ties keep their original order.
func SortFEFO(locations []LocationStock) []LocationStock {
	sorted := append([]LocationStock(nil), locations...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return fefoLess(sorted[i], sorted[j])
	})
	return sorted
}

func fefoLess(a, b LocationStock) bool {
	switch {
	case a.DaysToExpiry != nil && b.DaysToExpiry != nil:
		if *a.DaysToExpiry != *b.DaysToExpiry {
			return *a.DaysToExpiry < *b.DaysToExpiry
		}
	case a.DaysToExpiry != nil:
		return true
	case b.DaysToExpiry != nil:
		return false
	}

	aDate, bDate := hasDate(a.ExpirationDate), hasDate(b.ExpirationDate)
	switch {
	case aDate && bDate:
		return a.ExpirationDate.Before(*b.ExpirationDate)
	case aDate:
		return true
	default:
		return false
	}
}

func hasDate(d *domain.Date) bool {
	return d != nil && !d.IsZero()
}

// AllocateFullLocations walks reserve in FEFO order taking each location in
// full until the running total exceeds the amount needed, so an exact match
// still pulls the next location. When nothing is needed exactly one location
// is taken.
func AllocateFullLocations(c Candidate) Allocation {
	alloc := Allocation{
		QuantityToRestock:  decimal.Zero,
		SuggestedLocations: []domain.SuggestedLocation{},
	}
	for _, loc := range SortFEFO(c.ReserveLocations) {
		alloc.QuantityToRestock = alloc.QuantityToRestock.Add(loc.Available)
		alloc.SuggestedLocations = append(alloc.SuggestedLocations, loc.suggested(loc.Available))
		if !c.AmountNeeded.IsPositive() || alloc.QuantityToRestock.GreaterThan(c.AmountNeeded) {
			break
		}
	}
	return alloc
}

// AllocateExact walks reserve in FEFO order pulling only what is still
// needed from each location, so the total never exceeds the need.
func AllocateExact(c Candidate) Allocation {
	alloc := Allocation{
		QuantityToRestock:  decimal.Zero,
		SuggestedLocations: []domain.SuggestedLocation{},
	}
	remaining := c.AmountNeeded
	for _, loc := range SortFEFO(c.ReserveLocations) {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(loc.Available, remaining)
		if !take.IsPositive() {
			continue
		}
		alloc.QuantityToRestock = alloc.QuantityToRestock.Add(take)
		alloc.SuggestedLocations = append(alloc.SuggestedLocations, loc.suggested(take))
		remaining = remaining.Sub(take)
	}
	return alloc
}
