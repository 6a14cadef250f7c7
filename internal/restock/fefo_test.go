package restock

import (
	"testing"

	"github.com/andresuchdata/restock-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loc(name string, qty int64, days *int, date *domain.Date) LocationStock {
	return LocationStock{Location: name, Available: dec(qty), DaysToExpiry: days, ExpirationDate: date}
}

func locationNames(locations []LocationStock) []string {
	names := make([]string, 0, len(locations))
	for _, l := range locations {
		names = append(names, l.Location)
	}
	return names
}

func TestSortFEFO(t *testing.T) {
	early := domain.NewDate(2026, 1, 10).Ptr()
	late := domain.NewDate(2026, 6, 1).Ptr()
	zero := &domain.Date{}

	t.Run("days ascending with unknown days last", func(t *testing.T) {
		in := []LocationStock{
			loc("nil", 1, nil, nil),
			loc("d20", 1, domain.IntPtr(20), nil),
			loc("d5", 1, domain.IntPtr(5), nil),
			loc("neg", 1, domain.IntPtr(-3), nil),
		}
		assert.Equal(t, []string{"neg", "d5", "d20", "nil"}, locationNames(SortFEFO(in)))
	})

	t.Run("date breaks equal days", func(t *testing.T) {
		in := []LocationStock{
			loc("late", 1, domain.IntPtr(7), late),
			loc("nodate", 1, domain.IntPtr(7), nil),
			loc("early", 1, domain.IntPtr(7), early),
		}
		assert.Equal(t, []string{"early", "late", "nodate"}, locationNames(SortFEFO(in)))
	})

	t.Run("date breaks both unknown days", func(t *testing.T) {
		in := []LocationStock{
			loc("zero", 1, nil, zero),
			loc("late", 1, nil, late),
			loc("early", 1, nil, early),
		}
		assert.Equal(t, []string{"early", "late", "zero"}, locationNames(SortFEFO(in)))
	})

	t.Run("known days beat any date", func(t *testing.T) {
		in := []LocationStock{
			loc("dated", 1, nil, early),
			loc("d100", 1, domain.IntPtr(100), nil),
		}
		assert.Equal(t, []string{"d100", "dated"}, locationNames(SortFEFO(in)))
	})

	t.Run("full ties keep input order", func(t *testing.T) {
		in := []LocationStock{
			loc("first", 1, domain.IntPtr(3), early),
			loc("second", 2, domain.IntPtr(3), early),
			loc("third", 3, nil, nil),
			loc("fourth", 4, nil, nil),
		}
		assert.Equal(t, []string{"first", "second", "third", "fourth"}, locationNames(SortFEFO(in)))
	})

	t.Run("input is not modified", func(t *testing.T) {
		in := []LocationStock{
			loc("b", 1, domain.IntPtr(9), nil),
			loc("a", 1, domain.IntPtr(1), nil),
		}
		SortFEFO(in)
		assert.Equal(t, []string{"b", "a"}, locationNames(in))
	})
}

func TestAllocateFullLocations(t *testing.T) {
	reserve := []LocationStock{
		loc("R-3", 50, domain.IntPtr(30), nil),
		loc("R-1", 40, domain.IntPtr(10), nil),
		loc("R-2", 25, domain.IntPtr(20), nil),
	}

	t.Run("takes whole locations until the need is covered", func(t *testing.T) {
		alloc := AllocateFullLocations(Candidate{AmountNeeded: dec(50), ReserveLocations: reserve})
		require.Len(t, alloc.SuggestedLocations, 2)
		assert.Equal(t, "R-1", alloc.SuggestedLocations[0].Location)
		assertDecimal(t, dec(40), alloc.SuggestedLocations[0].Quantity)
		assert.Equal(t, "R-2", alloc.SuggestedLocations[1].Location)
		assertDecimal(t, dec(25), alloc.SuggestedLocations[1].Quantity)
		assertDecimal(t, dec(65), alloc.QuantityToRestock)
	})

	t.Run("exact match pulls the next location", func(t *testing.T) {
		alloc := AllocateFullLocations(Candidate{AmountNeeded: dec(40), ReserveLocations: reserve})
		require.Len(t, alloc.SuggestedLocations, 2)
		assert.Equal(t, "R-2", alloc.SuggestedLocations[1].Location)
		assertDecimal(t, dec(65), alloc.QuantityToRestock)
	})

	t.Run("exact match on the first of two", func(t *testing.T) {
		pool := []LocationStock{
			loc("R-B", 30, domain.IntPtr(2), nil),
			loc("R-A", 50, domain.IntPtr(1), nil),
		}
		alloc := AllocateFullLocations(Candidate{AmountNeeded: dec(50), ReserveLocations: pool})
		require.Len(t, alloc.SuggestedLocations, 2)
		assert.Equal(t, []string{"R-A", "R-B"}, []string{alloc.SuggestedLocations[0].Location, alloc.SuggestedLocations[1].Location})
		assertDecimal(t, dec(80), alloc.QuantityToRestock)
	})

	t.Run("negative need takes exactly one location", func(t *testing.T) {
		alloc := AllocateFullLocations(Candidate{AmountNeeded: dec(-5), ReserveLocations: reserve})
		require.Len(t, alloc.SuggestedLocations, 1)
		assertDecimal(t, dec(40), alloc.QuantityToRestock)
	})

	t.Run("takes everything when reserve is short", func(t *testing.T) {
		alloc := AllocateFullLocations(Candidate{AmountNeeded: dec(500), ReserveLocations: reserve})
		assert.Len(t, alloc.SuggestedLocations, 3)
		assertDecimal(t, dec(115), alloc.QuantityToRestock)
	})

	t.Run("zero need takes exactly one location", func(t *testing.T) {
		alloc := AllocateFullLocations(Candidate{AmountNeeded: decimal.Zero, ReserveLocations: reserve})
		require.Len(t, alloc.SuggestedLocations, 1)
		assert.Equal(t, "R-1", alloc.SuggestedLocations[0].Location)
	})

	t.Run("no locations yields empty allocation", func(t *testing.T) {
		alloc := AllocateFullLocations(Candidate{AmountNeeded: dec(10)})
		assert.NotNil(t, alloc.SuggestedLocations)
		assert.Empty(t, alloc.SuggestedLocations)
		assert.True(t, alloc.QuantityToRestock.IsZero())
	})
}

func TestAllocateExact(t *testing.T) {
	reserve := []LocationStock{
		loc("R-2", 25, domain.IntPtr(20), nil),
		loc("R-1", 40, domain.IntPtr(10), nil),
	}

	t.Run("partial pull from the last location", func(t *testing.T) {
		alloc := AllocateExact(Candidate{AmountNeeded: dec(50), ReserveLocations: reserve})
		require.Len(t, alloc.SuggestedLocations, 2)
		assertDecimal(t, dec(40), alloc.SuggestedLocations[0].Quantity)
		assert.Equal(t, "R-2", alloc.SuggestedLocations[1].Location)
		assertDecimal(t, dec(10), alloc.SuggestedLocations[1].Quantity)
		assertDecimal(t, dec(50), alloc.QuantityToRestock)
	})

	t.Run("zero need takes nothing", func(t *testing.T) {
		alloc := AllocateExact(Candidate{AmountNeeded: decimal.Zero, ReserveLocations: reserve})
		assert.Empty(t, alloc.SuggestedLocations)
		assert.True(t, alloc.QuantityToRestock.IsZero())
	})

	t.Run("fractional quantities stay exact", func(t *testing.T) {
		frac := []LocationStock{
			{Location: "R-1", Available: decimal.RequireFromString("0.1"), DaysToExpiry: domain.IntPtr(1)},
			{Location: "R-2", Available: decimal.RequireFromString("0.2"), DaysToExpiry: domain.IntPtr(2)},
		}
		alloc := AllocateExact(Candidate{AmountNeeded: decimal.RequireFromString("0.3"), ReserveLocations: frac})
		assertDecimal(t, decimal.RequireFromString("0.3"), alloc.QuantityToRestock)
	})
}

func TestAllocationProperties(t *testing.T) {
	pools := [][]LocationStock{
		{loc("a", 10, domain.IntPtr(1), nil)},
		{loc("a", 10, domain.IntPtr(3), nil), loc("b", 5, domain.IntPtr(1), nil), loc("c", 7, nil, nil)},
		{loc("a", 1, nil, nil), loc("b", 1, nil, nil), loc("c", 1, nil, nil), loc("d", 100, domain.IntPtr(0), nil)},
		{loc("a", 33, domain.IntPtr(9), nil), loc("b", 33, domain.IntPtr(9), nil)},
	}
	needs := []int64{-5, 0, 1, 5, 10, 15, 22, 23, 66, 103, 1000}

	for _, pool := range pools {
		available := sumAvailable(pool)
		for _, n := range needs {
			need := dec(n)
			floor := decimal.Min(need, available)

			exact := AllocateExact(Candidate{AmountNeeded: need, ReserveLocations: pool})
			if need.IsPositive() {
				assertDecimal(t, floor, sumSuggested(exact.SuggestedLocations), "levels need", n)
			} else {
				assert.True(t, sumSuggested(exact.SuggestedLocations).IsZero())
			}
			assertDecimal(t, exact.QuantityToRestock, sumSuggested(exact.SuggestedLocations))

			full := AllocateFullLocations(Candidate{AmountNeeded: need, ReserveLocations: pool})
			total := sumSuggested(full.SuggestedLocations)
			assertDecimal(t, full.QuantityToRestock, total)
			assert.True(t, total.GreaterThanOrEqual(floor), "sales need %d: %s < %s", n, total, floor)
			if total.GreaterThan(floor) && need.IsPositive() {
				last := full.SuggestedLocations[len(full.SuggestedLocations)-1].Quantity
				assert.True(t, total.Sub(last).LessThanOrEqual(need), "sales need %d over-allocated before last location", n)
			}
		}
	}
}
