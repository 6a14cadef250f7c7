package restock

import (
	"errors"
	"testing"

	"github.com/andresuchdata/restock-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_SalesShortfall(t *testing.T) {
	e := NewEngine(DefaultConfig())
	records := []domain.InventoryRecord{
		inv("A", "P-1-01", 30),
		withDays(withLPN(inv("A", "R-1-03", 80), "LPN-9"), 10),
	}
	lines := []domain.SalesLine{{SKU: "A", ConfirmedQty: dec(100)}}

	result := e.AnalyzeSales(records, lines)
	require.Len(t, result.Suggestions, 1)

	s := result.Suggestions[0]
	assert.Equal(t, "A", s.SKU)
	assertDecimal(t, dec(100), s.QuantitySold)
	assertDecimal(t, dec(30), s.QuantityAvailable)
	assertDecimal(t, dec(80), s.QuantityToRestock)
	require.Len(t, s.SuggestedLocations, 1)
	assert.Equal(t, "R-1-03", s.SuggestedLocations[0].Location)
	assert.Equal(t, "LPN-9", s.SuggestedLocations[0].LPN)
	assertDecimal(t, dec(80), s.SuggestedLocations[0].Quantity)
	assert.Equal(t, 10, *s.SuggestedLocations[0].DaysToExpiry)

	assert.Empty(t, result.MissingProducts)
	assert.Equal(t, ModeSales, result.Mode)
	assert.Equal(t, Summary{Evaluated: 1, NeedsRestock: 1, UsableRecords: 2}, result.Summary)
}

func TestEngine_LevelsPartialPull(t *testing.T) {
	e := NewEngine(DefaultConfig())
	records := []domain.InventoryRecord{
		inv("B", "P-1-05", 5),
		withDays(inv("B", "R-2-03", 60), 20),
		withDays(inv("B", "R-1-03", 60), 5),
	}
	rules := []domain.MinMaxRule{{SKU: "B", Location: "P-1-05", LPN: "DEST", MinQty: dec(10), MaxQty: dec(50)}}

	result := e.AnalyzeLevels(records, rules)
	require.Len(t, result.Suggestions, 1)

	s := result.Suggestions[0]
	assertDecimal(t, dec(5), s.QuantityAvailable)
	assertDecimal(t, dec(45), s.QuantityToRestock)
	assert.True(t, s.QuantitySold.IsZero())
	assert.Equal(t, "DEST", s.DestinationLPN)
	assert.Equal(t, "P-1-05", s.DestinationLocation)
	require.Len(t, s.SuggestedLocations, 1)
	assert.Equal(t, "R-1-03", s.SuggestedLocations[0].Location)
	assertDecimal(t, dec(45), s.SuggestedLocations[0].Quantity)
	assert.Equal(t, ModeLevels, result.Mode)
}

func TestEngine_LevelsInvertedRule(t *testing.T) {
	e := NewEngine(DefaultConfig())
	records := []domain.InventoryRecord{
		inv("B", "P-1-00", 5),
		withDays(inv("B", "R-1-03", 60), 5),
	}
	rules := []domain.MinMaxRule{{SKU: "B", Location: "P-1-00", MinQty: dec(10), MaxQty: dec(3)}}

	result := e.AnalyzeLevels(records, rules)
	require.Len(t, result.Suggestions, 1)

	s := result.Suggestions[0]
	assert.True(t, s.QuantityToRestock.IsZero())
	assert.Empty(t, s.SuggestedLocations)
	assert.Equal(t, "P-1-00", s.DestinationLocation)

	assert.Equal(t, 0, result.Summary.NoSource)
	assert.Equal(t, 1, result.Summary.InvertedRules)
	assert.Equal(t, []string{"B@P-1-00"}, result.InvertedRules)
}

func TestEngine_MissingProduct(t *testing.T) {
	e := NewEngine(DefaultConfig())
	records := []domain.InventoryRecord{inv("A", "P-1-01", 30)}
	lines := []domain.SalesLine{
		{SKU: "z", Description: "Gadget", ConfirmedQty: dec(4)},
		{SKU: "A", ConfirmedQty: dec(1)},
		{SKU: " Z ", ConfirmedQty: dec(6)},
		{SKU: "Y", ConfirmedQty: dec(2)},
	}

	result := e.AnalyzeSales(records, lines)
	require.Len(t, result.MissingProducts, 2)
	assert.Equal(t, "Z", result.MissingProducts[0].SKU)
	assert.Equal(t, "Gadget", result.MissingProducts[0].Description)
	assertDecimal(t, dec(10), result.MissingProducts[0].QuantitySold)
	assert.Equal(t, "Y", result.MissingProducts[1].SKU)

	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, "A", result.Suggestions[0].SKU)
	assert.False(t, result.Suggestions[0].NeedsRestock())
}

func TestEngine_SalesOKListsPickingLocations(t *testing.T) {
	e := NewEngine(DefaultConfig())
	records := []domain.InventoryRecord{
		inv("A", "P-2-01", 4),
		inv("A", "P-1-00", 6),
		inv("A", "R-1-03", 50),
	}
	result := e.AnalyzeSales(records, []domain.SalesLine{{SKU: "A", ConfirmedQty: dec(10)}})

	require.Len(t, result.Suggestions, 1)
	s := result.Suggestions[0]
	assert.True(t, s.QuantityToRestock.IsZero())
	assertDecimal(t, dec(10), s.QuantityAvailable)
	require.Len(t, s.SuggestedLocations, 2)
	assert.Equal(t, "P-2-01", s.SuggestedLocations[0].Location)
	assert.Equal(t, "P-1-00", s.SuggestedLocations[1].Location)
}

func TestEngine_SalesShortWithoutReserveIsUnmatched(t *testing.T) {
	e := NewEngine(DefaultConfig())
	records := []domain.InventoryRecord{inv("A", "P-1-01", 3), inv("A", "X-1-Z", 100)}

	result := e.AnalyzeSales(records, []domain.SalesLine{{SKU: "A", ConfirmedQty: dec(10)}})

	assert.Empty(t, result.Suggestions)
	assert.Empty(t, result.MissingProducts)
	assert.Equal(t, []string{"A"}, result.UnmatchedSKUs)
	assert.Equal(t, 1, result.Summary.Unmatched)
	assert.Equal(t, 1, result.Summary.Evaluated)
}

func TestEngine_LevelsRulesAreIndependent(t *testing.T) {
	e := NewEngine(DefaultConfig())
	records := []domain.InventoryRecord{
		inv("B", "P-1-01", 20),
		inv("B", "R-1-03", 30),
	}
	rules := []domain.MinMaxRule{
		{SKU: "B", Location: "P-1-01", MinQty: dec(10), MaxQty: dec(40)},
		{SKU: "B", Location: "P-9-01", LPN: "L2", MinQty: dec(10), MaxQty: dec(25)},
		{SKU: "B", Location: "P-9-01", LPN: "L3", MinQty: dec(10), MaxQty: dec(25)},
		{SKU: "NOPE", Location: "P-1-01", MinQty: dec(10), MaxQty: dec(25)},
	}

	result := e.AnalyzeLevels(records, rules)
	require.Len(t, result.Suggestions, 4)
	assert.Equal(t, 4, result.Summary.Evaluated)
	assert.Equal(t, 2, result.Summary.NeedsRestock)
	assert.Equal(t, 2, result.Summary.OK)

	first, second := result.Suggestions[0], result.Suggestions[1]
	assert.Equal(t, "L2", first.DestinationLPN)
	assert.Equal(t, "L3", second.DestinationLPN)
	assertDecimal(t, dec(25), first.QuantityToRestock)
	assertDecimal(t, dec(25), second.QuantityToRestock)

	ok := result.Suggestions[2]
	assert.Equal(t, "B", ok.SKU)
	require.Len(t, ok.SuggestedLocations, 1)
	assert.Equal(t, "P-1-01", ok.SuggestedLocations[0].Location)
	assertDecimal(t, dec(20), ok.SuggestedLocations[0].Quantity)

	unknown := result.Suggestions[3]
	assert.Equal(t, "NOPE", unknown.SKU)
	assert.True(t, unknown.SuggestedLocations[0].Quantity.IsZero())
}

type stubStrategy struct {
	match MatchResult
}

func (s stubStrategy) Mode() Mode { return ModeSales }
func (s stubStrategy) MatchDemand(Stock) MatchResult { return s.match }
func (s stubStrategy) Allocate(c Candidate) Allocation { return AllocateFullLocations(c) }

func TestEngine_NoSourceCounted(t *testing.T) {
	e := NewEngine(DefaultConfig())
	strategy := stubStrategy{match: MatchResult{
		Evaluated:  2,
		Candidates: []Candidate{
			{SKU: "C", AmountNeeded: dec(3), PickingStock: dec(1)},
			{SKU: "D", AmountNeeded: dec(3), ReserveLocations: []LocationStock{loc("R-1-03", 4, nil, nil)}},
		},
	}}

	result := e.Run(nil, strategy)
	require.Len(t, result.Suggestions, 2)
	assert.Equal(t, 2, result.Summary.NeedsRestock)
	assert.Equal(t, 1, result.Summary.NoSource)

	// D has a positive quantity so it ranks ahead of the sourceless C.
	assert.Equal(t, "D", result.Suggestions[0].SKU)
	noSource := result.Suggestions[1]
	assert.Equal(t, "C", noSource.SKU)
	assert.NotNil(t, noSource.SuggestedLocations)
	assert.Empty(t, noSource.SuggestedLocations)
	assert.True(t, noSource.QuantityToRestock.IsZero())
	assertDecimal(t, dec(1), noSource.QuantityAvailable)
}

func TestEngine_UnusableRecordsCounted(t *testing.T) {
	e := NewEngine(DefaultConfig())
	records := []domain.InventoryRecord{
		inv("A", "P-1-01", 1),
		inv("A", "DOCK", 1),
		{SKU: "A", Location: "P-1-01", AvailableQty: dec(1), Status: "DAMAGED"},
	}
	result := e.AnalyzeSales(records, nil)
	assert.Equal(t, 1, result.Summary.UsableRecords)
	assert.Equal(t, 2, result.Summary.UnusableRecords)
	assert.NotNil(t, result.Suggestions)
	assert.NotNil(t, result.MissingProducts)
}

func TestEngine_Analyze(t *testing.T) {
	e := NewEngine(DefaultConfig())
	in := Input{
		Inventory: []domain.InventoryRecord{inv("A", "P-1-01", 1)},
		Sales:     []domain.SalesLine{{SKU: "A", ConfirmedQty: dec(1)}},
	}

	result, err := e.Analyze(ModeSales, in)
	require.NoError(t, err)
	assert.Len(t, result.Suggestions, 1)

	result, err = e.Analyze(ModeLevels, in)
	require.NoError(t, err)
	assert.Empty(t, result.Suggestions)

	_, err = e.Analyze(Mode("weekly"), in)
	assert.True(t, errors.Is(err, ErrUnknownMode))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Sales ")
	require.NoError(t, err)
	assert.Equal(t, ModeSales, m)

	m, err = ParseMode("LEVELS")
	require.NoError(t, err)
	assert.Equal(t, ModeLevels, m)

	_, err = ParseMode("minmax")
	assert.ErrorIs(t, err, ErrUnknownMode)
}
