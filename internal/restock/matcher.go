package restock

import (
	"github.com/andresuchdata/restock-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// Candidate is a demand unit whose picking stock is short while reserve has stock.
type Candidate struct {
	SKU                 string
	Description         string
	QuantitySold        decimal.Decimal
	AmountNeeded        decimal.Decimal
	PickingStock        decimal.Decimal
	ReserveLocations    []LocationStock
	DestinationLPN      string
	DestinationLocation string
}

// MatchResult is the classification of every demand unit of one run.
// Unmatched lists SKUs that fell into none of the other buckets.
// Inverted lists "SKU@location" of min/max rules whose max is below their min.
type MatchResult struct {
	Evaluated  int
	Candidates []Candidate
	OK         []domain.RestockSuggestion
	Missing    []domain.MissingProduct
	Unmatched  []string
	Inverted   []string
}

func newMatchResult() MatchResult {
	return MatchResult{
		Candidates: []Candidate{},
		OK:         []domain.RestockSuggestion{},
		Missing:    []domain.MissingProduct{},
		Unmatched:  []string{},
		Inverted:   []string{},
	}
}

// salesDemand is the per-SKU sum of confirmed sales.
type salesDemand struct {
	SKU         string
	Description string
	Quantity    decimal.Decimal
}

// aggregateSales sums lines per normalized SKU, keeping first-seen order.
func aggregateSales(lines []domain.SalesLine) []salesDemand {
	index := make(map[string]int, len(lines))
	demand := make([]salesDemand, 0, len(lines))
	for _, line := range lines {
		sku := Normalize(line.SKU)
		i, ok := index[sku]
		if !ok {
			index[sku] = len(demand)
			demand = append(demand, salesDemand{SKU: sku, Description: line.Description, Quantity: line.ConfirmedQty})
			continue
		}
		demand[i].Quantity = demand[i].Quantity.Add(line.ConfirmedQty)
		if demand[i].Description == "" {
			demand[i].Description = line.Description
		}
	}
	return demand
}

type salesStrategy struct {
	lines []domain.SalesLine
}

// NewSalesStrategy matches summed sales per SKU against all picking stock of
// that SKU and tops up from reserve in whole-location pulls.
func NewSalesStrategy(lines []domain.SalesLine) Strategy {
	return &salesStrategy{lines: lines}
}

func (s *salesStrategy) Mode() Mode {
	return ModeSales
}

func (s *salesStrategy) MatchDemand(stock Stock) MatchResult {
	result := newMatchResult()
	for _, d := range aggregateSales(s.lines) {
		result.Evaluated++

		agg, ok := stock.BySKU[d.SKU]
		if !ok {
			result.Missing = append(result.Missing, domain.MissingProduct{
				SKU:          d.SKU,
				Description:  d.Description,
				QuantitySold: d.Quantity,
			})
			continue
		}

		description := agg.Description
		if description == "" {
			description = d.Description
		}

		switch {
		case agg.TotalPicking.LessThan(d.Quantity) && agg.TotalReserve.IsPositive():
			result.Candidates = append(result.Candidates, Candidate{
				SKU:              d.SKU,
				Description:      description,
				QuantitySold:     d.Quantity,
				AmountNeeded:     d.Quantity,
				PickingStock:     agg.TotalPicking,
				ReserveLocations: positiveOnly(agg.ReserveLocations),
			})
		case agg.TotalPicking.GreaterThanOrEqual(d.Quantity):
			locations := make([]domain.SuggestedLocation, 0, len(agg.PickingLocations))
			for _, l := range agg.PickingLocations {
				locations = append(locations, l.suggested(l.Available))
			}
			result.OK = append(result.OK, domain.RestockSuggestion{
				SKU:                d.SKU,
				Description:        description,
				QuantitySold:       d.Quantity,
				QuantityAvailable:  agg.TotalPicking,
				QuantityToRestock:  decimal.Zero,
				SuggestedLocations: locations,
			})
		default:
			// Picking short and reserve empty: reported in no list.
			result.Unmatched = append(result.Unmatched, d.SKU)
		}
	}
	return result
}

func (s *salesStrategy) Allocate(c Candidate) Allocation {
	return AllocateFullLocations(c)
}

type levelsStrategy struct {
	rules []domain.MinMaxRule
}

// NewLevelsStrategy evaluates every min/max rule on its own slot and fills
// the slot up to max with exact partial pulls from reserve.
func NewLevelsStrategy(rules []domain.MinMaxRule) Strategy {
	return &levelsStrategy{rules: rules}
}

func (s *levelsStrategy) Mode() Mode {
	return ModeLevels
}

func (s *levelsStrategy) MatchDemand(stock Stock) MatchResult {
	result := newMatchResult()
	for _, rule := range s.rules {
		result.Evaluated++

		sku := Normalize(rule.SKU)
		if rule.MaxQty.LessThan(rule.MinQty) {
			result.Inverted = append(result.Inverted, sku+"@"+Normalize(rule.Location))
		}
		current := stock.ByLocation[LocationKey(rule.SKU, rule.Location)]
		agg, ok := stock.BySKU[sku]

		if ok && current.LessThan(rule.MinQty) && agg.TotalReserve.IsPositive() {
			result.Candidates = append(result.Candidates, Candidate{
				SKU:                 sku,
				Description:         agg.Description,
				QuantitySold:        decimal.Zero,
				AmountNeeded:        rule.MaxQty.Sub(current),
				PickingStock:        current,
				ReserveLocations:    positiveOnly(agg.ReserveLocations),
				DestinationLPN:      rule.LPN,
				DestinationLocation: rule.Location,
			})
			continue
		}

		description := ""
		if ok {
			description = agg.Description
		}
		result.OK = append(result.OK, domain.RestockSuggestion{
			SKU:               sku,
			Description:       description,
			QuantitySold:      decimal.Zero,
			QuantityAvailable: current,
			QuantityToRestock: decimal.Zero,
			SuggestedLocations: []domain.SuggestedLocation{{
				LPN:      rule.LPN,
				Location: rule.Location,
				Quantity: current,
			}},
		})
	}
	return result
}

func (s *levelsStrategy) Allocate(c Candidate) Allocation {
	return AllocateExact(c)
}
