package restock

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/restock-engine/internal/domain"
)

// Mode selects the demand signal of an analysis.
type Mode string

const (
	ModeSales  Mode = "sales"
	ModeLevels Mode = "levels"
)

// ErrUnknownMode is returned for an analysis mode other than sales or levels.
var ErrUnknownMode = errors.New("unknown analysis mode")

// ParseMode accepts a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSales:
		return ModeSales, nil
	case ModeLevels:
		return ModeLevels, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Strategy is the mode-specific part of an analysis: how demand is matched
// against aggregated stock and how reserve is allocated to a candidate.
type Strategy interface {
	Mode() Mode
	MatchDemand(stock Stock) MatchResult
	Allocate(c Candidate) Allocation
}

// Summary counts what happened to every demand unit and inventory record.
// Unmatched demand units appear in no output list.
// NoSource counts restock suggestions with a positive need whose allocation
// found no reserve location.
type Summary struct {
	Evaluated       int `json:"evaluated"`
	NeedsRestock    int `json:"needs_restock"`
	OK              int `json:"ok"`
	Missing         int `json:"missing"`
	Unmatched       int `json:"unmatched"`
	NoSource        int `json:"no_source"`
	InvertedRules   int `json:"inverted_rules"`
	UsableRecords   int `json:"usable_records"`
	UnusableRecords int `json:"unusable_records"`
}

// Result is the outcome of one analysis run.
type Result struct {
	Mode            Mode                       `json:"mode"`
	Suggestions     []domain.RestockSuggestion `json:"suggestions"`
	MissingProducts []domain.MissingProduct    `json:"missing_products"`
	UnmatchedSKUs   []string                   `json:"unmatched_skus,omitempty"`
	InvertedRules   []string                   `json:"inverted_rules,omitempty"`
	Summary         Summary                    `json:"summary"`
}

// Engine runs analyses with one fixed rule set. It holds no per-run state,
// so one Engine may serve concurrent calls.
type Engine struct {
	cfg        Config
	aggregator *Aggregator
}

// NewEngine copies cfg into a new Engine.
func NewEngine(cfg Config) *Engine {
	cfg = cfg.clone()
	return &Engine{
		cfg:        cfg,
		aggregator: NewAggregator(cfg),
	}
}

// Config returns a copy of the engine's rules.
func (e *Engine) Config() Config {
	return e.cfg.clone()
}

// Aggregator returns the inventory aggregator of the engine's rules.
func (e *Engine) Aggregator() *Aggregator {
	return e.aggregator
}

// Run aggregates records, lets the strategy match and allocate, and ranks the output.
func (e *Engine) Run(records []domain.InventoryRecord, strategy Strategy) *Result {
	usable := e.aggregator.Filter(records)
	match := strategy.MatchDemand(e.aggregator.stock(usable))

	summary := Summary{
		Evaluated:       match.Evaluated,
		OK:              len(match.OK),
		Missing:         len(match.Missing),
		Unmatched:       len(match.Unmatched),
		InvertedRules:   len(match.Inverted),
		UsableRecords:   len(usable),
		UnusableRecords: len(records) - len(usable),
	}

	restock := make([]domain.RestockSuggestion, 0, len(match.Candidates))
	for _, c := range match.Candidates {
		alloc := strategy.Allocate(c)
		if len(alloc.SuggestedLocations) == 0 && c.AmountNeeded.IsPositive() {
			summary.NoSource++
		}
		restock = append(restock, domain.RestockSuggestion{
			SKU:                 c.SKU,
			Description:         c.Description,
			QuantitySold:        c.QuantitySold,
			QuantityAvailable:   c.PickingStock,
			QuantityToRestock:   alloc.QuantityToRestock,
			SuggestedLocations:  alloc.SuggestedLocations,
			DestinationLPN:      c.DestinationLPN,
			DestinationLocation: c.DestinationLocation,
		})
	}
	summary.NeedsRestock = len(restock)

	return &Result{
		Mode:            strategy.Mode(),
		Suggestions:     Rank(restock, match.OK),
		MissingProducts: match.Missing,
		UnmatchedSKUs:   match.Unmatched,
		InvertedRules:   match.Inverted,
		Summary:         summary,
	}
}

// AnalyzeSales runs a sales-mode analysis.
func (e *Engine) AnalyzeSales(records []domain.InventoryRecord, lines []domain.SalesLine) *Result {
	return e.Run(records, NewSalesStrategy(lines))
}

// AnalyzeLevels runs a levels-mode analysis.
func (e *Engine) AnalyzeLevels(records []domain.InventoryRecord, rules []domain.MinMaxRule) *Result {
	return e.Run(records, NewLevelsStrategy(rules))
}

// Input carries the records of an analysis of either mode.
// Sales is read in sales mode, Rules in levels mode.
type Input struct {
	Inventory []domain.InventoryRecord
	Sales     []domain.SalesLine
	Rules     []domain.MinMaxRule
}

// Analyze dispatches on mode.
func (e *Engine) Analyze(mode Mode, in Input) (*Result, error) {
	switch mode {
	case ModeSales:
		return e.AnalyzeSales(in.Inventory, in.Sales), nil
	case ModeLevels:
		return e.AnalyzeLevels(in.Inventory, in.Rules), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}
