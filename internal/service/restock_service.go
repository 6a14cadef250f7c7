package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/restock-engine/internal/cache"
	"github.com/andresuchdata/restock-engine/internal/domain"
	"github.com/andresuchdata/restock-engine/internal/metrics"
	"github.com/andresuchdata/restock-engine/internal/restock"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrAllRejected is returned when an input carried records and none of them passed validation.
var ErrAllRejected = errors.New("every record of an input was rejected")

const (
	kindCrossCheck = "crosscheck"
	kindShelfLife  = "shelf-life"
)

// AnalysisRequest is the input of a sales or levels analysis.
type AnalysisRequest struct {
	Inventory []domain.InventoryRecord `json:"inventory"`
	Sales     []domain.SalesLine       `json:"sales,omitempty"`
	MinMax    []domain.MinMaxRule      `json:"min_max,omitempty"`
	Rules     *restock.Config          `json:"rules,omitempty"`
}

// AnalysisResponse wraps an engine result with the run metadata.
type AnalysisResponse struct {
	RunID string `json:"run_id"`
	*restock.Result
	Rejected []domain.ValidationIssue `json:"rejected"`
	Cached   bool                     `json:"cached"`
}

type CrossCheckRequest struct {
	System     []domain.CrossCheckRecord `json:"system"`
	Warehouse  []domain.CrossCheckRecord `json:"warehouse"`
	GroupByLot bool                      `json:"group_by_lot"`
}

type CrossCheckSummary struct {
	Rows           int `json:"rows"`
	WithDifference int `json:"with_difference"`
}

type CrossCheckResponse struct {
	RunID    string                    `json:"run_id"`
	Results  []domain.CrossCheckResult `json:"results"`
	Summary  CrossCheckSummary         `json:"summary"`
	Rejected []domain.ValidationIssue  `json:"rejected"`
	Cached   bool                      `json:"cached"`
}

type ShelfLifeRequest struct {
	Inventory []domain.InventoryRecord `json:"inventory"`
	Limits    []domain.ShelfLifeLimit  `json:"limits"`
}

type ShelfLifeSummary struct {
	Checked      int `json:"checked"`
	NonCompliant int `json:"non_compliant"`
}

type ShelfLifeResponse struct {
	RunID    string                   `json:"run_id"`
	Results  []domain.ShelfLifeResult `json:"results"`
	Summary  ShelfLifeSummary         `json:"summary"`
	Rejected []domain.ValidationIssue `json:"rejected"`
	Cached   bool                     `json:"cached"`
}

// RestockService validates requests, runs the engine and caches the outcome.
type RestockService struct {
	defaults restock.Config
	engine   *restock.Engine
	cache    cache.AnalysisCache
	metrics  *metrics.Metrics
}

func NewRestockService(defaults restock.Config, cacheImpl cache.AnalysisCache, m *metrics.Metrics) *RestockService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalysisCache()
	}
	return &RestockService{
		defaults: defaults,
		engine:   restock.NewEngine(defaults),
		cache:    cacheImpl,
		metrics:  m,
	}
}

// Rules returns the server-wide engine configuration.
func (s *RestockService) Rules() restock.Config {
	return s.engine.Config()
}

// Analyze runs a sales or levels analysis. Invalid records are dropped and
// reported in Rejected; the call fails only when a whole input was rejected.
func (s *RestockService) Analyze(ctx context.Context, mode restock.Mode, req AnalysisRequest) (*AnalysisResponse, error) {
	mode, err := restock.ParseMode(string(mode))
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	modeLabel := string(mode)

	inventory, rejected := domain.ValidateInventory("inventory", req.Inventory)
	if err := s.checkRejected(modeLabel, "inventory", len(req.Inventory), len(inventory), rejected); err != nil {
		return nil, err
	}

	in := restock.Input{Inventory: inventory}
	switch mode {
	case restock.ModeSales:
		sales, issues := domain.ValidateSales("sales", req.Sales)
		rejected = append(rejected, issues...)
		if err := s.checkRejected(modeLabel, "sales", len(req.Sales), len(sales), issues); err != nil {
			return nil, err
		}
		in.Sales = sales
	case restock.ModeLevels:
		rules, issues := domain.ValidateRules("min_max", req.MinMax)
		rejected = append(rejected, issues...)
		if err := s.checkRejected(modeLabel, "min_max", len(req.MinMax), len(rules), issues); err != nil {
			return nil, err
		}
		in.Rules = rules
	}
	s.logRejected(runID, rejected)

	engine := s.engineFor(req.Rules)
	key := s.cacheKey(modeLabel, struct {
		Rules restock.Config
		Input restock.Input
	}{engine.Config(), in})

	var cached AnalysisResponse
	if s.lookup(ctx, key, &cached) {
		cached.RunID = runID
		cached.Rejected = nonNilIssues(rejected)
		cached.Cached = true
		s.metrics.RecordAnalysis(modeLabel, metrics.OutcomeCached, 0)
		log.Info().Str("run_id", runID).Str("mode", modeLabel).Msg("restock: served analysis from cache")
		return &cached, nil
	}

	start := time.Now()
	result, err := engine.Analyze(mode, in)
	if err != nil {
		s.metrics.RecordAnalysis(modeLabel, metrics.OutcomeError, 0)
		return nil, err
	}
	duration := time.Since(start)

	s.recordResult(runID, result, duration)

	resp := &AnalysisResponse{
		RunID:    runID,
		Result:   result,
		Rejected: nonNilIssues(rejected),
	}
	s.store(ctx, key, resp)
	return resp, nil
}

func (s *RestockService) AnalyzeSales(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error) {
	return s.Analyze(ctx, restock.ModeSales, req)
}

func (s *RestockService) AnalyzeLevels(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error) {
	return s.Analyze(ctx, restock.ModeLevels, req)
}

// CrossCheck reconciles the system feed against the warehouse feed.
func (s *RestockService) CrossCheck(ctx context.Context, req CrossCheckRequest) (*CrossCheckResponse, error) {
	runID := uuid.NewString()

	system, rejected := domain.ValidateCrossCheck("system", req.System)
	if err := s.checkRejected(kindCrossCheck, "system", len(req.System), len(system), rejected); err != nil {
		return nil, err
	}
	warehouse, issues := domain.ValidateCrossCheck("warehouse", req.Warehouse)
	rejected = append(rejected, issues...)
	if err := s.checkRejected(kindCrossCheck, "warehouse", len(req.Warehouse), len(warehouse), issues); err != nil {
		return nil, err
	}
	s.logRejected(runID, rejected)

	key := s.cacheKey(kindCrossCheck, CrossCheckRequest{System: system, Warehouse: warehouse, GroupByLot: req.GroupByLot})
	var cached CrossCheckResponse
	if s.lookup(ctx, key, &cached) {
		cached.RunID = runID
		cached.Rejected = nonNilIssues(rejected)
		cached.Cached = true
		s.metrics.RecordAnalysis(kindCrossCheck, metrics.OutcomeCached, 0)
		return &cached, nil
	}

	start := time.Now()
	results := restock.CrossCheck(system, warehouse, req.GroupByLot)
	duration := time.Since(start)

	summary := CrossCheckSummary{Rows: len(results)}
	for _, r := range results {
		if !r.Difference.IsZero() {
			summary.WithDifference++
		}
	}

	s.metrics.RecordAnalysis(kindCrossCheck, metrics.OutcomeSuccess, duration)
	s.metrics.RecordSuggestions(kindCrossCheck, "difference", summary.WithDifference)
	log.Info().
		Str("run_id", runID).
		Str("mode", kindCrossCheck).
		Bool("group_by_lot", req.GroupByLot).
		Int("rows", summary.Rows).
		Int("with_difference", summary.WithDifference).
		Dur("duration", duration).
		Msg("restock: cross-check completed")

	resp := &CrossCheckResponse{
		RunID:    runID,
		Results:  results,
		Summary:  summary,
		Rejected: nonNilIssues(rejected),
	}
	s.store(ctx, key, resp)
	return resp, nil
}

// ShelfLife checks every inventory record against its SKU's minimum days limit.
func (s *RestockService) ShelfLife(ctx context.Context, req ShelfLifeRequest) (*ShelfLifeResponse, error) {
	runID := uuid.NewString()

	inventory, rejected := domain.ValidateInventory("inventory", req.Inventory)
	if err := s.checkRejected(kindShelfLife, "inventory", len(req.Inventory), len(inventory), rejected); err != nil {
		return nil, err
	}
	limits, issues := domain.ValidateShelfLifeLimits("limits", req.Limits)
	rejected = append(rejected, issues...)
	if err := s.checkRejected(kindShelfLife, "limits", len(req.Limits), len(limits), issues); err != nil {
		return nil, err
	}
	s.logRejected(runID, rejected)

	key := s.cacheKey(kindShelfLife, ShelfLifeRequest{Inventory: inventory, Limits: limits})
	var cached ShelfLifeResponse
	if s.lookup(ctx, key, &cached) {
		cached.RunID = runID
		cached.Rejected = nonNilIssues(rejected)
		cached.Cached = true
		s.metrics.RecordAnalysis(kindShelfLife, metrics.OutcomeCached, 0)
		return &cached, nil
	}

	start := time.Now()
	results := restock.CheckShelfLife(inventory, limits)
	duration := time.Since(start)

	summary := ShelfLifeSummary{Checked: len(results)}
	for _, r := range results {
		if !r.Compliant {
			summary.NonCompliant++
		}
	}

	s.metrics.RecordAnalysis(kindShelfLife, metrics.OutcomeSuccess, duration)
	s.metrics.RecordSuggestions(kindShelfLife, "non_compliant", summary.NonCompliant)
	log.Info().
		Str("run_id", runID).
		Str("mode", kindShelfLife).
		Int("checked", summary.Checked).
		Int("non_compliant", summary.NonCompliant).
		Dur("duration", duration).
		Msg("restock: shelf-life check completed")

	resp := &ShelfLifeResponse{
		RunID:    runID,
		Results:  results,
		Summary:  summary,
		Rejected: nonNilIssues(rejected),
	}
	s.store(ctx, key, resp)
	return resp, nil
}

// InvalidateCache drops every stored analysis.
func (s *RestockService) InvalidateCache(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

func (s *RestockService) engineFor(override *restock.Config) *restock.Engine {
	if override == nil || override.IsZero() {
		return s.engine
	}
	return restock.NewEngine(s.defaults.Merge(*override))
}

func (s *RestockService) recordResult(runID string, result *restock.Result, duration time.Duration) {
	mode := string(result.Mode)
	sum := result.Summary

	s.metrics.RecordAnalysis(mode, metrics.OutcomeSuccess, duration)
	s.metrics.RecordSuggestions(mode, "restock", sum.NeedsRestock)
	s.metrics.RecordSuggestions(mode, "ok", sum.OK)
	s.metrics.RecordSuggestions(mode, "missing", sum.Missing)
	s.metrics.RecordSuggestions(mode, "unmatched", sum.Unmatched)
	s.metrics.RecordSuggestions(mode, "no_source", sum.NoSource)

	if sum.Unmatched > 0 {
		log.Warn().
			Str("run_id", runID).
			Str("mode", mode).
			Strs("skus", result.UnmatchedSKUs).
			Msg("restock: demand with stock but no picking or reserve quantity was dropped")
	}

	if sum.InvertedRules > 0 {
		log.Warn().
			Str("run_id", runID).
			Str("mode", mode).
			Strs("rules", result.InvertedRules).
			Msg("restock: min/max rules with max below min")
	}

	log.Info().
		Str("run_id", runID).
		Str("mode", mode).
		Int("evaluated", sum.Evaluated).
		Int("needs_restock", sum.NeedsRestock).
		Int("ok", sum.OK).
		Int("missing", sum.Missing).
		Int("unmatched", sum.Unmatched).
		Int("no_source", sum.NoSource).
		Int("usable_records", sum.UsableRecords).
		Int("unusable_records", sum.UnusableRecords).
		Dur("duration", duration).
		Msg("restock: analysis completed")
}

func (s *RestockService) checkRejected(kind, input string, total, valid int, issues []domain.ValidationIssue) error {
	s.metrics.RecordRejected(input, total-valid)
	if total == 0 || valid > 0 {
		return nil
	}
	s.metrics.RecordAnalysis(kind, metrics.OutcomeRejected, 0)
	return fmt.Errorf("%s: %w: %w", input, ErrAllRejected, &domain.ValidationError{Issues: issues})
}

func (s *RestockService) logRejected(runID string, issues []domain.ValidationIssue) {
	for _, issue := range issues {
		log.Warn().
			Str("run_id", runID).
			Str("path", issue.Path).
			Str("reason", issue.Message).
			Msg("restock: record rejected")
	}
}

func (s *RestockService) cacheKey(kind string, payload interface{}) string {
	key, err := cache.BuildKey(kind, payload)
	if err != nil {
		log.Warn().Err(err).Str("kind", kind).Msg("restock: cache key build failed")
		return ""
	}
	return key
}

func (s *RestockService) lookup(ctx context.Context, key string, dest interface{}) bool {
	if key == "" {
		return false
	}
	ok, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("restock: cache get failed")
		return false
	}
	return ok
}

func (s *RestockService) store(ctx context.Context, key string, value interface{}) {
	if key == "" {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("restock: cache set failed")
	}
}

func nonNilIssues(issues []domain.ValidationIssue) []domain.ValidationIssue {
	if issues == nil {
		return []domain.ValidationIssue{}
	}
	return issues
}
