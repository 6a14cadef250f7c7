package restock

import (
	"github.com/andresuchdata/restock-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// locationKeySep joins SKU and location in AggregateByLocation keys.
const locationKeySep = "__"

// LocationStock is the stock of one inventory record inside an aggregate.
type LocationStock struct {
	LPN            string          `json:"lpn,omitempty"`
	Location       string          `json:"location"`
	Available      decimal.Decimal `json:"available"`
	ExpirationDate *domain.Date    `json:"expiration_date,omitempty"`
	DaysToExpiry   *int            `json:"days_to_expiry,omitempty"`
}

func (l LocationStock) suggested(qty decimal.Decimal) domain.SuggestedLocation {
	return domain.SuggestedLocation{
		LPN:            l.LPN,
		Location:       l.Location,
		Quantity:       qty,
		DaysToExpiry:   l.DaysToExpiry,
		ExpirationDate: l.ExpirationDate,
	}
}

// SkuAggregate is the usable stock of one SKU split by location role.
// TotalExcluded holds quantity at locations that are neither picking nor reserve.
type SkuAggregate struct {
	SKU              string
	Description      string
	TotalPicking     decimal.Decimal
	TotalReserve     decimal.Decimal
	TotalExcluded    decimal.Decimal
	PickingLocations []LocationStock
	ReserveLocations []LocationStock
}

// Stock is the aggregated view of one inventory snapshot handed to a Strategy.
type Stock struct {
	BySKU      map[string]*SkuAggregate
	ByLocation map[string]decimal.Decimal
}

// Aggregator filters inventory to usable stock and groups it per SKU.
type Aggregator struct {
	statuses   map[string]struct{}
	denied     map[string]struct{}
	classifier *Classifier
}

// NewAggregator builds an Aggregator for the given rules.
func NewAggregator(cfg Config) *Aggregator {
	return &Aggregator{
		statuses:   toSet(cfg.ValidStatuses),
		denied:     toSet(cfg.IgnoredLocations),
		classifier: NewClassifier(cfg.PickingLevels, cfg.ReserveLevels, cfg.ReservePrefixes),
	}
}

// Classifier exposes the location classifier used by the aggregator.
func (a *Aggregator) Classifier() *Classifier {
	return a.classifier
}

// Usable reports whether a record has an allowed status and is not at a denied location.
func (a *Aggregator) Usable(record domain.InventoryRecord) bool {
	if _, ok := a.statuses[Normalize(record.Status)]; !ok {
		return false
	}
	_, denied := a.denied[Normalize(record.Location)]
	return !denied
}

// Filter returns the usable records in their original order.
func (a *Aggregator) Filter(records []domain.InventoryRecord) []domain.InventoryRecord {
	usable := make([]domain.InventoryRecord, 0, len(records))
	for _, r := range records {
		if a.Usable(r) {
			usable = append(usable, r)
		}
	}
	return usable
}

// Aggregate filters records and groups usable stock per normalized SKU.
func (a *Aggregator) Aggregate(records []domain.InventoryRecord) map[string]*SkuAggregate {
	return a.aggregate(a.Filter(records))
}

// AggregateByLocation filters records and sums usable stock per SKU and location,
// regardless of the location's role.
func (a *Aggregator) AggregateByLocation(records []domain.InventoryRecord) map[string]decimal.Decimal {
	return locationTotals(a.Filter(records))
}

// aggregate expects records that already passed Filter.
func (a *Aggregator) aggregate(usable []domain.InventoryRecord) map[string]*SkuAggregate {
	result := make(map[string]*SkuAggregate)
	for _, r := range usable {
		sku := Normalize(r.SKU)
		agg, ok := result[sku]
		if !ok {
			agg = &SkuAggregate{
				SKU:              sku,
				PickingLocations: []LocationStock{},
				ReserveLocations: []LocationStock{},
			}
			result[sku] = agg
		}
		if agg.Description == "" {
			agg.Description = r.Description
		}

		stock := LocationStock{
			LPN:            r.LicensePlate,
			Location:       r.Location,
			Available:      r.AvailableQty,
			ExpirationDate: r.ExpirationDate,
			DaysToExpiry:   r.DaysToExpiry,
		}

		switch a.classifier.Classify(r.Location) {
		case RolePicking:
			agg.TotalPicking = agg.TotalPicking.Add(r.AvailableQty)
			agg.PickingLocations = append(agg.PickingLocations, stock)
		case RoleReserve:
			agg.TotalReserve = agg.TotalReserve.Add(r.AvailableQty)
			agg.ReserveLocations = append(agg.ReserveLocations, stock)
		default:
			agg.TotalExcluded = agg.TotalExcluded.Add(r.AvailableQty)
		}
	}
	return result
}

func (a *Aggregator) stock(usable []domain.InventoryRecord) Stock {
	return Stock{
		BySKU:      a.aggregate(usable),
		ByLocation: locationTotals(usable),
	}
}

func locationTotals(usable []domain.InventoryRecord) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, r := range usable {
		key := LocationKey(r.SKU, r.Location)
		totals[key] = totals[key].Add(r.AvailableQty)
	}
	return totals
}

// LocationKey is the lookup key of AggregateByLocation for a SKU at a location.
func LocationKey(sku, location string) string {
	return Normalize(sku) + locationKeySep + Normalize(location)
}

func positiveOnly(locations []LocationStock) []LocationStock {
	filtered := make([]LocationStock, 0, len(locations))
	for _, l := range locations {
		if l.Available.IsPositive() {
			filtered = append(filtered, l)
		}
	}
	return filtered
}
