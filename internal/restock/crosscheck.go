package restock

import (
	"sort"

	"github.com/andresuchdata/restock-engine/internal/domain"
	"github.com/shopspring/decimal"
)

type crossCheckKey struct {
	sku string
	lot string
}

type crossCheckRow struct {
	sku         string
	lot         string
	description string
	qtyA        decimal.Decimal
	qtyB        decimal.Decimal
}

// CrossCheck reconciles two inventory feeds. Rows are keyed by normalized SKU,
// plus normalized lot when groupByLot is set, and sorted by absolute difference
// descending then SKU and lot ascending. Description comes from feed A when present.
func CrossCheck(feedA, feedB []domain.CrossCheckRecord, groupByLot bool) []domain.CrossCheckResult {
	rows := make(map[crossCheckKey]*crossCheckRow)
	order := make([]crossCheckKey, 0, len(feedA)+len(feedB))

	add := func(r domain.CrossCheckRecord, fromA bool) {
		key := crossCheckKey{sku: Normalize(r.SKU)}
		if groupByLot {
			key.lot = Normalize(r.Lot)
		}
		row, ok := rows[key]
		if !ok {
			row = &crossCheckRow{sku: key.sku, lot: key.lot}
			rows[key] = row
			order = append(order, key)
		}
		if fromA {
			row.qtyA = row.qtyA.Add(r.Quantity)
		} else {
			row.qtyB = row.qtyB.Add(r.Quantity)
		}
		if row.description == "" {
			row.description = r.Description
		}
	}

	// Feed A goes first so its descriptions win.
	for _, r := range feedA {
		add(r, true)
	}
	for _, r := range feedB {
		add(r, false)
	}

	results := make([]domain.CrossCheckResult, 0, len(order))
	for _, key := range order {
		row := rows[key]
		results = append(results, domain.CrossCheckResult{
			SKU:          row.sku,
			Lot:          row.lot,
			Description:  row.description,
			QtySystem:    row.qtyA,
			QtyWarehouse: row.qtyB,
			Difference:   row.qtyA.Sub(row.qtyB),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		di, dj := results[i].Difference.Abs(), results[j].Difference.Abs()
		if !di.Equal(dj) {
			return di.GreaterThan(dj)
		}
		if results[i].SKU != results[j].SKU {
			return results[i].SKU < results[j].SKU
		}
		return results[i].Lot < results[j].Lot
	})
	return results
}
