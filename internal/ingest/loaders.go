package ingest

import (
	"fmt"

	"github.com/andresuchdata/restock-engine/internal/domain"
)

// LoadInventory reads an inventory export from path.
func LoadInventory(path string) ([]domain.InventoryRecord, error) {
	return load(path, ParseInventory)
}

// LoadSales reads a sales export from path.
func LoadSales(path string) ([]domain.SalesLine, error) {
	return load(path, ParseSales)
}

// LoadRules reads a min/max rule sheet from path.
func LoadRules(path string) ([]domain.MinMaxRule, error) {
	return load(path, ParseRules)
}

// LoadCrossCheck reads one side of a cross-check from path.
func LoadCrossCheck(path string) ([]domain.CrossCheckRecord, error) {
	return load(path, ParseCrossCheck)
}

// LoadShelfLifeLimits reads the shelf-life master table from path.
func LoadShelfLifeLimits(path string) ([]domain.ShelfLifeLimit, error) {
	return load(path, ParseShelfLifeLimits)
}

func load[T any](path string, parse func(*Table) ([]T, error)) ([]T, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	items, err := parse(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// ParseInventory maps table rows to inventory records. Quantity cells that
// do not parse are 0 and the row is kept.
func ParseInventory(t *Table) ([]domain.InventoryRecord, error) {
	cols := columns{header: t.Header}
	idxSKU, err := cols.require("sku", skuAliases...)
	if err != nil {
		return nil, err
	}
	idxLocation, err := cols.require("location", locationAliases...)
	if err != nil {
		return nil, err
	}
	idxLot := cols.index(lotAliases...)
	idxLPN := cols.index(lpnAliases...)
	idxDescription := cols.index(descriptionAliases...)
	idxAvailable := cols.index(availableAliases...)
	idxStatus := cols.index(statusAliases...)
	idxExpiration := cols.index(expirationAliases...)
	idxDays := cols.index(daysAliases...)

	records := make([]domain.InventoryRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, domain.InventoryRecord{
			SKU:            cell(row, idxSKU),
			Lot:            cell(row, idxLot),
			LicensePlate:   cell(row, idxLPN),
			Description:    cell(row, idxDescription),
			Location:       cell(row, idxLocation),
			AvailableQty:   parseDecimal(cell(row, idxAvailable)),
			Status:         cell(row, idxStatus),
			ExpirationDate: parseDate(cell(row, idxExpiration)),
			DaysToExpiry:   parseDays(cell(row, idxDays)),
		})
	}
	return records, nil
}

// ParseSales maps table rows to sales lines.
func ParseSales(t *Table) ([]domain.SalesLine, error) {
	cols := columns{header: t.Header}
	idxSKU, err := cols.require("sku", skuAliases...)
	if err != nil {
		return nil, err
	}
	idxDescription := cols.index(descriptionAliases...)
	idxConfirmed := cols.index(confirmedAliases...)

	lines := make([]domain.SalesLine, 0, len(t.Rows))
	for _, row := range t.Rows {
		lines = append(lines, domain.SalesLine{
			SKU:          cell(row, idxSKU),
			Description:  cell(row, idxDescription),
			ConfirmedQty: parseDecimal(cell(row, idxConfirmed)),
		})
	}
	return lines, nil
}

// ParseRules maps table rows to min/max rules.
func ParseRules(t *Table) ([]domain.MinMaxRule, error) {
	cols := columns{header: t.Header}
	idxSKU, err := cols.require("sku", skuAliases...)
	if err != nil {
		return nil, err
	}
	idxLocation, err := cols.require("location", locationAliases...)
	if err != nil {
		return nil, err
	}
	idxMin, err := cols.require("min", minAliases...)
	if err != nil {
		return nil, err
	}
	idxMax, err := cols.require("max", maxAliases...)
	if err != nil {
		return nil, err
	}
	idxLPN := cols.index(lpnAliases...)

	rules := make([]domain.MinMaxRule, 0, len(t.Rows))
	for _, row := range t.Rows {
		rules = append(rules, domain.MinMaxRule{
			SKU:      cell(row, idxSKU),
			Location: cell(row, idxLocation),
			LPN:      cell(row, idxLPN),
			MinQty:   parseDecimal(cell(row, idxMin)),
			MaxQty:   parseDecimal(cell(row, idxMax)),
		})
	}
	return rules, nil
}

// ParseCrossCheck maps table rows to cross-check records.
func ParseCrossCheck(t *Table) ([]domain.CrossCheckRecord, error) {
	cols := columns{header: t.Header}
	idxSKU, err := cols.require("sku", skuAliases...)
	if err != nil {
		return nil, err
	}
	idxLot := cols.index(lotAliases...)
	idxDescription := cols.index(descriptionAliases...)
	idxQty := cols.index(crossQtyAliases...)

	records := make([]domain.CrossCheckRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, domain.CrossCheckRecord{
			SKU:         cell(row, idxSKU),
			Lot:         cell(row, idxLot),
			Description: cell(row, idxDescription),
			Quantity:    parseDecimal(cell(row, idxQty)),
		})
	}
	return records, nil
}

// ParseShelfLifeLimits maps table rows to shelf-life limits. Unparseable
// limits are 0 days.
func ParseShelfLifeLimits(t *Table) ([]domain.ShelfLifeLimit, error) {
	cols := columns{header: t.Header}
	idxSKU, err := cols.require("sku", skuAliases...)
	if err != nil {
		return nil, err
	}
	idxDays, err := cols.require("min days", minShelfLifeAliases...)
	if err != nil {
		return nil, err
	}

	limits := make([]domain.ShelfLifeLimit, 0, len(t.Rows))
	for _, row := range t.Rows {
		days := 0
		if d := parseDays(cell(row, idxDays)); d != nil {
			days = *d
		}
		limits = append(limits, domain.ShelfLifeLimit{
			SKU:     cell(row, idxSKU),
			MinDays: days,
		})
	}
	return limits, nil
}
