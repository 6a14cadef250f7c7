package export

import (
	"strconv"

	"github.com/andresuchdata/restock-engine/internal/domain"
)

// placeholder fills location columns of a suggestion without any location.
const placeholder = "-"

var (
	suggestionsHeader = []string{
		"SKU", "Description", "Qty Sold", "Qty Available", "Qty To Restock",
		"Source LPN", "Source Location", "Source Qty", "Days To Expiry", "Expiration Date",
		"Destination LPN", "Destination Location",
	}
	missingHeader    = []string{"SKU", "Description", "Qty Sold"}
	crossCheckHeader = []string{"SKU", "Lot", "Description", "Qty System", "Qty Warehouse", "Difference"}
	shelfLifeHeader  = []string{"SKU", "Lot", "LPN", "Description", "Location", "Qty", "Days To Expiry", "Required Days", "Compliant"}
)

// SuggestionsTable writes one row per suggested location. A suggestion with
// no location keeps a single row with the location columns set to "-".
func SuggestionsTable(items []domain.RestockSuggestion) Table {
	t := Table{Sheet: "Suggestions", Header: suggestionsHeader, Rows: [][]string{}}
	for _, s := range items {
		head := []string{
			s.SKU,
			s.Description,
			s.QuantitySold.String(),
			s.QuantityAvailable.String(),
			s.QuantityToRestock.String(),
		}
		tail := []string{s.DestinationLPN, s.DestinationLocation}

		if len(s.SuggestedLocations) == 0 {
			row := append(append([]string{}, head...), placeholder, placeholder, placeholder, placeholder, placeholder)
			t.Rows = append(t.Rows, append(row, tail...))
			continue
		}
		for _, l := range s.SuggestedLocations {
			row := append(append([]string{}, head...),
				l.LPN,
				l.Location,
				l.Quantity.String(),
				formatDays(l.DaysToExpiry),
				formatDate(l.ExpirationDate),
			)
			t.Rows = append(t.Rows, append(row, tail...))
		}
	}
	return t
}

// MissingTable lists sold SKUs with no inventory.
func MissingTable(items []domain.MissingProduct) Table {
	t := Table{Sheet: "Missing", Header: missingHeader, Rows: make([][]string, 0, len(items))}
	for _, m := range items {
		t.Rows = append(t.Rows, []string{m.SKU, m.Description, m.QuantitySold.String()})
	}
	return t
}

// CrossCheckTable lists reconciliation rows.
func CrossCheckTable(items []domain.CrossCheckResult) Table {
	t := Table{Sheet: "Cross Check", Header: crossCheckHeader, Rows: make([][]string, 0, len(items))}
	for _, r := range items {
		t.Rows = append(t.Rows, []string{
			r.SKU,
			r.Lot,
			r.Description,
			r.QtySystem.String(),
			r.QtyWarehouse.String(),
			r.Difference.String(),
		})
	}
	return t
}

// ShelfLifeTable lists shelf-life verdicts.
func ShelfLifeTable(items []domain.ShelfLifeResult) Table {
	t := Table{Sheet: "Shelf Life", Header: shelfLifeHeader, Rows: make([][]string, 0, len(items))}
	for _, r := range items {
		t.Rows = append(t.Rows, []string{
			r.SKU,
			r.Lot,
			r.LPN,
			r.Description,
			r.Location,
			r.Quantity.String(),
			formatDays(r.DaysToExpiry),
			strconv.Itoa(r.RequiredDays),
			formatCompliant(r.Compliant),
		})
	}
	return t
}

func formatDays(days *int) string {
	if days == nil {
		return ""
	}
	return strconv.Itoa(*days)
}

func formatDate(d *domain.Date) string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.String()
}

func formatCompliant(ok bool) string {
	if ok {
		return "YES"
	}
	return "NO"
}
