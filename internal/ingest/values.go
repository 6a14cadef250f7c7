package ingest

import (
	"strconv"
	"strings"

	"github.com/andresuchdata/restock-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

// parseDecimal reads "1,234.5", "1.234,5", "12,5" and plain numbers.
// Anything unparseable is 0.
func parseDecimal(raw string) decimal.Decimal {
	v := strings.TrimSpace(raw)
	v = strings.ReplaceAll(v, " ", "")
	if v == "" {
		return decimal.Zero
	}

	comma, dot := strings.LastIndex(v, ","), strings.LastIndex(v, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			v = strings.ReplaceAll(v, ".", "")
			v = strings.Replace(v, ",", ".", 1)
		} else {
			v = strings.ReplaceAll(v, ",", "")
		}
	case comma >= 0:
		if strings.Count(v, ",") == 1 && len(v)-comma-1 != 3 {
			v = strings.Replace(v, ",", ".", 1)
		} else {
			v = strings.ReplaceAll(v, ",", "")
		}
	case dot >= 0 && strings.Count(v, ".") > 1:
		v = strings.ReplaceAll(v, ".", "")
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseDays reads a whole number of days; empty or unparseable cells are unknown.
func parseDays(raw string) *int {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return &n
	}
	d := parseDecimal(v)
	if d.IsZero() && strings.Trim(v, "0.,-") != "" {
		return nil
	}
	n := int(d.Round(0).IntPart())
	return &n
}

// parseDate reads text dates and spreadsheet serial numbers.
func parseDate(raw string) *domain.Date {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	if d, err := domain.ParseDate(v); err == nil {
		return d.Ptr()
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return domain.NewDate(t.Year(), t.Month(), t.Day()).Ptr()
		}
	}
	return nil
}
