package restock

import (
	"testing"

	"github.com/andresuchdata/restock-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func assertDecimal(t *testing.T, want, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, want.Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func inv(sku, location string, qty int64) domain.InventoryRecord {
	return domain.InventoryRecord{
		SKU:          sku,
		Location:     location,
		AvailableQty: dec(qty),
		Status:       "AVAILABLE",
	}
}

func withDays(r domain.InventoryRecord, days int) domain.InventoryRecord {
	r.DaysToExpiry = domain.IntPtr(days)
	return r
}

func withLPN(r domain.InventoryRecord, lpn string) domain.InventoryRecord {
	r.LicensePlate = lpn
	return r
}

func sumSuggested(locations []domain.SuggestedLocation) decimal.Decimal {
	total := decimal.Zero
	for _, l := range locations {
		total = total.Add(l.Quantity)
	}
	return total
}

func sumAvailable(locations []LocationStock) decimal.Decimal {
	total := decimal.Zero
	for _, l := range locations {
		total = total.Add(l.Available)
	}
	return total
}
