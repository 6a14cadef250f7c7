package domain

import "github.com/shopspring/decimal"

// InventoryRecord is one stock position as exported by the WMS.
type InventoryRecord struct {
	SKU            string          `json:"sku" validate:"required,notblank"`
	Lot            string          `json:"lot,omitempty"`
	LicensePlate   string          `json:"lpn,omitempty"`
	Description    string          `json:"description,omitempty"`
	Location       string          `json:"location" validate:"required,notblank"`
	AvailableQty   decimal.Decimal `json:"available_qty" validate:"gte=0"`
	Status         string          `json:"status"`
	ExpirationDate *Date           `json:"expiration_date,omitempty"`
	DaysToExpiry   *int            `json:"days_to_expiry,omitempty"`

	decodeIssues `validate:"-"`
}

// SalesLine is one confirmed sales row; lines are summed per SKU.
type SalesLine struct {
	SKU          string          `json:"sku" validate:"required,notblank"`
	Description  string          `json:"description,omitempty"`
	ConfirmedQty decimal.Decimal `json:"confirmed_qty" validate:"gte=0"`

	decodeIssues `validate:"-"`
}

// MinMaxRule is a replenishment threshold for one picking slot.
type MinMaxRule struct {
	SKU      string          `json:"sku" validate:"required,notblank"`
	Location string          `json:"location" validate:"required,notblank"`
	LPN      string          `json:"lpn,omitempty"`
	MinQty   decimal.Decimal `json:"min_qty" validate:"gte=0"`
	MaxQty   decimal.Decimal `json:"max_qty" validate:"gte=0"`

	decodeIssues `validate:"-"`
}

// CrossCheckRecord is one row of either inventory feed being reconciled.
type CrossCheckRecord struct {
	SKU         string          `json:"sku" validate:"required,notblank"`
	Lot         string          `json:"lot,omitempty"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`

	decodeIssues `validate:"-"`
}

// ShelfLifeLimit is the master-data limit for one SKU.
type ShelfLifeLimit struct {
	SKU     string `json:"sku" validate:"required,notblank"`
	MinDays int    `json:"min_days"`

	decodeIssues `validate:"-"`
}

// SuggestedLocation is one source (or, for OK items, one current slot) of a suggestion.
type SuggestedLocation struct {
	LPN            string          `json:"lpn,omitempty"`
	Location       string          `json:"location"`
	Quantity       decimal.Decimal `json:"quantity"`
	DaysToExpiry   *int            `json:"days_to_expiry,omitempty"`
	ExpirationDate *Date           `json:"expiration_date,omitempty"`
}

// RestockSuggestion is the unified output row. QuantityToRestock of zero means no action.
type RestockSuggestion struct {
	SKU                 string              `json:"sku"`
	Description         string              `json:"description"`
	QuantitySold        decimal.Decimal     `json:"quantity_sold"`
	QuantityAvailable   decimal.Decimal     `json:"quantity_available"`
	QuantityToRestock   decimal.Decimal     `json:"quantity_to_restock"`
	SuggestedLocations  []SuggestedLocation `json:"suggested_locations"`
	DestinationLPN      string              `json:"destination_lpn,omitempty"`
	DestinationLocation string              `json:"destination_location,omitempty"`
}

// NeedsRestock reports whether the suggestion carries a replenishment action.
func (s RestockSuggestion) NeedsRestock() bool {
	return s.QuantityToRestock.IsPositive()
}

// MissingProduct is a sold SKU with no inventory at all.
type MissingProduct struct {
	SKU          string          `json:"sku"`
	Description  string          `json:"description"`
	QuantitySold decimal.Decimal `json:"quantity_sold"`
}

// CrossCheckResult is the quantity delta for one SKU (or SKU+lot) between two feeds.
type CrossCheckResult struct {
	SKU          string          `json:"sku"`
	Lot          string          `json:"lot,omitempty"`
	Description  string          `json:"description"`
	QtySystem    decimal.Decimal `json:"qty_system"`
	QtyWarehouse decimal.Decimal `json:"qty_warehouse"`
	Difference   decimal.Decimal `json:"difference"`
}

// ShelfLifeResult is the compliance verdict for one inventory record.
type ShelfLifeResult struct {
	SKU          string          `json:"sku"`
	Lot          string          `json:"lot,omitempty"`
	LPN          string          `json:"lpn,omitempty"`
	Description  string          `json:"description"`
	Location     string          `json:"location"`
	Quantity     decimal.Decimal `json:"quantity"`
	DaysToExpiry *int            `json:"days_to_expiry,omitempty"`
	RequiredDays int             `json:"required_days"`
	Compliant    bool            `json:"compliant"`
}

// IntPtr is a helper for optional integer fields.
func IntPtr(v int) *int {
	return &v
}
