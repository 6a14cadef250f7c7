package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// JSON decoding of input records is lenient per record. Quantities that are
// not numbers become 0. Other malformed fields are kept as decode issues and
// surface through the Validate* functions, so one bad row is rejected on its
// own instead of failing the whole request body.

const (
	invalidValueMessage  = "invalid value"
	notAnObjectMessage   = "record must be a JSON object"
	invalidRecordMessage = "record could not be decoded"
)

type decodeIssues []ValidationIssue

func (d decodeIssues) issues() []ValidationIssue { return d }

type decodeReporter interface {
	issues() []ValidationIssue
}

func (d *decodeIssues) add(field, message string) {
	*d = append(*d, ValidationIssue{Path: field, Message: message})
}

// addRecordFailure records a record that could not be decoded at all. The
// decoder's own error names internal Go types, so it is only logged.
func (d *decodeIssues) addRecordFailure(data []byte, err error) {
	log.Debug().Err(err).Msg("restock: record decode failed")

	trimmed := bytes.TrimSpace(data)
	var typeErr *json.UnmarshalTypeError
	switch {
	case len(trimmed) == 0 || trimmed[0] != '{':
		d.add("", notAnObjectMessage)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		d.add("", "field "+typeErr.Field+" must be a "+typeErr.Type.Kind().String())
	default:
		d.add("", invalidRecordMessage)
	}
}

// recordLevel reports whether the record itself could not be decoded.
func (d decodeIssues) recordLevel() bool {
	for _, issue := range d {
		if issue.Path == "" {
			return true
		}
	}
	return false
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func lenientQuantity(raw json.RawMessage) decimal.Decimal {
	if isNull(raw) {
		return decimal.Zero
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero
	}
	return d
}

// lenientDays accepts whole or fractional numbers and numeric strings.
// ok is false when the value is present but not a number.
func lenientDays(raw json.RawMessage) (days *int, ok bool) {
	if isNull(raw) {
		return nil, true
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, true
		}
		raw = json.RawMessage(text)
	}
	if n, err := strconv.Atoi(string(raw)); err == nil {
		return &n, true
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return nil, false
	}
	n := int(decimal.NewFromFloat(f).Round(0).IntPart())
	return &n, true
}

func lenientDate(raw json.RawMessage) (*Date, bool) {
	if isNull(raw) {
		return nil, true
	}
	var d Date
	if err := d.UnmarshalJSON(raw); err != nil {
		return nil, false
	}
	return &d, true
}

func (r *InventoryRecord) UnmarshalJSON(data []byte) error {
	type plain InventoryRecord
	aux := struct {
		*plain
		AvailableQty   json.RawMessage `json:"available_qty"`
		ExpirationDate json.RawMessage `json:"expiration_date"`
		DaysToExpiry   json.RawMessage `json:"days_to_expiry"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		*r = InventoryRecord{}
		r.decodeIssues.addRecordFailure(data, err)
		return nil
	}

	r.AvailableQty = lenientQuantity(aux.AvailableQty)

	var ok bool
	if r.ExpirationDate, ok = lenientDate(aux.ExpirationDate); !ok {
		r.decodeIssues.add("expiration_date", invalidValueMessage)
	}
	if r.DaysToExpiry, ok = lenientDays(aux.DaysToExpiry); !ok {
		r.decodeIssues.add("days_to_expiry", invalidValueMessage)
	}
	return nil
}

func (l *SalesLine) UnmarshalJSON(data []byte) error {
	type plain SalesLine
	aux := struct {
		*plain
		ConfirmedQty json.RawMessage `json:"confirmed_qty"`
	}{plain: (*plain)(l)}

	if err := json.Unmarshal(data, &aux); err != nil {
		*l = SalesLine{}
		l.decodeIssues.addRecordFailure(data, err)
		return nil
	}
	l.ConfirmedQty = lenientQuantity(aux.ConfirmedQty)
	return nil
}

func (m *MinMaxRule) UnmarshalJSON(data []byte) error {
	type plain MinMaxRule
	aux := struct {
		*plain
		MinQty json.RawMessage `json:"min_qty"`
		MaxQty json.RawMessage `json:"max_qty"`
	}{plain: (*plain)(m)}

	if err := json.Unmarshal(data, &aux); err != nil {
		*m = MinMaxRule{}
		m.decodeIssues.addRecordFailure(data, err)
		return nil
	}
	m.MinQty = lenientQuantity(aux.MinQty)
	m.MaxQty = lenientQuantity(aux.MaxQty)
	return nil
}

func (c *CrossCheckRecord) UnmarshalJSON(data []byte) error {
	type plain CrossCheckRecord
	aux := struct {
		*plain
		Quantity json.RawMessage `json:"quantity"`
	}{plain: (*plain)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		*c = CrossCheckRecord{}
		c.decodeIssues.addRecordFailure(data, err)
		return nil
	}
	c.Quantity = lenientQuantity(aux.Quantity)
	return nil
}

func (s *ShelfLifeLimit) UnmarshalJSON(data []byte) error {
	type plain ShelfLifeLimit
	aux := struct {
		*plain
		MinDays json.RawMessage `json:"min_days"`
	}{plain: (*plain)(s)}

	if err := json.Unmarshal(data, &aux); err != nil {
		*s = ShelfLifeLimit{}
		s.decodeIssues.addRecordFailure(data, err)
		return nil
	}
	days, ok := lenientDays(aux.MinDays)
	switch {
	case !ok:
		s.decodeIssues.add("min_days", invalidValueMessage)
	case days != nil:
		s.MinDays = *days
	}
	return nil
}
