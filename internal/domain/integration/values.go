package integration

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts are the timestamp shapes AM.net emits, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// Date is an AM.net calendar date. AM.net sends local timestamps without a
// zone, "0001-01-01T00:00:00" or null for "no date"; all decode to the zero Date.
type Date struct {
	time.Time
}

// NewDate wraps t, dropping the time-of-day
func NewDate(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses any AM.net date shape
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			if t.Year() <= 1 {
				return Date{}, nil
			}
			return NewDate(t), nil
		}
		lastErr = err
	}
	return Date{}, lastErr
}

// Ptr returns the date as *time.Time, nil when unset
func (d Date) Ptr() *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// DateFrom converts an optional time into a Date
func DateFrom(t *time.Time) Date {
	if t == nil {
		return Date{}
	}
	return NewDate(*t)
}

// MarshalJSON writes the date as yyyy-mm-ddT00:00:00, or null
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format("2006-01-02T15:04:05"))
}

// UnmarshalJSON accepts any AM.net date shape
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Amount is a money value as AM.net reports it: a JSON number, a numeric
// string, an empty string, null, or free text such as "N/A".
// The raw text is kept so callers can tell "absent" from "zero".
type Amount string

// AmountOf builds an Amount from a decimal
func AmountOf(d decimal.Decimal) Amount {
	return Amount(d.String())
}

// Decimal parses the amount. ok is false for absent or non-numeric values.
func (a Amount) Decimal() (decimal.Decimal, bool) {
	s := strings.TrimSpace(string(a))
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// OrZero parses the amount, treating absent or non-numeric values as zero
func (a Amount) OrZero() decimal.Decimal {
	d, _ := a.Decimal()
	return d
}

// MarshalJSON writes numeric amounts as JSON numbers and anything else as null
func (a Amount) MarshalJSON() ([]byte, error) {
	d, ok := a.Decimal()
	if !ok {
		return []byte("null"), nil
	}
	return []byte(d.String()), nil
}

// UnmarshalJSON accepts numbers, strings and null
func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = Amount(n.String())
	return nil
}
