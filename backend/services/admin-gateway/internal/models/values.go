package models

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a money value decoded leniently: JSON numbers and numeric strings parse,
// anything else (null, "", "n/a", objects) becomes zero.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps an integer amount.
func NewAmount(v int64) Amount {
	return Amount{decimal.NewFromInt(v)}
}

// AmountOf wraps an existing decimal.
func AmountOf(d decimal.Decimal) Amount {
	return Amount{d}
}

// ParseAmount returns the parsed value or zero.
func ParseAmount(s string) Amount {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}
	}
	return Amount{d}
}

// UnmarshalJSON never fails on malformed input.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = Amount{}
			return nil
		}
		*a = ParseAmount(s)
		return nil
	}
	*a = ParseAmount(string(data))
	return nil
}

// MarshalJSON writes a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// ID is an opaque identifier the backend sends either as a number or a string.
type ID string

// UnmarshalJSON accepts numbers, strings and null; other JSON values decode to empty.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*id = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			*id = ""
			return nil
		}
		*id = ID(n.String())
	}
	return nil
}

// String returns the identifier as text.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

// FirstID returns the first non-empty identifier.
func FirstID(ids ...ID) ID {
	for _, id := range ids {
		if !id.IsZero() {
			return id
		}
	}
	return ""
}
