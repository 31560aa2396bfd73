package dto

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Numeric accepts a JSON number or a decimal string using either comma or
// point as the decimal separator ("12,50", "12.5", 12.5 are all equivalent).
// It never fails unmarshalling: malformed input is recorded and rejected by
// the service layer with a field-level message, so the client sees which
// field is wrong instead of a generic JSON error.
type Numeric struct {
	Present bool
	Empty   bool
	Valid   bool
	Value   decimal.Decimal
}

func (n *Numeric) UnmarshalJSON(data []byte) error {
	n.Present = true
	n.Empty = false
	n.Valid = false

	if bytes.Equal(data, []byte("null")) {
		n.Present = false
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			n.Empty = true
			return nil
		}
		raw = strings.Replace(raw, ",", ".", 1)
	} else {
		raw = string(data)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	n.Value = d
	n.Valid = true
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	if !n.Present || !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// FromDecimal builds a valid Numeric, used by tests and bulk import.
func FromDecimal(d decimal.Decimal) Numeric {
	return Numeric{Present: true, Valid: true, Value: d}
}

// FromInt builds a valid integer Numeric.
func FromInt(v int) Numeric {
	return FromDecimal(decimal.NewFromInt(int64(v)))
}
