package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/2beens/gymplan/internal/sheets"
)

// Float is a number read from a sheet cell. Valid is false when the cell
// could not be coerced; such a value is missing, never zero.
type Float struct {
	Value float64
	Valid bool
}

// Missing is a value that could not be read.
func Missing() Float {
	return Float{}
}

// Some wraps a readable value.
func Some(v float64) Float {
	return Float{Value: v, Valid: true}
}

// ParseFloat accepts numbers and text using either '.' or ',' as the decimal
// separator. Only the first comma is replaced, so "1,234,5" is missing.
func ParseFloat(v any) Float {
	if v == nil {
		return Missing()
	}
	text := strings.TrimSpace(sheets.CellText(v))
	if text == "" {
		return Missing()
	}
	text = strings.Replace(text, ",", ".", 1)

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing()
	}
	return Some(f)
}

func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Missing()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Some(v)
	return nil
}
