package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/gymplan/internal/sheets"
)

const DateLayout = "2006-01-02"

// Accepted layouts, tried in order. Day-first wins over month-first for
// slashed dates since the sheets are filled in pt-BR.
var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Date is a calendar day without time or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date from its parts, normalizing overflow the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf drops the clock part of t, keeping its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today is the calendar date of now in now's location.
func Today(now time.Time) Date {
	return DateOf(now)
}

// ParseDate accepts the layouts listed in dateLayouts. Anything else,
// including numbers and empty cells, reports ok=false.
func ParseDate(v any) (Date, bool) {
	s, isString := v.(string)
	if !isString {
		if v == nil {
			return Date{}, false
		}
		s = sheets.CellText(v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), true
		}
	}
	return Date{}, false
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	*d = DateOf(t)
	return nil
}
