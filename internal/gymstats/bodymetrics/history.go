package bodymetrics

import (
	"sort"

	"github.com/2beens/gymplan/internal/gymstats/normalize"
	"github.com/2beens/gymplan/internal/sheets"

	log "github.com/sirupsen/logrus"
)

// History is the normalized content of the Bioimpedancia sheet, sorted by
// date. Skipped counts the rows dropped because their date did not parse.
type History struct {
	Points  []Point `json:"points"`
	Skipped int     `json:"skipped"`
}

func (h History) Empty() bool {
	return len(h.Points) == 0
}

// HasWeight reports whether at least one point carries a valid weight.
func (h History) HasWeight() bool {
	for _, p := range h.Points {
		if p.Weight.Valid {
			return true
		}
	}
	return false
}

func NormalizeHistory(records []sheets.Record) History {
	history := History{Points: make([]Point, 0, len(records))}
	for i, record := range records {
		date, ok := normalize.ParseDate(record[ColumnDate])
		if !ok {
			log.Debugf("body metrics history: skipping row %d, bad date %q", i, sheets.CellText(record[ColumnDate]))
			history.Skipped++
			continue
		}
		history.Points = append(history.Points, Point{
			Date:       date,
			Weight:     normalize.ParseFloat(record[ColumnWeight]),
			MuscleMass: normalize.ParseFloat(record[ColumnMuscleMass]),
		})
	}

	sort.SliceStable(history.Points, func(i, j int) bool {
		return history.Points[i].Date.Before(history.Points[j].Date)
	})

	return history
}
