package bodymetrics

import (
	"github.com/2beens/gymplan/internal/gymstats/normalize"
	"github.com/2beens/gymplan/internal/sheets"
)

const (
	ColumnDate       = "Data"
	ColumnWeight     = "Peso"
	ColumnMuscleMass = "Massa_Muscular"
)

// Record is one measurement as written to the Bioimpedancia sheet.
type Record struct {
	Date       normalize.Date `json:"date"`
	Weight     float64        `json:"weight"`
	MuscleMass float64        `json:"muscle_mass"`
}

func (r Record) SheetRecord() sheets.Record {
	return sheets.Record{
		ColumnDate:       r.Date.String(),
		ColumnWeight:     r.Weight,
		ColumnMuscleMass: r.MuscleMass,
	}
}

// Point is one measurement read back from the sheet. Values that could not
// be parsed are missing, never zero.
type Point struct {
	Date       normalize.Date  `json:"date"`
	Weight     normalize.Float `json:"weight"`
	MuscleMass normalize.Float `json:"muscle_mass"`
}
