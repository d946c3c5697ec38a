package workouts

import (
	"github.com/2beens/gymplan/internal/gymstats/normalize"
	"github.com/2beens/gymplan/internal/sheets"
)

const (
	ColumnDate      = "Data"
	ColumnPlan      = "Treino"
	ColumnLoad      = "Carga"
	ColumnCompleted = "Concluido"
)

type Completion string

const CompletedYes Completion = "Sim"

// LogRecord is one row of the Logs sheet.
type LogRecord struct {
	Date         normalize.Date `json:"date"`
	PlanID       string         `json:"plan_id"`
	ExerciseName string         `json:"exercise"`
	Load         float64        `json:"load"`
	Completed    Completion     `json:"completed"`
}

func (r LogRecord) SheetRecord() sheets.Record {
	return sheets.Record{
		ColumnDate:      r.Date.String(),
		ColumnPlan:      r.PlanID,
		ColumnExercise:  r.ExerciseName,
		ColumnLoad:      r.Load,
		ColumnCompleted: string(r.Completed),
	}
}

func SheetRecords(records []LogRecord) []sheets.Record {
	sheetRecords := make([]sheets.Record, 0, len(records))
	for _, r := range records {
		sheetRecords = append(sheetRecords, r.SheetRecord())
	}
	return sheetRecords
}
