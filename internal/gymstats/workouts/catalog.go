package workouts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/gymplan/internal/sheets"
)

const (
	ColumnPlanID    = "Treino_ID"
	ColumnExercise  = "Exercicio"
	ColumnSetScheme = "Serie"
	ColumnImageURL  = "Imagem_URL"
)

var (
	ErrEmptyCatalog  = errors.New("workout catalog is empty")
	ErrMissingColumn = errors.New("required column missing")
)

// MalformedCatalogError means the Treinos sheet cannot be turned into plans.
// Row is 1-based over data rows, 0 when the whole catalog is empty.
type MalformedCatalogError struct {
	Row    int
	Column string
	Err    error
}

func (e *MalformedCatalogError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("malformed catalog: %s", e.Err)
	}
	return fmt.Sprintf("malformed catalog: row %d: %s: %s", e.Row, e.Err, e.Column)
}

func (e *MalformedCatalogError) Unwrap() error {
	return e.Err
}

type CatalogRow struct {
	PlanID       string
	ExerciseName string
	SetScheme    string
	ImageURL     string
}

// HasImage reports whether ImageURL looks like something a browser can load.
func (r CatalogRow) HasImage() bool {
	return strings.HasPrefix(r.ImageURL, "http")
}

// DecodeCatalog turns Treinos rows into catalog rows. Fully blank rows are
// ignored; a row without plan or exercise makes the whole catalog malformed.
func DecodeCatalog(records []sheets.Record) ([]CatalogRow, error) {
	rows := make([]CatalogRow, 0, len(records))
	for i, record := range records {
		if isBlank(record) {
			continue
		}

		planID, err := requiredCell(record, i+1, ColumnPlanID)
		if err != nil {
			return nil, err
		}
		exercise, err := requiredCell(record, i+1, ColumnExercise)
		if err != nil {
			return nil, err
		}
		setScheme, _ := record.String(ColumnSetScheme)
		imageURL, _ := record.String(ColumnImageURL)

		rows = append(rows, CatalogRow{
			PlanID:       planID,
			ExerciseName: exercise,
			SetScheme:    strings.TrimSpace(setScheme),
			ImageURL:     strings.TrimSpace(imageURL),
		})
	}

	if len(rows) == 0 {
		return nil, &MalformedCatalogError{Err: ErrEmptyCatalog}
	}
	return rows, nil
}

func requiredCell(record sheets.Record, row int, column string) (string, error) {
	v, ok := record.String(column)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", &MalformedCatalogError{Row: row, Column: column, Err: ErrMissingColumn}
	}
	return v, nil
}

func isBlank(record sheets.Record) bool {
	for column := range record {
		if v, _ := record.String(column); strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// PlanIDs lists the distinct plans in the order they first appear.
func PlanIDs(rows []CatalogRow) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, row := range rows {
		if seen[row.PlanID] {
			continue
		}
		seen[row.PlanID] = true
		ids = append(ids, row.PlanID)
	}
	return ids
}

// PlanRows returns the rows of one plan in catalog order.
func PlanRows(rows []CatalogRow, planID string) []CatalogRow {
	var planRows []CatalogRow
	for _, row := range rows {
		if row.PlanID == planID {
			planRows = append(planRows, row)
		}
	}
	return planRows
}
