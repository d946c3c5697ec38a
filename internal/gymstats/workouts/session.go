package workouts

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/gymplan/internal/gymstats/normalize"
	"github.com/2beens/gymplan/internal/sheets"
)

type State int

const (
	NoPlanSelected State = iota
	PlanSelected
	FormRendered
	Submitted
)

func (s State) String() string {
	switch s {
	case NoPlanSelected:
		return "no-plan-selected"
	case PlanSelected:
		return "plan-selected"
	case FormRendered:
		return "form-rendered"
	case Submitted:
		return "submitted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrUnknownPlan   = errors.New("unknown plan")
	ErrUnknownRow    = errors.New("unknown exercise row")
	ErrNoPlan        = errors.New("no plan selected")
	ErrNothingToSave = errors.New("nothing to save")
)

type RowInput struct {
	Load      float64
	Completed bool
}

// PlanExercise is one input unit of the form. Key is the row index within
// the selected plan and stays the same across re-renders.
type PlanExercise struct {
	Key   int
	Row   CatalogRow
	Input RowInput
}

type SubmitResult struct {
	Saved   int
	Records []LogRecord
}

type logsWriter interface {
	AppendRecords(ctx context.Context, name string, records []sheets.Record) error
}

// Session is the form state of one "record workout" interaction.
type Session struct {
	catalog []CatalogRow
	state   State
	planID  string
	rows    []CatalogRow
	inputs  map[int]RowInput
}

func NewSession(catalog []CatalogRow) *Session {
	return &Session{
		catalog: catalog,
		state:   NoPlanSelected,
	}
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) PlanID() string {
	return s.planID
}

func (s *Session) Plans() []string {
	return PlanIDs(s.catalog)
}

// SelectPlan switches to the given plan and clears all row inputs.
func (s *Session) SelectPlan(planID string) error {
	rows := PlanRows(s.catalog, planID)
	if len(rows) == 0 {
		return fmt.Errorf("%w: %q", ErrUnknownPlan, planID)
	}
	s.planID = planID
	s.rows = rows
	s.inputs = make(map[int]RowInput, len(rows))
	s.state = PlanSelected
	return nil
}

// Exercises returns the input units of the selected plan and moves the
// session to FormRendered.
func (s *Session) Exercises() []PlanExercise {
	if s.state == NoPlanSelected {
		return nil
	}
	exercises := make([]PlanExercise, 0, len(s.rows))
	for key, row := range s.rows {
		exercises = append(exercises, PlanExercise{
			Key:   key,
			Row:   row,
			Input: s.inputs[key],
		})
	}
	if s.state == PlanSelected {
		s.state = FormRendered
	}
	return exercises
}

func (s *Session) SetInput(key int, input RowInput) error {
	if s.state == NoPlanSelected {
		return ErrNoPlan
	}
	if key < 0 || key >= len(s.rows) {
		return fmt.Errorf("%w: %d", ErrUnknownRow, key)
	}
	s.inputs[key] = input
	return nil
}

// BuildRecords makes one log record per completed row, in plan order.
func (s *Session) BuildRecords(today normalize.Date) []LogRecord {
	var records []LogRecord
	for key, row := range s.rows {
		input := s.inputs[key]
		if !input.Completed {
			continue
		}
		records = append(records, LogRecord{
			Date:         today,
			PlanID:       s.planID,
			ExerciseName: row.ExerciseName,
			Load:         input.Load,
			Completed:    CompletedYes,
		})
	}
	return records
}

// Submit writes the completed rows to the Logs sheet. With nothing completed
// no write is made. A failed write leaves the session and its inputs as they were.
func (s *Session) Submit(ctx context.Context, writer logsWriter, today normalize.Date) (SubmitResult, error) {
	if s.state == NoPlanSelected {
		return SubmitResult{}, ErrNoPlan
	}
	s.state = FormRendered

	records := s.BuildRecords(today)
	if len(records) == 0 {
		return SubmitResult{}, ErrNothingToSave
	}

	if err := writer.AppendRecords(ctx, sheets.SheetLogs, SheetRecords(records)); err != nil {
		return SubmitResult{}, fmt.Errorf("append workout logs: %w", err)
	}

	s.state = Submitted
	return SubmitResult{Saved: len(records), Records: records}, nil
}
