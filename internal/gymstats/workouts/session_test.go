package workouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/2beens/gymplan/internal/gymstats/normalize"
	"github.com/2beens/gymplan/internal/gymstats/workouts"
	"github.com/2beens/gymplan/internal/sheets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testToday = normalize.NewDate(2024, time.January, 1)

func newTestSession(t *testing.T, planID string) *workouts.Session {
	t.Helper()
	catalog, err := workouts.DecodeCatalog(catalogRecords())
	require.NoError(t, err)
	session := workouts.NewSession(catalog)
	require.NoError(t, session.SelectPlan(planID))
	return session
}

func TestSession_States(t *testing.T) {
	catalog, err := workouts.DecodeCatalog(catalogRecords())
	require.NoError(t, err)

	session := workouts.NewSession(catalog)
	assert.Equal(t, workouts.NoPlanSelected, session.State())
	assert.Nil(t, session.Exercises())
	assert.ErrorIs(t, session.SetInput(0, workouts.RowInput{}), workouts.ErrNoPlan)

	assert.ErrorIs(t, session.SelectPlan("Z"), workouts.ErrUnknownPlan)
	assert.Equal(t, workouts.NoPlanSelected, session.State())

	require.NoError(t, session.SelectPlan("A"))
	assert.Equal(t, workouts.PlanSelected, session.State())
	assert.Equal(t, "A", session.PlanID())

	session.Exercises()
	assert.Equal(t, workouts.FormRendered, session.State())
	assert.Equal(t, "form-rendered", session.State().String())
}

func TestSession_Exercises_OnlySelectedPlan(t *testing.T) {
	session := newTestSession(t, "A")
	exercises := session.Exercises()
	require.Len(t, exercises, 3)

	names := []string{}
	for i, ex := range exercises {
		assert.Equal(t, i, ex.Key)
		assert.Equal(t, "A", ex.Row.PlanID)
		names = append(names, ex.Row.ExerciseName)
	}
	assert.Equal(t, []string{"Supino Reto", "Crucifixo", "Tríceps Corda"}, names)

	session = newTestSession(t, "B")
	exercises = session.Exercises()
	require.Len(t, exercises, 1)
	assert.Equal(t, "Agachamento", exercises[0].Row.ExerciseName)
}

func TestSession_InputsKeepIdentityAcrossRenders(t *testing.T) {
	session := newTestSession(t, "A")
	session.Exercises()

	require.NoError(t, session.SetInput(0, workouts.RowInput{Load: 72.5}))
	// toggling another row must not touch row 0
	require.NoError(t, session.SetInput(2, workouts.RowInput{Completed: true}))

	exercises := session.Exercises()
	assert.Equal(t, workouts.RowInput{Load: 72.5}, exercises[0].Input)
	assert.Equal(t, workouts.RowInput{}, exercises[1].Input)
	assert.Equal(t, workouts.RowInput{Completed: true}, exercises[2].Input)

	assert.ErrorIs(t, session.SetInput(3, workouts.RowInput{}), workouts.ErrUnknownRow)
	assert.ErrorIs(t, session.SetInput(-1, workouts.RowInput{}), workouts.ErrUnknownRow)
}

func TestSession_SelectPlanResetsInputs(t *testing.T) {
	session := newTestSession(t, "A")
	require.NoError(t, session.SetInput(0, workouts.RowInput{Load: 10, Completed: true}))

	require.NoError(t, session.SelectPlan("B"))
	require.Len(t, session.Exercises(), 1)
	assert.Equal(t, workouts.RowInput{}, session.Exercises()[0].Input)
	assert.Empty(t, session.BuildRecords(testToday))
}

func TestSession_BuildRecords(t *testing.T) {
	session := newTestSession(t, "A")
	require.NoError(t, session.SetInput(0, workouts.RowInput{Load: 72.5, Completed: true}))
	require.NoError(t, session.SetInput(1, workouts.RowInput{Load: 20, Completed: false}))
	require.NoError(t, session.SetInput(2, workouts.RowInput{Load: 0, Completed: true}))

	records := session.BuildRecords(testToday)
	assert.Equal(t, []workouts.LogRecord{
		{Date: testToday, PlanID: "A", ExerciseName: "Supino Reto", Load: 72.5, Completed: workouts.CompletedYes},
		{Date: testToday, PlanID: "A", ExerciseName: "Tríceps Corda", Load: 0, Completed: workouts.CompletedYes},
	}, records)
}

func TestSession_Submit(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMocksheetsClient(ctrl)

	session := newTestSession(t, "A")
	session.Exercises()
	require.NoError(t, session.SetInput(1, workouts.RowInput{Load: 15, Completed: true}))

	client.EXPECT().
		AppendRecords(gomock.Any(), sheets.SheetLogs, []sheets.Record{{
			"Data":      "2024-01-01",
			"Treino":    "A",
			"Exercicio": "Crucifixo",
			"Carga":     15.0,
			"Concluido": "Sim",
		}}).
		Return(nil)

	result, err := session.Submit(context.Background(), client, testToday)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)
	assert.Equal(t, workouts.Submitted, session.State())
}

func TestSession_Submit_NothingToSave(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMocksheetsClient(ctrl)
	// no AppendRecords expected: gomock fails the test on any call

	session := newTestSession(t, "A")
	session.Exercises()
	require.NoError(t, session.SetInput(0, workouts.RowInput{Load: 50}))

	result, err := session.Submit(context.Background(), client, testToday)
	assert.ErrorIs(t, err, workouts.ErrNothingToSave)
	assert.Zero(t, result.Saved)
	assert.Equal(t, workouts.FormRendered, session.State())
}

func TestSession_Submit_FailedWriteKeepsInputs(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMocksheetsClient(ctrl)

	session := newTestSession(t, "A")
	session.Exercises()
	inputs := map[int]workouts.RowInput{
		0: {Load: 72.5, Completed: true},
		1: {Load: 12, Completed: false},
		2: {Load: 30, Completed: true},
	}
	for key, input := range inputs {
		require.NoError(t, session.SetInput(key, input))
	}

	writeErr := &sheets.WriteError{Sheet: sheets.SheetLogs, StatusCode: 500}
	client.EXPECT().AppendRecords(gomock.Any(), sheets.SheetLogs, gomock.Len(2)).Return(writeErr)

	_, err := session.Submit(context.Background(), client, testToday)
	require.Error(t, err)
	assert.True(t, sheets.IsWriteError(err))
	assert.Equal(t, workouts.FormRendered, session.State())

	for _, ex := range session.Exercises() {
		assert.Equal(t, inputs[ex.Key], ex.Input)
	}

	// retry succeeds with the same values
	client.EXPECT().AppendRecords(gomock.Any(), sheets.SheetLogs, gomock.Len(2)).Return(nil)
	result, err := session.Submit(context.Background(), client, testToday)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Saved)
}

func TestSession_Submit_NoPlan(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMocksheetsClient(ctrl)

	session := workouts.NewSession(nil)
	_, err := session.Submit(context.Background(), client, testToday)
	assert.ErrorIs(t, err, workouts.ErrNoPlan)
}
