package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	assert.Contains(t, r.pages, "treino.html")
	assert.Contains(t, r.pages, "evolucao.html")
	assert.NotContains(t, r.pages, "layout.html")
}

func TestRenderer_Render(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	page := Page{
		Template:  "treino.html",
		Title:     "Registrar Treino",
		Active:    "treino",
		Celebrate: true,
		Data: map[string]any{
			"Plans":        []string{"A", "B"},
			"SelectedPlan": "B",
			"Exercises": []map[string]any{
				{"Key": 0, "Name": "Supino <reto>", "SetScheme": "4x10", "HasImage": false, "LoadText": "72,5"},
			},
		},
	}
	page.AddFlash(FlashSuccess, "Treino salvo! 💪")

	rr := httptest.NewRecorder()
	r.Render(rr, http.StatusOK, page)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	body := rr.Body.String()
	assert.Contains(t, body, "<title>Registrar Treino · Gym Plan</title>")
	assert.Contains(t, body, `class="flash flash-success"`)
	assert.Contains(t, body, "Treino salvo! 💪")
	assert.Contains(t, body, `class="balloons"`)
	assert.Contains(t, body, `<option value="B" selected>`)
	assert.Contains(t, body, "Supino &lt;reto&gt;")
	assert.Contains(t, body, `name="load_0" value="72,5"`)
	assert.Contains(t, body, "Sem imagem")
	assert.Contains(t, body, `href="/treino" class="active"`)
}

func TestRenderer_Render_UnknownPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	r.Render(rr, http.StatusOK, Page{Template: "missing.html"})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRenderer_Render_TemplateErrorIsNotPartial(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	// Weight is a plain string, so .Weight.Valid cannot be evaluated
	rr := httptest.NewRecorder()
	r.Render(rr, http.StatusOK, Page{
		Template: "evolucao.html",
		Title:    "Minha Evolução",
		Data: map[string]any{
			"HasChart": true,
			"Points":   1,
			"Rows": []map[string]any{
				{"Date": "2024-01-01", "Weight": "abc"},
			},
		},
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "<html")
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "72,5", formatNumber(72.5))
	assert.Equal(t, "80", formatNumber(80))
	assert.Equal(t, "100", formatNumber(100))
	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "30,12", formatNumber(30.123))
	assert.Equal(t, "0", formatNumber(-0.001))
}
