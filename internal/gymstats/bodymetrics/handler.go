package bodymetrics

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/gymplan/internal/gymstats/normalize"
	"github.com/2beens/gymplan/internal/sheets"
	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/internal/web"
	"github.com/2beens/gymplan/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	pageTemplate = "evolucao.html"
	pageTitle    = "Minha Evolução"
	navKey       = "evolucao"

	MsgSaved              = "Salvo! Recarregue a página."
	MsgSaveFailed         = "Erro ao salvar."
	MsgInvalidMeasurement = "Valores inválidos. Use números, ex.: 72,5."
	MsgDownloadFailed     = "Erro ao baixar dados da planilha."
	MsgNotEnoughData      = "Ainda não há dados suficientes para gerar o gráfico."

	exportFileName = "bioimpedancia.xlsx"
)

type pageRenderer interface {
	Render(w http.ResponseWriter, status int, page web.Page)
}

type Handler struct {
	service      *Service
	renderer     pageRenderer
	chartOptions RenderOptions
}

func NewHandler(service *Service, renderer pageRenderer) *Handler {
	return &Handler{
		service:      service,
		renderer:     renderer,
		chartOptions: DefaultRenderOptions(),
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/evolucao", h.HandlePage).Methods("GET").Name("evolution")
	r.HandleFunc("/evolucao/medidas", h.HandleLogMeasurement).Methods("POST").Name("evolution-log")
	r.HandleFunc("/evolucao/grafico.png", h.HandleChartPNG).Methods("GET").Name("evolution-chart")
	r.HandleFunc("/evolucao/historico.xlsx", h.HandleExportXLSX).Methods("GET").Name("evolution-xlsx")
	r.HandleFunc("/evolucao/historico.json", h.HandleExportJSON).Methods("GET").Name("evolution-json")
}

type evolutionPage struct {
	WeightText     string
	MuscleMassText string
	HasChart       bool
	ChartWidth     int
	ChartHeight    int
	Points         int
	Skipped        int
	Rows           []Point
}

func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.bodymetrics.page")
	defer span.End()

	page := web.Page{
		Template: pageTemplate,
		Title:    pageTitle,
		Active:   navKey,
	}
	view := evolutionPage{}
	status := h.fillHistory(ctx, &page, &view)
	page.Data = view
	h.renderer.Render(w, status, page)
}

func (h *Handler) HandleLogMeasurement(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.bodymetrics.log")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		log.Errorf("body metrics log: parse form: %s", err)
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	page := web.Page{
		Template: pageTemplate,
		Title:    pageTitle,
		Active:   navKey,
	}
	view := evolutionPage{
		WeightText:     strings.TrimSpace(r.PostForm.Get("peso")),
		MuscleMassText: strings.TrimSpace(r.PostForm.Get("massa_muscular")),
	}

	weight, weightOK := parseMeasurement(view.WeightText)
	muscleMass, muscleMassOK := parseMeasurement(view.MuscleMassText)
	if !weightOK || !muscleMassOK {
		page.AddFlash(web.FlashWarning, MsgInvalidMeasurement)
		h.fillHistory(ctx, &page, &view)
		page.Data = view
		h.renderer.Render(w, http.StatusBadRequest, page)
		return
	}

	status := http.StatusOK
	if _, err := h.service.LogMeasurement(ctx, weight, muscleMass); err != nil {
		log.Errorf("body metrics log: %s", err)
		page.AddFlash(web.FlashError, MsgSaveFailed)
		status = http.StatusBadGateway
	} else {
		page.AddFlash(web.FlashSuccess, MsgSaved)
		view.WeightText, view.MuscleMassText = "", ""
	}

	if historyStatus := h.fillHistory(ctx, &page, &view); status == http.StatusOK {
		status = historyStatus
	}
	page.Data = view
	h.renderer.Render(w, status, page)
}

func (h *Handler) HandleChartPNG(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.bodymetrics.chart")
	defer span.End()

	history, err := h.service.History(ctx)
	if err != nil {
		log.Errorf("body metrics chart: %s", err)
		pkg.WriteResponse(w, pkg.ContentType.Text, MsgDownloadFailed, http.StatusBadGateway)
		return
	}

	chart, err := BuildChart(history)
	if err != nil {
		pkg.WriteResponse(w, pkg.ContentType.Text, MsgNotEnoughData, http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := RenderPNG(chart, &buf, h.chartOptions); err != nil {
		log.Errorf("body metrics chart: render: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	pkg.WriteResponseBytes(w, pkg.ContentType.PNG, buf.Bytes(), http.StatusOK)
}

func (h *Handler) HandleExportXLSX(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.bodymetrics.xlsx")
	defer span.End()

	history, err := h.service.History(ctx)
	if err != nil {
		log.Errorf("body metrics xlsx: %s", err)
		pkg.WriteResponse(w, pkg.ContentType.Text, MsgDownloadFailed, http.StatusBadGateway)
		return
	}

	var buf bytes.Buffer
	if err := ExportXLSX(history, &buf); err != nil {
		log.Errorf("body metrics xlsx: export: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFileName+`"`)
	pkg.WriteResponseBytes(w, pkg.ContentType.XLSX, buf.Bytes(), http.StatusOK)
}

func (h *Handler) HandleExportJSON(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.bodymetrics.json")
	defer span.End()

	history, err := h.service.History(ctx)
	if err != nil {
		log.Errorf("body metrics json: %s", err)
		pkg.WriteResponse(w, pkg.ContentType.Text, MsgDownloadFailed, http.StatusBadGateway)
		return
	}

	pkg.WriteJSONResponseOK(w, history)
}

// fillHistory loads the history into the view and adds the flash for a
// failed download or a missing chart. It returns the status to render with.
func (h *Handler) fillHistory(ctx context.Context, page *web.Page, view *evolutionPage) int {
	history, err := h.service.History(ctx)
	if err != nil {
		log.Errorf("body metrics page: %s", err)
		page.AddFlash(web.FlashError, MsgDownloadFailed)
		if sheets.IsConnectionError(err) {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}

	view.Points = len(history.Points)
	view.Skipped = history.Skipped
	view.Rows = history.Points

	if _, err := BuildChart(history); err != nil {
		if !errors.Is(err, ErrNotEnoughData) {
			log.Errorf("body metrics page: build chart: %s", err)
		}
		page.AddFlash(web.FlashInfo, MsgNotEnoughData)
		return http.StatusOK
	}

	view.HasChart = true
	view.ChartWidth = h.chartOptions.Width
	view.ChartHeight = h.chartOptions.Height
	return http.StatusOK
}

// parseMeasurement accepts an empty field as 0, as the form starts empty
// and zero is a legal measurement.
func parseMeasurement(text string) (float64, bool) {
	if text == "" {
		return 0, true
	}
	f := normalize.ParseFloat(text)
	return f.Value, f.Valid
}
