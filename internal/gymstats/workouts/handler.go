package workouts

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/2beens/gymplan/internal/gymstats/normalize"
	"github.com/2beens/gymplan/internal/sheets"
	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/internal/web"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	pageTemplate = "treino.html"
	pageTitle    = "Registrar Treino"
	navKey       = "treino"

	MsgEmptyCatalog  = "Aba 'Treinos' vazia. Verifique se preencheu a planilha."
	MsgNothingToSave = "Marque pelo menos um exercício."
	MsgSaved         = "Treino salvo! 💪"
	MsgSaveFailed    = "Erro ao salvar."
	MsgUnknownPlan   = "Treino não encontrado na planilha."
	MsgInvalidLoad   = "Carga inválida. Use números, ex.: 72,5."
)

type pageRenderer interface {
	Render(w http.ResponseWriter, status int, page web.Page)
}

type Handler struct {
	service  *Service
	renderer pageRenderer
}

func NewHandler(service *Service, renderer pageRenderer) *Handler {
	return &Handler{
		service:  service,
		renderer: renderer,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/treino", h.HandleForm).Methods("GET").Name("workout-form")
	r.HandleFunc("/treino", h.HandleSave).Methods("POST").Name("workout-save")
}

type exerciseView struct {
	Key         int
	Name        string
	SetScheme   string
	ImageURL    string
	HasImage    bool
	LoadText    string
	Completed   bool
	InvalidLoad bool
}

type formPage struct {
	Plans        []string
	SelectedPlan string
	Exercises    []exerciseView
}

func newPage() web.Page {
	return web.Page{
		Template: pageTemplate,
		Title:    pageTitle,
		Active:   navKey,
		Data:     formPage{},
	}
}

func (h *Handler) HandleForm(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.form")
	defer span.End()

	page := newPage()
	session, err := h.service.NewSession(ctx, r.URL.Query().Get("plan"))
	if err != nil {
		if errors.Is(err, ErrUnknownPlan) && session != nil {
			page.AddFlash(web.FlashWarning, MsgUnknownPlan)
			if err := session.SelectPlan(session.Plans()[0]); err != nil {
				log.Errorf("workout form: select first plan: %s", err)
			}
		} else {
			h.renderLoadError(w, page, err)
			return
		}
	}

	page.Data = formView(session, nil, nil)
	h.renderer.Render(w, http.StatusOK, page)
}

func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.save")
	defer span.End()

	page := newPage()
	if err := r.ParseForm(); err != nil {
		log.Errorf("workout save: parse form: %s", err)
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	planID := strings.TrimSpace(r.PostForm.Get("plan"))
	if planID == "" {
		http.Error(w, "missing plan", http.StatusBadRequest)
		return
	}

	session, err := h.service.NewSession(ctx, planID)
	if err != nil {
		if errors.Is(err, ErrUnknownPlan) {
			http.Error(w, "unknown plan", http.StatusBadRequest)
			return
		}
		h.renderLoadError(w, page, err)
		return
	}

	loadTexts := make(map[int]string)
	invalidLoads := make(map[int]bool)
	rejected := false
	for _, exercise := range session.Exercises() {
		key := exercise.Key
		loadText := strings.TrimSpace(r.PostForm.Get("load_" + strconv.Itoa(key)))
		loadTexts[key] = loadText

		input := RowInput{Completed: r.PostForm.Get("done_"+strconv.Itoa(key)) != ""}
		if loadText != "" {
			if load := normalize.ParseFloat(loadText); load.Valid {
				input.Load = load.Value
			} else {
				invalidLoads[key] = true
				rejected = rejected || input.Completed
			}
		}
		if err := session.SetInput(key, input); err != nil {
			log.Errorf("workout save: set input %d: %s", key, err)
		}
	}

	// an unreadable load on a completed row blocks the whole save
	if rejected {
		page.AddFlash(web.FlashWarning, MsgInvalidLoad)
		page.Data = formView(session, loadTexts, invalidLoads)
		h.renderer.Render(w, http.StatusBadRequest, page)
		return
	}

	result, err := h.service.Save(ctx, session)
	switch {
	case err == nil:
		log.Infof("workout saved: plan %s, %d exercises", planID, result.Saved)
		page.AddFlash(web.FlashSuccess, MsgSaved)
		page.Celebrate = true
		fresh := NewSession(session.catalog)
		if err := fresh.SelectPlan(planID); err != nil {
			log.Errorf("workout save: reset form for plan %s: %s", planID, err)
		}
		page.Data = formView(fresh, nil, nil)
		h.renderer.Render(w, http.StatusOK, page)
	case errors.Is(err, ErrNothingToSave):
		page.AddFlash(web.FlashWarning, MsgNothingToSave)
		page.Data = formView(session, loadTexts, invalidLoads)
		h.renderer.Render(w, http.StatusOK, page)
	default:
		log.Errorf("workout save: plan %s: %s", planID, err)
		status := http.StatusInternalServerError
		if sheets.IsWriteError(err) || sheets.IsConnectionError(err) {
			status = http.StatusBadGateway
		}
		page.AddFlash(web.FlashError, MsgSaveFailed)
		page.Data = formView(session, loadTexts, invalidLoads)
		h.renderer.Render(w, status, page)
	}
}

func (h *Handler) renderLoadError(w http.ResponseWriter, page web.Page, err error) {
	var malformed *MalformedCatalogError
	switch {
	case errors.As(err, &malformed):
		log.Warnf("workout catalog: %s", err)
		page.AddFlash(web.FlashWarning, MsgEmptyCatalog)
		h.renderer.Render(w, http.StatusOK, page)
	case sheets.IsConnectionError(err):
		log.Errorf("workout catalog: %s", err)
		page.AddFlash(web.FlashError, fmt.Sprintf("Erro de conexão: %s", err))
		h.renderer.Render(w, http.StatusBadGateway, page)
	default:
		log.Errorf("workout catalog: %s", err)
		page.AddFlash(web.FlashError, fmt.Sprintf("Erro de conexão: %s", err))
		h.renderer.Render(w, http.StatusInternalServerError, page)
	}
}

// formView keeps the typed text of each load when given, so an invalid
// entry is shown back as typed.
func formView(session *Session, loadTexts map[int]string, invalidLoads map[int]bool) formPage {
	view := formPage{
		Plans:        session.Plans(),
		SelectedPlan: session.PlanID(),
	}
	for _, exercise := range session.Exercises() {
		loadText, typed := loadTexts[exercise.Key]
		if !typed {
			loadText = strconv.FormatFloat(exercise.Input.Load, 'f', -1, 64)
		}
		view.Exercises = append(view.Exercises, exerciseView{
			Key:         exercise.Key,
			Name:        exercise.Row.ExerciseName,
			SetScheme:   exercise.Row.SetScheme,
			ImageURL:    exercise.Row.ImageURL,
			HasImage:    exercise.Row.HasImage(),
			LoadText:    loadText,
			Completed:   exercise.Input.Completed,
			InvalidLoad: invalidLoads[exercise.Key],
		})
	}
	return view
}
