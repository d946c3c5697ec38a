package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/2beens/gymplan/pkg"

	log "github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templatesFS embed.FS

const layoutFile = "layout.html"

type FlashLevel string

const (
	FlashSuccess FlashLevel = "success"
	FlashInfo    FlashLevel = "info"
	FlashWarning FlashLevel = "warning"
	FlashError   FlashLevel = "error"
)

type Flash struct {
	Level FlashLevel
	Text  string
}

// Page is what the layout template renders. Data is handed to the page's
// "content" block.
type Page struct {
	Template  string
	Title     string
	Active    string
	Flashes   []Flash
	Celebrate bool
	Data      any
}

func (p *Page) AddFlash(level FlashLevel, text string) {
	p.Flashes = append(p.Flashes, Flash{Level: level, Text: text})
}

type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded layout once and clones it for every page,
// so each page can define its own "content" block.
func NewRenderer() (*Renderer, error) {
	base, err := template.New("base").Funcs(funcMap()).ParseFS(templatesFS, "templates/"+layoutFile)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pageFiles, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob page templates: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, f := range pageFiles {
		name := path.Base(f)
		if name == layoutFile {
			continue
		}
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(templatesFS, f); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = clone
	}

	return &Renderer{pages: pages}, nil
}

// Render writes the page with the given status. The page is rendered into a
// buffer first, so a template failure ends in a plain 500.
func (r *Renderer) Render(w http.ResponseWriter, status int, page Page) {
	tmpl, ok := r.pages[page.Template]
	if !ok {
		log.Errorf("render: unknown page template %q", page.Template)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		log.Errorf("render %s: %s", page.Template, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.HTML, buf.Bytes(), status)
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"num":  formatNumber,
		"itoa": strconv.Itoa,
		"flashClass": func(level FlashLevel) string {
			return "flash flash-" + string(level)
		},
		"lower": strings.ToLower,
	}
}

// formatNumber prints v with two decimals and a decimal comma, trimming
// trailing zeros: 72.5 -> "72,5", 80 -> "80".
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		s = "0"
	}
	return strings.Replace(s, ".", ",", 1)
}
