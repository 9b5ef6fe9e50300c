package web

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page names renderable through the Renderer. Each pairs with layout.html.
var pages = []string{
	"login.html",
	"register.html",
	"dashboard.html",
	"task_form.html",
	"task_detail.html",
	"analytics.html",
	"report.html",
}

// PageData is the envelope every template receives.
type PageData struct {
	Title    string
	Username string
	Flashes  []Flash
	Now      time.Time
	Data     any
}

// Renderer holds the precompiled template set for each page.
type Renderer struct {
	templates map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template)}
	for _, page := range pages {
		t, err := template.ParseFS(templatesFS,
			"templates/layout.html", "templates/summary.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		r.templates[page] = t
	}
	return r, nil
}

// Render writes a full HTML page. Template execution failures after the
// header is sent can only be logged.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data PageData) {
	t, ok := r.templates[page]
	if !ok {
		log.Printf("render: unknown page %q", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data.Now.IsZero() {
		data.Now = time.Now().UTC()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		log.Printf("render %s: %v", page, err)
	}
}
