package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go-forge/internal/forge"
	"go-forge/internal/templating"

	"github.com/go-chi/chi/v5"
	"github.com/justinas/nosurf"
)

// newTemplateData fills the fields every page needs.
func (app *application) newTemplateData(r *http.Request, title string) templating.PageData {
	data := templating.PageData{
		Title:       title,
		CSRFToken:   nosurf.Token(r),
		CurrentYear: app.now().Year(),
		Notices:     app.store.Notices(),
	}
	for _, name := range app.store.Registry().Names() {
		if t, err := app.store.Registry().Describe(name); err == nil {
			data.Templates = append(data.Templates, t)
		}
	}
	if p, ok := app.store.Project(); ok {
		data.Project = &p
	}
	return data
}

// render executes page and writes it with status. Nothing is written when
// rendering fails.
func (app *application) render(w http.ResponseWriter, status int, page string, data templating.PageData) {
	var buf bytes.Buffer
	if err := app.pages.Render(&buf, page, data); err != nil {
		app.logger.Error("Error rendering page", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// dashboardHandler shows the project, its files and, on request, smoke results.
func (app *application) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	data := app.newTemplateData(r, "Dashboard")
	if data.Project != nil {
		data.Files = app.store.Files()
		if r.URL.Query().Has("smoke") {
			data.Smoke = app.store.RunSmokeTests()
			data.SmokeRan = true
		}
	}
	if slug := r.URL.Query().Get("created"); slug != "" {
		data.Flash = fmt.Sprintf("Project %q created.", slug)
	}
	app.render(w, http.StatusOK, "dashboard.html", data)
}

// filePageHandler shows one file with its patch regions and backups.
func (app *application) filePageHandler(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	content, ok := app.store.Read(path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	view := &templating.FileView{Path: path, Content: content}
	if regions, err := app.store.Regions(path); err == nil {
		view.Regions = regions
	}
	if backups, err := app.store.Backups(path); err == nil {
		view.Backups = backups
	}

	data := app.newTemplateData(r, path)
	data.File = view
	app.render(w, http.StatusOK, "file.html", data)
}

// projectCreateFormHandler handles the dashboard's new-project form.
func (app *application) projectCreateFormHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.logger.Error("Error parsing new project form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(r.PostForm.Get("name"))
	tmpl := r.PostForm.Get("template")

	fail := func(status int, msg string) {
		data := app.newTemplateData(r, "Dashboard")
		if data.Project != nil {
			data.Files = app.store.Files()
		}
		data.Error = msg
		app.render(w, status, "dashboard.html", data)
	}

	if name == "" {
		fail(http.StatusBadRequest, "Project name is required.")
		return
	}

	p, err := app.store.NewProject(tmpl, name)
	if err != nil {
		msg := "Failed to create project."
		if errors.Is(err, forge.ErrUnknownTemplate) {
			msg = fmt.Sprintf("Unknown template %q.", tmpl)
		}
		fail(statusFor(err), msg)
		return
	}

	http.Redirect(w, r, "/?created="+url.QueryEscape(p.Slug), http.StatusSeeOther)
}
