package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/justinas/nosurf"
)

// routes sets up the HTTP router for the dashboard and the JSON API.
func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(app.logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// --- Dashboard (CSRF-checked forms) ---
	r.Group(func(r chi.Router) {
		r.Use(app.csrf)
		r.Get("/", app.dashboardHandler)
		r.Get("/files/*", app.filePageHandler)
		r.Post("/projects/new", app.projectCreateFormHandler)
	})

	// --- JSON API ---
	r.Route("/api", func(r chi.Router) {
		r.Get("/project", app.getProjectHandler)
		r.Post("/project", app.newProjectHandler)
		r.Delete("/project", app.clearProjectHandler)

		r.Get("/templates", app.listTemplatesHandler)

		r.Get("/files", app.listFilesHandler)
		r.Post("/files", app.createFileHandler)
		r.Get("/files/*", app.readFileHandler)
		r.Put("/files/*", app.writeFileHandler)
		r.Delete("/files/*", app.deleteFileHandler)
		r.Post("/rename", app.renameFileHandler)

		r.Post("/patch", app.applyPatchHandler)
		r.Get("/regions", app.regionsHandler)

		r.Get("/backups", app.listBackupsHandler)
		r.Post("/backups/restore", app.restoreBackupHandler)

		r.Post("/manifest", app.buildManifestHandler)
		r.Get("/smoke", app.smokeHandler)
		r.Get("/export", app.exportHandler)
		r.Post("/import", app.importHandler)
		r.Post("/changelog", app.changelogHandler)

		r.Get("/notices", app.noticesHandler)
	})

	return r
}

// csrf wraps dashboard routes with nosurf. Rejections are logged with nosurf's reason.
func (app *application) csrf(next http.Handler) http.Handler {
	h := nosurf.New(next)
	h.SetBaseCookie(http.Cookie{
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	h.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.logger.Warn("CSRF check failed", "path", r.URL.Path, "reason", nosurf.Reason(r))
		http.Error(w, "Bad Request - invalid CSRF token", http.StatusBadRequest)
	}))
	return h
}
