package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go-forge/internal/forge"
	"go-forge/internal/model"
)

type projectResponse struct {
	Project model.Project `json:"project"`
	Files   []string      `json:"files"`
}

type templateResponse struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Files       []string `json:"files"`
}

type backupResponse struct {
	Key       string    `json:"key"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
}

type smokeResponse struct {
	Passed  bool                `json:"passed"`
	Results []model.SmokeResult `json:"results"`
}

// --- Project ---

func (app *application) getProjectHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := app.store.Project()
	if !ok {
		app.errorJSON(w, r, forge.ErrNoProject)
		return
	}
	app.writeJSON(w, http.StatusOK, projectResponse{Project: p, Files: app.store.List()})
}

func (app *application) newProjectHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Template string `json:"template"`
		Name     string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		app.errorJSON(w, r, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		app.errorJSON(w, r, fmt.Errorf("%w: name is required", errBadRequest))
		return
	}

	p, err := app.store.NewProject(req.Template, req.Name)
	if err != nil {
		app.errorJSON(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusCreated, projectResponse{Project: p, Files: app.store.List()})
}

func (app *application) clearProjectHandler(w http.ResponseWriter, r *http.Request) {
	app.store.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) listTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	registry := app.store.Registry()
	out := make([]templateResponse, 0)
	for _, name := range registry.Names() {
		t, err := registry.Describe(name)
		if err != nil {
			continue
		}
		tr := templateResponse{Name: t.Name, Description: t.Description, Files: make([]string, 0, len(t.Files))}
		for _, f := range t.Files {
			tr.Files = append(tr.Files, f.Path)
		}
		out = append(out, tr)
	}
	app.writeJSON(w, http.StatusOK, out)
}

// --- Files ---

func (app *application) listFilesHandler(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, http.StatusOK, map[string][]string{"files": app.store.List()})
}

func (app *application) readFileHandler(w http.ResponseWriter, r *http.Request) {
	path, err := filePath(r)
	if err != nil {
		app.errorJSON(w, r, err)
		return
	}
	content, ok := app.store.Read(path)
	if !ok {
		app.errorJSON(w, r, fmt.Errorf("%s: %w", path, forge.ErrFileNotFound))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(content))
}

func (app *application) writeFileHandler(w http.ResponseWriter, r *http.Request) {
	path, err := filePath(r)
	if err != nil {
		app.errorJSON(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		app.errorJSON(w, r, err)
		return
	}
	if err := app.store.Write(path, string(body)); err != nil {
		app.errorJSON(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) createFileHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		app.errorJSON(w, r, err)
		return
	}
	if err := app.store.Create(req.Path, req.Content); err != nil {
		app.errorJSON(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (app *application) deleteFileHandler(w http.ResponseWriter, r *http.Request) {
	path, err := filePath(r)
	if err != nil {
		app.errorJSON(w, r, err)
		return
	}
	if err := app.store.Delete(path); err != nil {
		app.errorJSON(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) renameFileHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		app.errorJSON(w, r, err)
		return
	}
	if err := app.store.Rename(req.From, req.To); err != nil {
		app.errorJSON(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Patches ---

func (app *application) applyPatchHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path    string `json:"path"`
		PatchID string `json:"patchId"`
		Content string `json:"content"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		app.errorJSON(w, r, err)
		return
	}
	if err := app.store.ApplyPatch(req.Path, req.PatchID, req.Content); err != nil {
		app.errorJSON(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) regionsHandler(w http.ResponseWriter, r *http.Request) {
	path, err := requireParam(r, "path")
	if err != nil {
		app.errorJSON(w, r, err)
		return
	}
	regions, err := app.store.Regions(path)
	if err != nil {
		app.errorJSON(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, map[string][]string{"regions": regions})
}

// --- Backups ---

func (app *application) listBackupsHandler(w http.ResponseWriter, r *http.Request) {
	backups, err := app.store.Backups(r.URL.Query().Get("path"))
	if err != nil {
		app.errorJSON(w, r, err)
		return
	}
	out := make([]backupResponse, 0, len(backups))
	for _, b := range backups {
		out = append(out, backupResponse{
			Key:       b.Key().String(),
			Path:      b.Path.String(),
			Timestamp: b.Timestamp,
			Content:   b.Content,
		})
	}
	app.writeJSON(w, http.StatusOK, out)
}

func (app *application) restoreBackupHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		app.errorJSON(w, r, err)
		return
	}
	if err := app.store.Restore(req.Key); err != nil {
		app.errorJSON(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Manifest, smoke tests, export ---

func (app *application) buildManifestHandler(w http.ResponseWriter, r *http.Request) {
	m, err := app.store.BuildManifest()
	if err != nil {
		app.errorJSON(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, m)
}

func (app *application) smokeHandler(w http.ResponseWriter, r *http.Request) {
	results := app.store.RunSmokeTests()
	app.writeJSON(w, http.StatusOK, smokeResponse{Passed: forge.Passed(results), Results: results})
}

func (app *application) exportHandler(w http.ResponseWriter, r *http.Request) {
	artifact, err := app.store.Export()
	if err != nil {
		app.errorJSON(w, r, err)
		return
	}
	data, err := forge.MarshalArtifact(artifact)
	if err != nil {
		app.errorJSON(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", app.store.ExportFilename()))
	w.Write(data)
}

func (app *application) importHandler(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		app.errorJSON(w, r, err)
		return
	}
	artifact, err := forge.DecodeArtifact(body)
	if err != nil {
		app.errorJSON(w, r, err)
		return
	}
	p, err := app.store.Import(artifact)
	if err != nil {
		app.errorJSON(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusCreated, projectResponse{Project: p, Files: app.store.List()})
}

func (app *application) changelogHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Note string `json:"note"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		app.errorJSON(w, r, err)
		return
	}
	if strings.TrimSpace(req.Note) == "" {
		app.errorJSON(w, r, fmt.Errorf("%w: note is required", errBadRequest))
		return
	}
	if err := app.store.AppendChangelog(req.Note); err != nil {
		app.errorJSON(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) noticesHandler(w http.ResponseWriter, r *http.Request) {
	notices := app.store.Notices()
	if notices == nil {
		notices = []forge.Notice{}
	}
	app.writeJSON(w, http.StatusOK, notices)
}
