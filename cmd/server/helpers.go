package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go-forge/internal/forge"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps request bodies, file content and imported artifacts included.
const maxBodyBytes = 16 << 20

// errBadRequest marks malformed request bodies and missing parameters.
var errBadRequest = errors.New("bad request")

// statusFor maps store errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, forge.ErrInvalidPath),
		errors.Is(err, forge.ErrInvalidArtifact):
		return http.StatusBadRequest
	case errors.Is(err, forge.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, forge.ErrNotFound),
		errors.Is(err, forge.ErrFileNotFound),
		errors.Is(err, forge.ErrUnknownTemplate),
		errors.Is(err, forge.ErrNoProject):
		return http.StatusNotFound
	case errors.Is(err, forge.ErrMarkersNotFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (app *application) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.Error("Failed to encode response", "error", err)
	}
}

// errorJSON logs err and writes {"error": "..."} with the mapped status.
func (app *application) errorJSON(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		app.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		app.logger.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	app.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decodeJSON reads a JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

// readBody returns the raw request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %v", errBadRequest, err)
	}
	return data, nil
}

// filePath is the wildcard tail of /files/* routes.
func filePath(r *http.Request) (string, error) {
	p := chi.URLParam(r, "*")
	if p == "" {
		return "", fmt.Errorf("%w: missing file path", errBadRequest)
	}
	return p, nil
}

// requireParam returns a non-empty query parameter.
func requireParam(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", fmt.Errorf("%w: missing %s parameter", errBadRequest, name)
	}
	return v, nil
}
