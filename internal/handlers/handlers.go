package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"svarozhits/internal/logger"
	"svarozhits/internal/store"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	store     store.Store
	templates *template.Template
}

// New creates a new Handlers instance.
func New(s store.Store, tmpl *template.Template) *Handlers {
	return &Handlers{
		store:     s,
		templates: tmpl,
	}
}

// parseTaskID extracts the task id path parameter.
func parseTaskID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "task_id"), 10, 64)
}

// respondError sends a plain text error response.
func respondError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	w.Write([]byte(message))
}

// respondStoreError maps a repository error onto a response. Anything other
// than a missing task is logged and reported as a server error.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	respondServerError(w, r, err)
}

func respondServerError(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Error("internal server error", "error", err)
	respondError(w, http.StatusInternalServerError, "internal server error")
}

// render executes the named template into a buffer so a failing template
// never leaves a half written page behind.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		respondServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
