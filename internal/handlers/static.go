package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"svarozhits/internal/web"
)

const healthCheckTimeout = 2 * time.Second

// Asset serves an embedded static file.
func (h *Handlers) Asset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")

	data, ok := web.Asset(name)
	if !ok {
		h.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", web.ContentType(name))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// NotFound answers every path no route matches.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "not found")
}

// Healthz reports whether the store is reachable.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
