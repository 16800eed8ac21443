package handlers

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"svarozhits/internal/middleware"
)

// NewRouter wires the routes behind the middleware pipeline. From the
// outside in: trace id, request logging, compression, panic recovery.
func NewRouter(h *Handlers, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.TraceID(logger))
	r.Use(middleware.RequestLogger())
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Recoverer)

	r.NotFound(h.NotFound)

	r.Get("/", h.Index)
	r.Get("/healthz", h.Healthz)
	r.Get("/assets/*", h.Asset)

	r.Post("/tasks", h.CreateTask)
	r.Patch("/tasks/{task_id}", h.MarkTaskDone)
	r.Delete("/tasks/{task_id}", h.DeleteTask)

	return r
}
