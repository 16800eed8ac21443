package handlers

import (
	"net/http"

	"svarozhits/internal/logger"
	"svarozhits/internal/models"
)

// CreateTask adds a task from the submitted form and sends the client back
// to the index.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	task := models.NewTask(r.PostFormValue("title"))
	if err := task.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.CreateTask(r.Context(), task); err != nil {
		respondServerError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("task created", "task_id", task.ID)
	http.Redirect(w, r, "/", http.StatusFound)
}

// MarkTaskDone sets the done flag of a task.
func (h *Handlers) MarkTaskDone(w http.ResponseWriter, r *http.Request) {
	id, err := parseTaskID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}

	if err := h.store.MarkTaskDone(r.Context(), id); err != nil {
		respondStoreError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("task marked done", "task_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTask removes a task.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseTaskID(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}

	if err := h.store.DeleteTask(r.Context(), id); err != nil {
		respondStoreError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("task deleted", "task_id", id)
	w.WriteHeader(http.StatusNoContent)
}
