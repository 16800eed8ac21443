package handlers

import (
	"net/http"

	"svarozhits/internal/models"
	"svarozhits/internal/web"
)

// IndexData holds data for the index page template.
type IndexData struct {
	Title          string
	Tasks          []models.Task
	MaxTitleLength int
}

// Index renders every task in creation order.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.ListTasks(r.Context())
	if err != nil {
		respondServerError(w, r, err)
		return
	}

	h.render(w, r, web.IndexTemplate, IndexData{
		Title:          "Tasks",
		Tasks:          tasks,
		MaxTitleLength: models.MaxTitleLength,
	})
}
