package models

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MaxTitleLength is the longest title, in characters, a task may carry.
const MaxTitleLength = 255

var validate = validator.New()

// Task represents a single to-do item.
type Task struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title" validate:"required,max=255"`
	Done      bool      `db:"done" json:"done"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NewTask returns an undone task with a trimmed title. It does not validate.
func NewTask(title string) *Task {
	return &Task{Title: strings.TrimSpace(title)}
}

// Validate checks that the task has valid field values.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("title is required")
	}

	if err := validate.Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Field() == "Title" && fe.Tag() == "max" {
					return errors.New("title must be 255 characters or fewer")
				}
			}
		}
		return err
	}

	return nil
}

// Status returns a short label for the task's completion state.
func (t *Task) Status() string {
	if t.Done {
		return "done"
	}
	return "undone"
}
