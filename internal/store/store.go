package store

import (
	"context"

	"svarozhits/internal/models"
)

// Store defines the interface for task persistence operations.
type Store interface {
	// Task operations
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	MarkTaskDone(ctx context.Context, id int64) error
	DeleteTask(ctx context.Context, id int64) error

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}
