package store

import (
	"context"
	"fmt"
	"time"

	"svarozhits/internal/models"
)

// ListTasks retrieves all tasks ordered by id.
func (s *SQLStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	tasks := []models.Task{}

	err := s.db.SelectContext(ctx, &tasks, `
		SELECT id, title, done, created_at
		FROM tasks ORDER BY id ASC
	`)
	if err != nil {
		return nil, mapError("list tasks", err)
	}

	return tasks, nil
}

// CreateTask inserts a new undone task and sets its ID and CreatedAt.
func (s *SQLStore) CreateTask(ctx context.Context, task *models.Task) error {
	now := time.Now().UTC()

	var id int64
	err := s.db.GetContext(ctx, &id, s.db.Rebind(`
		INSERT INTO tasks (title, done, created_at)
		VALUES (?, ?, ?)
		RETURNING id
	`), task.Title, false, now)
	if err != nil {
		return mapError("create task", err)
	}

	task.ID = id
	task.Done = false
	task.CreatedAt = now

	return nil
}

// MarkTaskDone sets the done flag of a task. Marking an already done task
// succeeds again; an unknown id returns ErrNotFound.
func (s *SQLStore) MarkTaskDone(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE tasks SET done = ? WHERE id = ?
	`), true, id)
	if err != nil {
		return mapError("mark task done", err)
	}

	return expectRow(result, "mark task done", id)
}

// DeleteTask deletes a task by ID. An unknown id returns ErrNotFound.
func (s *SQLStore) DeleteTask(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return mapError("delete task", err)
	}

	return expectRow(result, "delete task", id)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func expectRow(result rowsAffecter, op string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return mapError(op, err)
	}
	if n == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}
