package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// GetTask fetches a single task.
func (c *Client) GetTask(ctx context.Context, taskID string) (Task, error) {
	var task Task

	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(taskID), nil, &task); err != nil {
		return Task{}, fmt.Errorf("error fetching task %s: %w", taskID, err)
	}

	return task, nil
}

// CreateTask adds a task to the end of a column.
func (c *Client) CreateTask(ctx context.Context, task NewTask) error {
	if err := c.do(ctx, http.MethodPost, "/api/tasks", task, nil); err != nil {
		return fmt.Errorf("error creating task %q: %w", task.Title, err)
	}

	return nil
}

// UpdateTask edits a task's fields.
func (c *Client) UpdateTask(ctx context.Context, taskID string, update TaskUpdate) error {
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(taskID), update, nil); err != nil {
		return fmt.Errorf("error updating task %s: %w", taskID, err)
	}

	return nil
}

// MoveTask moves a task to an index in a column, possibly the one it is already in.
func (c *Client) MoveTask(ctx context.Context, taskID string, move Move) error {
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/move/"+url.PathEscape(taskID), move, nil); err != nil {
		return fmt.Errorf("error moving task %s: %w", taskID, err)
	}

	return nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(taskID), nil, nil); err != nil {
		return fmt.Errorf("error deleting task %s: %w", taskID, err)
	}

	return nil
}
