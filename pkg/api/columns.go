package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListColumns returns a board's columns in display order.
func (c *Client) ListColumns(ctx context.Context, boardID string) ([]Column, error) {
	path := "/api/columns?" + url.Values{"boardId": {boardID}}.Encode()

	var columns []Column

	if err := c.do(ctx, http.MethodGet, path, nil, &columns); err != nil {
		return nil, fmt.Errorf("error listing columns for board %s: %w", boardID, err)
	}

	if err := validateAll(path, columns); err != nil {
		return nil, err
	}

	return columns, nil
}

// CreateColumn appends a column to a board.
func (c *Client) CreateColumn(ctx context.Context, boardID, title string) error {
	body := map[string]string{"boardId": boardID, "title": title}

	if err := c.do(ctx, http.MethodPost, "/api/columns", body, nil); err != nil {
		return fmt.Errorf("error creating column %q: %w", title, err)
	}

	return nil
}

// RenameColumn changes a column's title.
func (c *Client) RenameColumn(ctx context.Context, columnID, title string) error {
	path := "/api/columns/" + url.PathEscape(columnID)

	if err := c.do(ctx, http.MethodPatch, path, map[string]string{"title": title}, nil); err != nil {
		return fmt.Errorf("error renaming column %s: %w", columnID, err)
	}

	return nil
}

// DeleteColumn removes an empty column.
func (c *Client) DeleteColumn(ctx context.Context, columnID string) error {
	path := "/api/columns/" + url.PathEscape(columnID)

	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("error deleting column %s: %w", columnID, err)
	}

	return nil
}
