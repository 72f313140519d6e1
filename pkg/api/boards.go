package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListBoards returns every board visible to the current user.
func (c *Client) ListBoards(ctx context.Context) ([]Board, error) {
	path := "/api/boards"

	var boards []Board

	if err := c.do(ctx, http.MethodGet, path, nil, &boards); err != nil {
		return nil, fmt.Errorf("error listing boards: %w", err)
	}

	if err := validateAll(path, boards); err != nil {
		return nil, err
	}

	return boards, nil
}

// CreateBoard creates a board owned by the current user.
func (c *Client) CreateBoard(ctx context.Context, title string) error {
	if err := c.do(ctx, http.MethodPost, "/api/boards", map[string]string{"title": title}, nil); err != nil {
		return fmt.Errorf("error creating board %q: %w", title, err)
	}

	return nil
}

// Invite adds a user to a board.
func (c *Client) Invite(ctx context.Context, boardID, userID string) error {
	body := map[string]string{"boardId": boardID, "userId": userID}

	if err := c.do(ctx, http.MethodPost, "/api/boards/invite", body, nil); err != nil {
		return fmt.Errorf("error inviting %s to board %s: %w", userID, boardID, err)
	}

	return nil
}

// ListUsers returns the users relevant to a board.
func (c *Client) ListUsers(ctx context.Context, boardID string) ([]User, error) {
	path := "/api/users?" + url.Values{"boardId": {boardID}}.Encode()

	var users []User

	if err := c.do(ctx, http.MethodGet, path, nil, &users); err != nil {
		return nil, fmt.Errorf("error listing users for board %s: %w", boardID, err)
	}

	if err := validateAll(path, users); err != nil {
		return nil, err
	}

	return users, nil
}
