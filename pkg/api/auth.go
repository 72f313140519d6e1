package api

import (
	"context"
	"fmt"
	"net/http"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}

	body := map[string]string{"email": email, "password": password}

	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return "", err
	}

	if resp.Token == "" {
		return "", &DecodeError{Path: "/api/auth/login", Err: errNoToken}
	}

	return resp.Token, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}

	return c.do(ctx, http.MethodPost, "/api/auth/register", body, nil)
}

// Me returns the user owning the current credential.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User

	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return User{}, fmt.Errorf("error fetching current user: %w", err)
	}

	return user, nil
}
