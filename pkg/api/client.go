package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10
)

// CredentialSource supplies the bearer token attached to every request.
type CredentialSource interface {
	Token() (string, bool)
}

// Client is a typed wrapper over the task board HTTP API.
type Client struct {
	baseURL string
	creds   CredentialSource
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithTimeout sets the per-request timeout. A client given through WithHTTPClient is
// copied first and left unchanged.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		h := *c.http
		h.Timeout = d
		c.http = &h
	}
}

// New creates a Client for the API rooted at baseURL. creds may be nil for
// unauthenticated use.
func New(baseURL string, creds CredentialSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		http:    &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type validator interface {
	validate() error
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		buf, err := sonic.ConfigStd.Marshal(body)
		if err != nil {
			return fmt.Errorf("error encoding %s %s: %w", method, path, err)
		}

		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("error building %s %s: %w", method, path, err)
	}

	requestID := uuid.NewString()

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.creds != nil {
		if token, ok := c.creds.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", method).
		Str("path", path).
		Str("requestID", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api call")

	if resp.StatusCode >= http.StatusBadRequest {
		return newError(method, path, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil
	}

	if err := sonic.ConfigStd.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{Path: path, Err: err}
	}

	if v, ok := out.(validator); ok {
		if err := v.validate(); err != nil {
			return &DecodeError{Path: path, Err: err}
		}
	}

	return nil
}

func newError(method, path string, resp *http.Response) error {
	apiErr := &Error{Method: method, Path: path, StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	if err := sonic.ConfigStd.Unmarshal(raw, &payload); err == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}

	return apiErr
}

// validateAll checks each decoded element of a list response.
func validateAll[T any, P interface {
	*T
	validator
}](path string, items []T) error {
	for i := range items {
		if err := P(&items[i]).validate(); err != nil {
			return &DecodeError{Path: path, Err: fmt.Errorf("item %d: %w", i, err)}
		}
	}

	return nil
}

var errNoToken = errors.New("login response carried no token")
