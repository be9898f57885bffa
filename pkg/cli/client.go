package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a thin HTTP client for the transcription API.
type Client struct {
	BaseURL string
	Token   string
	UserID  string

	// HTTP overrides the transport for tests.
	HTTP *http.Client
}

// envelope mirrors the server's response wrapper. Data stays raw until the
// caller knows the payload shape.
type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp string          `json:"timestamp"`
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// do sends a request and decodes the envelope, returning the raw data payload
// and the server's message. Non-2xx responses become errors carrying the
// server's error detail.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, string, error) {
	u := strings.TrimRight(c.BaseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, "", err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, "", err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, "", fmt.Errorf("%s %s: HTTP %d (unparseable body)", method, path, resp.StatusCode)
	}
	if !env.Success {
		detail := env.Error
		if detail == "" {
			detail = env.Message
		}
		return nil, "", fmt.Errorf("%s (HTTP %d)", detail, resp.StatusCode)
	}
	return env.Data, env.Message, nil
}

// userQuery returns query params carrying the acting user, when one is set.
// With a bearer token the server resolves the user from the token instead.
func (c *Client) userQuery() url.Values {
	q := url.Values{}
	if c.UserID != "" {
		q.Set("userId", c.UserID)
	}
	return q
}

// requireUser returns the user id for path-scoped endpoints.
func (c *Client) requireUser() (string, error) {
	if c.UserID == "" {
		return "", fmt.Errorf("--user is required (or set SPEECHCRAFT_USER)")
	}
	return c.UserID, nil
}
