package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	api "github.com/fyrsmithlabs/folio/internal/http"
)

// ErrUnauthorized is returned when the admin token is missing or rejected.
var ErrUnauthorized = errors.New("admin token rejected")

// Client polls a running foliod.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// Snapshot is one poll of the server.
type Snapshot struct {
	Health  api.HealthResponse
	Status  api.StatusResponse
	Latency time.Duration
	// Admin is false when no token was configured and only /health was read.
	Admin bool
}

// NewClient creates a client for baseURL. Without a token only health is
// polled.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: 3 * time.Second,
		},
	}
}

// BaseURL returns the server being polled.
func (c *Client) BaseURL() string { return c.baseURL }

// Fetch reads /health and, with a token, the admin status. A degraded
// server still yields a snapshot.
func (c *Client) Fetch(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	start := time.Now()
	code, err := c.get(ctx, "/health", false, &snap.Health)
	if err != nil {
		return snap, err
	}
	snap.Latency = time.Since(start)
	if code != http.StatusOK && code != http.StatusServiceUnavailable {
		return snap, fmt.Errorf("health returned status %d", code)
	}

	if c.token == "" {
		return snap, nil
	}
	code, err = c.get(ctx, "/api/v1/admin/status", true, &snap.Status)
	if err != nil {
		return snap, err
	}
	switch code {
	case http.StatusOK:
		snap.Admin = true
	case http.StatusUnauthorized, http.StatusForbidden:
		return snap, ErrUnauthorized
	default:
		return snap, fmt.Errorf("status returned %d", code)
	}
	return snap, nil
}

func (c *Client) get(ctx context.Context, path string, admin bool, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusServiceUnavailable {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}
