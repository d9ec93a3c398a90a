// Package store is a minimal client for the hosted document store that backs
// Account Pro. It covers the three surfaces the CLI needs: email/password
// sessions, document queries, and document updates.
package store

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

const defaultTimeout = 30 * time.Second

// Client issues authenticated requests against a store deployment.
type Client struct {
	endpoint string
	project  string
	session  string
	jwt      string
	http     *http.Client
}

// NewClient creates a client for the given endpoint and project ID.
// The endpoint should include the API version prefix, e.g. "https://host/v1".
func NewClient(endpoint, project string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		project:  project,
		http:     &http.Client{Timeout: defaultTimeout},
	}
}

// WithSession returns a copy of the client that authenticates as the user
// owning the given session secret.
func (c *Client) WithSession(secret string) *Client {
	cp := *c
	cp.session = secret
	return &cp
}

// WithJWT returns a copy of the client that authenticates with a short-lived
// account JWT instead of a session secret.
func (c *Client) WithJWT(token string) *Client {
	cp := *c
	cp.jwt = token
	return &cp
}

// Endpoint returns the configured API endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	u := c.endpoint + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Appwrite-Project", c.project)
	if c.session != "" {
		req.Header.Set("X-Appwrite-Session", c.session)
	}
	if c.jwt != "" {
		req.Header.Set("X-Appwrite-JWT", c.jwt)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("store request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
