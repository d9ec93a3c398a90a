package store

import (
	"context"
	"fmt"
	"net/http"
)

// Session is an authenticated user session. The secret is only returned at
// creation time and must be persisted by the caller.
type Session struct {
	ID       string `json:"$id"`
	UserID   string `json:"userId"`
	Secret   string `json:"secret"`
	Expire   string `json:"expire"`
	Provider string `json:"provider"`
}

// User is the account owning the current session.
type User struct {
	ID           string `json:"$id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Registration string `json:"registration"`
	Status       bool   `json:"status"`
}

// CreateEmailPasswordSession logs in with email and password.
func (c *Client) CreateEmailPasswordSession(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var sess Session
	if err := c.do(ctx, http.MethodPost, "/account/sessions/email", nil, body, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// GetAccount returns the user that owns the client's session.
func (c *Client) GetAccount(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/account", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteSession invalidates a session. Use "current" for the session the
// client authenticates with.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	path := fmt.Sprintf("/account/sessions/%s", sessionID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
