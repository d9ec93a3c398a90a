// Package bridge abstracts the browser capabilities the flows depend on:
// reading, writing, and clearing cookies for an origin, and opening tabs.
// The production implementation drives a locally running Chromium through the
// DevTools protocol; tests inject fakes.
package bridge

import (
	"context"
	"errors"

	"github.com/accountpro/cli/internal/cookie"
)

// ErrUnavailable indicates that no controllable browser could be reached.
// Callers decide whether that is fatal (access flow) or a degraded path
// (expiry sweep, cookie dump).
var ErrUnavailable = errors.New("no controllable browser available")

// Bridge is the injected browser capability.
type Bridge interface {
	// Cookies returns the cookies currently set for the given URL.
	Cookies(ctx context.Context, url string) ([]cookie.Descriptor, error)
	// ClearCookies removes all cookies scoped to the given URL.
	ClearCookies(ctx context.Context, url string) error
	// SetCookie applies one cookie descriptor for the given URL.
	SetCookie(ctx context.Context, url string, c cookie.Descriptor) error
	// OpenTab opens a new activated tab at the given URL.
	OpenTab(ctx context.Context, url string) error
	// ActiveTabURL returns the URL of the currently focused tab.
	ActiveTabURL(ctx context.Context) (string, error)
	// Close releases the underlying browser connection.
	Close() error
}
