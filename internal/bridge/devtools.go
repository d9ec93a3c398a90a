package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/accountpro/cli/internal/cookie"
)

// DefaultDebugURL is the standard Chromium remote-debugging endpoint.
const DefaultDebugURL = "http://127.0.0.1:9222"

const maxMessageSize = 4 << 20

// DevTools drives a Chromium instance over the DevTools protocol websocket.
// Calls are serialized; the protocol connection carries one request at a time
// and unrelated events are skipped while waiting for a response.
type DevTools struct {
	conn      *websocket.Conn
	sessionID string

	mu     sync.Mutex
	nextID int64
}

type cdpMessage struct {
	ID        int64           `json:"id,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	Method    string          `json:"method,omitempty"`
	Params    any             `json:"params,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     *cdpError       `json:"error,omitempty"`
}

type cdpError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type cdpTarget struct {
	TargetID string `json:"targetId"`
	Type     string `json:"type"`
	URL      string `json:"url"`
	Attached bool   `json:"attached"`
}

// Connect discovers the browser's websocket endpoint via /json/version,
// dials it, and attaches to a page target so cookie operations can run in a
// page session. A browser that cannot be reached yields ErrUnavailable.
func Connect(ctx context.Context, debugURL string) (*DevTools, error) {
	wsURL, err := discoverWebSocketURL(ctx, debugURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	conn.SetReadLimit(maxMessageSize)

	d := &DevTools{conn: conn}
	if err := d.attachPageSession(ctx); err != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "")
		return nil, err
	}
	return d, nil
}

func discoverWebSocketURL(ctx context.Context, debugURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, debugURL+"/json/version", nil)
	if err != nil {
		return "", err
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("version endpoint returned %s", resp.Status)
	}

	var version struct {
		WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&version); err != nil {
		return "", err
	}
	if version.WebSocketDebuggerURL == "" {
		return "", fmt.Errorf("no websocket debugger URL advertised")
	}
	return version.WebSocketDebuggerURL, nil
}

// attachPageSession attaches to an existing page target, creating a blank one
// if the browser has none. Cookie methods live in the Network domain, which is
// only available inside a page session.
func (d *DevTools) attachPageSession(ctx context.Context) error {
	target, err := d.firstPageTarget(ctx)
	if err != nil {
		return err
	}
	targetID := ""
	if target != nil {
		targetID = target.TargetID
	} else {
		res, err := d.call(ctx, "", "Target.createTarget", map[string]any{"url": "about:blank"})
		if err != nil {
			return fmt.Errorf("create page target: %w", err)
		}
		var created struct {
			TargetID string `json:"targetId"`
		}
		if err := json.Unmarshal(res, &created); err != nil {
			return fmt.Errorf("decode created target: %w", err)
		}
		targetID = created.TargetID
	}

	res, err := d.call(ctx, "", "Target.attachToTarget", map[string]any{
		"targetId": targetID,
		"flatten":  true,
	})
	if err != nil {
		return fmt.Errorf("attach to target: %w", err)
	}
	var attached struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(res, &attached); err != nil {
		return fmt.Errorf("decode attach response: %w", err)
	}
	d.sessionID = attached.SessionID
	return nil
}

func (d *DevTools) firstPageTarget(ctx context.Context) (*cdpTarget, error) {
	res, err := d.call(ctx, "", "Target.getTargets", nil)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	var infos struct {
		TargetInfos []cdpTarget `json:"targetInfos"`
	}
	if err := json.Unmarshal(res, &infos); err != nil {
		return nil, fmt.Errorf("decode targets: %w", err)
	}
	for i := range infos.TargetInfos {
		if infos.TargetInfos[i].Type == "page" {
			return &infos.TargetInfos[i], nil
		}
	}
	return nil, nil
}

// call performs one protocol request and waits for its response, discarding
// interleaved events.
func (d *DevTools) call(ctx context.Context, sessionID, method string, params any) (json.RawMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID

	req := cdpMessage{ID: id, SessionID: sessionID, Method: method, Params: params}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", method, err)
	}
	if err := d.conn.Write(ctx, websocket.MessageText, payload); err != nil {
		return nil, fmt.Errorf("write %s: %w", method, err)
	}

	for {
		_, data, err := d.conn.Read(ctx)
		if err != nil {
			return nil, fmt.Errorf("read %s response: %w", method, err)
		}
		var msg cdpMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("decode %s response: %w", method, err)
		}
		if msg.ID != id {
			continue // event or stale response
		}
		if msg.Error != nil {
			return nil, fmt.Errorf("%s: %s", method, msg.Error.Message)
		}
		return msg.Result, nil
	}
}

type cdpCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

// Cookies returns the cookies the browser would send for the given URL.
func (d *DevTools) Cookies(ctx context.Context, url string) ([]cookie.Descriptor, error) {
	res, err := d.call(ctx, d.sessionID, "Network.getCookies", map[string]any{"urls": []string{url}})
	if err != nil {
		return nil, err
	}
	var out struct {
		Cookies []cdpCookie `json:"cookies"`
	}
	if err := json.Unmarshal(res, &out); err != nil {
		return nil, fmt.Errorf("decode cookies: %w", err)
	}

	descriptors := make([]cookie.Descriptor, 0, len(out.Cookies))
	for _, c := range out.Cookies {
		descriptors = append(descriptors, cookie.Descriptor{
			Name:           c.Name,
			Value:          c.Value,
			Domain:         c.Domain,
			Path:           c.Path,
			Secure:         c.Secure,
			HTTPOnly:       c.HTTPOnly,
			ExpirationDate: c.Expires,
			SameSite:       sameSiteFromProtocol(c.SameSite),
		})
	}
	return descriptors, nil
}

// ClearCookies removes every cookie scoped to the given URL.
func (d *DevTools) ClearCookies(ctx context.Context, url string) error {
	existing, err := d.Cookies(ctx, url)
	if err != nil {
		return err
	}
	for _, c := range existing {
		_, err := d.call(ctx, d.sessionID, "Network.deleteCookies", map[string]any{
			"name": c.Name,
			"url":  url,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// SetCookie applies a single cookie descriptor for the given URL.
func (d *DevTools) SetCookie(ctx context.Context, url string, c cookie.Descriptor) error {
	params := map[string]any{
		"url":      url,
		"name":     c.Name,
		"value":    c.Value,
		"secure":   c.Secure,
		"httpOnly": c.HTTPOnly,
	}
	if c.Domain != "" {
		params["domain"] = c.Domain
	}
	if c.Path != "" {
		params["path"] = c.Path
	}
	if c.ExpirationDate > 0 {
		params["expires"] = c.ExpirationDate
	}
	if ss := sameSiteToProtocol(c.SameSite); ss != "" {
		params["sameSite"] = ss
	}

	res, err := d.call(ctx, d.sessionID, "Network.setCookie", params)
	if err != nil {
		return err
	}
	var out struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(res, &out); err != nil {
		return fmt.Errorf("decode setCookie response: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("browser rejected cookie %q", c.Name)
	}
	return nil
}

// OpenTab opens a new activated tab at the given URL.
func (d *DevTools) OpenTab(ctx context.Context, url string) error {
	_, err := d.call(ctx, "", "Target.createTarget", map[string]any{"url": url})
	return err
}

// ActiveTabURL returns the URL of the first page target.
func (d *DevTools) ActiveTabURL(ctx context.Context) (string, error) {
	target, err := d.firstPageTarget(ctx)
	if err != nil {
		return "", err
	}
	if target == nil {
		return "", fmt.Errorf("no open tab found")
	}
	return target.URL, nil
}

// Close shuts down the protocol connection.
func (d *DevTools) Close() error {
	return d.conn.Close(websocket.StatusNormalClosure, "")
}

// sameSiteToProtocol maps the extension-style sameSite values stored in
// cookie bundles onto the protocol's enum.
func sameSiteToProtocol(v string) string {
	switch v {
	case "no_restriction", "None":
		return "None"
	case "lax", "Lax":
		return "Lax"
	case "strict", "Strict":
		return "Strict"
	default:
		return ""
	}
}

func sameSiteFromProtocol(v string) string {
	switch v {
	case "None":
		return "no_restriction"
	case "Lax":
		return "lax"
	case "Strict":
		return "strict"
	default:
		return ""
	}
}
