// Package access implements the tool-access flow: deciding whether this
// machine may be bound to a subscription, registering it against the order's
// device quota, and replaying the tool's stored session cookies into the
// browser before opening the target site.
package access

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/accountpro/cli/internal/bridge"
	"github.com/accountpro/cli/internal/catalog"
	"github.com/accountpro/cli/internal/cookie"
	"github.com/accountpro/cli/internal/device"
)

var (
	// ErrDeviceQuotaExceeded is returned when the subscription's bound-device
	// list is full and this machine is not on it. No write is issued.
	ErrDeviceQuotaExceeded = errors.New("device limit reached; contact support to reset devices")

	// ErrInvalidToolConfig is returned when the tool record lacks a target
	// URL or a cookie bundle.
	ErrInvalidToolConfig = errors.New("tool record is missing its URL or cookie bundle")

	// ErrSubscriptionExpired is returned when the order is inactive or past
	// its expiration. No device registration or cookie replay happens.
	ErrSubscriptionExpired = errors.New("subscription is expired or inactive")
)

// OrderService is the slice of the order collection the flow needs.
type OrderService interface {
	Get(ctx context.Context, orderID string) (*catalog.Subscription, error)
	SetDevices(ctx context.Context, orderID string, devices []string) error
}

// ToolService resolves tool records by ID.
type ToolService interface {
	Get(ctx context.Context, toolID string) (*catalog.ToolRecord, error)
}

// Flow orchestrates order, device identity, tool catalog, and browser bridge.
type Flow struct {
	Orders  OrderService
	Tools   ToolService
	Devices device.Store
	Bridge  bridge.Bridge
}

// Result reports what an access attempt did.
type Result struct {
	// Registered is true when this attempt bound the device to the order.
	Registered bool
	DeviceID   string
	URL        string
	CookiesSet int
	// CookiesSkipped counts bundle entries dropped for missing names or
	// undecodable shapes.
	CookiesSkipped int
	// Warnings are non-fatal events (per-cookie set failures, best-effort
	// clears) for the caller to log.
	Warnings []string
}

// Attempt authorizes this machine for the subscription and materializes a
// logged-in browser tab for its tool.
//
// Device registration is a plain read-then-write against the order document;
// two machines registering at the same instant can transiently exceed the
// device limit by one. The hosted store offers no conditional update, so this
// is accepted rather than corrected.
func (f *Flow) Attempt(ctx context.Context, orderID string) (*Result, error) {
	if f.Bridge == nil {
		return nil, bridge.ErrUnavailable
	}

	// Re-fetch the order rather than trusting a cached copy: another machine
	// may have registered since the list was loaded.
	order, err := f.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status || order.Expired(time.Now()) {
		return nil, ErrSubscriptionExpired
	}

	res := &Result{}

	token, err := f.Devices.Token()
	if err != nil {
		// Treat an unreadable identity slot as "no identity assigned yet".
		res.Warnings = append(res.Warnings, fmt.Sprintf("device identity unreadable: %v", err))
		token = ""
	}

	if !order.HasDevice(token) {
		if len(order.Devices) >= order.DeviceLimit() {
			return nil, ErrDeviceQuotaExceeded
		}
		if token == "" {
			token = device.GenerateToken()
			if err := f.Devices.SetToken(token); err != nil {
				return nil, fmt.Errorf("persist device identity: %w", err)
			}
		}
		devices := append(slices.Clone(order.Devices), token)
		if err := f.Orders.SetDevices(ctx, order.ID, devices); err != nil {
			return nil, err
		}
		res.Registered = true
	}
	res.DeviceID = token

	tool, err := f.Tools.Get(ctx, order.ToolID)
	if err != nil {
		return nil, err
	}
	if tool.URL == "" || tool.Cookie == "" {
		return nil, ErrInvalidToolConfig
	}
	res.URL = tool.URL

	// Stale-session hygiene. Best effort: a failed clear must not block the
	// login assist.
	if err := f.Bridge.ClearCookies(ctx, tool.URL); err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("clear cookies for %s: %v", tool.URL, err))
	}

	descriptors, skipped, err := cookie.ParseBundle(tool.Cookie)
	if err != nil {
		return nil, err
	}
	res.CookiesSkipped = skipped

	for _, d := range descriptors {
		if err := f.Bridge.SetCookie(ctx, tool.URL, d); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("set cookie %q: %v", d.Name, err))
			continue
		}
		res.CookiesSet++
	}

	if err := f.Bridge.OpenTab(ctx, tool.URL); err != nil {
		return res, fmt.Errorf("open tab: %w", err)
	}
	return res, nil
}

// SweepTargets returns the deduplicated tool URLs of subscriptions whose
// expiration has passed. Expired orders without a resolvable tool URL are
// ignored.
func SweepTargets(subs []catalog.Subscription, tools map[string]*catalog.ToolRecord, now time.Time) []string {
	urls := lo.FilterMap(subs, func(s catalog.Subscription, _ int) (string, bool) {
		if !s.Expired(now) {
			return "", false
		}
		tool, ok := tools[s.ToolID]
		if !ok || tool.URL == "" {
			return "", false
		}
		return tool.URL, true
	})
	return lo.Uniq(urls)
}

// Sweep clears browser cookies for each URL, fanning out and ignoring order.
// Failures are returned as warnings, never as an error: the sweep is hygiene,
// not security. Without a reachable browser it is a silent no-op.
func (f *Flow) Sweep(ctx context.Context, urls []string) []string {
	if f.Bridge == nil || len(urls) == 0 {
		return nil
	}

	var (
		mu       sync.Mutex
		warnings []string
		wg       sync.WaitGroup
	)
	for _, u := range urls {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			if err := f.Bridge.ClearCookies(ctx, u); err != nil {
				mu.Lock()
				warnings = append(warnings, fmt.Sprintf("clear cookies for %s: %v", u, err))
				mu.Unlock()
			}
		}(u)
	}
	wg.Wait()
	return warnings
}
