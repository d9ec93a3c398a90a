package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/require"

	"github.com/accountpro/cli/internal/bridge"
	"github.com/accountpro/cli/internal/catalog"
	"github.com/accountpro/cli/internal/cookie"
)

var outBuf bytes.Buffer

// ptermPrinters are the printers whose Writer is bound at pterm's init, so
// swapping the package default alone does not reroute them.
var ptermPrinters = []*pterm.PrefixPrinter{
	&pterm.Debug, &pterm.Info, &pterm.Success, &pterm.Warning, &pterm.Error,
}

type stdoutCapture struct {
	orig           *os.File
	w              *os.File
	done           chan struct{}
	printerWriters []io.Writer
	tableWriter    io.Writer
	spinnerWriter  io.Writer
}

var activeCapture *stdoutCapture

// setupStdoutCapture redirects stdout (both fmt and pterm output) into
// outBuf. Read the result with capturedStdout.
func setupStdoutCapture(t *testing.T) {
	t.Helper()
	outBuf.Reset()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	pterm.SetDefaultOutput(w)

	c := &stdoutCapture{orig: orig, w: w, done: make(chan struct{})}
	for _, p := range ptermPrinters {
		c.printerWriters = append(c.printerWriters, p.Writer)
		p.Writer = w
	}
	c.tableWriter = pterm.DefaultTable.Writer
	pterm.DefaultTable.Writer = w
	c.spinnerWriter = pterm.DefaultSpinner.Writer
	pterm.DefaultSpinner.Writer = w

	go func() {
		_, _ = io.Copy(&outBuf, r)
		close(c.done)
	}()
	activeCapture = c

	t.Cleanup(func() {
		if activeCapture != nil {
			restoreStdout()
		}
	})
}

func restoreStdout() {
	c := activeCapture
	activeCapture = nil
	os.Stdout = c.orig
	pterm.SetDefaultOutput(c.orig)
	for i, p := range ptermPrinters {
		p.Writer = c.printerWriters[i]
	}
	pterm.DefaultTable.Writer = c.tableWriter
	pterm.DefaultSpinner.Writer = c.spinnerWriter
	_ = c.w.Close()
	<-c.done
}

// capturedStdout restores stdout and returns everything written since
// setupStdoutCapture.
func capturedStdout(t *testing.T) string {
	t.Helper()
	require.NotNil(t, activeCapture, "setupStdoutCapture was not called")
	restoreStdout()
	return outBuf.String()
}

type FakeOrdersService struct {
	ListActiveFunc func(ctx context.Context, userID string) ([]catalog.Subscription, error)
	GetFunc        func(ctx context.Context, orderID string) (*catalog.Subscription, error)
	SetDevicesFunc func(ctx context.Context, orderID string, devices []string) error
}

func (f *FakeOrdersService) ListActive(ctx context.Context, userID string) ([]catalog.Subscription, error) {
	if f.ListActiveFunc != nil {
		return f.ListActiveFunc(ctx, userID)
	}
	return nil, nil
}

func (f *FakeOrdersService) Get(ctx context.Context, orderID string) (*catalog.Subscription, error) {
	if f.GetFunc != nil {
		return f.GetFunc(ctx, orderID)
	}
	return nil, errors.New("not found")
}

func (f *FakeOrdersService) SetDevices(ctx context.Context, orderID string, devices []string) error {
	if f.SetDevicesFunc != nil {
		return f.SetDevicesFunc(ctx, orderID, devices)
	}
	return nil
}

type FakeToolsService struct {
	GetFunc         func(ctx context.Context, toolID string) (*catalog.ToolRecord, error)
	ListByIDsFunc   func(ctx context.Context, ids []string) ([]catalog.ToolRecord, error)
	ListForSaleFunc func(ctx context.Context) ([]catalog.ToolRecord, error)
}

func (f *FakeToolsService) Get(ctx context.Context, toolID string) (*catalog.ToolRecord, error) {
	if f.GetFunc != nil {
		return f.GetFunc(ctx, toolID)
	}
	return nil, errors.New("not found")
}

func (f *FakeToolsService) ListByIDs(ctx context.Context, ids []string) ([]catalog.ToolRecord, error) {
	if f.ListByIDsFunc != nil {
		return f.ListByIDsFunc(ctx, ids)
	}
	return nil, nil
}

func (f *FakeToolsService) ListForSale(ctx context.Context) ([]catalog.ToolRecord, error) {
	if f.ListForSaleFunc != nil {
		return f.ListForSaleFunc(ctx)
	}
	return nil, nil
}

type FakeCouponService struct {
	ActiveByCodeFunc func(ctx context.Context, code string) ([]catalog.Coupon, error)
}

func (f *FakeCouponService) ActiveByCode(ctx context.Context, code string) ([]catalog.Coupon, error) {
	if f.ActiveByCodeFunc != nil {
		return f.ActiveByCodeFunc(ctx, code)
	}
	return nil, nil
}

type fakeDeviceStore struct {
	token string
}

func (f *fakeDeviceStore) Token() (string, error) { return f.token, nil }

func (f *fakeDeviceStore) SetToken(token string) error {
	f.token = token
	return nil
}

// fakeBrowser implements bridge.Bridge for command tests.
type fakeBrowser struct {
	activeURL string
	cookies   []cookie.Descriptor

	// mu guards clearedURLs; the expiry sweep clears concurrently.
	mu          sync.Mutex
	clearedURLs []string
	setCookies  []cookie.Descriptor
	openedURLs  []string
	closed      bool
}

func (f *fakeBrowser) Cookies(ctx context.Context, url string) ([]cookie.Descriptor, error) {
	return f.cookies, nil
}

func (f *fakeBrowser) ClearCookies(ctx context.Context, url string) error {
	f.mu.Lock()
	f.clearedURLs = append(f.clearedURLs, url)
	f.mu.Unlock()
	return nil
}

func (f *fakeBrowser) SetCookie(ctx context.Context, url string, c cookie.Descriptor) error {
	f.setCookies = append(f.setCookies, c)
	return nil
}

func (f *fakeBrowser) OpenTab(ctx context.Context, url string) error {
	f.openedURLs = append(f.openedURLs, url)
	return nil
}

func (f *fakeBrowser) ActiveTabURL(ctx context.Context) (string, error) {
	if f.activeURL == "" {
		return "", errors.New("no open tab found")
	}
	return f.activeURL, nil
}

func (f *fakeBrowser) Close() error {
	f.closed = true
	return nil
}

func connectTo(br bridge.Bridge) func(ctx context.Context) (bridge.Bridge, error) {
	return func(ctx context.Context) (bridge.Bridge, error) {
		return br, nil
	}
}

func connectFails() func(ctx context.Context) (bridge.Bridge, error) {
	return func(ctx context.Context) (bridge.Bridge, error) {
		return nil, bridge.ErrUnavailable
	}
}
