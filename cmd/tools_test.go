package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/accountpro/cli/internal/access"
	"github.com/accountpro/cli/internal/catalog"
)

const testBundle = `[{"name":"sid","value":"abc"},{"name":"csrf","value":"tok"}]`

func TestToolsList_PrintsSubscriptions(t *testing.T) {
	setupStdoutCapture(t)

	now := time.Now()
	orders := &FakeOrdersService{
		ListActiveFunc: func(ctx context.Context, userID string) ([]catalog.Subscription, error) {
			assert.Equal(t, "user-1", userID)
			return []catalog.Subscription{
				{ID: "order-1", ToolID: "tool-1", ExpirationDate: now.Add(48 * time.Hour), MaxDevice: 3, Devices: []string{"dev-a"}},
				{ID: "order-2", ToolID: "tool-2", ToolName: "Fallback Name", ExpirationDate: now.Add(-24 * time.Hour)},
			}, nil
		},
	}
	tools := &FakeToolsService{
		ListByIDsFunc: func(ctx context.Context, ids []string) ([]catalog.ToolRecord, error) {
			assert.ElementsMatch(t, []string{"tool-1", "tool-2"}, ids)
			return []catalog.ToolRecord{{ID: "tool-1", Name: "Design Suite"}}, nil
		},
	}

	c := ToolsCmd{orders: orders, tools: tools, connect: connectFails()}
	err := c.List(context.Background(), ToolsListInput{UserID: "user-1"})
	require.NoError(t, err)

	out := capturedStdout(t)
	assert.Contains(t, out, "order-1")
	assert.Contains(t, out, "Design Suite")
	assert.Contains(t, out, "1/3")
	assert.Contains(t, out, "Fallback Name")
	assert.Contains(t, out, "expired")
}

func TestToolsList_Empty(t *testing.T) {
	setupStdoutCapture(t)

	c := ToolsCmd{orders: &FakeOrdersService{}, tools: &FakeToolsService{}, connect: connectFails()}
	err := c.List(context.Background(), ToolsListInput{UserID: "user-1"})
	require.NoError(t, err)

	assert.Contains(t, capturedStdout(t), "No active subscriptions")
}

func TestToolsList_SweepsExpiredToolCookies(t *testing.T) {
	setupStdoutCapture(t)

	now := time.Now()
	orders := &FakeOrdersService{
		ListActiveFunc: func(ctx context.Context, userID string) ([]catalog.Subscription, error) {
			return []catalog.Subscription{
				{ID: "order-1", ToolID: "tool-1", ExpirationDate: now.Add(-time.Hour)},
				{ID: "order-2", ToolID: "tool-2", ExpirationDate: now.Add(time.Hour)},
			}, nil
		},
	}
	tools := &FakeToolsService{
		ListByIDsFunc: func(ctx context.Context, ids []string) ([]catalog.ToolRecord, error) {
			return []catalog.ToolRecord{
				{ID: "tool-1", Name: "Lapsed", URL: "https://lapsed.example.com/"},
				{ID: "tool-2", Name: "Current", URL: "https://current.example.com/"},
			}, nil
		},
	}
	br := &fakeBrowser{}

	c := ToolsCmd{orders: orders, tools: tools, connect: connectTo(br)}
	require.NoError(t, c.List(context.Background(), ToolsListInput{UserID: "user-1"}))
	capturedStdout(t)

	assert.Equal(t, []string{"https://lapsed.example.com/"}, br.clearedURLs)
	assert.True(t, br.closed)
}

func TestToolsList_JSONOutput(t *testing.T) {
	setupStdoutCapture(t)

	now := time.Now()
	orders := &FakeOrdersService{
		ListActiveFunc: func(ctx context.Context, userID string) ([]catalog.Subscription, error) {
			return []catalog.Subscription{
				{ID: "order-1", ToolID: "tool-1", ExpirationDate: now.Add(time.Hour)},
			}, nil
		},
	}

	c := ToolsCmd{orders: orders, tools: &FakeToolsService{}, connect: connectFails()}
	require.NoError(t, c.List(context.Background(), ToolsListInput{UserID: "user-1", Output: "json"}))

	out := capturedStdout(t)
	assert.Equal(t, "order-1", gjson.Get(out, "0.$id").String())
}

func TestToolsStore_PrintsCatalog(t *testing.T) {
	setupStdoutCapture(t)

	tools := &FakeToolsService{
		ListForSaleFunc: func(ctx context.Context) ([]catalog.ToolRecord, error) {
			return []catalog.ToolRecord{
				{ID: "tool-1", Name: "Design Suite", Type: "design", Price: 100000},
			}, nil
		},
	}

	c := ToolsCmd{tools: tools}
	require.NoError(t, c.Store(context.Background(), ""))

	out := capturedStdout(t)
	assert.Contains(t, out, "Design Suite")
	assert.Contains(t, out, "100.000₫")
}

func TestToolsAccess_OpensToolWithSession(t *testing.T) {
	setupStdoutCapture(t)

	var savedDevices []string
	orders := &FakeOrdersService{
		GetFunc: func(ctx context.Context, orderID string) (*catalog.Subscription, error) {
			return &catalog.Subscription{ID: orderID, ToolID: "tool-1", MaxDevice: 2, Status: true, ExpirationDate: time.Now().Add(time.Hour)}, nil
		},
		SetDevicesFunc: func(ctx context.Context, orderID string, devices []string) error {
			savedDevices = devices
			return nil
		},
	}
	tools := &FakeToolsService{
		GetFunc: func(ctx context.Context, toolID string) (*catalog.ToolRecord, error) {
			return &catalog.ToolRecord{ID: toolID, URL: "https://tool.example.com/", Cookie: testBundle}, nil
		},
	}
	br := &fakeBrowser{}

	c := ToolsCmd{orders: orders, tools: tools, devices: &fakeDeviceStore{}, connect: connectTo(br)}
	err := c.Access(context.Background(), ToolsAccessInput{OrderID: "order-1"})
	require.NoError(t, err)

	out := capturedStdout(t)
	assert.Contains(t, out, "now registered")
	assert.Contains(t, out, "2 session cookies")

	require.Len(t, savedDevices, 1)
	assert.Len(t, br.setCookies, 2)
	assert.Equal(t, []string{"https://tool.example.com/"}, br.openedURLs)
	assert.True(t, br.closed)
}

func TestToolsAccess_QuotaExceeded(t *testing.T) {
	setupStdoutCapture(t)

	orders := &FakeOrdersService{
		GetFunc: func(ctx context.Context, orderID string) (*catalog.Subscription, error) {
			return &catalog.Subscription{ID: orderID, ToolID: "tool-1", MaxDevice: 1, Devices: []string{"someone-else"}, Status: true, ExpirationDate: time.Now().Add(time.Hour)}, nil
		},
	}

	c := ToolsCmd{orders: orders, tools: &FakeToolsService{}, devices: &fakeDeviceStore{}, connect: connectTo(&fakeBrowser{})}
	err := c.Access(context.Background(), ToolsAccessInput{OrderID: "order-1"})
	require.ErrorIs(t, err, access.ErrDeviceQuotaExceeded)

	assert.Contains(t, capturedStdout(t), "device slots")
}

func TestToolsAccess_ExpiredSubscription(t *testing.T) {
	setupStdoutCapture(t)

	orders := &FakeOrdersService{
		GetFunc: func(ctx context.Context, orderID string) (*catalog.Subscription, error) {
			return &catalog.Subscription{ID: orderID, ToolID: "tool-1", MaxDevice: 2, Status: true, ExpirationDate: time.Now().Add(-time.Hour)}, nil
		},
	}
	br := &fakeBrowser{}

	c := ToolsCmd{orders: orders, tools: &FakeToolsService{}, devices: &fakeDeviceStore{}, connect: connectTo(br)}
	err := c.Access(context.Background(), ToolsAccessInput{OrderID: "order-1"})
	require.ErrorIs(t, err, access.ErrSubscriptionExpired)

	assert.Contains(t, capturedStdout(t), "expired")
	assert.Empty(t, br.openedURLs)
}

func TestToolsAccess_NoBrowser(t *testing.T) {
	setupStdoutCapture(t)

	c := ToolsCmd{orders: &FakeOrdersService{}, tools: &FakeToolsService{}, devices: &fakeDeviceStore{}, connect: connectFails()}
	err := c.Access(context.Background(), ToolsAccessInput{OrderID: "order-1"})
	require.Error(t, err)

	assert.Contains(t, capturedStdout(t), "remote-debugging-port")
}
