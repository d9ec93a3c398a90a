package cmd

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/pterm/pterm"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/accountpro/cli/internal/access"
	"github.com/accountpro/cli/internal/bridge"
	"github.com/accountpro/cli/internal/catalog"
	"github.com/accountpro/cli/internal/cookie"
	"github.com/accountpro/cli/internal/device"
	"github.com/accountpro/cli/pkg/util"
)

// OrdersService defines the subset of the orders collection API that the
// tools commands use.
type OrdersService interface {
	ListActive(ctx context.Context, userID string) ([]catalog.Subscription, error)
	Get(ctx context.Context, orderID string) (*catalog.Subscription, error)
	SetDevices(ctx context.Context, orderID string, devices []string) error
}

// ToolsService defines the subset of the tool catalog API that the tools
// commands use.
type ToolsService interface {
	Get(ctx context.Context, toolID string) (*catalog.ToolRecord, error)
	ListByIDs(ctx context.Context, ids []string) ([]catalog.ToolRecord, error)
	ListForSale(ctx context.Context) ([]catalog.ToolRecord, error)
}

// ToolsCmd handles subscription and catalog operations independent of cobra.
type ToolsCmd struct {
	orders  OrdersService
	tools   ToolsService
	devices device.Store

	// connect dials the local browser. It may fail or be nil; subscription
	// listing works without a browser, access does not.
	connect func(ctx context.Context) (bridge.Bridge, error)
}

type ToolsListInput struct {
	UserID string
	Output string
}

type ToolsAccessInput struct {
	OrderID string
}

func (c ToolsCmd) List(ctx context.Context, in ToolsListInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	subs, err := c.orders.ListActive(ctx, in.UserID)
	if err != nil {
		return err
	}

	if len(subs) == 0 {
		if in.Output == "json" {
			fmt.Println("[]")
			return nil
		}
		pterm.Info.Println("No active subscriptions found")
		return nil
	}

	toolIDs := lo.Uniq(lo.Map(subs, func(s catalog.Subscription, _ int) string {
		return s.ToolID
	}))
	toolsByID := map[string]*catalog.ToolRecord{}
	if records, err := c.tools.ListByIDs(ctx, toolIDs); err == nil {
		for i := range records {
			toolsByID[records[i].ID] = &records[i]
		}
	} else {
		pterm.Warning.Printf("Could not resolve tool names: %v\n", err)
	}

	// Newest expiry first.
	slices.SortFunc(subs, func(a, b catalog.Subscription) int {
		return b.ExpirationDate.Compare(a.ExpirationDate)
	})

	if in.Output == "json" {
		if err := util.PrintPrettyJSON(subs); err != nil {
			return err
		}
	} else {
		now := time.Now()
		tableData := pterm.TableData{{"Order ID", "Tool", "Expires", "Devices", "State"}}
		for _, s := range subs {
			name := s.ToolName
			if tool, ok := toolsByID[s.ToolID]; ok && tool.Name != "" {
				name = tool.Name
			}
			state := "active"
			if s.Expired(now) {
				state = "expired"
			}
			tableData = append(tableData, []string{
				s.ID,
				util.OrDash(name),
				util.FormatLocal(s.ExpirationDate),
				fmt.Sprintf("%d/%d", len(s.Devices), s.DeviceLimit()),
				state,
			})
		}
		PrintTableNoPad(tableData, true)
	}

	c.sweepExpired(ctx, subs, toolsByID)
	return nil
}

// sweepExpired clears browser cookies for tools whose subscription has
// lapsed. Listing must not fail because of it, so every problem degrades to
// a warning and a missing browser is silently tolerated.
func (c ToolsCmd) sweepExpired(ctx context.Context, subs []catalog.Subscription, toolsByID map[string]*catalog.ToolRecord) {
	targets := access.SweepTargets(subs, toolsByID, time.Now())
	if len(targets) == 0 || c.connect == nil {
		return
	}

	br, err := c.connect(ctx)
	if err != nil {
		return
	}
	defer br.Close()

	flow := access.Flow{Bridge: br}
	for _, w := range flow.Sweep(ctx, targets) {
		pterm.Warning.Println(w)
	}
}

func (c ToolsCmd) Store(ctx context.Context, output string) error {
	if output != "" && output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	records, err := c.tools.ListForSale(ctx)
	if err != nil {
		return err
	}

	if output == "json" {
		if len(records) == 0 {
			fmt.Println("[]")
			return nil
		}
		return util.PrintPrettyJSON(records)
	}

	if len(records) == 0 {
		pterm.Info.Println("No tools are currently for sale")
		return nil
	}

	tableData := pterm.TableData{{"ID", "Name", "Type", "Price"}}
	for _, t := range records {
		tableData = append(tableData, []string{
			t.ID,
			util.OrDash(t.Name),
			util.OrDash(t.Type),
			util.FormatVND(t.Price),
		})
	}
	PrintTableNoPad(tableData, true)
	return nil
}

func (c ToolsCmd) Access(ctx context.Context, in ToolsAccessInput) error {
	br, err := c.connect(ctx)
	if err != nil {
		pterm.Error.Println("No controllable browser found. Start Chromium with --remote-debugging-port=9222 and retry.")
		return err
	}
	defer br.Close()

	flow := access.Flow{
		Orders:  c.orders,
		Tools:   c.tools,
		Devices: c.devices,
		Bridge:  br,
	}

	spinner, _ := pterm.DefaultSpinner.Start("Preparing tool session...")
	res, err := flow.Attempt(ctx, in.OrderID)
	if err != nil {
		spinner.Fail("Access failed")
		return describeAccessError(err)
	}
	spinner.Success("Tool opened")

	for _, w := range res.Warnings {
		pterm.Warning.Println(w)
	}
	if res.Registered {
		pterm.Info.Printf("This device is now registered on order %s\n", in.OrderID)
	}
	if res.CookiesSkipped > 0 {
		pterm.Warning.Printf("Skipped %d malformed cookie entries\n", res.CookiesSkipped)
	}
	pterm.Success.Printf("Opened %s with %d session cookies\n", res.URL, res.CookiesSet)
	return nil
}

// describeAccessError maps flow failures onto actionable messages while
// keeping the original error for the exit status.
func describeAccessError(err error) error {
	var malformed *cookie.MalformedBundleError
	switch {
	case errors.Is(err, access.ErrSubscriptionExpired):
		pterm.Error.Println("This subscription has expired or been deactivated. Renew it with 'accountpro renew <order-id>'.")
	case errors.Is(err, access.ErrDeviceQuotaExceeded):
		pterm.Error.Println("All device slots for this subscription are taken. Contact support to reset your devices.")
	case errors.Is(err, access.ErrInvalidToolConfig):
		pterm.Error.Println("This tool is not configured correctly. Contact support.")
	case errors.As(err, &malformed):
		pterm.Error.Printf("The tool's stored session data is unusable: %s\n", malformed.Reason)
	case errors.Is(err, bridge.ErrUnavailable):
		pterm.Error.Println("No controllable browser found. Start Chromium with --remote-debugging-port=9222 and retry.")
	default:
		pterm.Error.Println(err.Error())
	}
	return err
}

// --- Cobra wiring ---

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List, browse, and open your tools",
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your active subscriptions",
	Args:  cobra.NoArgs,
	RunE:  runToolsList,
}

var toolsStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Browse tools available for purchase",
	Args:  cobra.NoArgs,
	RunE:  runToolsStore,
}

var toolsAccessCmd = &cobra.Command{
	Use:   "access <order-id>",
	Short: "Open a subscribed tool in the browser with its session replayed",
	Args:  cobra.ExactArgs(1),
	RunE:  runToolsAccess,
}

func init() {
	toolsListCmd.Flags().StringP("output", "o", "", "Output format: json for raw API response")
	toolsStoreCmd.Flags().StringP("output", "o", "", "Output format: json for raw API response")

	toolsCmd.AddCommand(toolsListCmd)
	toolsCmd.AddCommand(toolsStoreCmd)
	toolsCmd.AddCommand(toolsAccessCmd)

	rootCmd.AddCommand(toolsCmd)
}

func newToolsCmd() (ToolsCmd, error) {
	client, err := newSessionClient()
	if err != nil {
		return ToolsCmd{}, err
	}
	db := getDatabaseID()
	return ToolsCmd{
		orders:  &storeOrders{client: client, db: db},
		tools:   &storeTools{client: client, db: db},
		devices: device.NewStore(),
		connect: connectBridge,
	}, nil
}

func runToolsList(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	client, err := newSessionClient()
	if err != nil {
		return err
	}
	user, err := client.GetAccount(cmd.Context())
	if err != nil {
		return err
	}

	c, err := newToolsCmd()
	if err != nil {
		return err
	}
	return c.List(cmd.Context(), ToolsListInput{UserID: user.ID, Output: output})
}

func runToolsStore(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	// The catalog is public; no session required.
	client := newStoreClient()
	c := ToolsCmd{tools: &storeTools{client: client, db: getDatabaseID()}}
	return c.Store(cmd.Context(), output)
}

func runToolsAccess(cmd *cobra.Command, args []string) error {
	c, err := newToolsCmd()
	if err != nil {
		return err
	}
	return c.Access(cmd.Context(), ToolsAccessInput{OrderID: args[0]})
}
