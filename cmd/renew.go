package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/pkg/browser"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/accountpro/cli/internal/catalog"
	"github.com/accountpro/cli/internal/renew"
	"github.com/accountpro/cli/pkg/util"
)

// RenewCmd handles renewal quoting independent of cobra.
type RenewCmd struct {
	orders  OrdersService
	tools   ToolsService
	coupons renew.CouponService

	// openURL opens the payment QR in the system browser.
	openURL func(url string) error
}

type RenewInput struct {
	OrderID      string
	PackageIndex int
	Devices      int
	CouponCode   string
	Open         bool
	Output       string
}

func (c RenewCmd) Run(ctx context.Context, in RenewInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	order, err := c.orders.Get(ctx, in.OrderID)
	if err != nil {
		return err
	}
	tool, err := c.tools.Get(ctx, order.ToolID)
	if err != nil {
		return err
	}

	packages, dropped, err := catalog.ParsePackages(tool.Package)
	if err != nil {
		return err
	}
	if dropped > 0 {
		pterm.Warning.Printf("Ignored %d malformed renewal packages\n", dropped)
	}
	if len(packages) == 0 {
		return fmt.Errorf("tool %q has no renewal packages; contact support", tool.Name)
	}

	if in.PackageIndex < 0 {
		printPackageTable(tool.Name, packages)
		return nil
	}
	if in.PackageIndex >= len(packages) {
		return fmt.Errorf("package index %d out of range; run without --package to list options", in.PackageIndex)
	}
	pkg := packages[in.PackageIndex]

	devices := in.Devices
	if devices == 0 {
		devices = order.DeviceLimit()
	}
	if devices > order.DeviceLimit() {
		return fmt.Errorf("device count %d exceeds this order's limit of %d", devices, order.DeviceLimit())
	}

	var coupon *catalog.Coupon
	if in.CouponCode != "" {
		coupon, err = renew.VerifyCoupon(ctx, c.coupons, in.CouponCode)
		if errors.Is(err, renew.ErrInvalidCoupon) {
			pterm.Error.Printf("Coupon %q is invalid or inactive\n", in.CouponCode)
			return err
		}
		if err != nil {
			return err
		}
	}

	quote, err := renew.BuildQuote(pkg, devices, coupon)
	if err != nil {
		return err
	}
	intent := renew.NewIntent(quote, order.UserID, order.ToolID)

	if in.Output == "json" {
		return util.PrintPrettyJSON(intent)
	}

	printPaymentPanel(tool.Name, quote, intent)

	if in.Open {
		if err := c.openURL(intent.QRCodeURL); err != nil {
			pterm.Warning.Printf("Could not open the QR image: %v\n", err)
		}
	}
	return nil
}

func printPackageTable(toolName string, packages []catalog.RenewalPackage) {
	pterm.Info.Printf("Renewal packages for %s (pass --package <index> to quote one):\n", toolName)
	tableData := pterm.TableData{{"Index", "Package", "Duration", "Price / device"}}
	for i, p := range packages {
		tableData = append(tableData, []string{
			strconv.Itoa(i),
			p.Label(),
			fmt.Sprintf("%d days", p.Days),
			util.FormatVND(p.Price),
		})
	}
	PrintTableNoPad(tableData, true)
}

var paymentPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(1, 2)

func printPaymentPanel(toolName string, q *renew.Quote, intent *renew.PaymentIntent) {
	var b strings.Builder
	fmt.Fprintf(&b, "Renew %s  (%s, %d devices)\n\n", toolName, q.Package.Label(), q.DeviceCount)
	fmt.Fprintf(&b, "Original price:  %s\n", util.FormatVND(q.OriginalPrice))
	if q.Coupon != nil {
		fmt.Fprintf(&b, "Coupon %s:       -%s (%.0f%%)\n", q.Coupon.Code, util.FormatVND(q.Discount), q.Coupon.Percent)
	}
	fmt.Fprintf(&b, "Amount due:      %s\n\n", util.FormatVND(q.FinalPrice))
	fmt.Fprintf(&b, "Bank:            %s\n", intent.Bank.BankName)
	fmt.Fprintf(&b, "Account:         %s (%s)\n", intent.Bank.AccountNo, intent.Bank.AccountName)
	fmt.Fprintf(&b, "Transfer note:   %s\n\n", intent.Reference)
	fmt.Fprintf(&b, "QR image:        %s", intent.QRCodeURL)

	fmt.Println(paymentPanelStyle.Render(b.String()))
	pterm.Info.Println("Keep the transfer note exactly as shown; it is how your payment is matched.")
}

// --- Cobra wiring ---

var renewCmd = &cobra.Command{
	Use:   "renew <order-id>",
	Short: "Quote a subscription renewal and show payment instructions",
	Long: `Quote a renewal for one of your subscriptions. Without --package the
available packages are listed; with it a payment quote is produced, including
the bank transfer details and a QR image link.

Payment is confirmed out of band: transfer the exact amount with the shown
note and the subscription is extended once the payment is matched.`,
	Args: cobra.ExactArgs(1),
	RunE: runRenew,
}

func init() {
	renewCmd.Flags().IntP("package", "k", -1, "Package index to quote (omit to list packages)")
	renewCmd.Flags().IntP("devices", "d", 0, "Device count to renew for (default: the order's device limit)")
	renewCmd.Flags().StringP("coupon", "c", "", "Coupon code to apply")
	renewCmd.Flags().Bool("open", false, "Open the payment QR image in the browser")
	renewCmd.Flags().StringP("output", "o", "", "Output format: json for the payment payload")

	rootCmd.AddCommand(renewCmd)
}

func runRenew(cmd *cobra.Command, args []string) error {
	pkgIndex, _ := cmd.Flags().GetInt("package")
	devices, _ := cmd.Flags().GetInt("devices")
	couponCode, _ := cmd.Flags().GetString("coupon")
	open, _ := cmd.Flags().GetBool("open")
	output, _ := cmd.Flags().GetString("output")

	client, err := newSessionClient()
	if err != nil {
		return err
	}
	db := getDatabaseID()
	c := RenewCmd{
		orders:  &storeOrders{client: client, db: db},
		tools:   &storeTools{client: client, db: db},
		coupons: &storeCoupons{client: client, db: db},
		openURL: browser.OpenURL,
	}
	return c.Run(cmd.Context(), RenewInput{
		OrderID:      args[0],
		PackageIndex: pkgIndex,
		Devices:      devices,
		CouponCode:   couponCode,
		Open:         open,
		Output:       output,
	})
}
