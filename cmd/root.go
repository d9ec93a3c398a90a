package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/accountpro/cli/internal/bridge"
	"github.com/accountpro/cli/internal/catalog"
	"github.com/accountpro/cli/pkg/store"
)

// Build metadata. Version is overridden at release time.
var metadata = struct {
	Version string
}{
	Version: "v0.1.0",
}

const (
	defaultEndpoint = "https://host-appwrite.kingoftool.net/v1"
	defaultProject  = "68f925ba0017199b6c35"
)

var rootCmd = &cobra.Command{
	Use:   "accountpro",
	Short: "Manage your Account Pro tool subscriptions",
	Long: `Account Pro CLI manages your purchased tool subscriptions: log in,
list your tools, open a tool with its stored session replayed into your
browser, and prepare renewal payments.

Browser features drive a locally running Chromium instance through its
remote-debugging port (start it with --remote-debugging-port=9222, or point
ACCOUNTPRO_BROWSER_URL at another instance).`,
	SilenceUsage: true,
	Version:      metadata.Version,
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	// Local overrides for endpoint, project, and browser URL.
	_ = godotenv.Load()

	if err := fang.Execute(ctx, rootCmd, fang.WithVersion(metadata.Version)); err != nil {
		return 1
	}
	return 0
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEndpoint() string {
	return strings.TrimRight(envOr("ACCOUNTPRO_ENDPOINT", defaultEndpoint), "/")
}

func getProject() string {
	return envOr("ACCOUNTPRO_PROJECT", defaultProject)
}

func getDatabaseID() string {
	return envOr("ACCOUNTPRO_DATABASE", catalog.DatabaseID)
}

func getBrowserDebugURL() string {
	return strings.TrimRight(envOr("ACCOUNTPRO_BROWSER_URL", bridge.DefaultDebugURL), "/")
}

// newStoreClient returns an unauthenticated client for the configured
// deployment.
func newStoreClient() *store.Client {
	return store.NewClient(getEndpoint(), getProject())
}

// newSessionClient returns a client authenticated as the logged-in user.
// A JWT in ACCOUNTPRO_JWT takes precedence over the persisted session.
func newSessionClient() (*store.Client, error) {
	c := newStoreClient()
	if token := strings.TrimSpace(os.Getenv("ACCOUNTPRO_JWT")); token != "" {
		return c.WithJWT(token), nil
	}
	secret, _, err := loadSession()
	if err != nil {
		return nil, err
	}
	return c.WithSession(secret), nil
}

// connectBridge dials the local browser's debugging endpoint.
func connectBridge(ctx context.Context) (bridge.Bridge, error) {
	return bridge.Connect(ctx, getBrowserDebugURL())
}

// PrintTableNoPad renders tabular output in the CLI's standard table style.
func PrintTableNoPad(data pterm.TableData, hasHeader bool) {
	_ = pterm.DefaultTable.WithHasHeader(hasHeader).WithData(data).Render()
}
