package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type statusComponent struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type statusResponse struct {
	Status     string            `json:"status"`
	Components []statusComponent `json:"components"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the Account Pro store and your browser are reachable",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringP("output", "o", "", "Output format (json)")

	rootCmd.AddCommand(statusCmd)
}

// probe issues a GET and treats any HTTP response as reachable. The store
// answers unauthenticated requests with structured errors, which is enough
// of a liveness signal.
func probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	status := statusResponse{Status: "operational"}

	storeComp := statusComponent{Name: "Store API", Status: "operational"}
	if err := probe(cmd.Context(), getEndpoint()+"/health/version"); err != nil {
		storeComp.Status = "full_outage"
		storeComp.Detail = err.Error()
		status.Status = "full_outage"
	}
	status.Components = append(status.Components, storeComp)

	browserComp := statusComponent{Name: "Browser (DevTools)", Status: "operational"}
	if err := probe(cmd.Context(), getBrowserDebugURL()+"/json/version"); err != nil {
		browserComp.Status = "partial_outage"
		browserComp.Detail = "not running; start Chromium with --remote-debugging-port=9222"
		if status.Status == "operational" {
			status.Status = "partial_outage"
		}
	}
	status.Components = append(status.Components, browserComp)

	if output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	printStatus(status)
	return nil
}

var statusDisplay = map[string]struct {
	label string
	rgb   pterm.RGB
}{
	"operational":    {label: "Operational", rgb: pterm.NewRGB(31, 163, 130)},
	"partial_outage": {label: "Partial Outage", rgb: pterm.NewRGB(242, 85, 51)},
	"full_outage":    {label: "Unreachable", rgb: pterm.NewRGB(239, 68, 68)},
	"unknown":        {label: "Unknown", rgb: pterm.NewRGB(128, 128, 128)},
}

func getStatusDisplay(status string) (string, pterm.RGB) {
	if d, ok := statusDisplay[status]; ok {
		return d.label, d.rgb
	}
	return "Unknown", pterm.NewRGB(128, 128, 128)
}

func coloredDot(rgb pterm.RGB) string {
	return rgb.Sprint("●")
}

func printStatus(resp statusResponse) {
	label, rgb := getStatusDisplay(resp.Status)
	pterm.Println()
	pterm.Println("  " + fmt.Sprintf("Account Pro Status: %s", rgb.Sprint(label)))
	pterm.Println()

	for _, comp := range resp.Components {
		compLabel, compColor := getStatusDisplay(comp.Status)
		pterm.Printf("  %s %-22s %s\n", coloredDot(compColor), comp.Name, compLabel)
		if comp.Detail != "" {
			pterm.Printf("      %s\n", pterm.Gray(comp.Detail))
		}
	}
	pterm.Println()
}
