package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldside/rdysl/internal/summary"
)

var (
	flagSearch string
	flagFormat string
)

func newCallupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "callups",
		Short: "Scrape callup records and print the per-player summary",
		RunE:  runCallups,
	}

	cmd.Flags().StringVar(&flagSearch, "search", "", "Filter players by name substring")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")

	return cmd
}

func runCallups(cmd *cobra.Command, args []string) error {
	cfg := LoadConfig()
	if cfg.Username == "" || cfg.Password == "" {
		return fmt.Errorf("RDYSL_USERNAME and RDYSL_PASSWORD must be set")
	}

	runner := cfg.NewRunner()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	records, err := runner.ScrapeCallups(ctx)
	if err != nil {
		return fmt.Errorf("scraping callups: %w", err)
	}

	snap := summary.Aggregate(records, time.Now())
	players := summary.Filter(snap.Players, flagSearch)

	switch flagFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"success":      true,
			"summary":      players,
			"totalRecords": snap.TotalRecords,
			"lastUpdated":  snap.LastUpdated,
		})
	case "text":
		printSummaryTable(players, snap.TotalRecords)
		return nil
	default:
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}
}

func printSummaryTable(players []summary.PlayerSummary, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PLAYER\tCALLUPS\tSTATUS")
	for _, p := range players {
		fmt.Fprintf(w, "%s\t%d\t%s\n", p.PlayerName, p.CallupCount, p.Status)
	}
	w.Flush()
	fmt.Printf("\n%d players, %d callup records\n", len(players), total)
}
