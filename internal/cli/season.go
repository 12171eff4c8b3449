package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldside/rdysl/internal/export"
)

var flagOutFile string

func newSeasonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "season",
		Short: "Scrape every division's schedule into a CSV",
		RunE:  runSeason,
	}

	cmd.Flags().StringVar(&flagOutFile, "out", "season-games.csv", "Output CSV path")

	return cmd
}

func runSeason(cmd *cobra.Command, args []string) error {
	cfg := LoadConfig()
	if cfg.Username == "" || cfg.Password == "" {
		return fmt.Errorf("RDYSL_USERNAME and RDYSL_PASSWORD must be set")
	}

	runner := cfg.NewRunner()

	// A season run walks every division page with respectful pacing; give
	// it room.
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Minute)
	defer cancel()

	records, err := runner.ScrapeSeason(ctx)
	if err != nil {
		return fmt.Errorf("scraping season: %w", err)
	}

	f, err := os.Create(flagOutFile)
	if err != nil {
		return fmt.Errorf("creating %s: %w", flagOutFile, err)
	}
	defer f.Close()

	if err := export.WriteSeasonCSV(f, records); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}

	fmt.Printf("✓ Wrote %d games to %s\n", len(records), flagOutFile)
	return nil
}
