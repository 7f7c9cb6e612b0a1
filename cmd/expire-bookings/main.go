// Command expire-bookings is the CLI front for the Scheduled Expirer
// of §4.3: it runs one sweep that cancels PENDING bookings whose
// 48-hour approval window has elapsed, the same logic the in-process
// cron.v3 schedule in cmd/server runs on a timer. Grounded on the
// teacher's single-purpose cobra root command style in
// _examples/jontk-slurm-client/cmd/slurm-cli.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lalan-be/internal/clock"
	"lalan-be/internal/config"
	"lalan-be/internal/expirer"
	"lalan-be/internal/store/postgres"
)

var (
	dryRun bool
	hours  int
)

var rootCmd = &cobra.Command{
	Use:   "expire-bookings",
	Short: "Cancel PENDING bookings whose approval window has elapsed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.DatabaseConfig()
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer cfg.DB.Close()

		bookings := postgres.NewBookingStore(cfg.DB)
		exp := expirer.New(bookings, clock.System{}, time.Duration(hours)*time.Hour)

		res, err := exp.Run(context.Background(), dryRun)
		if err != nil {
			return fmt.Errorf("expire sweep: %w", err)
		}

		mode := "applied"
		if res.DryRun {
			mode = "dry-run"
		}
		fmt.Printf("expire-bookings (%s, threshold=%s): scanned=%d expired=%d skipped=%d\n",
			mode, res.Threshold, res.Scanned, res.Expired, res.Skipped)
		return nil
	},
}

func init() {
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "scan and report without committing any cancellation")
	rootCmd.Flags().IntVar(&hours, "hours", 48, "age threshold in hours for a PENDING booking to be considered stale")
}

func main() {
	config.LoadEnv()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
