package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punchd/internal/db"
	"github.com/balkashynov/punchd/internal/presence"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one inactivity sweep and exit",
	Long: `Scan for sessions with no activity past the inactivity threshold and
check out their open attendance intervals. The serve command runs this
automatically every few minutes; the standalone command exists for external
cron setups and for poking at a deployment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, gdb, err := setup()
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		ctx := context.Background()
		stats := presence.NewSweeper(ctx, newService(gdb, cfg), nil).SweepOnce(ctx)
		if stats.Error != nil {
			return fmt.Errorf("sweep failed: %w", stats.Error)
		}
		fmt.Printf("Sweep done: %d checked out, %d trackers retired (%s)\n",
			stats.Closed, stats.Deactivated, stats.Elapsed)
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Purge old inactive session trackers and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, gdb, err := setup()
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		ctx := context.Background()
		stats := presence.NewCleaner(ctx, newService(gdb, cfg), nil).PurgeOnce(ctx)
		if stats.Error != nil {
			return fmt.Errorf("purge failed: %w", stats.Error)
		}
		fmt.Printf("Purge done: %d trackers removed\n", stats.Removed)
		return nil
	},
}
