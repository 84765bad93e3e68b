package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punchd/internal/db"
	"github.com/balkashynov/punchd/internal/models"
	"github.com/balkashynov/punchd/internal/tui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show active sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, gdb, err := setup()
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		trackers := db.NewTrackerStore(gdb)
		load := func() ([]models.SessionTracker, error) {
			return trackers.ListActive()
		}

		watch, _ := cmd.Flags().GetBool("watch")
		if watch {
			return tui.RunWatchTUI(load, cfg.InactivityThreshold)
		}

		active, err := load()
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		fmt.Println(tui.RenderTrackers(active, cfg.InactivityThreshold, time.Now()))
		return nil
	},
}

func init() {
	statusCmd.Flags().Bool("watch", false, "Refresh the view every second")
}
