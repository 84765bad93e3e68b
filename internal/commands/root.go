package commands

import (
	"fmt"
	"os"

	"cdr.dev/slog"
	"cdr.dev/slog/sloggers/sloghuman"
	"github.com/coder/quartz"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/balkashynov/punchd/internal/config"
	"github.com/balkashynov/punchd/internal/db"
	"github.com/balkashynov/punchd/internal/presence"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "punchd",
	Short: "Automatic attendance check-in/check-out service",
	Long: `punchd records attendance automatically: check-in on login, check-out on
logout, and inferred check-out when a session goes silent (browser closed,
laptop shut). Run 'punchd serve' to start the HTTP service with its
background sweeper and cleanup tasks.`,
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// setup loads config and opens the database for a command invocation.
func setup() (config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	gdb, err := db.Open(cfg)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return cfg, gdb, nil
}

func newLogger() slog.Logger {
	return slog.Make(sloghuman.Sink(os.Stderr)).Leveled(slog.LevelInfo)
}

func newService(gdb *gorm.DB, cfg config.Config) *presence.Service {
	return presence.NewService(gdb, cfg, newLogger(), quartz.NewReal())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("punchd %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}
