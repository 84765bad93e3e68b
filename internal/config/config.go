package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults mirror the behaviour of the attendance rules this service
// implements: a 15 minute grace period for lateness, a 15 minute silence
// threshold before a session counts as gone, and a one day retention window
// for dead trackers.
const (
	DefaultAddr                = ":8080"
	DefaultLocalOffsetMinutes  = 10 * 60 // AEST, fixed, no DST
	DefaultGraceThreshold      = 15 * time.Minute
	DefaultInactivityThreshold = 15 * time.Minute
	DefaultSweepInterval       = 5 * time.Minute
	DefaultCleanupInterval     = 24 * time.Hour
	DefaultRetention           = 24 * time.Hour
	DefaultRunawayGuard        = 12 * time.Hour
	DefaultClampSpan           = 8*time.Hour + 30*time.Minute
)

// Config holds everything punchd reads from the environment. A .env file in
// the working directory is honoured when present.
type Config struct {
	// Driver is "sqlite" or "postgres". DSN is the postgres connection
	// string; sqlite uses DBPath instead.
	Driver string
	DSN    string
	DBPath string

	Addr      string
	JWTSecret string

	// LocalOffsetMinutes is the fixed local zone east of UTC.
	LocalOffsetMinutes int

	GraceThreshold      time.Duration
	InactivityThreshold time.Duration
	SweepInterval       time.Duration
	CleanupInterval     time.Duration
	Retention           time.Duration
	RunawayGuard        time.Duration
	ClampSpan           time.Duration

	// NotifyAudience is the list of identity logins that receive a copy of
	// every late-arrival follow-up.
	NotifyAudience []string
}

// Load reads configuration from the environment, filling defaults for
// anything unset.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Driver:              envString("PUNCHD_DB_DRIVER", "sqlite"),
		DSN:                 os.Getenv("PUNCHD_DB_DSN"),
		Addr:                envString("PUNCHD_ADDR", DefaultAddr),
		JWTSecret:           os.Getenv("PUNCHD_JWT_SECRET"),
		LocalOffsetMinutes:  DefaultLocalOffsetMinutes,
		GraceThreshold:      envDuration("PUNCHD_GRACE_THRESHOLD", DefaultGraceThreshold),
		InactivityThreshold: envDuration("PUNCHD_INACTIVITY_THRESHOLD", DefaultInactivityThreshold),
		SweepInterval:       envDuration("PUNCHD_SWEEP_INTERVAL", DefaultSweepInterval),
		CleanupInterval:     envDuration("PUNCHD_CLEANUP_INTERVAL", DefaultCleanupInterval),
		Retention:           envDuration("PUNCHD_RETENTION", DefaultRetention),
		RunawayGuard:        envDuration("PUNCHD_RUNAWAY_GUARD", DefaultRunawayGuard),
		ClampSpan:           envDuration("PUNCHD_CLAMP_SPAN", DefaultClampSpan),
	}

	if v := os.Getenv("PUNCHD_LOCAL_OFFSET_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PUNCHD_LOCAL_OFFSET_MINUTES %q: %w", v, err)
		}
		cfg.LocalOffsetMinutes = n
	}

	if v := os.Getenv("PUNCHD_NOTIFY_AUDIENCE"); v != "" {
		for _, login := range strings.Split(v, ",") {
			if login = strings.TrimSpace(login); login != "" {
				cfg.NotifyAudience = append(cfg.NotifyAudience, login)
			}
		}
	}

	if cfg.DBPath = os.Getenv("PUNCHD_DB_PATH"); cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".punchd", "punchd.db")
	}

	if cfg.Driver == "postgres" && cfg.DSN == "" {
		return Config{}, fmt.Errorf("PUNCHD_DB_DSN is required with the postgres driver")
	}

	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
