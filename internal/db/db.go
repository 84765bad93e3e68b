package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/balkashynov/punchd/internal/config"
	"github.com/balkashynov/punchd/internal/models"
)

// Open connects to the configured database and runs migrations. The sqlite
// driver is the default; postgres is selected with PUNCHD_DB_DRIVER=postgres.
func Open(cfg config.Config) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dial = postgres.Open(cfg.DSN)
	case "sqlite", "":
		if cfg.DBPath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
				return nil, fmt.Errorf("failed to create punchd directory: %w", err)
			}
		}
		dial = sqlite.Open(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Quiet by default
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate(gdb); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return gdb, nil
}

// OpenMemory opens a throwaway in-memory sqlite database for tests.
func OpenMemory() (*gorm.DB, error) {
	return Open(config.Config{Driver: "sqlite", DBPath: ":memory:"})
}

// migrate creates/updates the schema. The two partial unique indexes are the
// storage-level guarantee that only one tracker per identity is active and
// only one interval per employee is open; gorm's index tags cannot express
// the WHERE clause, so they are created by hand. Both sqlite and postgres
// accept this syntax.
func migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&models.Identity{},
		&models.Employee{},
		&models.ScheduleLine{},
		&models.Attendance{},
		&models.SessionTracker{},
		&models.FollowUp{},
	); err != nil {
		return err
	}

	if err := gdb.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_attendance_open ON attendances (employee_id) WHERE check_out IS NULL`,
	).Error; err != nil {
		return err
	}
	return gdb.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_tracker_active ON session_trackers (identity_id) WHERE active`,
	).Error
}

// Close closes the underlying connection pool.
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
