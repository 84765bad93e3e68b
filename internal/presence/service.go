package presence

import (
	"context"
	"time"

	"cdr.dev/slog"
	"github.com/coder/quartz"
	"gorm.io/gorm"

	"github.com/balkashynov/punchd/internal/config"
	"github.com/balkashynov/punchd/internal/db"
	"github.com/balkashynov/punchd/internal/timeutil"
)

// Service is the session-liveness tracker and the attendance state machine
// it drives. All shared state lives in the database; the service itself is
// stateless and safe for concurrent use.
type Service struct {
	db    *gorm.DB
	cfg   config.Config
	zone  timeutil.Zone
	clock quartz.Clock
	log   slog.Logger
}

func NewService(gdb *gorm.DB, cfg config.Config, log slog.Logger, clock quartz.Clock) *Service {
	return &Service{
		db:    gdb,
		cfg:   cfg,
		zone:  timeutil.NewZone(cfg.LocalOffsetMinutes),
		clock: clock,
		log:   log.Named("presence"),
	}
}

// Result reports what a tracking operation did. Tracking is best-effort: a
// failure degrades to "not tracked this time" instead of propagating, so the
// request that triggered it always succeeds. Err carries the logged cause
// for tests to assert on.
type Result struct {
	Tracked bool
	Created bool
	Err     error
}

// Degraded reports whether the operation was absorbed after a failure.
func (r Result) Degraded() bool {
	return r.Err != nil
}

// RecordHeartbeat marks an identity as alive right now. It is called on
// every authenticated request and once more right after login, so it doubles
// as the login heartbeat. The find-else-create runs in one transaction; the
// partial unique index on active trackers makes concurrent first heartbeats
// collapse to a single row.
func (s *Service) RecordHeartbeat(ctx context.Context, identityID uint, sessionToken string) Result {
	now := s.clock.Now().UTC()
	created, err := s.upsertTracker(ctx, identityID, sessionToken, now, nil)
	if err != nil {
		s.log.Debug(ctx, "heartbeat not recorded",
			slog.F("identity_id", identityID), slog.Error(err))
		return Result{Err: err}
	}
	return Result{Tracked: true, Created: created}
}

// upsertTracker finds the active tracker for the identity and bumps it, or
// creates one when this is the first sign of life. attendanceID, when set,
// is linked onto the tracker in the same transaction.
func (s *Service) upsertTracker(ctx context.Context, identityID uint, sessionToken string, now time.Time, attendanceID *uint) (created bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trackers := db.NewTrackerStore(tx)
		tracker, err := trackers.FindActive(identityID, sessionToken)
		if err != nil {
			return err
		}
		if tracker == nil {
			// No row for this token. An active row under another token means
			// a re-login without logout; adopt it rather than fight the
			// one-active-per-identity index.
			tracker, err = trackers.FindActive(identityID, "")
			if err != nil {
				return err
			}
		}
		if tracker == nil {
			tracker, err = trackers.Create(identityID, sessionToken, now)
			if err != nil {
				return err
			}
			created = true
		} else if err := trackers.Adopt(tracker.ID, sessionToken, now); err != nil {
			return err
		}
		if attendanceID != nil {
			return trackers.LinkAttendance(tracker.ID, *attendanceID)
		}
		return nil
	})
	return created, err
}

// now returns the current instant in the storage zone.
func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}
