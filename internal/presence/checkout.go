package presence

import (
	"context"
	"fmt"

	"cdr.dev/slog"

	"github.com/balkashynov/punchd/internal/db"
)

// OnLogout closes the identity's open attendance interval and deactivates
// its liveness trackers. It is called by the explicit logout path before the
// session is invalidated; logout must succeed regardless, so every failure
// is logged and absorbed.
func (s *Service) OnLogout(ctx context.Context, identityID uint) {
	if err := s.checkOut(ctx, identityID); err != nil {
		s.log.Warn(ctx, "automatic check-out failed",
			slog.F("identity_id", identityID), slog.Error(err))
	}
}

func (s *Service) checkOut(ctx context.Context, identityID uint) error {
	gdb := s.db.WithContext(ctx)

	// The user is leaving: stop tracking first so a racing sweep tick does
	// not pick the same trackers up.
	trackers := db.NewTrackerStore(gdb)
	if _, err := trackers.Deactivate(identityID); err != nil {
		s.log.Debug(ctx, "failed to deactivate trackers on logout",
			slog.F("identity_id", identityID), slog.Error(err))
	}

	dir := db.NewDirectoryStore(gdb)
	emp, err := dir.EmployeeByIdentity(identityID)
	if err != nil {
		return fmt.Errorf("resolve employee: %w", err)
	}
	if emp == nil {
		return nil
	}

	atts := db.NewAttendanceStore(gdb)
	open, err := atts.FindOpen(emp.ID)
	if err != nil {
		return fmt.Errorf("find open interval: %w", err)
	}
	if open == nil {
		return nil
	}

	if err := atts.CloseInterval(open.ID, s.now()); err != nil {
		return fmt.Errorf("close interval: %w", err)
	}
	s.log.Info(ctx, "checked out on logout",
		slog.F("employee", emp.Name), slog.F("attendance_id", open.ID))
	return nil
}
