package presence

import (
	"context"
	"fmt"
	"time"

	"cdr.dev/slog"
	"gorm.io/gorm"

	"github.com/balkashynov/punchd/internal/db"
	"github.com/balkashynov/punchd/internal/models"
	"github.com/balkashynov/punchd/internal/timeutil"
)

// Follow-up subjects for late arrivals. The first is addressed to the
// employee, the second to every notification-audience member.
const (
	SubjectLateArrival         = "Late Arrival"
	SubjectEmployeeLateArrival = "Employee Late Arrival"
)

// OnAuthenticated opens an attendance interval for the identity's employee,
// idempotently, and computes lateness against the weekly schedule. It is
// called once per successful credential check. Login authority lies with the
// caller: nothing here may fail the login, so every error is logged and
// absorbed.
func (s *Service) OnAuthenticated(ctx context.Context, identityID uint, sessionToken string) {
	if err := s.checkIn(ctx, identityID, sessionToken); err != nil {
		s.log.Warn(ctx, "automatic check-in failed",
			slog.F("identity_id", identityID), slog.Error(err))
	}
}

func (s *Service) checkIn(ctx context.Context, identityID uint, sessionToken string) error {
	dir := db.NewDirectoryStore(s.db.WithContext(ctx))
	emp, err := dir.EmployeeByIdentity(identityID)
	if err != nil {
		return fmt.Errorf("resolve employee: %w", err)
	}
	if emp == nil {
		// Identity without an employee record: tracked, but no attendance.
		s.log.Debug(ctx, "no employee linked to identity, skipping check-in",
			slog.F("identity_id", identityID))
		return nil
	}

	now := s.now()
	var (
		att       *models.Attendance
		duplicate bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		atts := db.NewAttendanceStore(tx)
		open, err := atts.FindOpen(emp.ID)
		if err != nil {
			return err
		}
		if open != nil {
			// Duplicate login signal while an interval is already open.
			att, duplicate = open, true
			return nil
		}
		att, err = atts.OpenInterval(emp.ID, now)
		return err
	})
	if err != nil {
		return fmt.Errorf("open interval: %w", err)
	}

	// Attach the interval to the liveness tracker. Tracker trouble must not
	// undo the check-in, so this is its own unit of work.
	if _, err := s.upsertTracker(ctx, identityID, sessionToken, now, &att.ID); err != nil {
		s.log.Debug(ctx, "tracker update failed after check-in",
			slog.F("identity_id", identityID), slog.Error(err))
	}

	if duplicate {
		return nil
	}
	s.recordLateness(ctx, emp, att)
	return nil
}

// recordLateness compares the interval start against the employee's morning
// schedule line for the local weekday. A delay beyond the grace threshold is
// persisted on the interval, rounded to two decimal places, and raises one
// follow-up for the employee plus one per audience member. No schedule or no
// matching line means lateness simply does not apply.
func (s *Service) recordLateness(ctx context.Context, emp *models.Employee, att *models.Attendance) {
	local := s.zone.ToLocal(att.CheckIn)
	line := morningLine(emp.Schedule, local.Weekday())
	if line == nil {
		return
	}

	expected := s.zone.ExpectedAt(local, line.StartHour)
	delay := local.Sub(expected)
	if delay <= s.cfg.GraceThreshold {
		return
	}
	late := timeutil.RoundMinutes(delay)

	atts := db.NewAttendanceStore(s.db.WithContext(ctx))
	if err := atts.SetLateMinutes(att.ID, late); err != nil {
		s.log.Warn(ctx, "failed to record late minutes",
			slog.F("attendance_id", att.ID), slog.Error(err))
		return
	}
	s.log.Info(ctx, "late arrival",
		slog.F("employee", emp.Name),
		slog.F("late_minutes", late),
		slog.F("expected", expected),
		slog.F("actual", local))

	s.notifyLateArrival(ctx, emp, late)
}

func (s *Service) notifyLateArrival(ctx context.Context, emp *models.Employee, late float64) {
	followups := db.NewFollowUpStore(s.db.WithContext(ctx))
	due := s.now()

	if emp.IdentityID != nil {
		_, err := followups.Create(SubjectLateArrival, emp.ID, *emp.IdentityID,
			fmt.Sprintf("You arrived late by %.2f minutes.", late), due)
		if err != nil {
			s.log.Warn(ctx, "failed to create late-arrival follow-up",
				slog.F("employee_id", emp.ID), slog.Error(err))
		}
	}

	dir := db.NewDirectoryStore(s.db.WithContext(ctx))
	audience, err := dir.IdentitiesByLogins(s.cfg.NotifyAudience)
	if err != nil {
		s.log.Warn(ctx, "failed to resolve notification audience", slog.Error(err))
		return
	}
	for _, member := range audience {
		if emp.IdentityID != nil && member.ID == *emp.IdentityID {
			continue
		}
		_, err := followups.Create(SubjectEmployeeLateArrival, emp.ID, member.ID,
			fmt.Sprintf("Employee %s arrived late by %.2f minutes.", emp.Name, late), due)
		if err != nil {
			s.log.Warn(ctx, "failed to create audience follow-up",
				slog.F("assignee_id", member.ID), slog.Error(err))
		}
	}
}

// morningLine picks the schedule line for the weekday and morning period.
// Lines arrive ordered by start_hour then id, so a calendar with several
// morning lines on the same day resolves deterministically to the earliest
// start.
func morningLine(schedule []models.ScheduleLine, day time.Weekday) *models.ScheduleLine {
	for i := range schedule {
		l := &schedule[i]
		if l.Weekday == day && l.Period == models.PeriodMorning {
			return l
		}
	}
	return nil
}
