package presence_test

import (
	"context"
	"testing"
	"time"

	"cdr.dev/slog/sloggers/slogtest"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/balkashynov/punchd/internal/config"
	"github.com/balkashynov/punchd/internal/db"
	"github.com/balkashynov/punchd/internal/models"
	"github.com/balkashynov/punchd/internal/presence"
)

// tueMorningUTC is Tuesday 2026-03-03 09:20 AEST expressed in the storage
// zone (UTC+10 fixed offset).
var tueMorningUTC = time.Date(2026, 3, 2, 23, 20, 0, 0, time.UTC)

func testConfig() config.Config {
	return config.Config{
		LocalOffsetMinutes:  config.DefaultLocalOffsetMinutes,
		GraceThreshold:      config.DefaultGraceThreshold,
		InactivityThreshold: config.DefaultInactivityThreshold,
		Retention:           config.DefaultRetention,
		RunawayGuard:        config.DefaultRunawayGuard,
		ClampSpan:           config.DefaultClampSpan,
	}
}

func newTestService(t *testing.T, cfg config.Config) (*presence.Service, *gorm.DB, *quartz.Mock) {
	t.Helper()
	gdb, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	clock := quartz.NewMock(t)
	clock.Set(tueMorningUTC)

	log := slogtest.Make(t, &slogtest.Options{IgnoreErrors: true})
	svc := presence.NewService(gdb, cfg, log, clock)
	return svc, gdb, clock
}

// seedEmployee creates an identity with a linked employee whose morning
// starts at startHour every weekday.
func seedEmployee(t *testing.T, gdb *gorm.DB, login string, startHour float64) (models.Identity, models.Employee) {
	t.Helper()
	identity := models.Identity{Login: login, PasswordHash: "x"}
	require.NoError(t, gdb.Create(&identity).Error)

	emp := models.Employee{Name: login, IdentityID: &identity.ID, Active: true}
	for day := time.Monday; day <= time.Friday; day++ {
		emp.Schedule = append(emp.Schedule, models.ScheduleLine{
			Weekday:   day,
			Period:    models.PeriodMorning,
			StartHour: startHour,
		})
	}
	require.NoError(t, gdb.Create(&emp).Error)
	return identity, emp
}

func seedIdentity(t *testing.T, gdb *gorm.DB, login string, system bool) models.Identity {
	t.Helper()
	identity := models.Identity{Login: login, PasswordHash: "x", System: system}
	require.NoError(t, gdb.Create(&identity).Error)
	return identity
}

func openAttendance(t *testing.T, gdb *gorm.DB, employeeID uint) *models.Attendance {
	t.Helper()
	att, err := db.NewAttendanceStore(gdb).FindOpen(employeeID)
	require.NoError(t, err)
	return att
}

func TestRecordHeartbeat(t *testing.T) {
	svc, gdb, clock := newTestService(t, testConfig())
	ctx := context.Background()
	identity := seedIdentity(t, gdb, "jane", false)

	res := svc.RecordHeartbeat(ctx, identity.ID, "tok-1")
	require.True(t, res.Tracked)
	require.True(t, res.Created)
	require.False(t, res.Degraded())

	clock.Advance(5 * time.Minute)
	res = svc.RecordHeartbeat(ctx, identity.ID, "tok-1")
	require.True(t, res.Tracked)
	require.False(t, res.Created)

	tracker, err := db.NewTrackerStore(gdb).FindActive(identity.ID, "")
	require.NoError(t, err)
	require.NotNil(t, tracker)
	require.WithinDuration(t, tueMorningUTC.Add(5*time.Minute), tracker.LastActivity, time.Second)
	require.WithinDuration(t, tueMorningUTC, tracker.LoginTime, time.Second)
}

func TestRecordHeartbeatAdoptsRotatedSession(t *testing.T) {
	svc, gdb, _ := newTestService(t, testConfig())
	ctx := context.Background()
	identity := seedIdentity(t, gdb, "jane", false)

	res := svc.RecordHeartbeat(ctx, identity.ID, "tok-1")
	require.True(t, res.Created)

	// New browser session without a logout: the active tracker is re-keyed,
	// not duplicated.
	res = svc.RecordHeartbeat(ctx, identity.ID, "tok-2")
	require.True(t, res.Tracked)
	require.False(t, res.Created)

	var count int64
	require.NoError(t, gdb.Model(&models.SessionTracker{}).
		Where("identity_id = ? AND active = ?", identity.ID, true).
		Count(&count).Error)
	require.EqualValues(t, 1, count)

	tracker, err := db.NewTrackerStore(gdb).FindActive(identity.ID, "tok-2")
	require.NoError(t, err)
	require.NotNil(t, tracker)
}

func TestOnAuthenticatedOpensInterval(t *testing.T) {
	svc, gdb, _ := newTestService(t, testConfig())
	ctx := context.Background()
	identity, emp := seedEmployee(t, gdb, "jane", 9.0)

	svc.OnAuthenticated(ctx, identity.ID, "tok-1")

	att := openAttendance(t, gdb, emp.ID)
	require.NotNil(t, att)
	require.WithinDuration(t, tueMorningUTC, att.CheckIn, time.Second)

	tracker, err := db.NewTrackerStore(gdb).FindActive(identity.ID, "")
	require.NoError(t, err)
	require.NotNil(t, tracker)
	require.NotNil(t, tracker.AttendanceID)
	require.Equal(t, att.ID, *tracker.AttendanceID)
}

func TestOnAuthenticatedIsIdempotent(t *testing.T) {
	svc, gdb, clock := newTestService(t, testConfig())
	ctx := context.Background()
	identity, emp := seedEmployee(t, gdb, "jane", 9.0)

	svc.OnAuthenticated(ctx, identity.ID, "tok-1")
	first := openAttendance(t, gdb, emp.ID)
	require.NotNil(t, first)

	// Second login while the interval is open: no new interval, tracker
	// relinked to the existing one.
	clock.Advance(30 * time.Minute)
	svc.OnAuthenticated(ctx, identity.ID, "tok-2")

	var count int64
	require.NoError(t, gdb.Model(&models.Attendance{}).
		Where("employee_id = ?", emp.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)

	tracker, err := db.NewTrackerStore(gdb).FindActive(identity.ID, "")
	require.NoError(t, err)
	require.NotNil(t, tracker.AttendanceID)
	require.Equal(t, first.ID, *tracker.AttendanceID)
}

func TestOnAuthenticatedNoEmployee(t *testing.T) {
	svc, gdb, _ := newTestService(t, testConfig())
	ctx := context.Background()
	identity := seedIdentity(t, gdb, "ghost", false)

	svc.OnAuthenticated(ctx, identity.ID, "tok-1")

	var count int64
	require.NoError(t, gdb.Model(&models.Attendance{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestLateArrival(t *testing.T) {
	// Scenario: login at local 09:20 against a 09:00 expected start.
	svc, gdb, _ := newTestService(t, testConfig())
	ctx := context.Background()
	identity, emp := seedEmployee(t, gdb, "jane", 9.0)

	svc.OnAuthenticated(ctx, identity.ID, "tok-1")

	att := openAttendance(t, gdb, emp.ID)
	require.NotNil(t, att)
	require.InDelta(t, 20.00, att.LateMinutes, 0.001)

	followups, err := db.NewFollowUpStore(gdb).ListForEmployee(emp.ID)
	require.NoError(t, err)
	require.Len(t, followups, 1)
	require.Equal(t, presence.SubjectLateArrival, followups[0].Subject)
	require.Equal(t, identity.ID, followups[0].AssigneeID)
}

func TestLateArrivalWithinGrace(t *testing.T) {
	// 09:20 against a 09:30 expected start: not late, no follow-up.
	svc, gdb, _ := newTestService(t, testConfig())
	ctx := context.Background()
	identity, emp := seedEmployee(t, gdb, "jane", 9.5)

	svc.OnAuthenticated(ctx, identity.ID, "tok-1")

	att := openAttendance(t, gdb, emp.ID)
	require.NotNil(t, att)
	require.Zero(t, att.LateMinutes)

	followups, err := db.NewFollowUpStore(gdb).ListForEmployee(emp.ID)
	require.NoError(t, err)
	require.Empty(t, followups)
}

func TestLateArrivalExactlyAtGrace(t *testing.T) {
	// 09:20 against 09:05 is exactly 15 minutes: the threshold is strict.
	svc, gdb, _ := newTestService(t, testConfig())
	ctx := context.Background()
	identity, emp := seedEmployee(t, gdb, "jane", 9.0+5.0/60.0)

	svc.OnAuthenticated(ctx, identity.ID, "tok-1")

	att := openAttendance(t, gdb, emp.ID)
	require.NotNil(t, att)
	require.Zero(t, att.LateMinutes)
}

func TestLateArrivalNotifiesAudience(t *testing.T) {
	cfg := testConfig()
	cfg.NotifyAudience = []string{"boss", "hr", "jane"}
	svc, gdb, _ := newTestService(t, cfg)
	ctx := context.Background()

	identity, emp := seedEmployee(t, gdb, "jane", 9.0)
	boss := seedIdentity(t, gdb, "boss", false)
	hr := seedIdentity(t, gdb, "hr", false)

	svc.OnAuthenticated(ctx, identity.ID, "tok-1")

	followups, err := db.NewFollowUpStore(gdb).ListForEmployee(emp.ID)
	require.NoError(t, err)
	// One for the employee, one per audience member, none duplicated for the
	// employee's own identity.
	require.Len(t, followups, 3)

	byAssignee := map[uint]string{}
	for _, fu := range followups {
		byAssignee[fu.AssigneeID] = fu.Subject
	}
	require.Equal(t, presence.SubjectLateArrival, byAssignee[identity.ID])
	require.Equal(t, presence.SubjectEmployeeLateArrival, byAssignee[boss.ID])
	require.Equal(t, presence.SubjectEmployeeLateArrival, byAssignee[hr.ID])
}

func TestLateArrivalNoScheduleLine(t *testing.T) {
	svc, gdb, _ := newTestService(t, testConfig())
	ctx := context.Background()

	identity := seedIdentity(t, gdb, "jane", false)
	emp := models.Employee{Name: "jane", IdentityID: &identity.ID, Active: true}
	require.NoError(t, gdb.Create(&emp).Error)

	svc.OnAuthenticated(ctx, identity.ID, "tok-1")

	att := openAttendance(t, gdb, emp.ID)
	require.NotNil(t, att)
	require.Zero(t, att.LateMinutes)
}

func TestOnLogoutClosesInterval(t *testing.T) {
	svc, gdb, clock := newTestService(t, testConfig())
	ctx := context.Background()
	identity, emp := seedEmployee(t, gdb, "jane", 9.0)

	svc.OnAuthenticated(ctx, identity.ID, "tok-1")
	clock.Advance(2 * time.Hour)
	svc.OnLogout(ctx, identity.ID)

	att := openAttendance(t, gdb, emp.ID)
	require.Nil(t, att)

	var closed models.Attendance
	require.NoError(t, gdb.Where("employee_id = ?", emp.ID).First(&closed).Error)
	require.NotNil(t, closed.CheckOut)
	require.True(t, !closed.CheckOut.Before(closed.CheckIn))
	require.WithinDuration(t, tueMorningUTC.Add(2*time.Hour), *closed.CheckOut, time.Second)

	tracker, err := db.NewTrackerStore(gdb).FindActive(identity.ID, "")
	require.NoError(t, err)
	require.Nil(t, tracker)
}

func TestOnLogoutWithoutOpenInterval(t *testing.T) {
	svc, gdb, _ := newTestService(t, testConfig())
	ctx := context.Background()
	identity, emp := seedEmployee(t, gdb, "jane", 9.0)

	// Never logged in; logout is a no-op, not an error.
	svc.OnLogout(ctx, identity.ID)

	var count int64
	require.NoError(t, gdb.Model(&models.Attendance{}).
		Where("employee_id = ?", emp.ID).
		Count(&count).Error)
	require.Zero(t, count)
}
