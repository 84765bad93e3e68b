package presence

import (
	"context"
	"sync"
	"time"

	"cdr.dev/slog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/balkashynov/punchd/internal/db"
	"github.com/balkashynov/punchd/internal/models"
)

// Sweeper infers departures. On every tick it scans for trackers that are
// still active but have been silent past the inactivity threshold, closes
// the linked attendance interval at the last proven-alive instant and
// deactivates the tracker. One goroutine consumes the tick channel, so runs
// never overlap.
type Sweeper struct {
	ctx     context.Context
	svc     *Service
	log     slog.Logger
	tick    <-chan time.Time
	statsCh chan<- SweepStats
}

// SweepStats describes one run of the sweeper.
type SweepStats struct {
	// Closed counts intervals checked out; Deactivated counts trackers
	// retired without an interval to close (system users, no employee, no
	// open interval, or a per-record error).
	Closed      int
	Deactivated int
	Elapsed     time.Duration
	Error       error
}

func NewSweeper(ctx context.Context, svc *Service, tick <-chan time.Time) *Sweeper {
	return &Sweeper{
		ctx:  ctx,
		svc:  svc,
		log:  svc.log.Named("sweeper"),
		tick: tick,
	}
}

// WithStatsChannel pushes per-run stats to ch, mainly for tests.
func (sw *Sweeper) WithStatsChannel(ch chan<- SweepStats) *Sweeper {
	sw.statsCh = ch
	return sw
}

// Run consumes ticks until the context is done or the channel closes.
func (sw *Sweeper) Run() {
	go func() {
		for {
			select {
			case <-sw.ctx.Done():
				return
			case _, ok := <-sw.tick:
				if !ok {
					return
				}
				stats := sw.SweepOnce(sw.ctx)
				if stats.Error != nil {
					sw.log.Error(sw.ctx, "sweep failed", slog.Error(stats.Error))
				} else if stats.Closed > 0 {
					sw.log.Info(sw.ctx, "sweep checked out inactive sessions",
						slog.F("closed", stats.Closed),
						slog.F("deactivated", stats.Deactivated),
						slog.F("elapsed", stats.Elapsed))
				}
				if sw.statsCh != nil {
					select {
					case <-sw.ctx.Done():
						return
					case sw.statsCh <- stats:
					}
				}
			}
		}
	}()
}

// SweepOnce performs a single scan. Every stale tracker is handled in
// isolation: one bad record must not abort the batch, and a record that
// errors is deactivated defensively so it is not reprocessed forever.
func (sw *Sweeper) SweepOnce(ctx context.Context) SweepStats {
	start := sw.svc.clock.Now()
	stats := SweepStats{}
	defer func() {
		stats.Elapsed = sw.svc.clock.Now().Sub(start)
	}()

	now := sw.svc.now()
	cutoff := now.Add(-sw.svc.cfg.InactivityThreshold)

	trackers := db.NewTrackerStore(sw.svc.db.WithContext(ctx))
	stale, err := trackers.FindStale(cutoff)
	if err != nil {
		stats.Error = err
		return stats
	}

	var mu sync.Mutex
	eg := errgroup.Group{}
	// Bounded so a pile of stale trackers does not overload the database.
	eg.SetLimit(4)

	for _, tracker := range stale {
		eg.Go(func() error {
			outcome, err := sw.sweepOne(ctx, tracker, cutoff)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				sw.log.Error(ctx, "failed to process stale tracker",
					slog.F("tracker_id", tracker.ID),
					slog.F("identity_id", tracker.IdentityID),
					slog.Error(err))
				// Defensive: retire the record instead of retrying it on
				// every tick.
				if derr := trackers.DeactivateOne(tracker.ID, nil); derr == nil {
					stats.Deactivated++
				}
				return nil
			}
			switch outcome {
			case sweepClosed:
				stats.Closed++
			case sweepDeactivated:
				stats.Deactivated++
			}
			return nil
		})
	}
	_ = eg.Wait()
	return stats
}

// sweepOutcome is what sweepOne did with a record.
type sweepOutcome int

const (
	sweepSkipped sweepOutcome = iota
	sweepDeactivated
	sweepClosed
)

// sweepOne retires one stale tracker. The whole sequence runs in a
// transaction, and the tracker row is re-read first: a heartbeat that landed
// between the scan and this write wins, and the tracker is left alone.
func (sw *Sweeper) sweepOne(ctx context.Context, stale models.SessionTracker, cutoff time.Time) (outcome sweepOutcome, err error) {
	svc := sw.svc
	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trackers := db.NewTrackerStore(tx)
		tracker, err := trackers.Refresh(stale.ID)
		if err != nil {
			return err
		}
		if tracker == nil || !tracker.Active || !tracker.LastActivity.Before(cutoff) {
			// Gone, already retired, or alive again.
			return nil
		}

		dir := db.NewDirectoryStore(tx)
		identity, err := dir.IdentityByID(tracker.IdentityID)
		if err != nil {
			return err
		}
		if identity == nil || identity.System {
			// Reserved principals never get attendance inferred.
			outcome = sweepDeactivated
			return trackers.DeactivateOne(tracker.ID, nil)
		}

		emp, err := dir.EmployeeByIdentity(tracker.IdentityID)
		if err != nil {
			return err
		}
		if emp == nil {
			outcome = sweepDeactivated
			return trackers.DeactivateOne(tracker.ID, nil)
		}

		atts := db.NewAttendanceStore(tx)
		open, err := atts.FindOpen(emp.ID)
		if err != nil {
			return err
		}
		if open == nil {
			outcome = sweepDeactivated
			return trackers.DeactivateOne(tracker.ID, nil)
		}

		// Close at the last proven-alive instant rather than now, so idle
		// time past the threshold is not counted as worked.
		end := tracker.LastActivity
		if end.Sub(open.CheckIn) > svc.cfg.RunawayGuard {
			// Runaway interval, likely a tracker that dodged earlier
			// sweeps. Clamp to a typical workday.
			end = open.CheckIn.Add(svc.cfg.ClampSpan)
		}
		if err := atts.CloseInterval(open.ID, end); err != nil {
			return err
		}
		if err := trackers.DeactivateOne(tracker.ID, &open.ID); err != nil {
			return err
		}
		outcome = sweepClosed
		sw.log.Info(ctx, "auto check-out for inactive session",
			slog.F("employee", emp.Name),
			slog.F("last_activity", tracker.LastActivity),
			slog.F("check_in", open.CheckIn),
			slog.F("check_out", end))
		return nil
	})
	if err != nil {
		return sweepSkipped, err
	}
	return outcome, nil
}
