package presence

import (
	"context"
	"time"

	"cdr.dev/slog"

	"github.com/balkashynov/punchd/internal/db"
)

// Cleaner is pure garbage collection: it deletes trackers that have been
// inactive longer than the retention window. Failures are logged, not
// retried inline; the next tick retries naturally.
type Cleaner struct {
	ctx     context.Context
	svc     *Service
	log     slog.Logger
	tick    <-chan time.Time
	statsCh chan<- CleanStats
}

// CleanStats describes one run of the cleaner.
type CleanStats struct {
	Removed int64
	Elapsed time.Duration
	Error   error
}

func NewCleaner(ctx context.Context, svc *Service, tick <-chan time.Time) *Cleaner {
	return &Cleaner{
		ctx:  ctx,
		svc:  svc,
		log:  svc.log.Named("cleaner"),
		tick: tick,
	}
}

// WithStatsChannel pushes per-run stats to ch, mainly for tests.
func (c *Cleaner) WithStatsChannel(ch chan<- CleanStats) *Cleaner {
	c.statsCh = ch
	return c
}

// Run consumes ticks until the context is done or the channel closes.
func (c *Cleaner) Run() {
	go func() {
		for {
			select {
			case <-c.ctx.Done():
				return
			case _, ok := <-c.tick:
				if !ok {
					return
				}
				stats := c.PurgeOnce(c.ctx)
				if stats.Error != nil {
					c.log.Error(c.ctx, "cleanup failed", slog.Error(stats.Error))
				} else if stats.Removed > 0 {
					c.log.Info(c.ctx, "purged old session trackers",
						slog.F("removed", stats.Removed))
				}
				if c.statsCh != nil {
					select {
					case <-c.ctx.Done():
						return
					case c.statsCh <- stats:
					}
				}
			}
		}
	}()
}

// PurgeOnce deletes inactive trackers older than the retention window.
// Active trackers are never deleted, whatever their age.
func (c *Cleaner) PurgeOnce(ctx context.Context) CleanStats {
	start := c.svc.clock.Now()
	cutoff := c.svc.now().Add(-c.svc.cfg.Retention)

	trackers := db.NewTrackerStore(c.svc.db.WithContext(ctx))
	removed, err := trackers.PurgeOld(cutoff)
	return CleanStats{
		Removed: removed,
		Elapsed: c.svc.clock.Now().Sub(start),
		Error:   err,
	}
}
