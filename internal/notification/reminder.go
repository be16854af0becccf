package notification

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"rota-backend/internal/store"
)

// Reminder periodically scans for duties starting in the next hour and
// queues a reminder push for each affected user. The scan runs on a cron
// schedule (":45 every hour" by default) in the configured timezone, so
// a 13:45 run reminds about 14:00 duties.
type Reminder struct {
	cron  *cron.Cron
	spec  string
	loc   *time.Location
	store store.Store
	pool  *WorkerPool
}

// NewReminder builds the reminder scanner. The timezone name must resolve
// via the platform tz database.
func NewReminder(spec, timezone string, s store.Store, pool *WorkerPool) (*Reminder, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &Reminder{
		cron:  cron.New(cron.WithLocation(loc)),
		spec:  spec,
		loc:   loc,
		store: s,
		pool:  pool,
	}, nil
}

// Start registers the cron entry and starts the scheduler.
func (r *Reminder) Start(ctx context.Context) error {
	_, err := r.cron.AddFunc(r.spec, func() {
		r.ScanOnce(ctx, time.Now().In(r.loc))
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for a running scan to finish.
func (r *Reminder) Stop() {
	<-r.cron.Stop().Done()
}

// ScanOnce looks up every duty starting at the hour after now and queues
// one reminder per user. Exposed for tests and manual runs.
func (r *Reminder) ScanOnce(ctx context.Context, now time.Time) {
	next := now.Add(time.Hour)
	duties, err := r.store.DutiesStartingAt(ctx, next, next.Hour())
	if err != nil {
		log.Printf("reminder scan failed: %v", err)
		return
	}

	for _, d := range duties {
		r.pool.Dispatch(Job{
			Kind:   KindReminder,
			UserID: d.UserID,
			Branch: d.BranchCode,
			Date:   d.Date,
			Hours:  []int{d.Hour},
		})
	}
	if len(duties) > 0 {
		log.Printf("queued %d duty reminders for %02d:00", len(duties), next.Hour())
	}
}
