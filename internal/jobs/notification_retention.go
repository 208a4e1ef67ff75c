package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/beingcrieative/mobmail-sub002/storage"
)

// SweepInterval is how often read notifications are checked for expiry.
const SweepInterval = 6 * time.Hour

// NotificationRetention deletes read notifications that outlived the
// retention window. Unread notifications are never touched.
type NotificationRetention struct {
	storage   *storage.Storage
	retention time.Duration
	ticker    *time.Ticker
	done      chan bool
}

func NewNotificationRetention(storage *storage.Storage, retention time.Duration) *NotificationRetention {
	return &NotificationRetention{
		storage:   storage,
		retention: retention,
		done:      make(chan bool),
	}
}

// Start begins the retention sweep background job
func (j *NotificationRetention) Start(ctx context.Context) {
	slog.Info("starting notification retention job", "interval", SweepInterval, "retention", j.retention)

	// Run immediately on start
	j.sweep(ctx)

	j.ticker = time.NewTicker(SweepInterval)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				j.sweep(ctx)
			case <-j.done:
				slog.Info("notification retention job stopped")
				return
			}
		}
	}()
}

// Stop stops the background job
func (j *NotificationRetention) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *NotificationRetention) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-j.retention)

	deleted, err := j.storage.Queries.DeleteReadNotificationsBefore(ctx, cutoff)
	if err != nil {
		slog.Error("notification retention sweep failed", "error", err)
		return
	}

	if deleted > 0 {
		slog.Info("notification retention sweep complete", "deleted", deleted, "cutoff", cutoff)
	} else {
		slog.Debug("notification retention sweep complete", "deleted", 0)
	}
}
