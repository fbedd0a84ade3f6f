package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"holidaze/internal/search"
)

// Reindexer runs one full directory sync
type Reindexer interface {
	Reindex(ctx context.Context) (search.SyncStats, error)
}

// DirectoryReindexJob periodically mirrors the whole venue directory into the
// search index. Events keep single venues fresh; the full pass picks up
// changes made outside this BFF.
type DirectoryReindexJob struct {
	reindexer Reindexer
	interval  time.Duration
	ticker    *time.Ticker
	done      chan bool

	// one sync at a time; a tick that finds one running is skipped
	running sync.Mutex
}

// NewDirectoryReindexJob creates a new directory reindex job
func NewDirectoryReindexJob(reindexer Reindexer, interval time.Duration) *DirectoryReindexJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &DirectoryReindexJob{
		reindexer: reindexer,
		interval:  interval,
		done:      make(chan bool),
	}
}

// Start runs a sync immediately and then on every interval
func (j *DirectoryReindexJob) Start(ctx context.Context) {
	slog.Info("Starting directory reindex job", "interval", j.interval.String())

	j.ticker = time.NewTicker(j.interval)

	go j.reindex(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.reindex(ctx)
			case <-j.done:
				slog.Info("Directory reindex job stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job
func (j *DirectoryReindexJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *DirectoryReindexJob) reindex(ctx context.Context) {
	if !j.running.TryLock() {
		slog.Warn("Previous directory reindex still running, skipping tick")
		return
	}
	defer j.running.Unlock()

	if _, err := j.reindexer.Reindex(ctx); err != nil {
		slog.Error("Directory reindex failed", "error", err)
	}
}
