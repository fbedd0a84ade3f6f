package jobs

import (
	"context"
	"log/slog"
	"time"
)

// ExpiredSessions deletes credential rows past their expiry
type ExpiredSessions interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// SessionPurgeJob removes expired sessions from Postgres. Reads already ignore
// them; this only keeps the table small.
type SessionPurgeJob struct {
	sessions ExpiredSessions
	interval time.Duration
	ticker   *time.Ticker
	done     chan bool
}

// NewSessionPurgeJob creates a new session purge job
func NewSessionPurgeJob(sessions ExpiredSessions, interval time.Duration) *SessionPurgeJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SessionPurgeJob{
		sessions: sessions,
		interval: interval,
		done:     make(chan bool),
	}
}

// Start begins the background job
func (j *SessionPurgeJob) Start(ctx context.Context) {
	slog.Info("Starting session purge job", "interval", j.interval.String())

	j.ticker = time.NewTicker(j.interval)

	go j.purge(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				j.purge(ctx)
			case <-j.done:
				slog.Info("Session purge job stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job
func (j *SessionPurgeJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *SessionPurgeJob) purge(ctx context.Context) {
	deleted, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		slog.Error("Failed to purge expired sessions", "error", err)
		return
	}
	if deleted == 0 {
		slog.Debug("No expired sessions found")
		return
	}
	slog.Info("Purged expired sessions", "count", deleted)
}
