package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"holidaze/internal/directory"
	"holidaze/internal/models"
)

// Sink receives a full directory pass
type Sink interface {
	IndexVenues(ctx context.Context, venues []models.Venue, syncedAt time.Time) error
	PruneBefore(ctx context.Context, t time.Time) (int64, error)
}

// SyncStats reports one Sync run
type SyncStats struct {
	Venues   int
	Pruned   int64
	Duration time.Duration
}

// Sync fetches the whole directory and mirrors it into sink. Venues missing
// from this pass are pruned afterwards. A failed fetch leaves the index untouched.
// When guard is set, a pass overtaken by a newer one drops its result.
func Sync(ctx context.Context, fetcher *directory.Fetcher, sink Sink, pageSize int, guard *directory.Guard) (SyncStats, error) {
	var gen uint64
	if guard != nil {
		gen = guard.Begin()
	}
	start := time.Now()
	syncedAt := start.UTC()

	venues, err := fetcher.FetchAll(ctx, pageSize)
	if err != nil {
		return SyncStats{}, fmt.Errorf("failed to fetch venue directory: %w", err)
	}
	if guard != nil && !guard.Current(gen) {
		slog.Info("Discarding overtaken directory sync", "generation", gen, "venues", len(venues))
		return SyncStats{}, nil
	}

	if err := sink.IndexVenues(ctx, venues, syncedAt); err != nil {
		return SyncStats{}, fmt.Errorf("failed to index venues: %w", err)
	}

	var pruned int64
	if len(venues) > 0 {
		// an empty directory is more likely an upstream hiccup than a real wipe
		pruned, err = sink.PruneBefore(ctx, syncedAt)
		if err != nil {
			return SyncStats{Venues: len(venues)}, fmt.Errorf("failed to prune stale venues: %w", err)
		}
	}

	stats := SyncStats{Venues: len(venues), Pruned: pruned, Duration: time.Since(start)}
	slog.Info("Venue index synchronized",
		"venues", stats.Venues,
		"pruned", stats.Pruned,
		"duration", stats.Duration.String())
	return stats, nil
}
