package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"holidaze/internal/config"
	"holidaze/internal/directory"
	"holidaze/internal/external"
	"holidaze/internal/logger"
	"holidaze/internal/search"
)

func main() {
	var (
		pageSize int
		timeout  time.Duration
	)
	flag.IntVar(&pageSize, "page-size", 0, "Venues per upstream page (default DIRECTORY_PAGE_SIZE)")
	flag.DurationVar(&timeout, "timeout", 10*time.Minute, "Abort the sync after this long")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	if pageSize < 1 {
		pageSize = cfg.DirectoryPageSize
	}
	slog.Info("Starting venue index synchronization", "page_size", pageSize, "index", cfg.Elasticsearch.Index)

	index, err := search.NewVenueIndex(cfg.Elasticsearch)
	if err != nil {
		logger.Fatal("Failed to create venue index", "error", err)
	}

	fetcher := directory.NewFetcher(external.NewHolidazeClient(cfg.Holidaze, nil), nil)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	stats, err := search.Sync(ctx, fetcher, index, pageSize, nil)
	if err != nil {
		logger.Fatal("Venue index synchronization failed", "error", err)
	}

	count, err := index.Count(ctx)
	if err != nil {
		slog.Warn("Failed to count indexed venues", "error", err)
	}

	slog.Info("Venue index synchronization completed successfully",
		"venues", stats.Venues,
		"pruned", stats.Pruned,
		"indexed_total", count,
		"duration", stats.Duration.String(),
		"venues_per_second", float64(stats.Venues)/stats.Duration.Seconds())
}
