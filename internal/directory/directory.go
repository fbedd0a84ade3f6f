// Package directory walks the paginated venue listing upstream.
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"holidaze/internal/metrics"
	"holidaze/internal/models"
)

const (
	// SearchPageSize is used when the whole directory is collected for searching
	SearchPageSize = 100
	// HomePageSize is used by the paged home listing
	HomePageSize = 12
)

// PageSource is the upstream listing endpoint
type PageSource interface {
	ListVenues(ctx context.Context, page, limit int) ([]models.Venue, models.PageMeta, error)
}

// Fetcher requests directory pages
type Fetcher struct {
	source  PageSource
	metrics *metrics.Metrics
}

func NewFetcher(source PageSource, m *metrics.Metrics) *Fetcher {
	return &Fetcher{source: source, metrics: m}
}

// FetchPage returns one page (1-based) and whether it is the last one.
// An empty page is a valid result.
func (f *Fetcher) FetchPage(ctx context.Context, page, pageSize int) ([]models.Venue, bool, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = SearchPageSize
	}

	venues, meta, err := f.source.ListVenues(ctx, page, pageSize)
	if err != nil {
		return nil, false, err
	}
	f.metrics.PageFetched()

	// an upstream that never flags the last page still terminates on an empty one
	last := meta.IsLastPage || len(venues) == 0
	return venues, last, nil
}

// Pages returns a fresh pager starting at page 1
func (f *Fetcher) Pages(pageSize int) *Pager {
	return &Pager{fetcher: f, pageSize: pageSize, next: 1}
}

// Pager yields directory pages one at a time. Each call to Next waits for the
// previous response, so at most one request is in flight.
type Pager struct {
	fetcher  *Fetcher
	pageSize int
	next     int
	done     bool
}

// Next fetches the following page. ok is false once the sequence is exhausted.
// After an error the pager stays where it was; Reset restarts from page 1.
func (p *Pager) Next(ctx context.Context) (venues []models.Venue, ok bool, err error) {
	if p.done {
		return nil, false, nil
	}

	venues, last, err := p.fetcher.FetchPage(ctx, p.next, p.pageSize)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch venue page %d: %w", p.next, err)
	}

	p.next++
	p.done = last
	return venues, true, nil
}

// Page is the number of the next page Next will request
func (p *Pager) Page() int {
	return p.next
}

func (p *Pager) Reset() {
	p.next = 1
	p.done = false
}

// Accumulator merges pages keyed by venue id. A later copy of a venue
// replaces the earlier one but keeps its original position.
type Accumulator struct {
	order []string
	byID  map[string]models.Venue
}

func NewAccumulator() *Accumulator {
	return &Accumulator{byID: make(map[string]models.Venue)}
}

func (a *Accumulator) Add(page []models.Venue) {
	for _, v := range page {
		if _, seen := a.byID[v.ID]; !seen {
			a.order = append(a.order, v.ID)
		}
		a.byID[v.ID] = v
	}
}

// Venues returns the accumulated venues in first-seen order
func (a *Accumulator) Venues() []models.Venue {
	out := make([]models.Venue, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.byID[id])
	}
	return out
}

func (a *Accumulator) Len() int {
	return len(a.order)
}

// FetchAll drains every page into a deduplicated list. The first failed page
// aborts the cycle; pages already received are discarded.
func (f *Fetcher) FetchAll(ctx context.Context, pageSize int) ([]models.Venue, error) {
	pager := f.Pages(pageSize)
	acc := NewAccumulator()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		venues, ok, err := pager.Next(ctx)
		if err != nil {
			slog.Error("Failed to fetch venue directory", "page", pager.Page(), "error", err)
			return nil, err
		}
		if !ok {
			break
		}
		acc.Add(venues)
	}

	f.metrics.DirectorySize(acc.Len())
	slog.Debug("Venue directory fetched", "venues", acc.Len(), "pages", pager.Page()-1)
	return acc.Venues(), nil
}

// Guard hands out generations so that a consumer can drop results of a fetch
// it has since abandoned.
type Guard struct {
	gen atomic.Uint64
}

// Begin starts a new generation and invalidates all earlier ones
func (g *Guard) Begin() uint64 {
	return g.gen.Add(1)
}

// Current reports whether gen is still the latest generation
func (g *Guard) Current(gen uint64) bool {
	return g.gen.Load() == gen
}
