package directory

import (
	"context"
	"errors"
	"testing"

	"holidaze/internal/metrics"
	"holidaze/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	venues []models.Venue
	last   bool
	err    error
}

type fakeSource struct {
	pages    []page
	requests []int
	limits   []int
}

func (f *fakeSource) ListVenues(_ context.Context, p, limit int) ([]models.Venue, models.PageMeta, error) {
	f.requests = append(f.requests, p)
	f.limits = append(f.limits, limit)
	if p > len(f.pages) {
		return nil, models.PageMeta{}, nil
	}
	pg := f.pages[p-1]
	return pg.venues, models.PageMeta{IsLastPage: pg.last, CurrentPage: p}, pg.err
}

func venue(id, name string) models.Venue {
	return models.Venue{ID: id, Name: name}
}

func TestFetchAllDeduplicatesLastWriteWins(t *testing.T) {
	src := &fakeSource{pages: []page{
		{venues: []models.Venue{venue("1", "a"), venue("2", "old")}},
		{venues: []models.Venue{venue("2", "new"), venue("3", "c")}, last: true},
	}}
	m := metrics.New()

	venues, err := NewFetcher(src, m).FetchAll(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, venues, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{venues[0].ID, venues[1].ID, venues[2].ID})
	assert.Equal(t, "new", venues[1].Name)
	assert.Equal(t, []int{1, 2}, src.requests)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DirectoryPages))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DirectoryVenues))
}

func TestFetchAllStopsOnEmptyPageWithoutLastFlag(t *testing.T) {
	src := &fakeSource{pages: []page{
		{venues: []models.Venue{venue("1", "a")}},
	}}

	venues, err := NewFetcher(src, nil).FetchAll(context.Background(), 100)
	require.NoError(t, err)

	assert.Len(t, venues, 1)
	assert.Equal(t, []int{1, 2}, src.requests)
}

func TestFetchAllHaltsOnFailedPage(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{pages: []page{
		{venues: []models.Venue{venue("1", "a")}},
		{err: boom},
		{venues: []models.Venue{venue("3", "c")}, last: true},
	}}

	venues, err := NewFetcher(src, nil).FetchAll(context.Background(), 100)

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, venues)
	assert.Equal(t, []int{1, 2}, src.requests, "no further pages after a failure")
}

func TestFetchPageDefaults(t *testing.T) {
	src := &fakeSource{pages: []page{{venues: []models.Venue{venue("1", "a")}, last: true}}}

	venues, last, err := NewFetcher(src, nil).FetchPage(context.Background(), 0, 0)
	require.NoError(t, err)

	assert.True(t, last)
	assert.Len(t, venues, 1)
	assert.Equal(t, []int{1}, src.requests)
	assert.Equal(t, []int{SearchPageSize}, src.limits)
}

func TestPagerIsRestartable(t *testing.T) {
	src := &fakeSource{pages: []page{
		{venues: []models.Venue{venue("1", "a")}},
		{venues: []models.Venue{venue("2", "b")}, last: true},
	}}
	pager := NewFetcher(src, nil).Pages(HomePageSize)
	ctx := context.Background()

	count := 0
	for {
		_, ok, err := pager.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, 2, count)

	pager.Reset()
	venues, ok, err := pager.Next(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", venues[0].ID)
}

func TestAccumulator(t *testing.T) {
	acc := NewAccumulator()
	acc.Add([]models.Venue{venue("b", "1"), venue("a", "1")})
	acc.Add([]models.Venue{venue("b", "2")})

	assert.Equal(t, 2, acc.Len())
	assert.Equal(t, []models.Venue{venue("b", "2"), venue("a", "1")}, acc.Venues())
}

func TestGuard(t *testing.T) {
	var g Guard
	first := g.Begin()
	assert.True(t, g.Current(first))

	second := g.Begin()
	assert.False(t, g.Current(first))
	assert.True(t, g.Current(second))
}
