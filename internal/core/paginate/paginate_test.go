package paginate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscraper/internal/core/fetch"
	"jobscraper/internal/core/listing"
)

// fakeSite plays both the fetcher and the extractor: Extract returns
// the page registered for the most recently fetched URL.
type fakeSite struct {
	pages      map[string]listing.PageResult
	fetchErrs  map[string]error
	extractErr error

	fetched []string
}

func (f *fakeSite) Fetch(_ context.Context, url string, _ time.Duration) error {
	if err, ok := f.fetchErrs[url]; ok {
		return err
	}
	f.fetched = append(f.fetched, url)
	return nil
}

func (f *fakeSite) Extract(context.Context) (listing.PageResult, error) {
	if f.extractErr != nil {
		return listing.PageResult{}, f.extractErr
	}
	return f.pages[f.fetched[len(f.fetched)-1]], nil
}

func nextByIndex(_ string, next int) string { return pageURL(next) }

func pageURL(n int) string { return fmt.Sprintf("https://jobs.test/search?page=%d", n) }

func makePage(page, count int, hasNext bool) listing.PageResult {
	res := listing.PageResult{HasNext: hasNext, Postings: []listing.Posting{}}
	for i := 0; i < count; i++ {
		res.Postings = append(res.Postings, listing.Posting{
			Title:   fmt.Sprintf("Job %d-%d", page, i),
			Company: "ACME",
			Link:    fmt.Sprintf("https://jobs.test/jobs/%d%02d", page, i),
		})
	}
	return res
}

func TestRunTwoPagesUnderCap(t *testing.T) {
	site := &fakeSite{pages: map[string]listing.PageResult{
		pageURL(1): makePage(1, 10, true),
		pageURL(2): makePage(2, 10, false),
	}}
	p := New(site, site, nextByIndex)

	out := p.Run(context.Background(), pageURL(1), 3, time.Second)

	assert.Equal(t, listing.StatusCompleted, out.Status)
	assert.Len(t, out.Postings, 20)
	assert.Equal(t, 2, out.Pages)
	assert.False(t, out.CapReached)
}

func TestRunCapReached(t *testing.T) {
	site := &fakeSite{pages: map[string]listing.PageResult{}}
	for i := 1; i <= 5; i++ {
		site.pages[pageURL(i)] = makePage(i, 10, true)
	}
	p := New(site, site, nextByIndex)

	out := p.Run(context.Background(), pageURL(1), 2, time.Second)

	assert.Equal(t, listing.StatusCompleted, out.Status)
	assert.Len(t, out.Postings, 20)
	assert.Equal(t, 2, out.Pages)
	assert.True(t, out.CapReached)
	assert.Len(t, site.fetched, 2, "must never fetch past the cap")
}

func TestRunNonPositiveCapScansSinglePage(t *testing.T) {
	site := &fakeSite{pages: map[string]listing.PageResult{
		pageURL(1): makePage(1, 5, true),
	}}
	p := New(site, site, nextByIndex)

	out := p.Run(context.Background(), pageURL(1), 0, time.Second)

	assert.Equal(t, listing.StatusCompleted, out.Status)
	assert.True(t, out.CapReached)
	assert.Equal(t, 1, out.Pages)
	assert.Len(t, site.fetched, 1)
}

func TestRunSecondPageTimeoutIsPartial(t *testing.T) {
	site := &fakeSite{
		pages:     map[string]listing.PageResult{pageURL(1): makePage(1, 10, true)},
		fetchErrs: map[string]error{pageURL(2): &fetch.TimeoutError{URL: pageURL(2), Elapsed: time.Second}},
	}
	p := New(site, site, nextByIndex)

	out := p.Run(context.Background(), pageURL(1), 5, time.Second)

	assert.Equal(t, listing.StatusPartial, out.Status)
	assert.Len(t, out.Postings, 10, "collected postings survive a later failure")
	assert.Equal(t, 1, out.Pages)
	assert.Contains(t, out.Error, "not ready")
}

func TestRunFirstPageFailureIsFailed(t *testing.T) {
	site := &fakeSite{
		pages:     map[string]listing.PageResult{},
		fetchErrs: map[string]error{pageURL(1): &fetch.NavigationError{URL: pageURL(1), Err: errors.New("net::ERR_NAME_NOT_RESOLVED")}},
	}
	p := New(site, site, nextByIndex)

	out := p.Run(context.Background(), pageURL(1), 3, time.Second)

	assert.Equal(t, listing.StatusFailed, out.Status)
	assert.Empty(t, out.Postings)
	assert.Equal(t, 0, out.Pages)
}

func TestRunEmptyFirstPageCompletes(t *testing.T) {
	site := &fakeSite{pages: map[string]listing.PageResult{
		pageURL(1): {Postings: []listing.Posting{}, HasNext: false},
	}}
	p := New(site, site, nextByIndex)

	out := p.Run(context.Background(), pageURL(1), 3, time.Second)

	assert.Equal(t, listing.StatusCompleted, out.Status)
	assert.Empty(t, out.Postings)
	assert.Equal(t, 1, out.Pages)
}

func TestRunDedupsAcrossPagesPreservingOrder(t *testing.T) {
	page1 := makePage(1, 3, true)
	page2 := makePage(2, 3, false)
	// A sticky listing repeats on page two.
	page2.Postings = append([]listing.Posting{page1.Postings[0]}, page2.Postings...)

	site := &fakeSite{pages: map[string]listing.PageResult{
		pageURL(1): page1,
		pageURL(2): page2,
	}}
	p := New(site, site, nextByIndex)

	out := p.Run(context.Background(), pageURL(1), 5, time.Second)

	require.Equal(t, listing.StatusCompleted, out.Status)
	assert.Len(t, out.Postings, 6)

	seen := make(map[string]bool)
	for _, post := range out.Postings {
		assert.False(t, seen[post.Link], "duplicate link %s", post.Link)
		seen[post.Link] = true
	}
	assert.Equal(t, page1.Postings[0].Link, out.Postings[0].Link, "first-seen position wins")
}

func TestRunExtractErrorDegrades(t *testing.T) {
	site := &fakeSite{
		pages:      map[string]listing.PageResult{pageURL(1): makePage(1, 10, true)},
		extractErr: errors.New("read page content: target closed"),
	}
	p := New(site, site, nextByIndex)

	out := p.Run(context.Background(), pageURL(1), 3, time.Second)

	assert.Equal(t, listing.StatusFailed, out.Status)
	assert.Equal(t, 0, out.Pages)
}

func TestRunCancelledContext(t *testing.T) {
	site := &fakeSite{pages: map[string]listing.PageResult{pageURL(1): makePage(1, 10, true)}}
	p := New(site, site, nextByIndex)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := p.Run(ctx, pageURL(1), 3, time.Second)

	assert.Equal(t, listing.StatusFailed, out.Status)
	assert.Empty(t, site.fetched, "no fetch after cancellation")
}

func TestRunDeterministicAcrossRuns(t *testing.T) {
	build := func() *fakeSite {
		return &fakeSite{pages: map[string]listing.PageResult{
			pageURL(1): makePage(1, 4, true),
			pageURL(2): makePage(2, 4, false),
		}}
	}
	siteA := build()
	siteB := build()
	first := New(siteA, siteA, nextByIndex)
	second := New(siteB, siteB, nextByIndex)

	outA := first.Run(context.Background(), pageURL(1), 3, time.Second)
	outB := second.Run(context.Background(), pageURL(1), 3, time.Second)

	assert.Equal(t, outA.Postings, outB.Postings)
	assert.Equal(t, outA.Pages, outB.Pages)
}
