package paginate

import (
	"context"
	"time"

	"jobscraper/internal/core/listing"
	"jobscraper/internal/logger"
)

// Fetcher navigates the owned browser session to a result URL and waits
// until the page is extractable.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) error
}

// Extractor reads the session's current page into postings plus the
// next-page signal.
type Extractor interface {
	Extract(ctx context.Context) (listing.PageResult, error)
}

// NextURL computes the following result page's URL from the current one.
type NextURL func(current string, next int) string

// Paginator walks result pages strictly sequentially: page N+1 is never
// fetched before page N's extraction finished, so posting order is
// reproducible for a static target.
type Paginator struct {
	fetch   Fetcher
	extract Extractor
	nextURL NextURL
	log     *logger.Logger

	// Settle is an optional pause between pages.
	Settle time.Duration
}

func New(f Fetcher, e Extractor, next NextURL) *Paginator {
	return &Paginator{fetch: f, extract: e, nextURL: next, log: logger.New("Paginator")}
}

// Run executes the page loop for one job. A page that errors after at
// least one successful page degrades the outcome to partial, keeping
// everything collected so far; an error on the first page means failed.
// Hitting maxPages while more pages exist is a completed outcome with
// the cap flag set. A non-positive cap scans a single page.
func (p *Paginator) Run(ctx context.Context, startURL string, maxPages int, timeout time.Duration) listing.Outcome {
	out := listing.Outcome{Postings: []listing.Posting{}}
	seen := make(map[string]struct{})
	current := startURL
	if maxPages < 1 {
		maxPages = 1
	}

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return p.degrade(out, err)
		}

		if err := p.fetch.Fetch(ctx, current, timeout); err != nil {
			p.log.LogWarnf("page %d fetch failed: %v", page, err)
			return p.degrade(out, err)
		}

		res, err := p.extract.Extract(ctx)
		if err != nil {
			p.log.LogWarnf("page %d extract failed: %v", page, err)
			return p.degrade(out, err)
		}

		for _, posting := range res.Postings {
			if _, dup := seen[posting.Link]; dup {
				continue
			}
			seen[posting.Link] = struct{}{}
			out.Postings = append(out.Postings, posting)
		}
		out.Pages++
		p.log.LogInfof("page %d: %d postings (%d total, has_next=%v)", page, len(res.Postings), len(out.Postings), res.HasNext)

		if !res.HasNext {
			out.Status = listing.StatusCompleted
			return out
		}
		if page == maxPages {
			// The limit is an intentional cap, not a failure.
			out.Status = listing.StatusCompleted
			out.CapReached = true
			return out
		}

		current = p.nextURL(current, page+1)
		if p.Settle > 0 {
			select {
			case <-time.After(p.Settle):
			case <-ctx.Done():
				return p.degrade(out, ctx.Err())
			}
		}
	}
}

func (p *Paginator) degrade(out listing.Outcome, err error) listing.Outcome {
	if err != nil {
		out.Error = err.Error()
	}
	if out.Pages > 0 {
		out.Status = listing.StatusPartial
	} else {
		out.Status = listing.StatusFailed
	}
	return out
}
