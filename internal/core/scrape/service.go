package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"jobscraper/internal/config"
	"jobscraper/internal/core/browser"
	"jobscraper/internal/core/extract"
	"jobscraper/internal/core/fetch"
	"jobscraper/internal/core/karriere"
	"jobscraper/internal/core/listing"
	"jobscraper/internal/core/paginate"
	"jobscraper/internal/logger"
)

// Request is one scrape job: a field/region query bounded by a page cap
// and a per-fetch timeout. Zero values fall back to the configured
// defaults.
type Request struct {
	Field    string
	Region   string
	MaxPages int
	Timeout  time.Duration
}

// handle is the slice of a browser session the runner touches.
type handle interface {
	Page() playwright.Page
	Release()
}

// Service runs scrape jobs. Each job owns one browser session for its
// full lifetime; the admission semaphore bounds how many sessions exist
// at once, since every job holds a full browser process.
type Service struct {
	cfg     config.Config
	site    *karriere.Site
	profile browser.Profile
	log     *logger.Logger

	sem chan struct{}

	// acquire is swapped in tests to avoid launching a real browser.
	acquire func(browser.Profile) (handle, error)
}

func NewService(cfg config.Config, site *karriere.Site) *Service {
	concurrency := cfg.ScrapeConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Service{
		cfg:     cfg,
		site:    site,
		profile: browser.DefaultProfile().WithArgs(cfg.BrowserArgs),
		log:     logger.New("ScrapeService"),
		sem:     make(chan struct{}, concurrency),
		acquire: func(p browser.Profile) (handle, error) {
			s, err := browser.Acquire(p)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	}
}

// Run executes one job to completion and always returns a structured
// outcome: failures, including a browser that never launched, surface as
// a failed outcome rather than an error, and the session is released on
// every exit path.
func (s *Service) Run(ctx context.Context, req Request) (out listing.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.log.LogErrorf("scrape job panicked: %v", r)
			out = listing.Failed(fmt.Errorf("internal scrape failure: %v", r))
		}
	}()

	maxPages := req.MaxPages
	if maxPages <= 0 {
		maxPages = s.cfg.PageLimitDefault
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = time.Duration(s.cfg.FetchTimeoutSec) * time.Second
	}

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		return listing.Failed(ctx.Err())
	}

	s.log.LogInfof("scrape start field=%q region=%q max_pages=%d timeout=%s", req.Field, req.Region, maxPages, timeout)

	session, err := s.acquire(s.profile)
	if err != nil {
		s.log.LogError("browser acquisition failed", err)
		return listing.Failed(err)
	}
	defer session.Release()

	fetcher := fetch.New(session.Page(), s.site.ReadySelector())
	extractor := extract.New(session.Page(), s.site)
	pager := paginate.New(fetcher, extractor, s.site.NextURL)

	out = pager.Run(ctx, s.site.SearchURL(req.Field, req.Region, 1), maxPages, timeout)
	s.log.LogInfof("scrape done field=%q region=%q status=%s postings=%d pages=%d", req.Field, req.Region, out.Status, len(out.Postings), out.Pages)
	return out
}
